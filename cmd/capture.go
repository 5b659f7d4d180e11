package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"schema-vault/internal/backup"
	"schema-vault/internal/config"
	"schema-vault/internal/database"
	"schema-vault/internal/logging"
)

var (
	captureName      string
	captureType      string
	captureSchema    string
	captureOperation string
	captureDatabase  string
	captureFile      string
	captureFromDB    bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture an object definition into the vault",
	Long: `Capture stores one object definition. The definition text comes from
--file, stdin ("-"), or the configured database when --from-db is set.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVar(&captureName, "name", "", "object name (required)")
	captureCmd.Flags().StringVar(&captureType, "type", "", "object type: PROCEDURE, FUNCTION, VIEW, TRIGGER, TABLE (required)")
	captureCmd.Flags().StringVar(&captureSchema, "schema", "", "schema name")
	captureCmd.Flags().StringVar(&captureOperation, "operation", "CREATE", "reason for the capture: ALTER, DROP, CREATE, RESTORE")
	captureCmd.Flags().StringVar(&captureDatabase, "database", "", "source database name")
	captureCmd.Flags().StringVar(&captureFile, "file", "", "definition file; \"-\" reads stdin")
	captureCmd.Flags().BoolVar(&captureFromDB, "from-db", false, "fetch the definition from the configured database")

	captureCmd.MarkFlagRequired("name")
	captureCmd.MarkFlagRequired("type")
}

func runCapture(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	provider := buildProvider()

	definition, err := readDefinition(provider, logger)
	if err != nil {
		return err
	}

	dbName := captureDatabase
	if dbName == "" {
		dbName = provider.Database().Database
	}

	manager := backup.NewManager(provider, logger)
	result := manager.CreateBackup(backup.CreateRequest{
		ObjectName: captureName,
		ObjectType: captureType,
		SchemaName: captureSchema,
		Definition: definition,
		Operation:  backup.Operation(strings.ToUpper(captureOperation)),
		Database:   dbName,
	})

	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Println(result.Message)
	if result.BackupID != "" {
		fmt.Printf("  id:   %s\n", result.BackupID)
		fmt.Printf("  file: %s\n", result.BackupFile)
	}
	return nil
}

// readDefinition resolves the definition text from --from-db, --file,
// or stdin, in that order of precedence
func readDefinition(provider *config.Provider, logger *logging.Logger) (string, error) {
	if captureFromDB {
		fetcher, err := database.NewFetcher(provider.Database(), logger)
		if err != nil {
			return "", err
		}
		defer fetcher.Close()

		ctx, cancel := context.WithTimeout(context.Background(), provider.Database().Timeout)
		defer cancel()

		return fetcher.FetchDefinition(ctx, captureType, captureSchema, captureName)
	}

	switch captureFile {
	case "":
		return "", fmt.Errorf("a definition source is required: --file, --file -, or --from-db")
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read definition from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(captureFile)
		if err != nil {
			return "", fmt.Errorf("failed to read definition file: %w", err)
		}
		return string(data), nil
	}
}
