package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schema-vault/internal/backup"
	"schema-vault/internal/config"
	"schema-vault/internal/database"
	"schema-vault/internal/diff"
	"schema-vault/internal/logging"
)

var diffCurrentFile string

var diffCmd = &cobra.Command{
	Use:   "diff <old-backup-id> <new-backup-id|current>",
	Short: "Compare two backups, or a backup against the live definition",
	Long: `Diff computes a line-level comparison between two captured versions, or
between a captured version and the live object when the second argument is
the literal "current". The live definition is fetched from the configured
database, or read from --current-file when supplied. Direction is always
old to new as given; versions are never reordered by timestamp.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffCurrentFile, "current-file", "", "read the live definition from a file instead of the database")
}

func runDiff(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	provider := buildProvider()

	manager := backup.NewManager(provider, logger)
	engine := diff.NewEngine(manager, logger)

	oldID, newID := args[0], args[1]

	var currentText string
	if newID == diff.CurrentVersionID {
		currentText, err = resolveCurrentText(manager, provider, logger, oldID)
		if err != nil {
			return err
		}
	}

	result, err := engine.Compare(oldID, newID, currentText)
	if err != nil {
		return err
	}

	fmt.Println(buildFormatter().FormatDiff(result))
	return nil
}

// resolveCurrentText obtains the live definition for the old backup's
// object, preferring --current-file over a database fetch
func resolveCurrentText(manager *backup.Manager, provider *config.Provider, logger *logging.Logger, oldID string) (string, error) {
	if diffCurrentFile != "" {
		data, err := os.ReadFile(diffCurrentFile)
		if err != nil {
			return "", fmt.Errorf("failed to read current definition file: %w", err)
		}
		return string(data), nil
	}

	entry := manager.GetBackupByID(oldID)
	if entry == nil {
		return "", fmt.Errorf("backup %s not found", oldID)
	}

	fetcher, err := database.NewFetcher(provider.Database(), logger)
	if err != nil {
		return "", err
	}
	defer fetcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), provider.Database().Timeout)
	defer cancel()

	return fetcher.FetchDefinition(ctx, entry.ObjectType, entry.SchemaName, entry.ObjectName)
}
