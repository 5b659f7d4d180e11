package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schema-vault/internal/backup"
)

var (
	showContent    bool
	showDefinition bool
)

var showCmd = &cobra.Command{
	Use:   "show <backup-id>",
	Short: "Show one backup entry, its stored content, or its definition",
	Long: `Show prints the metadata of one backup entry. With --content the full
stored blob is printed (header included, byte-order marker stripped);
with --definition only the captured definition text is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showContent, "content", false, "print the stored content file")
	showCmd.Flags().BoolVar(&showDefinition, "definition", false, "print only the captured definition")
	showCmd.MarkFlagsMutuallyExclusive("content", "definition")
}

func runShow(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}

	manager := backup.NewManager(buildProvider(), logger)
	id := args[0]

	if showContent || showDefinition {
		content, err := manager.GetBackupContent(id)
		if err != nil {
			return err
		}
		if showDefinition {
			content = manager.ExtractDefinition(content)
		}
		fmt.Print(content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}

	entry := manager.GetBackupByID(id)
	if entry == nil {
		return fmt.Errorf("backup %s not found", id)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entry)
}
