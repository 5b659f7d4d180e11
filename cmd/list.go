package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"schema-vault/internal/backup"
)

var (
	listType  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list [object-name]",
	Short: "List recorded backups, newest first",
	Long: `List shows the backup log. An optional object name filters to one
object (case-insensitive exact match); --type filters by object type,
tolerating differing type-naming granularity on either side.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listType, "type", "", "filter by object type")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum entries to show (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}

	filter := backup.ListFilter{ObjectType: listType, Limit: listLimit}
	if len(args) == 1 {
		filter.ObjectName = args[0]
	}

	manager := backup.NewManager(buildProvider(), logger)
	entries := manager.ListBackups(filter)

	fmt.Println(buildFormatter().FormatBackupList(entries))
	return nil
}
