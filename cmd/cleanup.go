package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"schema-vault/internal/backup"
)

var (
	cleanupDays int
	cleanupYes  bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete backups older than a number of days",
	Long: `Cleanup deletes every backup strictly older than now minus --days,
content file and log entry together. Entries whose file cannot be deleted
are retained in the log. Entries exactly on the boundary are kept.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 90, "age threshold in days")
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "skip the confirmation prompt")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}

	if !cleanupYes {
		confirmed, err := confirmCleanup(cleanupDays)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cleanup cancelled.")
			return nil
		}
	}

	manager := backup.NewManager(buildProvider(), logger)
	removed, err := manager.CleanupByAge(cleanupDays)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d backup(s) older than %d days.\n", removed, cleanupDays)
	return nil
}

// confirmCleanup prompts for confirmation. A non-terminal stdin without
// --yes is treated as a refusal rather than hanging a pipeline.
func confirmCleanup(days int) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; use --yes to confirm")
	}

	fmt.Printf("Delete all backups older than %d days? [y/N]: ", days)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
