package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"schema-vault/internal/config"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage schema-vault configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Init writes a YAML configuration file populated with defaults. It
refuses to overwrite an existing file.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVarP(&configInitPath, "output", "o", ".schema-vault.yaml", "config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefaultConfig(configInitPath); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", configInitPath)
	return nil
}
