package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schema-vault/internal/config"
	"schema-vault/internal/display"
	"schema-vault/internal/logging"
)

var cfgFile string

// CLI flag variables
var (
	verbose bool
	quiet   bool
	noColor bool
	logFile string
)

// version information (set by main via SetVersionInfo)
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "schema-vault",
	Short: "Versioned backup store for database object definitions",
	Long: `Schema Vault keeps a versioned history of schema-level database object
definitions (procedures, functions, views, triggers, tables). Definitions are
captured before destructive operations and can be listed, retrieved, compared
line by line, and cleaned up by age or per-object retention caps.

Examples:
  # Capture a definition before altering it
  schema-vault capture --name usp_GetOrders --type PROCEDURE --operation ALTER --file proc.sql

  # List the five most recent backups of an object
  schema-vault list usp_GetOrders --limit 5

  # Compare a backup against the live definition
  schema-vault diff backup-20240101-120000-abcd1234 current

  # Remove backups older than 90 days
  schema-vault cleanup --days 90 --yes

  # Export everything to a compressed archive
  schema-vault export --output backups.tar.gz`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo records build metadata for the version template
func SetVersionInfo(version, commit string) {
	buildVersion = version
	buildCommit = commit
	rootCmd.Version = fmt.Sprintf("%s (%s)", buildVersion, buildCommit)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.schema-vault.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file as well as stderr")

	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".schema-vault")
	}

	config.SetDefaults(viper.GetViper())
	config.SetupEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// buildLogger creates the logger for command execution from global flags
func buildLogger() (*logging.Logger, error) {
	level := logging.LogLevelNormal
	if verbose {
		level = logging.LogLevelVerbose
	}
	if quiet {
		level = logging.LogLevelQuiet
	}
	if verbose && quiet {
		return nil, fmt.Errorf("--verbose and --quiet flags are mutually exclusive")
	}

	return logging.NewLogger(logging.Config{
		Level:   level,
		Format:  "text",
		LogFile: viper.GetString("log_file"),
	})
}

// buildProvider creates the configuration provider over the global viper
func buildProvider() *config.Provider {
	return config.NewProvider(viper.GetViper())
}

// buildFormatter creates the terminal formatter honoring --no-color
func buildFormatter() *display.Formatter {
	return display.NewFormatter(display.NewColorSystem(noColor))
}
