package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gear6io/msidump/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "msidump",
	Short: "Decode the relational tables inside Windows Installer packages",
	Long: `msidump opens a Windows Installer (MSI) package, decodes the relational
tables stored in its compound-document streams and extracts derived artifacts:
a JSON dump of every table, embedded custom action scripts, and the remaining
raw streams.

It includes the table decoder itself plus small helpers for listing the
container's streams and printing the table dump on its own.`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// setup resolves configuration and builds the logger shared by all subcommands
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case cfgFile != "":
		cfg, err = config.LoadConfig(cfgFile)
	default:
		if _, statErr := os.Stat(config.DefaultConfigFile); statErr == nil {
			cfg, err = config.LoadConfig(config.DefaultConfigFile)
		} else {
			cfg = config.LoadDefaultConfig()
		}
	}
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	return cfg, logger, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is msidump.yml when present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
