// Package cmd provides the command-line interface for folio.
//
// Configuration System:
//
//	Values are resolved with this precedence:
//	1. Command-line flags (--config, --endpoint, --port, etc.) - highest priority
//	2. FOLIO_<SECTION>_<OPTION> environment variables, also read from .env
//	3. The file named by --config or FOLIO_CONFIG_FILE
//	4. .folio.yml in the current directory - lowest priority
//
// Environment Variables:
//
//	FOLIO_CONFIG_FILE: Path to custom configuration file
//	FOLIO_CONTACT_ENDPOINT: Where contact submissions are posted
//	FOLIO_SERVER_PORT, FOLIO_SERVER_HOST: Preview server address
//	FOLIO_THEME_FILE: Theme preference file
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A personal portfolio with a working contact form",
	Long: `Folio serves a portfolio page and runs its contact form.

Quick Start:
  folio serve                      Serve the portfolio on localhost:8080
  folio contact --name Ada \
    --email ada@example.com \
    --message "Hello"              Send one message from the terminal
  folio projects --filter web      List the projects a filter shows
  folio theme toggle               Flip the stored light/dark preference`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .folio.yml, can also use FOLIO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig loads .env, picks the config file and binds FOLIO_ variables.
// A missing .env or config file is not an error.
func initConfig() {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.DefaultConfigName)
	}

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		Component: "folio",
	})
	return cfg, logger, nil
}
