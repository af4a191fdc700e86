package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safety-index/internal/config"
)

var cfg *config.Config

// Global flags. Each one overrides its config key when set.
var rootFlags struct {
	api      string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:          "safety-index",
	Short:        "Workplace safety data browser",
	Long:         "Serves and searches OSHA injury and illness filings by company, establishment and NAICS industry.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyRootFlags(c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.L().Debug("config loaded",
			zap.String("store_driver", cfg.Store.Driver),
			zap.Bool("remote", cfg.Client.BaseURL != ""),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyRootFlags copies the global flags that were given onto c.
func applyRootFlags(c *config.Config) {
	if rootFlags.api != "" {
		c.Client.BaseURL = rootFlags.api
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.api, "api", "", "API base URL; search and naics query the server instead of the store")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	// Serving and data management run against the store; browsing commands
	// can also go through --api.
	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd)
	rootCmd.AddCommand(searchCmd, naicsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
