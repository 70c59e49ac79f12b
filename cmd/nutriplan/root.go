package nutriplan

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saadjs/nutriplan/internal/config"
	"github.com/saadjs/nutriplan/internal/logging"
)

var (
	configPath  string
	dbPath      string
	storageKind string
	logLevel    string
)

// Loaded by the root PersistentPreRunE for every command.
var (
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nutriplan",
	Short: "nutriplan logs meals and packaged foods and tracks daily nutrition",
	Long: `nutriplan is a local-first nutrition journal. Browse recipes from TheMealDB,
look up packaged foods on OpenFoodFacts, log what you eat, and follow today's
totals and the last seven days from your terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		l, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $NUTRIPLAN_CONFIG or user config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&storageKind, "storage", "", "Storage backend: sqlite or file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := config.ResolvePath(configPath)
	if err != nil {
		return config.Config{}, err
	}
	c, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("storage") {
		c.Storage = strings.ToLower(strings.TrimSpace(storageKind))
	}
	if flags.Changed("log-level") {
		c.LogLevel = strings.ToLower(strings.TrimSpace(logLevel))
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}
