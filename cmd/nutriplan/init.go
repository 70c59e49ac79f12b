package nutriplan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/app"
	"github.com/saadjs/nutriplan/internal/config"
	"github.com/saadjs/nutriplan/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local nutriplan storage and config",
	RunE: func(cmd *cobra.Command, args []string) error {
		var location string
		switch cfg.Storage {
		case config.StorageFile:
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			location = cfg.DataDir
		default:
			if err := app.EnsureDBDir(cfg.DBPath); err != nil {
				return err
			}
			sqldb, err := db.OpenMigrated(cfg.DBPath)
			if err != nil {
				return err
			}
			_ = sqldb.Close()
			location = cfg.DBPath
		}

		path, err := config.ResolvePath(configPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutriplan %s storage at %s\n", cfg.Storage, location)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
