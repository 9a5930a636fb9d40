// Package main implements the patterns CLI: infers filename patterns from
// sample image names, validates pattern configurations and manages presets
// and custom tokens.
//
// Rule 11: config.yaml передаётся через --config, иначе используются дефолты.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/config"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

var (
	// configPath — путь к config.yaml
	configPath string
	// logDir — директория лог-файла; пусто — без логов (tui пишет в cwd)
	logDir     string
	// version information
	version = "dev"

	appCfg  *config.AppConfig
	nowFunc = time.Now
)

func main() {
	// Rule 11: SIGINT/SIGTERM отменяют контекст всех команд.
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	err := rootCmd.ExecuteContext(ctx)
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Infer and validate filename patterns for vehicle image sets",
	Long: `patterns analyzes sample image filenames, suggests the role of every
filename segment and generates the group and role regular expressions used
to split the images into vehicle groups (FRONT, REAR, OVERVIEW).

Examples:
  # Analyze a local directory
  patterns analyze --dir ./photos

  # Generate a configuration and save it as a preset
  patterns generate --dir ./photos --rule FRONT:CONTAINS:front --preset-save daily

  # Run the interactive wizard
  patterns tui --dir ./photos`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		appCfg = cfg

		dir := logDir
		if dir == "" {
			dir = cfg.App.LogDir
		}
		if dir == "" {
			return nil
		}
		path, err := utils.InitLoggerIn(dir)
		if err != nil {
			return err
		}
		utils.Info("Command started", "command", cmd.CommandPath(), "log", path)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for the log file")
}

// cfg возвращает загруженную конфигурацию (Default до PersistentPreRunE в тестах).
func cfg() *config.AppConfig {
	if appCfg == nil {
		appCfg = config.Default()
	}
	return appCfg
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
