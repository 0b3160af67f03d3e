// Composite edge filter command line
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"composite-filter/internal/config"
	imageio "composite-filter/internal/io"
	"composite-filter/internal/store"
)

const (
	AppName    = "compositefilter"
	AppID      = "com.compositefilter.viewer"
	AppVersion = "1.0.0"
)

// app carries the state shared by every subcommand
type app struct {
	cfg    config.Config
	logger *logrus.Logger
	loader *imageio.ImageLoader
	store  *store.Store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		configPath string
		dbPath     string
		debugMode  bool
	)

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Gradient magnitude, threshold and rescale in one filter",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database = dbPath
			}
			if debugMode {
				cfg.LogLevel = "debug"
				cfg.LogFormat = "text"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = initLogger(cfg)
			a.loader = imageio.NewImageLoader(a.logger)

			a.logger.WithFields(logrus.Fields{
				"version":    AppVersion,
				"command":    cmd.Name(),
				"debug_mode": debugMode,
			}).Debug("Starting composite filter")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database recording run history")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose logging")

	root.AddCommand(
		newRunCmd(a),
		newBatchCmd(a),
		newApplyCmd(a),
		newAlgorithmsCmd(a),
		newDescribeCmd(a),
		newHistoryCmd(a),
		newViewCmd(a),
	)

	return root
}

// initLogger initializes the logger with appropriate level and format
func initLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// openStore opens the history database once, if one is configured
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil || a.cfg.Database == "" {
		return a.store, nil
	}
	s, err := store.Open(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}
