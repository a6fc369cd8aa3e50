// Package commands implements the threadprio CLI.
package commands

import (
	"github.com/Swind/go-thread/config"
	"github.com/Swind/go-thread/core"
	"github.com/Swind/go-thread/errors"
	"github.com/Swind/go-thread/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds state resolved by the root command before any subcommand runs.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the threadprio command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "threadprio",
		Short: "Inspect and exercise goroutine thread priorities",
		Long: `threadprio - goroutine-backed threads with an inherited priority.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (THREADPRIO_* prefix)
3. Config file (--config, or ./threadprio.toml)
4. Default values

Examples:
  threadprio demo                      # Run the priority scenarios
  threadprio demo --output yaml        # Same, as YAML
  threadprio set --priority 3          # Assign a priority to a finished thread
  threadprio set --priority high       # Rejected: not an integer
  threadprio config init               # Write ./threadprio.toml
  threadprio metrics --duration 30s    # Serve /metrics while threads run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./threadprio.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newDemoCmd(a),
		newSetCmd(a),
		newConfigCmd(a),
		newMetricsCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newRuntime creates a runtime from the loaded configuration.
func (a *app) newRuntime(metrics core.Metrics) (*core.Runtime, error) {
	rc := a.cfg.RuntimeConfig()
	rc.Logger = core.NewZapLogger(a.logger)
	rc.Metrics = metrics
	return core.NewRuntime(rc)
}
