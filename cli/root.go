package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gobarber/config"
	"gobarber/utils"
)

// environment carries what every subcommand needs once the root command has
// loaded it.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (e *environment) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	e.cfg = cfg
	e.logger = logger
	return nil
}

func newRootCmd() *cobra.Command {
	env := &environment{}
	root := &cobra.Command{
		Use:           "gobarber",
		Short:         "GoBarber - appointment booking API",
		Long:          "GoBarber books hour-long appointments between clients and service providers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.logger != nil {
				_ = env.logger.Sync()
			}
		},
	}
	root.AddCommand(
		newServeCmd(env),
		newWorkerCmd(env),
		newMigrateCmd(env),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}
