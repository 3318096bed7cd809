package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ryanjpeterson/jimbos-show-log/internal/config"
	"github.com/ryanjpeterson/jimbos-show-log/internal/logging"
)

// runtime is the state shared by every subcommand once the root command has
// loaded configuration.
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("showlog failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:           "showlog",
		Short:         "Personal concert log: API server and archive tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logging.New(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			})
			logging.SetGlobalLogger(rt.logger)
			return nil
		},
	}

	cmd.AddCommand(
		newServeCmd(rt),
		newImportCmd(rt),
		newExportCmd(rt),
		newSeedAdminCmd(rt),
	)
	return cmd
}
