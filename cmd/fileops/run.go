package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Hari-N-2005/FileOps/internal/activity"
	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/engine"
	"github.com/Hari-N-2005/FileOps/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the automation engine until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log := logging.New(cfg.Logging)
		sink := activity.NewSink(log)

		eng, err := engine.New(cfg, sink, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Graceful shutdown
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info().Msg("shutting down...")
			cancel()
		}()

		if err := eng.Start(ctx); err != nil {
			return err
		}

		// Hot reload on SIGHUP
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGHUP)

			for range sigCh {
				newCfg, err := config.Load(configPath)
				if err != nil {
					log.Error().Err(err).Msg("config reload failed")
					continue
				}
				eng.Reload(newCfg)
			}
		}()

		<-ctx.Done()
		eng.Stop()
		log.Info().Msg("exit complete")
		return nil
	},
}
