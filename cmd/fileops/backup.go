package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Hari-N-2005/FileOps/internal/activity"
	"github.com/Hari-N-2005/FileOps/internal/backup"
	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/fsops"
	"github.com/Hari-N-2005/FileOps/internal/logging"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run every enabled backup target once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		log := logging.New(cfg.Logging)
		sink := activity.NewSink(log)
		eng := backup.New(fsops.New(), sink, log)

		ctx := context.Background()
		var firstErr error
		for _, target := range cfg.BackupTargets {
			if !target.Enabled {
				continue
			}
			if _, err := eng.Run(ctx, target); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	},
}
