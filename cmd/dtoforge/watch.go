package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dtoforge/dtoforge/compiler/gen"
)

// snapshotName is the declaration snapshot kept in the output directory
// so a restarted watch session can skip regeneration for unchanged
// declarations.
const snapshotName = ".manifest.snap"

func watchCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the manifest changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			cfg, err := flags.loadConfig(cmd, logger)
			if err != nil {
				return err
			}

			run := func(ctx context.Context) error {
				return runGenerate(ctx, cfg, flags.manifest, logger)
			}
			// One initial pass before waiting for changes. Partial failures
			// are reported and watching goes on; the next save gets another
			// full attempt.
			if err := run(cmd.Context()); err != nil {
				logger.Warn("generation finished with errors", zap.Error(err))
			}
			return gen.NewWatcher(flags.manifest, run, logger).
				WithSnapshot(filepath.Join(cfg.Target, snapshotName)).
				Watch(cmd.Context())
		},
	}
	flags.register(cmd)
	return cmd
}
