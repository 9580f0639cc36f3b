package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/gen"
	"github.com/dtoforge/dtoforge/compiler/gen/dto"
	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// flags shared by generate and watch.
type generateFlags struct {
	manifest    string
	out         string
	pkg         string
	kinds       []string
	concurrency int
	config      string
	verbose     bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "entities.json", "entity declaration manifest")
	cmd.Flags().StringVarP(&f.out, "out", "o", "./dto", "output directory")
	cmd.Flags().StringVar(&f.pkg, "package", "dto", "output package name")
	cmd.Flags().StringSliceVar(&f.kinds, "kinds", kindNames(operation.AllKinds()), "generator kinds to run")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", gen.DefaultConcurrency, "entities processed per batch")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "config file (YAML)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose logging")
}

// loadConfig merges the config file (if any) under the command-line flags
// and builds the run configuration.
func (f *generateFlags) loadConfig(cmd *cobra.Command, logger *zap.Logger) (*gen.Config, error) {
	v := viper.New()
	v.SetDefault("manifest", f.manifest)
	v.SetDefault("out", f.out)
	v.SetDefault("package", f.pkg)
	v.SetDefault("kinds", f.kinds)
	v.SetDefault("concurrency", f.concurrency)
	if f.config != "" {
		v.SetConfigFile(f.config)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	// Explicit flags win over file values.
	if cmd.Flags().Changed("manifest") {
		v.Set("manifest", f.manifest)
	}
	if cmd.Flags().Changed("out") {
		v.Set("out", f.out)
	}
	if cmd.Flags().Changed("package") {
		v.Set("package", f.pkg)
	}
	if cmd.Flags().Changed("kinds") {
		v.Set("kinds", f.kinds)
	}
	if cmd.Flags().Changed("concurrency") {
		v.Set("concurrency", f.concurrency)
	}
	f.manifest = v.GetString("manifest")

	return gen.NewConfig(
		gen.WithTarget(v.GetString("out")),
		gen.WithPackage(v.GetString("package")),
		gen.WithKinds(v.GetStringSlice("kinds")...),
		gen.WithConcurrency(v.GetInt("concurrency")),
		gen.WithLogger(logger),
	)
}

func generateCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation pass over the manifest",
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
			return runGenerate(cmd.Context(), cfg, flags.manifest, logger)
		},
	}
	flags.register(cmd)
	return cmd
}

// runGenerate executes one full run. On partial failure everything that
// succeeded is already on disk; the aggregate error becomes the non-zero
// exit summarizing every failed entity/kind pair.
func runGenerate(ctx context.Context, cfg *gen.Config, manifest string, logger *zap.Logger) error {
	m, err := load.LoadFile(manifest)
	if err != nil {
		return err
	}
	generators, err := dto.Generators(cfg)
	if err != nil {
		return err
	}
	runner, err := gen.NewRunner(cfg, m, generators, dto.Shared(cfg))
	if err != nil {
		return err
	}
	err = runner.Run(ctx)
	metrics := runner.Metrics()
	logger.Info("run complete",
		zap.Int("files", metrics.FilesWritten),
		zap.Int64("bytes", metrics.TotalBytes),
	)
	if dtoforge.IsAggregate(err) {
		// The full report is in the error; the exit code carries failure.
		return err
	}
	return err
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func kindNames(kinds []operation.Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
