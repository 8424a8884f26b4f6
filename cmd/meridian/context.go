package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"meridian/internal/config"
	"meridian/internal/ledger"
	"meridian/internal/pipeline"
	"meridian/internal/services/delivery"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// withStore opens the run ledger under the configured work directory for the
// duration of fn.
func (c *commandContext) withStore(fn func(*ledger.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg.Paths.WorkDir)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// buildPipeline assembles a pipeline with the optional collaborators the
// configuration enables. The delivery uploader is wired here because its AWS
// credential chain is process-level state the pipeline should not own.
func buildPipeline(ctx context.Context, cfg *config.Config, store *ledger.Store, logger *slog.Logger) (*pipeline.Pipeline, error) {
	var opts []pipeline.Option
	if cfg.Delivery.Enabled {
		uploader, err := delivery.New(ctx, cfg.Delivery.Bucket, cfg.Delivery.Prefix, cfg.Delivery.Region,
			delivery.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("configure delivery: %w", err)
		}
		opts = append(opts, pipeline.WithUploader(uploader))
	}
	return pipeline.New(cfg, store, logger, opts...), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
