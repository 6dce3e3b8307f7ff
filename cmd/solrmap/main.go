package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/app"
	"github.com/kailas-cloud/solrmap/internal/config"
	logpkg "github.com/kailas-cloud/solrmap/internal/logger"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.FgCyan, color.Bold)
	dimColor  = color.New(color.Faint)
)

// cli carries global flags and the hooks tests replace.
type cli struct {
	env      string
	logLevel string
	load     func(env string) (config.Config, error)
	build    func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.App, error)
}

func newCLI() *cli {
	return &cli{load: config.Load, build: app.New}
}

func (c *cli) config() (config.Config, error) {
	cfg, err := c.load(c.env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", c.env, err)
	}
	return cfg, nil
}

// app loads the configuration and wires the services. Callers must Close it.
func (c *cli) app(ctx context.Context) (*app.App, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	logger, err := logpkg.NewLogger("cli", c.logLevel)
	if err != nil {
		return nil, err
	}
	return c.build(ctx, cfg, logger)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "solrmap",
		Short: "Manage the search index schema, data and queries",
		Long: "solrmap generates schema.xml from the declared model schemas, sends " +
			"commit/optimize/reindex requests and runs queries against the search index.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.env, "env", config.GetEnv(), "configuration environment (config/{env}.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	setupCommands(root, c)
	return root
}

func main() {
	if err := newRootCmd(newCLI()).Execute(); err != nil {
		errColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
