package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/internal/server"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/source"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		src     sourceFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [org.yaml]",
		Short: "Serve interactive charts over HTTP",
		Long: `Serve the session API used by browser org charts.

Each client opens a session, then forwards clicks, wheel events, drags and
container resizes; every call answers with the boxes, connectors and
viewport to paint. Sessions live in memory and expire when idle.

Charts are read from the file argument or from MongoDB (--mongo-uri);
without either, clients must post their own tree when opening a session.
Layouts are cached in Redis when ORGCHART_REDIS_URL is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, &src, args, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg Config, src *sourceFlags, args []string, noCache bool) error {
	var s source.Source
	if len(args) > 0 || src.mongoURI != "" || cfg.Source.MongoURI != "" {
		opened, closeSource, err := src.open(ctx, cfg.Source, args)
		if err != nil {
			return err
		}
		defer closeSource()
		s = opened
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	counters := &observability.Counters{}
	observability.SetAll(observability.Multi{observability.NewLogHooks(c.Logger), counters})

	srv := server.New(server.Config{
		Runner:   runner,
		Source:   s,
		Store:    session.NewStore(cfg.Server.SessionTTL.Duration),
		Chart:    cfg.Chart(),
		Counters: counters,
		Logger:   c.Logger,
	})

	if s != nil {
		c.Logger.Info("serving organization", "source", s.Name())
	} else {
		c.Logger.Info("no source configured, clients post their own trees")
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
