// Package cli implements the orgchart command-line interface.
//
// # Commands
//
//   - layout: compute box and connector positions and write them as JSON
//   - render: draw a chart to SVG, DOT, PNG, PDF or JSON
//   - view: explore a chart interactively in the terminal
//   - serve: run the HTTP API backing browser charts
//   - cache: inspect and clear the layout cache
//
// Every command reads an organization from a file argument or, with
// --mongo-uri, from a MongoDB positions collection. Geometry and zoom
// parameters come from orgchart.toml (see --config) and may be overridden
// per command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/buildinfo"
	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/pipeline"
	"github.com/matzehuels/orgchart/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "orgchart"

// exitInterrupted is the shell convention for a run stopped by SIGINT.
const exitInterrupted = 130

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	logFlags   logFlags
	out        io.Writer
}

// New creates a CLI logging to w at the given level. Command output goes
// to stdout. The --verbose, --quiet and --log-format flags adjust the
// logger before any command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logFlags: logFlags{format: "text"}}
}

// Execute runs the command line in args and returns the process exit
// code. Errors are printed to errOut; a canceled context exits quietly
// with 130.
func (c *CLI) Execute(ctx context.Context, args []string, errOut io.Writer) int {
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	fmt.Fprintln(errOut, err)
	return 1
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Orgchart lays out and explores hierarchical organization charts",
		Long:          `Orgchart computes tidy top-down layouts for organization trees, renders them to SVG, PDF and PNG, and serves interactive charts with collapsible branches, zoom and pan.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.logFlags.apply(c.Logger); err != nil {
				return err
			}
			c.out = cmd.OutOrStdout()
			observability.SetAll(observability.NewLogHooks(c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./orgchart.toml when present)")
	c.logFlags.register(root)

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// stdout returns the writer for command results.
func (c *CLI) stdout() io.Writer {
	if c.out == nil {
		return io.Discard
	}
	return c.out
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, cfg Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, cfg.Cache.keyer(), c.Logger), nil
}

// newCache picks the cache backend. A Redis URL wins over the file cache;
// an unusable cache directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache directory unusable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Source selection
// =============================================================================

// sourceFlags selects where positions are read from.
type sourceFlags struct {
	mongoURI   string
	database   string
	collection string
	scope      string
	period     string
	focus      string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.ValidArgsFunction = completeOrgFile
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "read positions from MongoDB (env ORGCHART_MONGO_URI)")
	cmd.Flags().StringVar(&f.database, "mongo-db", "", "MongoDB database (default: "+source.DefaultMongoDatabase+")")
	cmd.Flags().StringVar(&f.collection, "mongo-collection", "", "MongoDB collection (default: "+source.DefaultMongoCollection+")")
	cmd.Flags().StringVar(&f.scope, "scope", "", "only positions in this scope")
	cmd.Flags().StringVar(&f.period, "period", "", "only positions valid in this period")
	cmd.Flags().StringVar(&f.focus, "focus", "", "root the chart at this position id")
}

func (f *sourceFlags) key() source.Key {
	return source.Key{Scope: f.scope, Period: f.period, Focus: f.focus}
}

// open returns the source for args and a function releasing it. A file
// argument wins over MongoDB.
func (f *sourceFlags) open(ctx context.Context, cfg SourceConfig, args []string) (source.Source, func(), error) {
	if len(args) > 0 {
		return source.NewFileSource(args[0]), func() {}, nil
	}
	mc := cfg.mongoConfig()
	if f.mongoURI != "" {
		mc.URI = f.mongoURI
	}
	if f.database != "" {
		mc.Database = f.database
	}
	if f.collection != "" {
		mc.Collection = f.collection
	}
	if mc.URI == "" {
		return nil, nil, fmt.Errorf("no input: pass a file or --mongo-uri")
	}
	ms, err := source.NewMongoSource(ctx, mc)
	if err != nil {
		return nil, nil, err
	}
	return ms, func() { _ = ms.Close(context.Background()) }, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return parseList(s)
}

// parseList splits a comma-separated flag, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
