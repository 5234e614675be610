package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/pipeline"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// chartFlags are the geometry, expansion and fit flags shared by layout
// and render. Geometry flags override orgchart.toml only when given.
type chartFlags struct {
	expand    string
	expandAll bool
	fit       bool
	width     float64
	height    float64

	nodeWidth    float64
	nodeHeight   float64
	gap          float64
	levelSpacing float64

	noCache bool
	refresh bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.expand, "expand", "", "expand these position ids (comma-separated)")
	cmd.Flags().BoolVar(&f.expandAll, "expand-all", false, "expand every branch")
	cmd.Flags().BoolVar(&f.fit, "fit", false, "fit the chart into --width x --height")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "container width for --fit")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "container height for --fit")

	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "box width")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "box height")
	cmd.Flags().Float64Var(&f.gap, "gap", 0, "horizontal gap between sibling subtrees")
	cmd.Flags().Float64Var(&f.levelSpacing, "level-spacing", 0, "vertical distance between levels")

	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-read the source even if cached")
}

// apply copies the flags that were set on cmd into cfg and opts.
func (f *chartFlags) apply(cmd *cobra.Command, cfg *Config, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("node-width") {
		cfg.Layout.NodeWidth = f.nodeWidth
	}
	if changed("node-height") {
		cfg.Layout.NodeHeight = f.nodeHeight
	}
	if changed("gap") {
		cfg.Layout.Gap = f.gap
	}
	if changed("level-spacing") {
		cfg.Layout.LevelSpacing = f.levelSpacing
	}

	opts.Layout = cfg.Layout
	opts.Viewport = cfg.Viewport
	opts.ExpandAll = f.expandAll
	opts.Expand = parseList(f.expand)
	opts.Fit = f.fit
	opts.Container = viewport.Size{Width: f.width, Height: f.height}
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		src    sourceFlags
		flags  chartFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [org.yaml]",
		Short: "Compute box and connector positions",
		Long: `Compute box and connector positions for an organization.

The input is a nested tree or a flat list of positions in JSON, YAML or TOML,
or a MongoDB positions collection (--mongo-uri). Only the root is expanded
unless --expand or --expand-all is given; the root's direct reports are
always shown.

The result is a JSON document with one box per visible position, one
connector per visible reporting line and the viewport used (zoom 1 at the
origin, or the fitted viewport with --fit).

Layouts are cached locally (or in Redis with ORGCHART_REDIS_URL).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			opts := pipeline.Options{VizType: pipeline.VizChart, Formats: []string{pipeline.FormatJSON}}
			flags.apply(cmd, &cfg, &opts)
			return c.runLayout(cmd.Context(), cfg, &src, args, opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, stdout for MongoDB)")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cfg Config, src *sourceFlags, args []string, opts pipeline.Options, output string, noCache bool) error {
	s, closeSource, err := src.open(ctx, cfg.Source, args)
	if err != nil {
		return err
	}
	defer closeSource()

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Source = s
	opts.Key = src.key()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.step("Fetched and laid out", "cached", res.CacheInfo.LayoutHit)
	prog.done("Laid out organization", "positions", res.Stats.NodeCount, "boxes", res.Stats.BoxCount)

	data := res.Artifacts[pipeline.FormatJSON]
	outputPath := output
	if outputPath == "" && len(args) > 0 {
		outputPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".layout.json"
	}
	if outputPath == "" || outputPath == "-" {
		_, err := c.stdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	w := c.stdout()
	printSuccess(w, "Layout complete")
	printFile(w, outputPath)
	printStats(w, res.Stats.NodeCount, res.Stats.BoxCount, res.CacheInfo.LayoutHit)
	if len(res.Orphans) > 0 {
		printWarning(w, "%d positions are not connected to the root and were left out", len(res.Orphans))
	}
	if len(args) > 0 {
		printNextStep(w, "Render", appName+" render "+args[0])
	}
	return nil
}
