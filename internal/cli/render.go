package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		src        sourceFlags
		flags      chartFlags
	)
	opts := pipeline.Options{VizType: pipeline.VizChart, Scale: 2}

	cmd := &cobra.Command{
		Use:   "render [org.yaml]",
		Short: "Render an organization chart to SVG, DOT, PNG, PDF or JSON",
		Long: `Render an organization chart.

Two renderers are available:
  chart     boxes and orthogonal connectors drawn directly (default)
  nodelink  a Graphviz graph with every node pinned to its layout position

Without --fit the drawing is sized to the chart. With --fit it is drawn at
--width x --height with the chart scaled down (never up) and centered
horizontally below an 80px top band, the same view an interactive chart
opens with.

PNG and PDF output need rsvg-convert on PATH.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateVizType(opts.VizType); err != nil {
				return err
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg, &opts)
			return c.runRender(cmd.Context(), cfg, &src, args, opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "renderer: chart (default), nodelink")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include titles, holders and metadata (nodelink)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG pixel density")
	src.register(cmd)
	flags.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("type", completeVizTypes)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cfg Config, src *sourceFlags, args []string, opts pipeline.Options, output string, noCache bool) error {
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
	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spin.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.StopWithError(c.stdout(), "Render failed")
		return err
	}
	spin.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.step("Rendered chart", "formats", strings.Join(opts.Formats, ","), "boxes", res.Stats.BoxCount)

	input := s.Name()
	if len(args) > 0 {
		input = args[0]
	}
	paths, err := writeArtifacts(res.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}
	prog.step("Wrote artifacts", "files", len(paths))

	w := c.stdout()
	printSuccess(w, "Render complete (%s)", opts.VizType)
	for _, p := range paths {
		printFile(w, p)
	}
	printStats(w, res.Stats.NodeCount, res.Stats.BoxCount, res.CacheInfo.RenderHit)
	if len(res.Orphans) > 0 {
		printWarning(w, "%d positions are not connected to the root and were left out", len(res.Orphans))
	}
	return nil
}

// writeArtifacts writes each format to its own file and returns the paths
// in format order. A single format is written to output verbatim when it
// is given.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath strips a known format extension from output, or the extension
// of input when no output is given. Source names such as
// "mongo:orgchart.positions" become "orgchart".
func basePath(output, input string) string {
	if output == "" {
		if i := strings.LastIndexByte(input, ':'); i >= 0 && !strings.ContainsAny(input[i:], `/\`) {
			input = strings.SplitN(input[i+1:], ".", 2)[0]
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}
