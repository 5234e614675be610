package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		src       sourceFlags
		expandAll bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "view [org.yaml]",
		Short: "Explore a chart in the terminal",
		Long: `Open an interactive chart in the terminal.

Click a box (or select it with tab and press enter) to show or hide its
reports. Drag the background or use the arrow keys to pan, scroll or press
+/- to zoom, f to fit the chart, e to expand everything and c to collapse
back to the first level.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), cfg, &src, args, expandAll, noCache)
		},
	}

	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "start with every branch expanded")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, cfg Config, src *sourceFlags, args []string, expandAll, noCache bool) error {
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

	res, _, err := runner.FetchWithCacheInfo(ctx, s, src.key(), false)
	if err != nil {
		return err
	}
	view := chart.New(cfg.Chart(), chart.WithLayouter(runner))
	if err := view.Load(ctx, res.Root); err != nil {
		return err
	}
	if expandAll {
		if err := view.ExpandAll(ctx); err != nil {
			return err
		}
	}

	// Log lines would tear the alternate screen.
	level := c.Logger.GetLevel()
	c.SetLogLevel(log.ErrorLevel)
	observability.Reset()
	defer c.SetLogLevel(level)

	p := tea.NewProgram(newChartModel(ctx, view),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stdout),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	if len(res.Orphans) > 0 {
		printWarning(c.stdout(), "%d positions are not connected to the root and were left out", len(res.Orphans))
	}
	return nil
}
