package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgraph/pkg/cache"
	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/render"
)

// graphOptions holds options for the graph command.
type graphOptions struct {
	format  string
	output  string
	values  bool
	noCache bool
	strict  bool
}

// graphCommand creates the graph command for exporting the dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph [script.toml]",
		Short: "Render the dependency graph of a sheet",
		Long: `Apply an edit script and render the resulting dependency graph.

Each materialised cell is a node; an edge points from a formula cell to each
cell it reads. Rendered SVG and PNG output is cached by graph content.`,
		Example: `  cellgraph graph budget.toml
  cellgraph graph budget.toml --format png -o budget.png
  cellgraph graph budget.toml --format dot`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = c.Config.Graph.Format
			}
			if !cmd.Flags().Changed("no-cache") {
				opts.noCache = !c.Config.Graph.Cache
			}
			return cgerrors.ValidateFormat(opts.format, render.Formats...)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <script>.<format>)")
	cmd.Flags().BoolVar(&opts.values, "values", false, "label nodes with values instead of texts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "stop at the first rejected edit")

	return cmd
}

// runGraph builds the sheet, renders its graph and writes the artifact.
func (c *CLI) runGraph(ctx context.Context, path string, opts graphOptions) error {
	ctx = withLogger(ctx, c.Logger)

	s, _, err := c.loadSheet(path, opts.strict)
	if err != nil {
		return err
	}
	dot := render.ToDOT(s, render.Options{Values: opts.values})

	store, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	data, cached, err := renderCached(ctx, cache.Instrumented(store, "graph"), dot, opts.format)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	if cached {
		printSuccess("Graph rendered %s", StyleDim.Render("(cached)"))
	} else {
		printSuccess("Graph rendered")
	}
	printFile(out)
	return nil
}

// renderCached renders dot in format, reading and filling store.
func renderCached(ctx context.Context, store cache.Cache, dot, format string) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)
	key := cache.ArtifactKey(dot, cache.ArtifactKeyOpts{Format: format})

	if data, ok, err := store.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if ok {
		logger.Debug("render cache hit", "format", format)
		return data, true, nil
	}

	t := startTimer(logger)
	data, err := render.Render(ctx, dot, format)
	if err != nil {
		return nil, false, err
	}
	t.done("graph rendered", "format", format, "bytes", len(data))

	if err := store.Set(ctx, key, data, 0); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}
