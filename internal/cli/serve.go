package cli

import (
	"context"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cellgraph/pkg/buildinfo"
	"github.com/matzehuels/cellgraph/pkg/cache"
	"github.com/matzehuels/cellgraph/pkg/observability"
	"github.com/matzehuels/cellgraph/pkg/server"
)

// serveOptions holds options for the serve command.
type serveOptions struct {
	addr    string
	from    string
	metrics bool
	noCache bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a sheet over HTTP",
		Long: `Serve one sheet over a JSON HTTP API.

Cells are edited with PUT /cells/{ref} and read with GET /cells/{ref}.
Prometheus metrics are exposed at /metrics unless disabled in the config.`,
		Example: `  cellgraph serve
  cellgraph serve --addr :9090 --from budget.toml
  curl -X PUT localhost:8080/cells/B1 -d '{"text":"=A1*2"}'`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			if opts.addr == "" {
				opts.addr = c.Config.Serve.Addr
			}
			if !cmd.Flags().Changed("metrics") {
				opts.metrics = c.Config.Serve.Metrics
			}
			if !cmd.Flags().Changed("no-cache") {
				opts.noCache = !c.Config.Graph.Cache
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.from, "from", "", "script to apply before serving")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", true, "expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// runServe wires metrics, builds the sheet and serves it until ctx ends.
func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	var serverOpts []server.Option

	if opts.metrics {
		handler, shutdown, err := setupMetrics()
		if err != nil {
			return err
		}
		defer observability.Reset()
		defer shutdown(context.Background())
		serverOpts = append(serverOpts, server.WithMetrics(handler))
	}

	s, _, err := c.loadSheet(opts.from, false)
	if err != nil {
		return err
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	serverOpts = append(serverOpts,
		server.WithLogger(c.Logger),
		server.WithCache(cache.Instrumented(store, "graph")),
	)
	srv := server.New(s, serverOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, opts.addr)
	})
	g.Go(func() error {
		printSuccess("Serving sheet %s", StyleDim.Render(s.ID()))
		printKeyValue("Address", opts.addr)
		if opts.metrics {
			printKeyValue("Metrics", "/metrics")
		}
		<-gctx.Done()
		c.Logger.Info("shutting down", "version", buildinfo.Short())
		return nil
	})
	return g.Wait()
}

// setupMetrics registers OTel metric hooks backed by a Prometheus exporter
// and returns the /metrics handler. shutdown flushes the meter provider.
func setupMetrics() (http.Handler, func(context.Context) error, error) {
	reg := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	hooks, err := observability.NewMetricHooks(mp.Meter(appName, metric.WithInstrumentationVersion(buildinfo.Version)))
	if err != nil {
		return nil, nil, err
	}
	observability.SetSheetHooks(hooks)
	observability.SetCacheHooks(hooks)

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), mp.Shutdown, nil
}
