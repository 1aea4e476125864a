// cmd/document.go
package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gewnthar/datasetdoc/database"
	"github.com/gewnthar/datasetdoc/scraper"
	"github.com/gewnthar/datasetdoc/services"
	"github.com/gewnthar/datasetdoc/storage"
)

type documentFlags struct {
	sitemapList  string
	downloadList string
	output       string
	delay        time.Duration
	metricsAddr  string
}

func (a *app) documentCommand() *cobra.Command {
	var f documentFlags
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Reconcile homepages with downloads and write the documentation report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.applyDocumentFlags(cmd, f)
			return a.runDocument(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&f.sitemapList, "sitemap-list", "", "homepage list, one sitemap_url,homepage_url per line")
	cmd.Flags().StringVar(&f.downloadList, "download-list", "", "download list, one downloaded filename per line")
	cmd.Flags().StringVar(&f.output, "output", "", "report file to write")
	cmd.Flags().DurationVar(&f.delay, "delay", services.DefaultDelay, "pause after each homepage entry")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	return cmd
}

// applyDocumentFlags overrides config values with the flags the user set.
func (a *app) applyDocumentFlags(cmd *cobra.Command, f documentFlags) {
	flags := cmd.Flags()
	if flags.Changed("sitemap-list") {
		a.cfg.Inputs.SitemapList = f.sitemapList
	}
	if flags.Changed("download-list") {
		a.cfg.Inputs.DownloadList = f.downloadList
	}
	if flags.Changed("output") {
		a.cfg.Output.Report = f.output
	}
	if flags.Changed("delay") {
		a.cfg.Throttle.Delay = f.delay
	}
	if flags.Changed("metrics-addr") {
		a.cfg.Metrics.Addr = f.metricsAddr
	}
}

func (a *app) runDocument(ctx context.Context) error {
	cfg := a.cfg
	svc := &services.DocumentationService{
		Catalog: scraper.NewSocrataClient(cfg.Catalog.BaseURL, cfg.Catalog.AppToken, cfg.Catalog.Timeout),
		Archive: scraper.NewWaybackClient(cfg.Archive.TimemapURL, cfg.Archive.Timeout),
		Delay:   cfg.Throttle.Delay,
		Log:     a.log,
	}

	if cfg.Metrics.Addr != "" {
		srv := a.startMetricsServer(cfg.Metrics.Addr)
		defer srv.Shutdown(context.WithoutCancel(ctx))
	}

	if cfg.Database.Enabled {
		store, err := database.Open(ctx, cfg.Database, a.log)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		svc.Store = store
	}

	if cfg.Storage.Enabled {
		pub, err := storage.NewReportPublisher(cfg.Storage, a.log)
		if err != nil {
			return err
		}
		svc.Publisher = pub
	}

	run, err := svc.Run(ctx, services.DocumentationInput{
		SitemapListPath:  cfg.Inputs.SitemapList,
		DownloadListPath: cfg.Inputs.DownloadList,
		ReportPath:       cfg.Output.Report,
	})
	a.log.Info().
		Int("homepage_lines", run.HomepageLines).
		Int("skipped_homepages", run.SkippedHomepages).
		Int("matched_downloads", run.MatchedDownloads).
		Int("leftover_downloads", run.LeftoverDownloads).
		Int("rows_written", run.RowsWritten).
		Int64("run_id", run.ID).
		Str("published_key", run.PublishedObjectKey).
		Bool("interrupted", run.Interrupted).
		Msg("documentation run finished")
	return err
}

func (a *app) startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		a.log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}
