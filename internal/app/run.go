package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/agbru/tabulate/internal/cli"
	"github.com/agbru/tabulate/internal/client"
	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/fetch"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/metrics"
	"github.com/agbru/tabulate/internal/orchestration"
	"github.com/agbru/tabulate/internal/request"
	"github.com/agbru/tabulate/internal/server"
	"github.com/agbru/tabulate/internal/tabulate"
)

// uploadID identifies the single upload a process registers.
const uploadID = 1

// engine is the wired tabulation stack of one process.
type engine struct {
	repo      *metadata.Repository
	tabulator *tabulate.Service
}

// buildEngine loads the catalog and the optional upload, then wires the
// upstream clients, the fetchers, the orchestrator and the tabulation
// service.
func (a *Application) buildEngine(reg prometheus.Registerer, reporter orchestration.ProgressReporter, progressOut io.Writer) (*engine, error) {
	cfg := a.Config
	repo, err := metadata.LoadFile(cfg.Metadata)
	if err != nil {
		return nil, err
	}

	uploads := &fetch.MemoryUploads{}
	if cfg.Upload != "" {
		if err := registerUpload(repo, uploads, cfg.Upload, cfg.UploadGeoType); err != nil {
			return nil, err
		}
	}

	collectors := metrics.NewCollectors(reg)
	clientOpts := []client.Option{client.WithMetrics(collectors), client.WithLogger(a.logger)}
	if a.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(a.HTTPClient))
	}
	if cfg.UpstreamRPS > 0 {
		// One budget for both upstreams.
		clientOpts = append(clientOpts, client.WithLimiter(rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), 1)))
	}

	api := client.NewDataAPIClient(client.DataAPIConfig{
		Host:           cfg.DataAPIHost,
		APIKey:         cfg.APIKey,
		ProxyURL:       cfg.ProxyURL,
		URLLengthLimit: cfg.URLLengthLimit,
	}, repo, clientOpts...)
	features := client.NewFeatureQueryClient(cfg.PageSize, clientOpts...)

	fetchers := fetch.NewRegistry()
	fetchers.Register(metadata.SourceCensusDataAPI, fetch.NewCensus(api, repo, cfg.ColumnLimit, a.logger))
	fetchers.Register(metadata.SourceConsumerData, fetch.NewConsumer(features, cfg.ConsumerDataURL))
	fetchers.Register(metadata.SourceUserUpload, fetch.NewUpload(uploads))

	orch := orchestration.NewService(repo, fetchers,
		orchestration.WithProgress(reporter, progressOut),
		orchestration.WithMetrics(collectors),
		orchestration.WithLogger(a.logger),
		orchestration.WithConcurrency(cfg.Concurrency),
	)
	tab := tabulate.NewService(repo, orch,
		tabulate.WithMetrics(collectors),
		tabulate.WithLogger(a.logger),
		tabulate.WithGeographyLimit(cfg.GeographyLimit),
	)
	return &engine{repo: repo, tabulator: tab}, nil
}

func registerUpload(repo *metadata.Repository, store *fetch.MemoryUploads, path, geoType string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewConfigError("cannot open upload %s: %v", path, err)
	}
	defer f.Close()
	data, err := fetch.LoadCSV(f)
	if err != nil {
		return apperrors.WrapError(err, "upload %s", path)
	}
	return fetch.RegisterUpload(repo, store, metadata.UploadInfo{UploadID: uploadID, GeoType: geoType}, data)
}

// runTabulation runs one request document and prints its result.
func (a *Application) runTabulation(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet || a.Config.JSON {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	doc, err := request.Load(a.Config.Request)
	if err != nil {
		return a.fail(err)
	}
	eng, err := a.buildEngine(nil, reporter, progressOut)
	if err != nil {
		return a.fail(err)
	}
	resolved, err := request.Resolve(doc, a.Config.Mode, eng.repo, a.Config.GeographyLimit)
	if err != nil {
		return a.fail(err)
	}

	if !a.Config.Quiet && !a.Config.JSON {
		cli.PrintExecutionConfig(a.Config, resolved.Vintage, doc.Variables, resolved.Geographies, out)
	}

	start := time.Now()
	result, err := request.Execute(ctx, eng.tabulator, a.Config.Mode, resolved)
	if err != nil {
		if apperrors.IsContextError(err) {
			a.logger.Warn("tabulation interrupted", logging.String("mode", a.Config.Mode))
		}
		return a.fail(err)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		JSON:       a.Config.JSON,
	}
	if err := cli.DisplayResult(out, result, cli.CLIResultPresenter{Variables: resolved.Variables}, outputCfg); err != nil {
		return a.fail(err)
	}
	if !a.Config.Quiet && !a.Config.JSON {
		cli.DisplayCompletion(out, a.Config.Mode, time.Since(start))
	}
	return apperrors.ExitSuccess
}

// buildServer wires the engine behind the HTTP server. Tabulation and
// upstream collectors share the server's registry.
func (a *Application) buildServer() (*server.Server, error) {
	m := server.NewMetrics()
	eng, err := a.buildEngine(m.Registry(), orchestration.NullProgressReporter{}, io.Discard)
	if err != nil {
		return nil, err
	}
	return server.NewServer(eng.tabulator, eng.repo, server.Config{
		Addr:           a.Config.Addr,
		GeographyLimit: a.Config.GeographyLimit,
		RequestTimeout: a.Config.Timeout,
	}, server.WithLogger(a.logger), server.WithMetrics(m)), nil
}
