package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/meteo-forecast-etl/internal/config"
	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
	"github.com/couchcryptid/meteo-forecast-etl/internal/observability"
	"github.com/google/uuid"
)

// DocumentSource downloads the forecast document and returns it as UTF-8 text.
type DocumentSource interface {
	FetchDocument(ctx context.Context, url string) (string, error)
}

// MailDispatcher delivers a serialized mail request to the dispatch service.
type MailDispatcher interface {
	Dispatch(ctx context.Context, endpoint string, payload []byte) error
}

// ReportArchiver keeps a copy of every dispatched report.
type ReportArchiver interface {
	Archive(ctx context.Context, report domain.ArchivedReport) error
}

// Stage names used as the "stage" metric label.
const (
	stageResolve   = "resolve"
	stageFetch     = "fetch"
	stageMap       = "map"
	stageSerialize = "serialize"
	stageDispatch  = "dispatch"
	stageArchive   = "archive"
)

// Pipeline runs the fetch, map, render and dispatch chain once.
type Pipeline struct {
	cfg        *config.Config
	source     DocumentSource
	dispatcher MailDispatcher
	archiver   ReportArchiver
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. archiver may be nil, which disables archiving.
func New(cfg *config.Config, source DocumentSource, dispatcher MailDispatcher, archiver ReportArchiver, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		source:     source,
		dispatcher: dispatcher,
		archiver:   archiver,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes one forecast run. The first failing stage aborts the run and
// its error is returned unchanged in kind; nothing is retried.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := clock.Now()

	logger.Info("forecast run started")

	if err := p.run(ctx, runID, logger); err != nil {
		p.metrics.RunsTotal.WithLabelValues("failure").Inc()
		logger.Error("forecast run failed", "error", err, "kind", domain.ErrorKind(err))
		return err
	}

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.LastSuccess.Set(float64(clock.Now().Unix()))
	logger.Info("forecast run completed", "duration", clock.Since(start))
	return nil
}

func (p *Pipeline) run(ctx context.Context, runID string, logger *slog.Logger) error {
	sourceURL, err := stage(p, stageResolve, func() (string, error) {
		return requireSetting("AEMET_LOCATION", p.cfg.SourceURL)
	})
	if err != nil {
		return err
	}

	doc, err := stage(p, stageFetch, func() (string, error) {
		return p.source.FetchDocument(ctx, sourceURL)
	})
	if err != nil {
		return err
	}
	p.metrics.DocumentBytes.Set(float64(len(doc)))

	forecast, err := stage(p, stageMap, func() (domain.Forecast, error) {
		return domain.ParseForecast(doc)
	})
	if err != nil {
		return err
	}
	p.metrics.ForecastDays.Set(float64(len(forecast.Days)))
	logger.Info("forecast mapped", "location", forecast.Location, "province", forecast.Province, "days", len(forecast.Days))

	report := domain.RenderReport(forecast)
	p.metrics.ReportBytes.Set(float64(len(report)))
	encoded := domain.EncodeReport(report)

	from, err := stage(p, stageResolve, func() (string, error) {
		return requireSetting("MAIL_FROM", p.cfg.MailFrom)
	})
	if err != nil {
		return err
	}
	to, err := stage(p, stageResolve, func() ([]string, error) {
		if len(p.cfg.MailTo) == 0 {
			return nil, fmt.Errorf("%w: MAIL_TO is required", domain.ErrConfigMissing)
		}
		return p.cfg.MailTo, nil
	})
	if err != nil {
		return err
	}

	payload, err := stage(p, stageSerialize, func() ([]byte, error) {
		return domain.MarshalMailRequest(domain.NewMailRequest(from, to, encoded))
	})
	if err != nil {
		return err
	}

	endpoint, err := stage(p, stageResolve, func() (string, error) {
		return requireSetting("RUSTMAIL_URL", p.cfg.DispatchURL)
	})
	if err != nil {
		return err
	}

	if _, err := stage(p, stageDispatch, func() (struct{}, error) {
		return struct{}{}, p.dispatcher.Dispatch(ctx, endpoint, payload)
	}); err != nil {
		return err
	}
	logger.Info("mail request dispatched", "recipients", len(to), "report_bytes", len(report))

	p.archive(ctx, domain.NewArchivedReport(runID, forecast, to, report, clock.Now()), logger)
	return nil
}

// archive publishes the report when an archiver is configured. Failures are
// logged and counted but never fail the run.
func (p *Pipeline) archive(ctx context.Context, record domain.ArchivedReport, logger *slog.Logger) {
	if p.archiver == nil {
		return
	}
	if _, err := stage(p, stageArchive, func() (struct{}, error) {
		return struct{}{}, p.archiver.Archive(ctx, record)
	}); err != nil {
		p.metrics.ArchiveErrors.Inc()
		logger.Warn("report archive failed", "error", err)
		return
	}
	logger.Debug("report archived")
}

// stage times fn and records a failure under its error kind. The returned
// error keeps the wrapped sentinel.
func stage[T any](p *Pipeline, name string, fn func() (T, error)) (T, error) {
	start := clock.Now()
	v, err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(clock.Since(start).Seconds())
	if err != nil {
		p.metrics.StageErrors.WithLabelValues(name, domain.ErrorKind(err)).Inc()
		return v, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func requireSetting(key, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrConfigMissing, key)
	}
	return value, nil
}
