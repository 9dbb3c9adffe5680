package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pontoscli/internal/cache"
	"pontoscli/internal/config"
	"pontoscli/internal/dataprocessing"
	"pontoscli/internal/exporter"
	"pontoscli/internal/files"
	ws "pontoscli/internal/websocket"
)

// DataService fronts the whole pipeline: cache-fronted aggregate reads,
// derived series, record browsing and export.
type DataService struct {
	cfg        *config.Config
	cache      *cache.AggregateCache
	summarizer *dataprocessing.Summarizer
	excel      *exporter.ExcelWriter
	csv        *exporter.CSVWriter
	hub        *ws.Hub
	logger     *slog.Logger
}

// Dependencies carries the collaborators of a DataService. Hub, Tracer
// and Metrics are optional.
type Dependencies struct {
	Store   files.Store
	Catalog config.Catalog
	Hub     *ws.Hub
	Tracer  trace.Tracer
	Metrics *PipelineMetricsRecorder
}

// NewDataService wires the ingestion pipeline behind the aggregate
// cache and returns the service consumers read from.
func NewDataService(cfg *config.Config, deps Dependencies, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "data_service"))

	ingestor := dataprocessing.NewIngestor(deps.Store, deps.Catalog, cfg.Goals, logger)

	loader := func(ctx context.Context) (*dataprocessing.FolderAggregate, error) {
		if deps.Tracer != nil {
			var span trace.Span
			ctx, span = deps.Tracer.Start(ctx, "pipeline.ingest")
			defer span.End()

			start := time.Now()
			aggregate, err := ingestor.Run(ctx)
			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			span.SetAttributes(
				attribute.Int("pipeline.files", aggregate.Stats.TotalFiles),
				attribute.Int("pipeline.records", aggregate.Stats.TotalRecords),
			)
			if deps.Metrics != nil {
				deps.Metrics.RecordRun(ctx, aggregate, time.Since(start))
			}
			return aggregate, nil
		}
		return ingestor.Run(ctx)
	}

	return &DataService{
		cfg:        cfg,
		cache:      cache.New(cfg.Cache.TTL, loader, logger),
		summarizer: dataprocessing.NewSummarizer(cfg.Goals, logger),
		excel:      exporter.NewExcelWriter(logger),
		csv:        exporter.NewCSVWriter(logger),
		hub:        deps.Hub,
		logger:     logger,
	}
}

// Aggregate returns the cached folder aggregate, running the pipeline
// on a miss.
func (s *DataService) Aggregate(ctx context.Context) (*dataprocessing.FolderAggregate, error) {
	return s.cache.Get(ctx)
}

// WeeklySeries returns the chart rows for weeks 1-5.
func (s *DataService) WeeklySeries(ctx context.Context) ([]dataprocessing.SeriesRow, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarizer.WeeklySeries(folder), nil
}

// MonthlySeries returns the chart rows for observed cycle months.
func (s *DataService) MonthlySeries(ctx context.Context) ([]dataprocessing.SeriesRow, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarizer.MonthlySeries(folder), nil
}

// TeamDistribution returns the per-entity distribution slices.
func (s *DataService) TeamDistribution(ctx context.Context) ([]dataprocessing.TeamSlice, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarizer.TeamDistribution(folder), nil
}

// Summary returns the statistics-card values.
func (s *DataService) Summary(ctx context.Context) (dataprocessing.Summary, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return dataprocessing.Summary{}, err
	}
	return s.summarizer.BuildSummary(folder), nil
}

// RecordFilter narrows the records-browser view. Zero values match
// everything.
type RecordFilter struct {
	Entity string
	Week   int
	Query  string
}

// Records returns a filtered view of all records, most recent first.
func (s *DataService) Records(ctx context.Context, filter RecordFilter) ([]dataprocessing.PointRecord, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var out []dataprocessing.PointRecord
	for _, name := range folder.EntityNames() {
		if filter.Entity != "" && !strings.EqualFold(filter.Entity, name) {
			continue
		}
		for _, rec := range folder.Entities[name].Records {
			if filter.Week != 0 && rec.CycleWeek != filter.Week {
				continue
			}
			if query != "" && !matchesQuery(rec, query) {
				continue
			}
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func matchesQuery(rec dataprocessing.PointRecord, query string) bool {
	return strings.Contains(strings.ToLower(rec.EntityName), query) ||
		strings.Contains(strings.ToLower(rec.Site), query) ||
		strings.Contains(strings.ToLower(rec.Observations), query)
}

// Refresh invalidates the cache, reingests immediately and notifies
// websocket clients.
func (s *DataService) Refresh(ctx context.Context) (*dataprocessing.FolderAggregate, error) {
	s.cache.Invalidate()

	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastDataRefresh(map[string]interface{}{
			"total_points":   folder.Stats.TotalPoints,
			"total_records":  folder.Stats.TotalRecords,
			"last_processed": folder.LastProcessed,
		})
	}

	s.logger.InfoContext(ctx, "aggregate refreshed",
		slog.Int("entities", folder.Stats.TotalEntities),
		slog.Int("records", folder.Stats.TotalRecords))

	return folder, nil
}

// ExportExcel returns the full record archive as xlsx bytes.
func (s *DataService) ExportExcel(ctx context.Context) ([]byte, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.excel.WriteArchive(ctx, folder)
}

// ExportCSV returns the team summary as CSV bytes.
func (s *DataService) ExportCSV(ctx context.Context) ([]byte, error) {
	folder, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.csv.WriteSummary(folder, exporter.WriteOptions{BOMPrefix: true})
}

// CacheStats exposes cache counters for the health endpoint.
func (s *DataService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}

// Goals exposes the configured goal constants for consumers rendering
// per-entity targets.
func (s *DataService) Goals() config.GoalsConfig {
	return s.cfg.Goals
}
