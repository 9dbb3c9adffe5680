package services

import (
	"context"
	"time"

	"pontoscli/internal/dataprocessing"
	"pontoscli/internal/infrastructure"
)

// PipelineMetricsRecorder records ingestion-run metrics on the OTel
// meter.
type PipelineMetricsRecorder struct {
	metrics *infrastructure.PipelineMetrics
}

// NewPipelineMetricsRecorder wraps the pipeline instruments.
func NewPipelineMetricsRecorder(metrics *infrastructure.PipelineMetrics) *PipelineMetricsRecorder {
	return &PipelineMetricsRecorder{metrics: metrics}
}

// RecordRun records counters and duration for one completed run.
func (r *PipelineMetricsRecorder) RecordRun(ctx context.Context, folder *dataprocessing.FolderAggregate, elapsed time.Duration) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.IngestionRuns.Add(ctx, 1)
	r.metrics.FilesProcessed.Add(ctx, int64(folder.Stats.TotalFiles))
	r.metrics.RecordsAggregated.Add(ctx, int64(folder.Stats.TotalRecords))
	r.metrics.IngestionDuration.Record(ctx, elapsed.Seconds())
}
