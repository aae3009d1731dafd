package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sitegrid-erp/sitegrid/internal/analytics"
	"github.com/sitegrid-erp/sitegrid/internal/observability"
)

// QualityScan recomputes data-quality counts per project and logs them, so
// structurally broken upstream records surface in operations tooling instead
// of silently shrinking the analytics scope.
type QualityScan struct {
	service  AnalyticsService
	projects ProjectLister
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewQualityScan wires the scan job.
func NewQualityScan(service AnalyticsService, projects ProjectLister, logger *slog.Logger, metrics *observability.Metrics) *QualityScan {
	return &QualityScan{service: service, projects: projects, logger: logger, metrics: metrics}
}

// Handle processes TaskQualityScan tasks.
func (q *QualityScan) Handle(ctx context.Context, _ *asynq.Task) error {
	projects, err := q.projects.ListProjectIDs(ctx)
	if err != nil {
		q.observe("error")
		return fmt.Errorf("quality scan: list projects: %w", err)
	}

	for _, projectID := range projects {
		result, err := q.service.ComputeAnalytics(ctx, analytics.Filter{ProjectID: &projectID})
		if err != nil {
			q.observe("error")
			return fmt.Errorf("quality scan: compute for %s: %w", projectID, err)
		}
		dq := result.DataQuality
		if dq.Total() == 0 {
			continue
		}
		q.logger.Warn("data quality defects",
			slog.String("project", projectID.String()),
			slog.Int("skippedPOs", dq.SkippedPOs),
			slog.Int("skippedLineItems", dq.SkippedLineItems),
			slog.Int("skippedDeliveries", dq.SkippedDeliveries),
			slog.Int("skippedInvoices", dq.SkippedInvoices),
			slog.Int("total", dq.Total()),
		)
	}
	q.observe("ok")
	return nil
}

func (q *QualityScan) observe(outcome string) {
	if q.metrics != nil {
		q.metrics.ObserveJob(TaskQualityScan, outcome)
	}
}
