package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/sitegrid-erp/sitegrid/internal/analytics"
	"github.com/sitegrid-erp/sitegrid/internal/observability"
)

const digestConcurrency = 4

// ProjectLister enumerates the projects a digest run fans out over.
type ProjectLister interface {
	ListProjectIDs(ctx context.Context) ([]uuid.UUID, error)
}

// AnalyticsService computes the derived views a digest reports on.
type AnalyticsService interface {
	ComputeAnalytics(ctx context.Context, filter analytics.Filter) (analytics.Result, error)
}

// Digest runs the daily alert digest. The "already sent today" marker lives
// in redis, outside the derivation engine: the engine itself stays pure and
// carries no notion of alert acknowledgement.
type Digest struct {
	service  AnalyticsService
	projects ProjectLister
	redis    *redis.Client
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewDigest wires the digest job.
func NewDigest(service AnalyticsService, projects ProjectLister, rdb *redis.Client, logger *slog.Logger, metrics *observability.Metrics) *Digest {
	return &Digest{
		service:  service,
		projects: projects,
		redis:    rdb,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// WithNow overrides the digest clock for testing.
func (d *Digest) WithNow(fn func() time.Time) {
	if fn != nil {
		d.now = fn
	}
}

// Handle processes TaskAlertDigest tasks.
func (d *Digest) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AlertDigestPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	var projects []uuid.UUID
	if payload.ProjectID != nil {
		projects = []uuid.UUID{*payload.ProjectID}
	} else {
		var err error
		projects, err = d.projects.ListProjectIDs(ctx)
		if err != nil {
			d.observe("error")
			return fmt.Errorf("digest: list projects: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)
	for _, projectID := range projects {
		g.Go(func() error {
			return d.runProject(ctx, projectID)
		})
	}
	if err := g.Wait(); err != nil {
		d.observe("error")
		return err
	}
	d.observe("ok")
	return nil
}

func (d *Digest) runProject(ctx context.Context, projectID uuid.UUID) error {
	sent, err := d.markSent(ctx, projectID)
	if err != nil {
		return fmt.Errorf("digest: dedup marker for %s: %w", projectID, err)
	}
	if !sent {
		d.logger.Debug("digest already sent today", slog.String("project", projectID.String()))
		return nil
	}

	result, err := d.service.ComputeAnalytics(ctx, analytics.Filter{ProjectID: &projectID})
	if err != nil {
		return fmt.Errorf("digest: compute for %s: %w", projectID, err)
	}
	if len(result.Alerts) == 0 {
		d.logger.Info("digest clean", slog.String("project", projectID.String()))
		return nil
	}

	for _, alert := range result.Alerts {
		d.logger.Info("digest alert",
			slog.String("project", projectID.String()),
			slog.String("type", alert.Type),
			slog.String("severity", string(alert.Severity)),
			slog.String("description", alert.Description),
		)
	}
	d.logger.Info("digest dispatched",
		slog.String("project", projectID.String()),
		slog.Int("alerts", len(result.Alerts)),
		slog.Float64("healthScore", result.Health.Overall),
	)
	return nil
}

// markSent claims today's digest slot for the project. Returns false when a
// digest was already sent today. The marker expires after 48h so a missed
// cleanup never blocks future digests.
func (d *Digest) markSent(ctx context.Context, projectID uuid.UUID) (bool, error) {
	day := d.now().UTC().Format("2006-01-02")
	key := fmt.Sprintf("sitegrid:digest:%s:%s", day, projectID)
	return d.redis.SetNX(ctx, key, 1, 48*time.Hour).Result()
}

func (d *Digest) observe(outcome string) {
	if d.metrics != nil {
		d.metrics.ObserveJob(TaskAlertDigest, outcome)
	}
}
