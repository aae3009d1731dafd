package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// SnapshotLoader is the persistence collaborator supplying the record
// snapshot for one request.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, params procurement.SnapshotParams) (procurement.Snapshot, error)
}

// Filter is the caller-facing request scope.
type Filter struct {
	OrganizationID uuid.UUID
	ProjectID      *uuid.UUID
	DateFrom       *time.Time
	DateTo         *time.Time
}

// ComputeObserver receives the wall-clock duration of each full derivation.
type ComputeObserver interface {
	ObserveCompute(time.Duration)
}

// Service is the request-scoped orchestration around the pure engine: it
// captures "now" once, loads a single snapshot, and runs every derivation
// against it. No derived view is cached across requests.
type Service struct {
	repo     SnapshotLoader
	cfg      Config
	logger   *slog.Logger
	observer ComputeObserver
	now      func() time.Time
}

// NewService wires the snapshot loader with the engine configuration.
func NewService(repo SnapshotLoader, cfg Config, logger *slog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{repo: repo, cfg: cfg, logger: logger, now: time.Now}, nil
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithObserver attaches a compute-duration observer.
func (s *Service) WithObserver(obs ComputeObserver) {
	s.observer = obs
}

// Config exposes the engine configuration in use.
func (s *Service) Config() Config {
	return s.cfg
}

// ComputeAnalytics loads the snapshot for the filter and derives every view.
// An inverted date range yields empty-but-valid output, not an error; only a
// failing snapshot load is surfaced to the caller.
func (s *Service) ComputeAnalytics(ctx context.Context, filter Filter) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("analytics: snapshot loader not configured")
	}
	now := s.now().UTC()
	window := Window{
		From:      filter.DateFrom,
		To:        filter.DateTo,
		ProjectID: filter.ProjectID,
	}.Resolve(now)

	if window.Empty() {
		if s.logger != nil {
			s.logger.Warn("analytics window inverted, treating as empty scope",
				slog.Time("from", *window.From), slog.Time("to", *window.To))
		}
		return Compute(procurement.Snapshot{}, window, s.cfg), nil
	}

	snap, err := s.repo.LoadSnapshot(ctx, procurement.SnapshotParams{
		OrganizationID: filter.OrganizationID,
		ProjectID:      filter.ProjectID,
		DateFrom:       filter.DateFrom,
		DateTo:         filter.DateTo,
	})
	if err != nil {
		return Result{}, fmt.Errorf("analytics: load snapshot: %w", err)
	}

	start := time.Now()
	result := Compute(snap, window, s.cfg)
	if s.observer != nil {
		s.observer.ObserveCompute(time.Since(start))
	}
	return result, nil
}
