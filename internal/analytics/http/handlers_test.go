package analytichttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitegrid-erp/sitegrid/internal/analytics"
)

type stubService struct {
	result analytics.Result
	err    error
	filter analytics.Filter
}

func (s *stubService) ComputeAnalytics(_ context.Context, filter analytics.Filter) (analytics.Result, error) {
	s.filter = filter
	if s.err != nil {
		return analytics.Result{}, s.err
	}
	return s.result, nil
}

func newTestRouter(svc AnalyticsService) http.Handler {
	h := NewHandler(slog.New(slog.DiscardHandler), svc)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestDashboardReturnsFullResult(t *testing.T) {
	svc := &stubService{result: analytics.Result{ComputedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)}}
	svc.result.KPIs.Logistics.OnTimeRate = 100

	req := httptest.NewRequest(http.MethodGet, "/analytics/dashboard", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body struct {
		ComputedAt time.Time `json:"computedAt"`
		KPIs       struct {
			Logistics struct {
				OnTimeRate float64 `json:"onTimeRate"`
			} `json:"logistics"`
		} `json:"kpis"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.KPIs.Logistics.OnTimeRate != 100 {
		t.Fatalf("kpi payload not round-tripped: %+v", body)
	}
}

func TestFilterParsingAndForwarding(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet,
		"/analytics/kpis?project_id=7b0f4a2e-1f3d-4c9a-9a44-1df2b3c4d5e6&date_from=2026-01-01&date_to=2026-06-30", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.filter.ProjectID == nil || svc.filter.ProjectID.String() != "7b0f4a2e-1f3d-4c9a-9a44-1df2b3c4d5e6" {
		t.Fatalf("project filter not forwarded: %+v", svc.filter)
	}
	if svc.filter.DateFrom == nil || !svc.filter.DateFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date_from not forwarded: %+v", svc.filter)
	}
}

func TestInvalidFilterIsBadRequest(t *testing.T) {
	for _, query := range []string{
		"project_id=not-a-uuid",
		"date_from=01/01/2026",
		"org_id=42",
	} {
		req := httptest.NewRequest(http.MethodGet, "/analytics/dashboard?"+query, nil)
		rec := httptest.NewRecorder()
		newTestRouter(&stubService{}).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400 got %d", query, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid parameter") {
			t.Fatalf("query %q: expected problem detail, got %s", query, rec.Body.String())
		}
	}
}

func TestDeliveryBatchesPagination(t *testing.T) {
	svc := &stubService{}
	for i := 0; i < 25; i++ {
		svc.result.DeliveryBatches = append(svc.result.DeliveryBatches, analytics.DeliveryBatch{
			MaterialClass: "steel", Scheduled: true, Status: analytics.BatchOnTrack,
		})
	}
	req := httptest.NewRequest(http.MethodGet, "/analytics/delivery-batches?page=2&per_page=10", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var body struct {
		Batches    []analytics.DeliveryBatch `json:"batches"`
		Pagination struct {
			Page       int `json:"page"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Batches) != 10 || body.Pagination.Page != 2 || body.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected page shape: %d items, %+v", len(body.Batches), body.Pagination)
	}
}

func TestServiceFailureIsServerError(t *testing.T) {
	svc := &stubService{err: errors.New("connection refused")}
	req := httptest.NewRequest(http.MethodGet, "/analytics/risk", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestCSVExport(t *testing.T) {
	svc := &stubService{result: analytics.Result{ComputedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)}}
	req := httptest.NewRequest(http.MethodGet, "/analytics/export.csv", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "procurement-analytics-2026-08-24.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Metric,Value") {
		t.Fatalf("csv body missing kpi section: %s", rec.Body.String())
	}
}

func TestCSVExportRateLimited(t *testing.T) {
	router := newTestRouter(&stubService{})
	var lastCode int
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodGet, "/analytics/export.csv", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", lastCode)
	}
}
