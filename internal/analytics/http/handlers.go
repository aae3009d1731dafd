package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sitegrid-erp/sitegrid/internal/analytics"
	"github.com/sitegrid-erp/sitegrid/internal/analytics/export"
	"github.com/sitegrid-erp/sitegrid/internal/platform/httpx"
	"github.com/sitegrid-erp/sitegrid/internal/shared"
)

const requestTimeout = 5 * time.Second

var validate = validator.New()

// AnalyticsService defines the derivation contract used by the handler.
type AnalyticsService interface {
	ComputeAnalytics(ctx context.Context, filter analytics.Filter) (analytics.Result, error)
}

// Handler coordinates HTTP requests for the procurement analytics API.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	csvPool sync.Pool
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService) *Handler {
	h := &Handler{logger: logger, service: service}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// queryFilters carries the raw query parameters through validation before
// they are converted into a typed filter.
type queryFilters struct {
	OrgID     string `validate:"omitempty,uuid"`
	ProjectID string `validate:"omitempty,uuid"`
	DateFrom  string `validate:"omitempty,datetime=2006-01-02"`
	DateTo    string `validate:"omitempty,datetime=2006-01-02"`
}

func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	raw := queryFilters{
		OrgID:     strings.TrimSpace(q.Get("org_id")),
		ProjectID: strings.TrimSpace(q.Get("project_id")),
		DateFrom:  strings.TrimSpace(q.Get("date_from")),
		DateTo:    strings.TrimSpace(q.Get("date_to")),
	}
	if err := validate.Struct(raw); err != nil {
		return analytics.Filter{}, fmt.Errorf("%w: %s", httpx.ErrValidation, filterErrorDetail(err))
	}

	var filter analytics.Filter
	if raw.OrgID != "" {
		filter.OrganizationID = uuid.MustParse(raw.OrgID)
	}
	if raw.ProjectID != "" {
		id := uuid.MustParse(raw.ProjectID)
		filter.ProjectID = &id
	}
	if raw.DateFrom != "" {
		t, _ := time.Parse("2006-01-02", raw.DateFrom)
		filter.DateFrom = &t
	}
	if raw.DateTo != "" {
		t, _ := time.Parse("2006-01-02", raw.DateTo)
		filter.DateTo = &t
	}
	return filter, nil
}

func filterErrorDetail(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fields := make([]string, 0, len(vErrs))
		for _, f := range vErrs {
			fields = append(fields, strings.ToLower(f.Field()))
		}
		return "invalid parameter: " + strings.Join(fields, ", ")
	}
	return "invalid parameters"
}

// compute runs the full derivation for the request filter under a timeout.
func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (analytics.Result, bool) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return analytics.Result{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.ComputeAnalytics(ctx, filter)
	if err != nil {
		h.logError("compute analytics", err)
		httpx.RespondError(w, err)
		return analytics.Result{}, false
	}
	return result, true
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleKPIs(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, result.KPIs)
}

func (h *Handler) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, result.Health)
}

func (h *Handler) handleDeliveryBatches(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	batches, page := paginate(r, result.DeliveryBatches)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"batches":     batches,
		"pagination":  page,
		"dataQuality": result.DataQuality,
	})
}

func (h *Handler) handleRisk(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	risks, page := paginate(r, result.RiskAssessments)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"purchaseOrders": risks,
		"pagination":     page,
		"suppliers":      result.SupplierRisks,
	})
}

// paginate slices a derived list according to page/per_page query params.
// Lists are already deterministically sorted, so pages are stable across
// recomputations of the same snapshot.
func paginate[T any](r *http.Request, items []T) ([]T, shared.Pagination) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	p := shared.NewPagination(page, perPage, len(items))
	from, to := p.Bounds()
	return items[from:to], p
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": result.Alerts})
}

func (h *Handler) handleCashflow(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": result.Cashflow})
}

func (h *Handler) handleChangeOrders(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, result.COBreakdown)
}

func (h *Handler) handleSCurve(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"points": result.SCurve})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteKPICSV(buf, result.KPIs, result.Health); err != nil {
		h.handleServerError(w, "write kpi csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteBatchesCSV(buf, result.DeliveryBatches); err != nil {
		h.handleServerError(w, "write batches csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteCashflowCSV(buf, result.Cashflow); err != nil {
		h.handleServerError(w, "write cashflow csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteRiskCSV(buf, result.RiskAssessments); err != nil {
		h.handleServerError(w, "write risk csv", err)
		return
	}

	filename := fmt.Sprintf("procurement-analytics-%s.csv", result.ComputedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
