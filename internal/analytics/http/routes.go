package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the analytics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/analytics", func(ar chi.Router) {
		ar.Get("/dashboard", h.handleDashboard)
		ar.Get("/kpis", h.handleKPIs)
		ar.Get("/health-score", h.handleHealthScore)
		ar.Get("/delivery-batches", h.handleDeliveryBatches)
		ar.Get("/risk", h.handleRisk)
		ar.Get("/alerts", h.handleAlerts)
		ar.Get("/cashflow", h.handleCashflow)
		ar.Get("/change-orders", h.handleChangeOrders)
		ar.Get("/s-curve", h.handleSCurve)
		ar.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/export.csv", h.handleCSV)
		})
	})
}
