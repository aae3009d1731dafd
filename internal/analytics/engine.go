package analytics

import (
	"time"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// Result bundles every derived view produced from one snapshot and window.
// All fields are read-models: ephemeral, recomputed on every call, never
// persisted.
type Result struct {
	ComputedAt      time.Time         `json:"computedAt"`
	KPIs            KPISnapshot       `json:"kpis"`
	Health          HealthScore       `json:"healthScore"`
	DeliveryBatches []DeliveryBatch   `json:"deliveryBatches"`
	RiskAssessments []RiskAssessment  `json:"riskAssessments"`
	SupplierRisks   []SupplierRisk    `json:"supplierRisks"`
	Alerts          []ComplianceAlert `json:"alerts"`
	Cashflow        []CashflowPeriod  `json:"cashflow"`
	COBreakdown     COBreakdown       `json:"changeOrderBreakdown"`
	SCurve          []SCurvePoint     `json:"sCurve"`
	DataQuality     DataQuality       `json:"dataQuality"`
}

// Compute runs the full derivation over one snapshot. It is a pure function:
// identical (snapshot, window, config) inputs always produce identical
// output. The window's Now must already be resolved; Compute performs no
// wall-clock reads and no I/O.
func Compute(snap procurement.Snapshot, window Window, cfg Config) Result {
	scoped, dq := Scope(snap, window)
	now := window.Now

	kpis := BuildKPISnapshot(scoped, now, cfg)
	batches := BuildDeliveryBatches(scoped, now, cfg)
	risks, supplierRisks := ScoreRisk(scoped, now, cfg)

	return Result{
		ComputedAt:      now,
		KPIs:            kpis,
		Health:          ComputeHealthScore(kpis, cfg),
		DeliveryBatches: batches,
		RiskAssessments: risks,
		SupplierRisks:   supplierRisks,
		Alerts:          GenerateAlerts(kpis, risks, batches, now),
		Cashflow:        ForecastCashflow(scoped, now, cfg),
		COBreakdown:     BreakdownChangeOrders(scoped.ChangeOrders, cfg),
		SCurve:          BuildSCurve(scoped),
		DataQuality:     dq,
	}
}
