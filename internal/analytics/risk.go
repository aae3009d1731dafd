package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// RiskLevel buckets a composite risk score. Bands are non-overlapping with
// inclusive lower bounds: LOW [0,20), MEDIUM [20,40), HIGH [40,60),
// CRITICAL [60,100].
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskSignals is the normalised [0,1] breakdown behind a composite score.
// A signal without evidence contributes 0, never excludes the PO.
type RiskSignals struct {
	Delivery    float64 `json:"delivery"`
	Quality     float64 `json:"quality"`
	Payment     float64 `json:"payment"`
	Reliability float64 `json:"reliability"`
}

// RiskAssessment is the per-PO derived risk view, recomputed per request.
type RiskAssessment struct {
	POID              uuid.UUID   `json:"purchaseOrderId"`
	PONumber          string      `json:"purchaseOrderNumber"`
	SupplierID        uuid.UUID   `json:"supplierId"`
	RiskScore         float64     `json:"riskScore"`
	RiskLevel         RiskLevel   `json:"riskLevel"`
	PredictedDelay    int         `json:"predictedDelayDays"`
	Signals           RiskSignals `json:"signals"`
	poValue           decimal.Decimal
}

// SupplierRisk aggregates PO risk per supplier, weighted by PO value, for
// the supplier scorecard and cross-project exposure ranking.
type SupplierRisk struct {
	SupplierID    uuid.UUID       `json:"supplierId"`
	SupplierName  string          `json:"supplierName"`
	RiskScore     float64         `json:"riskScore"`
	RiskLevel     RiskLevel       `json:"riskLevel"`
	POCount       int             `json:"poCount"`
	TotalExposure decimal.Decimal `json:"totalExposure"`
}

func riskLevelFor(score float64) RiskLevel {
	switch {
	case score < 20:
		return RiskLow
	case score < 40:
		return RiskMedium
	case score < 60:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// ScoreRisk computes per-PO and per-supplier risk from the scoped snapshot.
func ScoreRisk(snap procurement.Snapshot, now time.Time, cfg Config) ([]RiskAssessment, []SupplierRisk) {
	now = now.UTC()

	itemsByPO := make(map[uuid.UUID][]procurement.LineItem)
	for _, li := range snap.LineItems {
		itemsByPO[li.POID] = append(itemsByPO[li.POID], li)
	}
	delivered := deliveredByItem(snap.Deliveries)

	openNCRsByPO := make(map[uuid.UUID]float64)
	for _, n := range snap.NCRs {
		if n.Status != procurement.NCRStatusOpen {
			continue
		}
		weight := 1.0
		if n.Severity == procurement.NCRSeverityCritical {
			weight = 2.0
		}
		openNCRsByPO[n.POID] += weight
	}

	type invoiceStats struct{ total, overdue int }
	invoicesByPO := make(map[uuid.UUID]invoiceStats)
	for _, inv := range snap.Invoices {
		stats := invoicesByPO[inv.POID]
		stats.total++
		if inv.Status != procurement.InvoiceStatusPaid && inv.Status != procurement.InvoiceStatusRejected && inv.DueDate.Before(now) {
			stats.overdue++
		}
		invoicesByPO[inv.POID] = stats
	}

	reliability := supplierReliability(snap)

	assessments := make([]RiskAssessment, 0, len(snap.POs))
	for _, po := range snap.POs {
		batches := aggregateBatches(itemsByPO[po.ID], delivered, now, cfg)

		var signals RiskSignals
		dated, troubled, maxLate := 0, 0, 0
		for _, b := range batches {
			if !b.Scheduled {
				continue
			}
			dated++
			if b.Status == BatchLate || b.Status == BatchAtRisk {
				troubled++
			}
			if b.Status == BatchLate && b.LateDays > maxLate {
				maxLate = b.LateDays
			}
		}
		if dated > 0 {
			signals.Delivery = float64(troubled) / float64(dated)
		}
		if cfg.NCRRiskSaturation > 0 {
			signals.Quality = clamp01(openNCRsByPO[po.ID] / cfg.NCRRiskSaturation)
		}
		if stats := invoicesByPO[po.ID]; stats.total > 0 {
			signals.Payment = float64(stats.overdue) / float64(stats.total)
		}
		if rate, ok := reliability[po.SupplierID]; ok {
			signals.Reliability = clamp01(1 - rate/100)
		}

		score := (signals.Delivery*cfg.RiskWeights.Delivery +
			signals.Quality*cfg.RiskWeights.Quality +
			signals.Payment*cfg.RiskWeights.Payment +
			signals.Reliability*cfg.RiskWeights.Reliability) * 100
		if score > 100 {
			score = 100
		}

		assessments = append(assessments, RiskAssessment{
			POID:           po.ID,
			PONumber:       po.Number,
			SupplierID:     po.SupplierID,
			RiskScore:      score,
			RiskLevel:      riskLevelFor(score),
			PredictedDelay: maxLate,
			Signals:        signals,
			poValue:        po.TotalValue,
		})
	}

	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].RiskScore != assessments[j].RiskScore {
			return assessments[i].RiskScore > assessments[j].RiskScore
		}
		return assessments[i].POID.String() < assessments[j].POID.String()
	})

	return assessments, aggregateSupplierRisk(snap, assessments)
}

// supplierReliability computes the historical on-time delivery rate (0-100)
// per supplier from delivered shipments. Suppliers with no delivered
// shipments are absent: no evidence, no contribution.
func supplierReliability(snap procurement.Snapshot) map[uuid.UUID]float64 {
	supplierByPO := make(map[uuid.UUID]uuid.UUID, len(snap.POs))
	for _, po := range snap.POs {
		supplierByPO[po.ID] = po.SupplierID
	}
	type tally struct{ delivered, onTime int }
	tallies := make(map[uuid.UUID]*tally)
	for _, sh := range snap.Shipments {
		if sh.Status != procurement.ShipmentStatusDelivered {
			continue
		}
		supplierID, ok := supplierByPO[sh.POID]
		if !ok {
			continue
		}
		t := tallies[supplierID]
		if t == nil {
			t = &tally{}
			tallies[supplierID] = t
		}
		t.delivered++
		if sh.ActualDeliveryDate == nil || !sh.ActualDeliveryDate.After(sh.ETA) {
			t.onTime++
		}
	}
	rates := make(map[uuid.UUID]float64, len(tallies))
	for id, t := range tallies {
		rates[id] = float64(t.onTime) / float64(t.delivered) * 100
	}
	return rates
}

func aggregateSupplierRisk(snap procurement.Snapshot, assessments []RiskAssessment) []SupplierRisk {
	names := make(map[uuid.UUID]string, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		names[s.ID] = s.Name
	}

	type agg struct {
		weighted decimal.Decimal
		plain    float64
		exposure decimal.Decimal
		count    int
	}
	bySupplier := make(map[uuid.UUID]*agg)
	order := make([]uuid.UUID, 0)
	for _, a := range assessments {
		entry := bySupplier[a.SupplierID]
		if entry == nil {
			entry = &agg{}
			bySupplier[a.SupplierID] = entry
			order = append(order, a.SupplierID)
		}
		entry.count++
		entry.plain += a.RiskScore
		entry.exposure = entry.exposure.Add(a.poValue)
		entry.weighted = entry.weighted.Add(a.poValue.Mul(decimal.NewFromFloat(a.RiskScore)))
	}

	risks := make([]SupplierRisk, 0, len(bySupplier))
	for _, id := range order {
		entry := bySupplier[id]
		score := entry.plain / float64(entry.count)
		// Value-weighted average when exposure is meaningful.
		if entry.exposure.IsPositive() {
			score, _ = entry.weighted.Div(entry.exposure).Float64()
		}
		risks = append(risks, SupplierRisk{
			SupplierID:    id,
			SupplierName:  names[id],
			RiskScore:     score,
			RiskLevel:     riskLevelFor(score),
			POCount:       entry.count,
			TotalExposure: entry.exposure,
		})
	}
	sort.Slice(risks, func(i, j int) bool {
		if !risks[i].TotalExposure.Equal(risks[j].TotalExposure) {
			return risks[i].TotalExposure.GreaterThan(risks[j].TotalExposure)
		}
		return risks[i].SupplierID.String() < risks[j].SupplierID.String()
	})
	return risks
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
