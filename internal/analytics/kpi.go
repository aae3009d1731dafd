package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// FinancialKPIs summarise commitment and payment positions.
type FinancialKPIs struct {
	TotalCommitted     decimal.Decimal `json:"totalCommitted"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	TotalUnpaid        decimal.Decimal `json:"totalUnpaid"`
	TotalPending       decimal.Decimal `json:"totalPending"`
	RetentionHeld      decimal.Decimal `json:"retentionHeld"`
	ChangeOrderImpact  decimal.Decimal `json:"changeOrderImpact"`
	ForecastToComplete decimal.Decimal `json:"forecastToComplete"`
}

// ProgressKPIs summarise schedule position.
type ProgressKPIs struct {
	PhysicalProgress    float64 `json:"physicalProgress"`
	FinancialProgress   float64 `json:"financialProgress"`
	MilestonesCompleted int     `json:"milestonesCompleted"`
	MilestonesTotal     int     `json:"milestonesTotal"`
	OnTrackCount        int     `json:"onTrackCount"`
	AtRiskCount         int     `json:"atRiskCount"`
	DelayedCount        int     `json:"delayedCount"`
	ActivePOs           int     `json:"activePOs"`
	TotalPOs            int     `json:"totalPOs"`
}

// QualityKPIs summarise NCR pressure. NCRRate is NCRs per 100 deliveries.
type QualityKPIs struct {
	TotalNCRs    int     `json:"totalNCRs"`
	OpenNCRs     int     `json:"openNCRs"`
	ClosedNCRs   int     `json:"closedNCRs"`
	CriticalNCRs int     `json:"criticalNCRs"`
	NCRRate      float64 `json:"ncrRate"`
}

// SupplierExposure ranks a supplier by committed value.
type SupplierExposure struct {
	SupplierID   uuid.UUID       `json:"supplierId"`
	SupplierName string          `json:"supplierName"`
	Exposure     decimal.Decimal `json:"exposure"`
}

// SupplierKPIs summarise the supplier base in scope.
type SupplierKPIs struct {
	TotalSuppliers    int                `json:"totalSuppliers"`
	ActiveSuppliers   int                `json:"activeSuppliers"`
	AvgReadinessScore float64            `json:"avgReadinessScore"`
	TopExposure       []SupplierExposure `json:"topExposure"`
}

// PaymentKPIs summarise the invoice pipeline.
type PaymentKPIs struct {
	AvgPaymentCycleDays float64         `json:"avgPaymentCycleDays"`
	PendingInvoiceCount int             `json:"pendingInvoiceCount"`
	OverdueInvoiceCount int             `json:"overdueInvoiceCount"`
	OverdueAmount       decimal.Decimal `json:"overdueAmount"`
}

// LogisticsKPIs summarise shipment performance. OnTimeRate defaults to 100
// when nothing has been delivered: absence of evidence is not failure.
type LogisticsKPIs struct {
	TotalShipments   int     `json:"totalShipments"`
	DeliveredOnTime  int     `json:"deliveredOnTime"`
	DelayedShipments int     `json:"delayedShipments"`
	InTransit        int     `json:"inTransit"`
	AvgDelayDays     float64 `json:"avgDeliveryDelay"`
	OnTimeRate       float64 `json:"onTimeRate"`
}

// KPISnapshot bundles every KPI group derived from one scoped snapshot. The
// alert rules evaluate against this snapshot, never against raw records, so
// alerts and the dashboard numbers they reference always agree.
type KPISnapshot struct {
	Financial FinancialKPIs `json:"financial"`
	Progress  ProgressKPIs  `json:"progress"`
	Quality   QualityKPIs   `json:"quality"`
	Suppliers SupplierKPIs  `json:"suppliers"`
	Payments  PaymentKPIs   `json:"payments"`
	Logistics LogisticsKPIs `json:"logistics"`
}

const topExposureLimit = 5

// BuildKPISnapshot derives all KPI groups from the scoped snapshot.
func BuildKPISnapshot(snap procurement.Snapshot, now time.Time, cfg Config) KPISnapshot {
	now = now.UTC()
	return KPISnapshot{
		Financial: buildFinancialKPIs(snap),
		Progress:  buildProgressKPIs(snap, now, cfg),
		Quality:   buildQualityKPIs(snap),
		Suppliers: buildSupplierKPIs(snap),
		Payments:  buildPaymentKPIs(snap, now),
		Logistics: buildLogisticsKPIs(snap),
	}
}

func buildFinancialKPIs(snap procurement.Snapshot) FinancialKPIs {
	var k FinancialKPIs
	hundred := decimal.NewFromInt(100)
	for _, po := range snap.POs {
		k.TotalCommitted = k.TotalCommitted.Add(po.TotalValue)
	}
	for _, co := range snap.ChangeOrders {
		if co.Status != procurement.COStatusApproved {
			continue
		}
		k.ChangeOrderImpact = k.ChangeOrderImpact.Add(co.ValueDelta)
	}
	k.TotalCommitted = k.TotalCommitted.Add(k.ChangeOrderImpact)

	retentionByPO := make(map[uuid.UUID]decimal.Decimal, len(snap.POs))
	for _, po := range snap.POs {
		retentionByPO[po.ID] = decimal.NewFromFloat(po.RetentionPct).Div(hundred)
	}
	for _, inv := range snap.Invoices {
		switch inv.Status {
		case procurement.InvoiceStatusPaid:
			k.TotalPaid = k.TotalPaid.Add(inv.Amount)
			k.RetentionHeld = k.RetentionHeld.Add(inv.Amount.Mul(retentionByPO[inv.POID]))
		case procurement.InvoiceStatusPendingApproval:
			k.TotalPending = k.TotalPending.Add(inv.Amount)
		}
	}
	k.TotalUnpaid = k.TotalCommitted.Sub(k.TotalPaid)
	k.ForecastToComplete = k.TotalCommitted
	return k
}

func buildProgressKPIs(snap procurement.Snapshot, now time.Time, cfg Config) ProgressKPIs {
	var k ProgressKPIs
	k.TotalPOs = len(snap.POs)

	var totalValue, weighted decimal.Decimal
	for _, po := range snap.POs {
		if po.Status == procurement.POStatusActive || po.Status == procurement.POStatusApproved {
			k.ActivePOs++
		}
		totalValue = totalValue.Add(po.TotalValue)
		weighted = weighted.Add(po.TotalValue.Mul(decimal.NewFromFloat(po.PhysicalProgress)))
	}
	if totalValue.IsPositive() {
		k.PhysicalProgress, _ = weighted.Div(totalValue).Float64()
	}

	riskWindow := time.Duration(cfg.MilestoneRiskWindowDays) * 24 * time.Hour
	for _, m := range snap.Milestones {
		k.MilestonesTotal++
		switch {
		case m.Status == procurement.MilestoneStatusCompleted:
			k.MilestonesCompleted++
		case m.ExpectedDate.Before(now):
			k.DelayedCount++
		case !m.ExpectedDate.After(now.Add(riskWindow)):
			k.AtRiskCount++
		default:
			k.OnTrackCount++
		}
	}

	fin := buildFinancialKPIs(snap)
	committed, _ := fin.TotalCommitted.Float64()
	paid, _ := fin.TotalPaid.Float64()
	if committed > 0 {
		k.FinancialProgress = paid / committed * 100
	}
	return k
}

func buildQualityKPIs(snap procurement.Snapshot) QualityKPIs {
	var k QualityKPIs
	for _, n := range snap.NCRs {
		k.TotalNCRs++
		if n.Status == procurement.NCRStatusOpen {
			k.OpenNCRs++
		} else {
			k.ClosedNCRs++
		}
		if n.Severity == procurement.NCRSeverityCritical {
			k.CriticalNCRs++
		}
	}
	received := 0
	for _, d := range snap.Deliveries {
		if d.ActualDate != nil {
			received++
		}
	}
	if received > 0 {
		k.NCRRate = float64(k.TotalNCRs) / float64(received) * 100
	}
	return k
}

func buildSupplierKPIs(snap procurement.Snapshot) SupplierKPIs {
	var k SupplierKPIs
	exposure := make(map[uuid.UUID]decimal.Decimal, len(snap.Suppliers))
	for _, po := range snap.POs {
		exposure[po.SupplierID] = exposure[po.SupplierID].Add(po.TotalValue)
	}

	var readinessSum float64
	for _, s := range snap.Suppliers {
		k.TotalSuppliers++
		if s.Status == procurement.SupplierStatusActive {
			k.ActiveSuppliers++
		}
		readinessSum += s.ReadinessScore
	}
	if k.TotalSuppliers > 0 {
		k.AvgReadinessScore = readinessSum / float64(k.TotalSuppliers)
	}

	ranked := make([]SupplierExposure, 0, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		ranked = append(ranked, SupplierExposure{SupplierID: s.ID, SupplierName: s.Name, Exposure: exposure[s.ID]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Exposure.Equal(ranked[j].Exposure) {
			return ranked[i].Exposure.GreaterThan(ranked[j].Exposure)
		}
		return ranked[i].SupplierID.String() < ranked[j].SupplierID.String()
	})
	if len(ranked) > topExposureLimit {
		ranked = ranked[:topExposureLimit]
	}
	k.TopExposure = ranked
	return k
}

func buildPaymentKPIs(snap procurement.Snapshot, now time.Time) PaymentKPIs {
	var k PaymentKPIs
	var cycleSum float64
	paidCount := 0
	for _, inv := range snap.Invoices {
		switch inv.Status {
		case procurement.InvoiceStatusPaid:
			if inv.PaidAt != nil {
				cycleSum += inv.PaidAt.Sub(inv.InvoiceDate).Hours() / 24
				paidCount++
			}
			continue
		case procurement.InvoiceStatusPendingApproval, procurement.InvoiceStatusApproved:
			k.PendingInvoiceCount++
		case procurement.InvoiceStatusRejected:
			continue
		}
		if inv.DueDate.Before(now) {
			k.OverdueInvoiceCount++
			k.OverdueAmount = k.OverdueAmount.Add(inv.Amount)
		}
	}
	if paidCount > 0 {
		k.AvgPaymentCycleDays = cycleSum / float64(paidCount)
	}
	return k
}

func buildLogisticsKPIs(snap procurement.Snapshot) LogisticsKPIs {
	var k LogisticsKPIs
	delivered := 0
	var delaySum float64
	for _, sh := range snap.Shipments {
		k.TotalShipments++
		switch sh.Status {
		case procurement.ShipmentStatusInTransit:
			k.InTransit++
		case procurement.ShipmentStatusDelivered:
			delivered++
			if sh.ActualDeliveryDate == nil || !sh.ActualDeliveryDate.After(sh.ETA) {
				k.DeliveredOnTime++
			} else {
				k.DelayedShipments++
				delaySum += sh.ActualDeliveryDate.Sub(sh.ETA).Hours() / 24
			}
		}
	}
	if k.DelayedShipments > 0 {
		k.AvgDelayDays = delaySum / float64(k.DelayedShipments)
	}
	if delivered > 0 {
		k.OnTimeRate = float64(k.DeliveredOnTime) / float64(delivered) * 100
	} else {
		k.OnTimeRate = 100
	}
	return k
}
