package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// CashflowPeriod is one forward bucket of payment obligations.
// CumulativeExposure is a running total across periods in chronological
// order; it never resets.
type CashflowPeriod struct {
	Label              string          `json:"period"`
	Start              time.Time       `json:"start"`
	End                time.Time       `json:"end"`
	ExpectedPayments   decimal.Decimal `json:"expectedPayments"`
	PendingInvoices    decimal.Decimal `json:"pendingInvoices"`
	CumulativeExposure decimal.Decimal `json:"cumulativeExposure"`
}

// ForecastCashflow buckets forward-looking obligations into fixed periods
// starting at now. Approved-but-unpaid invoices and committed pending
// milestone values count as expected payments; amounts still awaiting
// approval count as pending. Overdue unpaid amounts land in the first
// bucket rather than disappearing behind the forecast horizon.
func ForecastCashflow(snap procurement.Snapshot, now time.Time, cfg Config) []CashflowPeriod {
	now = now.UTC()
	periodLen := time.Duration(cfg.CashflowPeriodDays) * 24 * time.Hour

	periods := make([]CashflowPeriod, cfg.CashflowPeriods)
	for i := range periods {
		start := now.Add(time.Duration(i) * periodLen)
		periods[i] = CashflowPeriod{
			Label: periodLabel(i, cfg.CashflowPeriodDays),
			Start: start,
			End:   start.Add(periodLen),
		}
	}
	horizon := periods[len(periods)-1].End

	bucketFor := func(due time.Time) int {
		if due.Before(now) {
			return 0
		}
		if !due.Before(horizon) {
			return -1
		}
		return int(due.Sub(now) / periodLen)
	}

	for _, inv := range snap.Invoices {
		var target *decimal.Decimal
		switch inv.Status {
		case procurement.InvoiceStatusApproved:
			idx := bucketFor(inv.DueDate)
			if idx < 0 {
				continue
			}
			target = &periods[idx].ExpectedPayments
		case procurement.InvoiceStatusPendingApproval:
			idx := bucketFor(inv.DueDate)
			if idx < 0 {
				continue
			}
			target = &periods[idx].PendingInvoices
		default:
			continue
		}
		*target = target.Add(inv.Amount)
	}

	poByID := make(map[string]procurement.PurchaseOrder, len(snap.POs))
	for _, po := range snap.POs {
		poByID[po.ID.String()] = po
	}
	for _, m := range snap.Milestones {
		if m.Status != procurement.MilestoneStatusPending {
			continue
		}
		po, ok := poByID[m.POID.String()]
		if !ok {
			continue
		}
		idx := bucketFor(m.ExpectedDate)
		if idx < 0 {
			continue
		}
		periods[idx].ExpectedPayments = periods[idx].ExpectedPayments.Add(m.Value(po))
	}

	var running decimal.Decimal
	for i := range periods {
		running = running.Add(periods[i].ExpectedPayments).Add(periods[i].PendingInvoices)
		periods[i].CumulativeExposure = running
	}
	return periods
}

func periodLabel(index, days int) string {
	if index == 0 {
		return fmt.Sprintf("Next %d days", days)
	}
	return fmt.Sprintf("Days %d-%d", index*days+1, (index+1)*days)
}
