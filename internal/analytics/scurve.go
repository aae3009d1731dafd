package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// SCurvePoint is one monthly point of the cumulative planned-vs-actual spend
// curve. Both series are non-decreasing by construction.
type SCurvePoint struct {
	Period            string          `json:"month"`
	PlannedCumulative decimal.Decimal `json:"plannedCumulative"`
	ActualCumulative  decimal.Decimal `json:"actualCumulative"`
}

const monthLayout = "2006-01"

// BuildSCurve produces the monthly cumulative spend series from milestone
// values (PO value × payment percentage). Planned accrues on the expected
// date; actual accrues once the milestone completes. Months without movement
// still appear so the curve has no gaps.
func BuildSCurve(snap procurement.Snapshot) []SCurvePoint {
	poByID := make(map[uuid.UUID]procurement.PurchaseOrder, len(snap.POs))
	for _, po := range snap.POs {
		poByID[po.ID] = po
	}

	planned := make(map[string]decimal.Decimal)
	actual := make(map[string]decimal.Decimal)
	var first, last time.Time
	for _, m := range snap.Milestones {
		po, ok := poByID[m.POID]
		if !ok {
			continue
		}
		month := monthOf(m.ExpectedDate)
		key := month.Format(monthLayout)
		value := m.Value(po)
		planned[key] = planned[key].Add(value)
		if m.Status == procurement.MilestoneStatusCompleted {
			actual[key] = actual[key].Add(value)
		}
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}
	if first.IsZero() {
		return nil
	}

	var points []SCurvePoint
	var plannedRun, actualRun decimal.Decimal
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		key := month.Format(monthLayout)
		plannedRun = plannedRun.Add(planned[key])
		actualRun = actualRun.Add(actual[key])
		points = append(points, SCurvePoint{
			Period:            key,
			PlannedCumulative: plannedRun,
			ActualCumulative:  actualRun,
		})
	}
	return points
}

func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
