package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// COCategoryDelta is the summed signed delta for one change-order cause.
// SharePct is computed against the absolute net total, so mixed-sign
// categories can exceed 100% unless clamping is enabled.
type COCategoryDelta struct {
	Category procurement.COCause `json:"category"`
	Delta    decimal.Decimal     `json:"delta"`
	SharePct float64             `json:"sharePct"`
	Count    int                 `json:"count"`
}

// COBreakdown categorises approved change-order deltas. Positive total means
// net cost increase.
type COBreakdown struct {
	Categories []COCategoryDelta `json:"categories"`
	Total      decimal.Decimal   `json:"total"`
}

// coCategoryOrder fixes the presentation order of categories.
var coCategoryOrder = []procurement.COCause{
	procurement.COCauseScope,
	procurement.COCauseRate,
	procurement.COCauseQuantity,
	procurement.COCauseSchedule,
}

// BreakdownChangeOrders sums approved change orders per cause category. The
// cause is an upstream classification, never re-derived here.
func BreakdownChangeOrders(changeOrders []procurement.ChangeOrder, cfg Config) COBreakdown {
	deltas := make(map[procurement.COCause]decimal.Decimal, len(coCategoryOrder))
	counts := make(map[procurement.COCause]int, len(coCategoryOrder))
	var total decimal.Decimal
	for _, co := range changeOrders {
		if co.Status != procurement.COStatusApproved {
			continue
		}
		deltas[co.Cause] = deltas[co.Cause].Add(co.ValueDelta)
		counts[co.Cause]++
		total = total.Add(co.ValueDelta)
	}

	absTotal := total.Abs()
	categories := make([]COCategoryDelta, 0, len(coCategoryOrder))
	for _, cause := range coCategoryOrder {
		entry := COCategoryDelta{Category: cause, Delta: deltas[cause], Count: counts[cause]}
		if absTotal.IsPositive() {
			share, _ := entry.Delta.Div(absTotal).Mul(decimal.NewFromInt(100)).Float64()
			if cfg.ClampCOShares {
				share = clampShare(share)
			}
			entry.SharePct = share
		}
		categories = append(categories, entry)
	}
	return COBreakdown{Categories: categories, Total: total}
}

// clampShare limits a share's magnitude to 100 while preserving its sign.
func clampShare(share float64) float64 {
	if share > 100 {
		return 100
	}
	if share < -100 {
		return -100
	}
	return share
}
