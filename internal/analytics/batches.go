package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

// BatchStatus classifies a delivery batch against its schedule.
type BatchStatus string

const (
	BatchOnTrack BatchStatus = "ON_TRACK"
	BatchAtRisk  BatchStatus = "AT_RISK"
	BatchLate    BatchStatus = "LATE"
	BatchNoROS   BatchStatus = "NO_ROS"
)

// DeliveryStatus classifies a single delivery against its expected date.
type DeliveryStatus string

const (
	DeliveryOnTime       DeliveryStatus = "ON_TIME"
	DeliveryLate         DeliveryStatus = "LATE"
	DeliveryNotDelivered DeliveryStatus = "NOT_DELIVERED"
)

// DeliveryBatch is a (material class × week) aggregate of BOQ line items.
// Items without a ROS date form one unscheduled batch per material class,
// reported separately and never merged into a dated batch.
type DeliveryBatch struct {
	MaterialClass string          `json:"materialClass"`
	WeekStart     time.Time       `json:"weekStart"`
	WeekEnd       time.Time       `json:"weekEnd"`
	Scheduled     bool            `json:"scheduled"`
	RequiredQty   decimal.Decimal `json:"requiredQty"`
	DeliveredQty  decimal.Decimal `json:"deliveredQty"`
	CompletionPct float64         `json:"completionPct"`
	ItemCount     int             `json:"itemCount"`
	Status        BatchStatus     `json:"status"`
	LateDays      int             `json:"lateDays"`
}

// StatusOfDelivery derives the per-delivery status. Never trusted from
// upstream data.
func StatusOfDelivery(d procurement.Delivery) DeliveryStatus {
	if d.ActualDate == nil {
		return DeliveryNotDelivered
	}
	if d.ActualDate.After(d.ExpectedDate) {
		return DeliveryLate
	}
	return DeliveryOnTime
}

// batchFacts is the input to the status rule list.
type batchFacts struct {
	scheduled bool
	weekEnd   time.Time
	shortfall bool
	now       time.Time
	buffer    time.Duration
}

// batchRule pairs a predicate with its outcome. Rules evaluate top to bottom,
// first match wins, making the priority order explicit and testable.
type batchRule struct {
	status  BatchStatus
	applies func(batchFacts) bool
}

var batchRules = []batchRule{
	{BatchNoROS, func(f batchFacts) bool {
		return !f.scheduled
	}},
	{BatchLate, func(f batchFacts) bool {
		return f.weekEnd.Before(f.now) && f.shortfall
	}},
	{BatchAtRisk, func(f batchFacts) bool {
		return !f.weekEnd.Before(f.now) && f.shortfall && !f.weekEnd.After(f.now.Add(f.buffer))
	}},
}

func classifyBatch(f batchFacts) (BatchStatus, int) {
	for _, rule := range batchRules {
		if rule.applies(f) {
			if rule.status == BatchLate {
				return BatchLate, lateDays(f.now, f.weekEnd)
			}
			return rule.status, 0
		}
	}
	return BatchOnTrack, 0
}

// lateDays counts whole days between the missed deadline and now, at least 1.
func lateDays(now, weekEnd time.Time) int {
	days := int(now.Sub(weekEnd).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}

// weekStartOf truncates t to the Monday 00:00 UTC opening its ISO week.
func weekStartOf(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// BuildDeliveryBatches groups the scoped line items into (material class ×
// week) batches plus one unscheduled bucket per class, then classifies each.
func BuildDeliveryBatches(snap procurement.Snapshot, now time.Time, cfg Config) []DeliveryBatch {
	return aggregateBatches(snap.LineItems, deliveredByItem(snap.Deliveries), now, cfg)
}

// deliveredByItem sums delivered quantities per line item. A delivery counts
// once received regardless of when it arrived.
func deliveredByItem(deliveries []procurement.Delivery) map[uuid.UUID]decimal.Decimal {
	sums := make(map[uuid.UUID]decimal.Decimal, len(deliveries))
	for _, d := range deliveries {
		if d.ActualDate == nil {
			continue
		}
		sums[d.LineItemID] = sums[d.LineItemID].Add(d.Quantity)
	}
	return sums
}

type batchKey struct {
	class     string
	weekStart time.Time
	scheduled bool
}

func aggregateBatches(items []procurement.LineItem, delivered map[uuid.UUID]decimal.Decimal, now time.Time, cfg Config) []DeliveryBatch {
	now = now.UTC()
	buckets := make(map[batchKey]*DeliveryBatch)
	for _, li := range items {
		key := batchKey{class: li.MaterialClass}
		if li.ROSDate != nil {
			key.scheduled = true
			key.weekStart = weekStartOf(*li.ROSDate)
		}
		batch, ok := buckets[key]
		if !ok {
			batch = &DeliveryBatch{
				MaterialClass: li.MaterialClass,
				Scheduled:     key.scheduled,
			}
			if key.scheduled {
				batch.WeekStart = key.weekStart
				batch.WeekEnd = key.weekStart.AddDate(0, 0, 7)
			}
			buckets[key] = batch
		}
		batch.ItemCount++
		batch.RequiredQty = batch.RequiredQty.Add(li.RequiredQty)
		batch.DeliveredQty = batch.DeliveredQty.Add(delivered[li.ID])
	}

	batches := make([]DeliveryBatch, 0, len(buckets))
	for _, batch := range buckets {
		facts := batchFacts{
			scheduled: batch.Scheduled,
			weekEnd:   batch.WeekEnd,
			shortfall: batch.DeliveredQty.LessThan(batch.RequiredQty),
			now:       now,
			buffer:    time.Duration(cfg.AtRiskWindowDays) * 24 * time.Hour,
		}
		batch.Status, batch.LateDays = classifyBatch(facts)
		// Zero-required batches stay out of percentage math but keep counts.
		if batch.RequiredQty.IsPositive() {
			pct, _ := batch.DeliveredQty.Div(batch.RequiredQty).Mul(decimal.NewFromInt(100)).Float64()
			batch.CompletionPct = pct
		}
		batches = append(batches, *batch)
	}

	sort.Slice(batches, func(i, j int) bool {
		if batches[i].MaterialClass != batches[j].MaterialClass {
			return batches[i].MaterialClass < batches[j].MaterialClass
		}
		if batches[i].Scheduled != batches[j].Scheduled {
			return batches[i].Scheduled
		}
		return batches[i].WeekStart.Before(batches[j].WeekStart)
	})
	return batches
}
