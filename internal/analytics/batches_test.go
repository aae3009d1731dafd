package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

func TestBatchLateWithShortfall(t *testing.T) {
	// requiredQty=100, deliveredQty=40, week ended exactly 5 days ago.
	now := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC) // Saturday
	po := testPO(uuid.New(), 100000)
	ros := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC) // week Aug 10-17
	item := testItem(po.ID, "steel", 100, ptrTime(ros))
	snap := procurement.Snapshot{
		POs:        []procurement.PurchaseOrder{po},
		LineItems:  []procurement.LineItem{item},
		Deliveries: []procurement.Delivery{testDelivery(item.ID, 40, ptrTime(now.AddDate(0, 0, -6)))},
	}

	batches := BuildDeliveryBatches(snap, now, DefaultConfig())
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch got %d", len(batches))
	}
	b := batches[0]
	if b.Status != BatchLate {
		t.Fatalf("expected LATE got %s", b.Status)
	}
	if b.LateDays != 5 {
		t.Fatalf("expected 5 late days got %d", b.LateDays)
	}
}

func TestBatchAtRiskWithinBuffer(t *testing.T) {
	// Same shortfall, week ends 10 days out: inside the 14-day buffer.
	po := testPO(uuid.New(), 100000)
	ros := weekStartOf(testNow).AddDate(0, 0, 3) // weekEnd = weekStart+10d
	item := testItem(po.ID, "steel", 100, ptrTime(ros))
	snap := procurement.Snapshot{
		POs:        []procurement.PurchaseOrder{po},
		LineItems:  []procurement.LineItem{item},
		Deliveries: []procurement.Delivery{testDelivery(item.ID, 40, ptrTime(testNow.AddDate(0, 0, -1)))},
	}

	batches := BuildDeliveryBatches(snap, testNow, DefaultConfig())
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch got %d", len(batches))
	}
	if batches[0].Status != BatchAtRisk {
		t.Fatalf("expected AT_RISK got %s", batches[0].Status)
	}
	if batches[0].LateDays != 0 {
		t.Fatalf("AT_RISK batch must have zero late days, got %d", batches[0].LateDays)
	}
}

func TestBatchOnTrackOutsideBuffer(t *testing.T) {
	po := testPO(uuid.New(), 100000)
	ros := weekStartOf(testNow).AddDate(0, 0, 60)
	item := testItem(po.ID, "steel", 100, ptrTime(ros))
	snap := procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{po},
		LineItems: []procurement.LineItem{item},
	}

	batches := BuildDeliveryBatches(snap, testNow, DefaultConfig())
	if batches[0].Status != BatchOnTrack {
		t.Fatalf("expected ON_TRACK got %s", batches[0].Status)
	}
}

func TestUnscheduledItemsFormDistinctBucket(t *testing.T) {
	po := testPO(uuid.New(), 100000)
	ros := weekStartOf(testNow).AddDate(0, 0, 7)
	scheduled := testItem(po.ID, "cement", 50, ptrTime(ros))
	unscheduled := testItem(po.ID, "cement", 30, nil)
	snap := procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{po},
		LineItems: []procurement.LineItem{scheduled, unscheduled},
	}

	batches := BuildDeliveryBatches(snap, testNow, DefaultConfig())
	if len(batches) != 2 {
		t.Fatalf("expected scheduled + unscheduled buckets, got %d", len(batches))
	}
	var noROS *DeliveryBatch
	for i := range batches {
		if !batches[i].Scheduled {
			noROS = &batches[i]
		} else if batches[i].ItemCount != 1 {
			t.Fatalf("unscheduled item leaked into dated batch")
		}
	}
	if noROS == nil {
		t.Fatalf("unscheduled bucket missing")
	}
	if noROS.Status != BatchNoROS {
		t.Fatalf("expected NO_ROS got %s", noROS.Status)
	}
	if noROS.LateDays != 0 {
		t.Fatalf("NO_ROS batch must have zero late days")
	}
}

func TestZeroRequiredQtyExcludedFromPercentage(t *testing.T) {
	po := testPO(uuid.New(), 100000)
	ros := weekStartOf(testNow).AddDate(0, 0, 30)
	item := testItem(po.ID, "rebar", 0, ptrTime(ros))
	snap := procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{po},
		LineItems: []procurement.LineItem{item},
	}

	batches := BuildDeliveryBatches(snap, testNow, DefaultConfig())
	b := batches[0]
	if b.ItemCount != 1 {
		t.Fatalf("zero-qty item must still be counted")
	}
	if b.CompletionPct != 0 {
		t.Fatalf("zero-qty batch must not produce a completion percentage, got %f", b.CompletionPct)
	}
}

func TestLateImpliesPositiveLateDays(t *testing.T) {
	po := testPO(uuid.New(), 100000)
	var items []procurement.LineItem
	for offset := -30; offset <= 30; offset += 5 {
		ros := testNow.AddDate(0, 0, offset)
		items = append(items, testItem(po.ID, "mixed", 10, ptrTime(ros)))
	}
	items = append(items, testItem(po.ID, "mixed", 10, nil))
	snap := procurement.Snapshot{POs: []procurement.PurchaseOrder{po}, LineItems: items}

	for _, b := range BuildDeliveryBatches(snap, testNow, DefaultConfig()) {
		if b.Status == BatchLate && b.LateDays <= 0 {
			t.Fatalf("LATE batch with non-positive lateDays: %+v", b)
		}
		if b.Status != BatchLate && b.LateDays != 0 {
			t.Fatalf("%s batch with non-zero lateDays: %+v", b.Status, b)
		}
	}
}

func TestStatusOfDelivery(t *testing.T) {
	expected := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		actual *time.Time
		want   DeliveryStatus
	}{
		{"not delivered", nil, DeliveryNotDelivered},
		{"on time", ptrTime(expected), DeliveryOnTime},
		{"early", ptrTime(expected.AddDate(0, 0, -2)), DeliveryOnTime},
		{"late", ptrTime(expected.AddDate(0, 0, 1)), DeliveryLate},
	}
	for _, tc := range cases {
		d := procurement.Delivery{ExpectedDate: expected, ActualDate: tc.actual}
		if got := StatusOfDelivery(d); got != tc.want {
			t.Fatalf("%s: expected %s got %s", tc.name, tc.want, got)
		}
	}
}
