package analytics

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

func richSnapshot() procurement.Snapshot {
	supplier := uuid.New()
	po := testPO(supplier, 500000)
	ros := testNow.AddDate(0, 0, -10)
	item := testItem(po.ID, "rebar", 100, &ros)
	return procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{po},
		Suppliers: []procurement.Supplier{{ID: supplier, Name: "Acme Steel", Status: procurement.SupplierStatusActive}},
		LineItems: []procurement.LineItem{item},
		Deliveries: []procurement.Delivery{
			testDelivery(item.ID, 40, ptrTime(testNow.AddDate(0, 0, -8))),
		},
		Invoices: []procurement.Invoice{
			invoice(po.ID, 50000, procurement.InvoiceStatusApproved, -10),
		},
		NCRs: []procurement.NCR{
			{ID: uuid.New(), POID: po.ID, Severity: procurement.NCRSeverityHigh, Status: procurement.NCRStatusOpen, RaisedAt: testNow.AddDate(0, 0, -3)},
		},
		ChangeOrders: []procurement.ChangeOrder{
			changeOrder(po.ID, 20000, procurement.COCauseScope, procurement.COStatusApproved),
		},
		Milestones: []procurement.Milestone{
			milestone(po.ID, 40, testNow.AddDate(0, -1, 0), true),
			milestone(po.ID, 60, testNow.AddDate(0, 2, 0), false),
		},
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	snap := richSnapshot()
	w := Window{}.Resolve(testNow)
	cfg := DefaultConfig()

	first := Compute(snap, w, cfg)
	second := Compute(snap, w, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield identical output")
	}
	if !first.ComputedAt.Equal(testNow) {
		t.Fatalf("computedAt must be the resolved now, got %s", first.ComputedAt)
	}
}

func TestComputeEmptySnapshotIsValid(t *testing.T) {
	r := Compute(emptySnapshot(), Window{}.Resolve(testNow), DefaultConfig())
	if len(r.Alerts) != 0 || len(r.RiskAssessments) != 0 || len(r.DeliveryBatches) != 0 {
		t.Fatalf("empty snapshot must produce empty derived lists")
	}
	if r.KPIs.Logistics.OnTimeRate != 100 {
		t.Fatalf("zero delivered shipments defaults to 100%% on-time, got %.1f", r.KPIs.Logistics.OnTimeRate)
	}
	if len(r.Cashflow) != DefaultConfig().CashflowPeriods {
		t.Fatalf("forecast must always emit its full horizon, got %d", len(r.Cashflow))
	}
}

func TestComputeWiresEveryView(t *testing.T) {
	r := Compute(richSnapshot(), Window{}.Resolve(testNow), DefaultConfig())
	if len(r.DeliveryBatches) == 0 {
		t.Fatalf("expected delivery batches")
	}
	if len(r.RiskAssessments) == 0 || len(r.SupplierRisks) == 0 {
		t.Fatalf("expected risk output")
	}
	if len(r.Alerts) == 0 {
		t.Fatalf("overdue invoice and open NCR must alert")
	}
	if !r.COBreakdown.Total.Equal(money(20000)) {
		t.Fatalf("approved CO must appear in the breakdown, total %s", r.COBreakdown.Total)
	}
	if len(r.SCurve) == 0 {
		t.Fatalf("milestones must produce an s-curve")
	}
	if r.Health.Overall <= 0 || r.Health.Overall > 100 {
		t.Fatalf("health out of range: %.2f", r.Health.Overall)
	}
}
