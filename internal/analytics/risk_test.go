package analytics

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sitegrid-erp/sitegrid/internal/procurement"
)

func TestRiskLevelBands(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{19.99, RiskLow},
		{20, RiskMedium},
		{39.99, RiskMedium},
		{40, RiskHigh},
		{59.99, RiskHigh},
		{60, RiskCritical},
		{100, RiskCritical},
	}
	for _, tc := range cases {
		if got := riskLevelFor(tc.score); got != tc.want {
			t.Fatalf("score %.2f: expected %s got %s", tc.score, tc.want, got)
		}
	}
}

func TestScoreRiskCleanPOScoresZero(t *testing.T) {
	supplier := uuid.New()
	po := testPO(supplier, 500000)
	snap := procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{po},
		Suppliers: []procurement.Supplier{{ID: supplier, Name: "Acme Steel", Status: procurement.SupplierStatusActive}},
	}

	risks, supplierRisks := ScoreRisk(snap, testNow, DefaultConfig())
	if len(risks) != 1 {
		t.Fatalf("expected 1 assessment got %d", len(risks))
	}
	if risks[0].RiskScore != 0 {
		t.Fatalf("PO without negative signals must score 0, got %.2f", risks[0].RiskScore)
	}
	if risks[0].RiskLevel != RiskLow {
		t.Fatalf("expected LOW got %s", risks[0].RiskLevel)
	}
	if risks[0].PredictedDelay != 0 {
		t.Fatalf("no late batches, predicted delay must be 0")
	}
	if len(supplierRisks) != 1 || supplierRisks[0].SupplierName != "Acme Steel" {
		t.Fatalf("unexpected supplier aggregation %+v", supplierRisks)
	}
}

func TestScoreRiskMissingSignalContributesZero(t *testing.T) {
	// Only the quality signal fires; the others have no evidence.
	supplier := uuid.New()
	po := testPO(supplier, 500000)
	snap := procurement.Snapshot{
		POs: []procurement.PurchaseOrder{po},
		NCRs: []procurement.NCR{
			{ID: uuid.New(), POID: po.ID, Severity: procurement.NCRSeverityCritical, Status: procurement.NCRStatusOpen, RaisedAt: testNow},
		},
	}

	cfg := DefaultConfig()
	risks, _ := ScoreRisk(snap, testNow, cfg)
	// One critical open NCR weighs 2 of the saturation ceiling of 10.
	want := 2.0 / cfg.NCRRiskSaturation * cfg.RiskWeights.Quality * 100
	if diff := risks[0].RiskScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected score %.2f got %.2f", want, risks[0].RiskScore)
	}
	if risks[0].Signals.Delivery != 0 || risks[0].Signals.Payment != 0 || risks[0].Signals.Reliability != 0 {
		t.Fatalf("absent signals must contribute zero: %+v", risks[0].Signals)
	}
}

func TestScoreRiskPredictedDelayFromLateBatches(t *testing.T) {
	supplier := uuid.New()
	po := testPO(supplier, 500000)
	lateROS := weekStartOf(testNow).AddDate(0, 0, -21)
	item := testItem(po.ID, "steel", 100, ptrTime(lateROS))
	snap := procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{po},
		LineItems: []procurement.LineItem{item},
	}

	risks, _ := ScoreRisk(snap, testNow, DefaultConfig())
	if risks[0].PredictedDelay <= 0 {
		t.Fatalf("late batch must predict a positive delay, got %d", risks[0].PredictedDelay)
	}
	if risks[0].Signals.Delivery != 1 {
		t.Fatalf("single late batch means delivery signal 1.0, got %f", risks[0].Signals.Delivery)
	}
}

func TestSupplierRiskWeightedByPOValue(t *testing.T) {
	supplier := uuid.New()
	big := testPO(supplier, 900000)
	small := testPO(supplier, 100000)
	// Give the small PO a full payment-overdue signal.
	overdue := procurement.Invoice{
		ID:          uuid.New(),
		POID:        small.ID,
		Amount:      money(50000),
		Status:      procurement.InvoiceStatusApproved,
		InvoiceDate: testNow.AddDate(0, -2, 0),
		DueDate:     testNow.AddDate(0, -1, 0),
	}
	snap := procurement.Snapshot{
		POs:       []procurement.PurchaseOrder{big, small},
		Suppliers: []procurement.Supplier{{ID: supplier, Name: "Acme", Status: procurement.SupplierStatusActive}},
		Invoices:  []procurement.Invoice{overdue},
	}

	cfg := DefaultConfig()
	_, supplierRisks := ScoreRisk(snap, testNow, cfg)
	if len(supplierRisks) != 1 {
		t.Fatalf("expected 1 supplier got %d", len(supplierRisks))
	}
	// Small PO scores payment-weight×100, big PO scores 0; the value-weighted
	// average dilutes it to a tenth.
	want := cfg.RiskWeights.Payment * 100 * 0.1
	got := supplierRisks[0].RiskScore
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected weighted score %.3f got %.3f", want, got)
	}
	if !supplierRisks[0].TotalExposure.Equal(money(1000000)) {
		t.Fatalf("exposure should sum PO values, got %s", supplierRisks[0].TotalExposure)
	}
}
