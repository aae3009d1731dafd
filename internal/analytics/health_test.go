package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestHealthScoreComposite(t *testing.T) {
	// committed 1,000,000 / paid 250,000 → financial 25; quality 100,
	// logistics 100, progress 50 → composite 68.75.
	k := KPISnapshot{}
	k.Financial.TotalCommitted = decimal.NewFromInt(1000000)
	k.Financial.TotalPaid = decimal.NewFromInt(250000)
	k.Quality.NCRRate = 0
	k.Logistics.OnTimeRate = 100
	k.Progress.PhysicalProgress = 50

	h := ComputeHealthScore(k, DefaultConfig())
	if h.Financial != 25 {
		t.Fatalf("expected financial 25 got %.2f", h.Financial)
	}
	if h.Overall != 68.75 {
		t.Fatalf("expected composite 68.75 got %.4f", h.Overall)
	}
	if h.Label != HealthGood {
		t.Fatalf("68.75 maps to good, got %s", h.Label)
	}
}

func TestHealthScoreZeroShipmentsDefaultsLogistics(t *testing.T) {
	// KPI builder sets OnTimeRate=100 when nothing was delivered.
	k := BuildKPISnapshot(emptySnapshot(), testNow, DefaultConfig())
	h := ComputeHealthScore(k, DefaultConfig())
	if h.Logistics != 100 {
		t.Fatalf("zero shipments must default logistics to 100, got %.2f", h.Logistics)
	}
}

func TestHealthScoreClampsPathologicalInputs(t *testing.T) {
	k := KPISnapshot{}
	k.Financial.TotalCommitted = decimal.Zero
	k.Financial.TotalPaid = decimal.NewFromInt(5000000) // paid with zero committed
	k.Quality.NCRRate = 500                             // absurd defect rate
	k.Logistics.OnTimeRate = 100
	k.Progress.PhysicalProgress = -20

	h := ComputeHealthScore(k, DefaultConfig())
	for name, v := range map[string]float64{
		"overall":   h.Overall,
		"financial": h.Financial,
		"quality":   h.Quality,
		"logistics": h.Logistics,
		"progress":  h.Progress,
	} {
		if v < 0 || v > 100 {
			t.Fatalf("%s subscore out of range: %.2f", name, v)
		}
	}
	if h.Quality != 0 {
		t.Fatalf("saturated NCR rate must floor quality at 0, got %.2f", h.Quality)
	}
	if h.Progress != 0 {
		t.Fatalf("negative progress must clamp to 0, got %.2f", h.Progress)
	}
}

func TestHealthLabels(t *testing.T) {
	cases := []struct {
		score float64
		want  HealthLabel
	}{
		{0, HealthCritical},
		{19.9, HealthCritical},
		{20, HealthPoor},
		{40, HealthFair},
		{60, HealthGood},
		{80, HealthExcellent},
		{100, HealthExcellent},
	}
	for _, tc := range cases {
		if got := healthLabelFor(tc.score); got != tc.want {
			t.Fatalf("score %.1f: expected %s got %s", tc.score, tc.want, got)
		}
	}
}
