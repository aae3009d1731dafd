package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGenerateAlertsOrderedBySeverity(t *testing.T) {
	k := KPISnapshot{}
	k.Payments.OverdueInvoiceCount = 3
	k.Payments.OverdueAmount = decimal.NewFromInt(120000)
	k.Quality.CriticalNCRs = 1
	k.Quality.OpenNCRs = 7
	k.Logistics.TotalShipments = 10
	k.Logistics.DelayedShipments = 2
	k.Logistics.OnTimeRate = 60

	batches := []DeliveryBatch{{MaterialClass: "steel", Scheduled: true, Status: BatchLate, LateDays: 3}}
	alerts := GenerateAlerts(k, nil, batches, testNow)

	if len(alerts) != 6 {
		t.Fatalf("expected 6 alerts got %d", len(alerts))
	}
	for i := 1; i < len(alerts); i++ {
		if severityRank(alerts[i].Severity) < severityRank(alerts[i-1].Severity) {
			t.Fatalf("alerts out of severity order at %d: %s after %s", i, alerts[i].Severity, alerts[i-1].Severity)
		}
	}
	// Tie-break inside a severity follows rule order.
	if alerts[0].Type != "overdue_invoices" || alerts[1].Type != "critical_ncrs" {
		t.Fatalf("critical tie-break order wrong: %s, %s", alerts[0].Type, alerts[1].Type)
	}
	if alerts[2].Type != "delayed_shipments" || alerts[3].Type != "open_ncrs" || alerts[4].Type != "low_on_time_rate" {
		t.Fatalf("warning tie-break order wrong: %s, %s, %s", alerts[2].Type, alerts[3].Type, alerts[4].Type)
	}
	if alerts[5].Type != "late_batches" {
		t.Fatalf("expected trailing info alert, got %s", alerts[5].Type)
	}
}

func TestNoAlertsOnCleanSnapshot(t *testing.T) {
	k := BuildKPISnapshot(emptySnapshot(), testNow, DefaultConfig())
	alerts := GenerateAlerts(k, nil, nil, testNow)
	if len(alerts) != 0 {
		t.Fatalf("clean snapshot must raise no alerts, got %+v", alerts)
	}
}

func TestOnTimeRateRuleRequiresShipments(t *testing.T) {
	k := KPISnapshot{}
	k.Logistics.TotalShipments = 0
	k.Logistics.OnTimeRate = 0 // pathological, but no shipments exist
	alerts := GenerateAlerts(k, nil, nil, testNow)
	for _, a := range alerts {
		if a.Type == "low_on_time_rate" {
			t.Fatalf("on-time-rate rule must not fire without shipments")
		}
	}
}

func TestOpenNCRThreshold(t *testing.T) {
	k := KPISnapshot{}
	k.Quality.OpenNCRs = 5
	if len(GenerateAlerts(k, nil, nil, testNow)) != 0 {
		t.Fatalf("exactly 5 open NCRs must not alert")
	}
	k.Quality.OpenNCRs = 6
	alerts := GenerateAlerts(k, nil, nil, testNow)
	if len(alerts) != 1 || alerts[0].Severity != SeverityWarning {
		t.Fatalf("6 open NCRs must raise one warning, got %+v", alerts)
	}
}

func TestCriticalRiskRule(t *testing.T) {
	k := KPISnapshot{}
	risks := []RiskAssessment{{RiskScore: 75, RiskLevel: RiskCritical}}
	alerts := GenerateAlerts(k, risks, nil, testNow)
	if len(alerts) != 1 || alerts[0].Type != "critical_risk_pos" {
		t.Fatalf("expected critical-risk warning, got %+v", alerts)
	}
}
