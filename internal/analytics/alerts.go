package analytics

import (
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AlertSeverity orders alerts: critical sorts before warning before info.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// ComplianceAlert is an ephemeral alert re-derived on every fetch. Dedup and
// "seen" state belong to the notification subsystem, not here.
type ComplianceAlert struct {
	Severity    AlertSeverity `json:"severity"`
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	EntityKind  string        `json:"entityKind"`
}

// alertFacts is the snapshot of derived numbers the rules evaluate against.
// Rules never look at raw records, so alerts always agree with the dashboard.
type alertFacts struct {
	kpis    KPISnapshot
	risks   []RiskAssessment
	batches []DeliveryBatch
}

// alertRule is one (predicate, outcome) entry of the ordered rule list.
// Rule order doubles as the tie-break order within a severity.
type alertRule struct {
	severity AlertSeverity
	typ      string
	kind     string
	applies  func(alertFacts) bool
	title    string
	describe func(alertFacts, *message.Printer) string
}

const lowOnTimeRateThreshold = 80.0

var alertRules = []alertRule{
	{
		severity: SeverityCritical,
		typ:      "overdue_invoices",
		kind:     "invoice",
		applies:  func(f alertFacts) bool { return f.kpis.Payments.OverdueInvoiceCount > 0 },
		title:    "Overdue invoices",
		describe: func(f alertFacts, p *message.Printer) string {
			amount, _ := f.kpis.Payments.OverdueAmount.Float64()
			return p.Sprintf("%d invoices are past due for a total of %.2f", f.kpis.Payments.OverdueInvoiceCount, amount)
		},
	},
	{
		severity: SeverityCritical,
		typ:      "critical_ncrs",
		kind:     "ncr",
		applies:  func(f alertFacts) bool { return f.kpis.Quality.CriticalNCRs > 0 },
		title:    "Critical non-conformance reports",
		describe: func(f alertFacts, p *message.Printer) string {
			return p.Sprintf("%d critical NCRs require immediate attention", f.kpis.Quality.CriticalNCRs)
		},
	},
	{
		severity: SeverityWarning,
		typ:      "delayed_shipments",
		kind:     "shipment",
		applies:  func(f alertFacts) bool { return f.kpis.Logistics.DelayedShipments > 0 },
		title:    "Delayed shipments",
		describe: func(f alertFacts, p *message.Printer) string {
			return p.Sprintf("%d shipments arrived after their ETA", f.kpis.Logistics.DelayedShipments)
		},
	},
	{
		severity: SeverityWarning,
		typ:      "open_ncrs",
		kind:     "ncr",
		applies:  func(f alertFacts) bool { return f.kpis.Quality.OpenNCRs > 5 },
		title:    "Open NCR backlog",
		describe: func(f alertFacts, p *message.Printer) string {
			return p.Sprintf("%d NCRs remain open", f.kpis.Quality.OpenNCRs)
		},
	},
	{
		severity: SeverityWarning,
		typ:      "low_on_time_rate",
		kind:     "shipment",
		applies: func(f alertFacts) bool {
			return f.kpis.Logistics.TotalShipments > 0 && f.kpis.Logistics.OnTimeRate < lowOnTimeRateThreshold
		},
		title: "On-time delivery rate below target",
		describe: func(f alertFacts, p *message.Printer) string {
			return p.Sprintf("On-time delivery rate is %.1f%%, below the %.0f%% target", f.kpis.Logistics.OnTimeRate, lowOnTimeRateThreshold)
		},
	},
	{
		severity: SeverityWarning,
		typ:      "critical_risk_pos",
		kind:     "po",
		applies: func(f alertFacts) bool {
			for _, r := range f.risks {
				if r.RiskLevel == RiskCritical {
					return true
				}
			}
			return false
		},
		title: "Purchase orders at critical risk",
		describe: func(f alertFacts, p *message.Printer) string {
			count := 0
			for _, r := range f.risks {
				if r.RiskLevel == RiskCritical {
					count++
				}
			}
			return p.Sprintf("%d purchase orders scored in the critical risk band", count)
		},
	},
	{
		severity: SeverityInfo,
		typ:      "late_batches",
		kind:     "batch",
		applies: func(f alertFacts) bool {
			for _, b := range f.batches {
				if b.Status == BatchLate {
					return true
				}
			}
			return false
		},
		title: "Late delivery batches",
		describe: func(f alertFacts, p *message.Printer) string {
			count := 0
			for _, b := range f.batches {
				if b.Status == BatchLate {
					count++
				}
			}
			return p.Sprintf("%d delivery batches are behind schedule", count)
		},
	},
}

// GenerateAlerts evaluates the rule list against the derived KPI snapshot and
// returns the queue sorted by severity, stable in rule order. Nothing is
// suppressed or deduplicated across calls.
func GenerateAlerts(kpis KPISnapshot, risks []RiskAssessment, batches []DeliveryBatch, now time.Time) []ComplianceAlert {
	facts := alertFacts{kpis: kpis, risks: risks, batches: batches}
	printer := message.NewPrinter(language.English)

	alerts := make([]ComplianceAlert, 0, len(alertRules))
	for _, rule := range alertRules {
		if !rule.applies(facts) {
			continue
		}
		alerts = append(alerts, ComplianceAlert{
			Severity:    rule.severity,
			Type:        rule.typ,
			Title:       rule.title,
			Description: rule.describe(facts, printer),
			EntityKind:  rule.kind,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(alerts[i].Severity) < severityRank(alerts[j].Severity)
	})
	return alerts
}
