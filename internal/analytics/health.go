package analytics

// HealthLabel maps a composite score to a presentation band. Labels are for
// display only; alerting has its own thresholds.
type HealthLabel string

const (
	HealthCritical  HealthLabel = "critical"
	HealthPoor      HealthLabel = "poor"
	HealthFair      HealthLabel = "fair"
	HealthGood      HealthLabel = "good"
	HealthExcellent HealthLabel = "excellent"
)

// HealthScore is the single 0-100 composite plus its subscore breakdown.
type HealthScore struct {
	Overall   float64     `json:"overall"`
	Label     HealthLabel `json:"label"`
	Financial float64     `json:"financial"`
	Quality   float64     `json:"quality"`
	Logistics float64     `json:"logistics"`
	Progress  float64     `json:"progress"`
}

// subscore pairs a named 0-100 component with its weight so adding a fifth
// subscore means appending to the list, not rewriting the combination.
type subscore struct {
	value  float64
	weight float64
}

func combine(scores []subscore) float64 {
	var total, weights float64
	for _, s := range scores {
		total += clampScore(s.value) * s.weight
		weights += s.weight
	}
	if weights == 0 {
		return 0
	}
	return clampScore(total / weights)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ComputeHealthScore derives the project health composite from the KPI
// snapshot. Each subscore is clamped to [0,100] regardless of how
// pathological the inputs are.
func ComputeHealthScore(k KPISnapshot, cfg Config) HealthScore {
	committed, _ := k.Financial.TotalCommitted.Float64()
	paid, _ := k.Financial.TotalPaid.Float64()
	if committed < 1 {
		committed = 1
	}

	var h HealthScore
	h.Financial = clampScore(paid / committed * 100)
	h.Quality = clampScore(100 - k.Quality.NCRRate*cfg.NCRRatePenalty)
	// OnTimeRate already defaults to 100 with zero delivered shipments.
	h.Logistics = clampScore(k.Logistics.OnTimeRate)
	h.Progress = clampScore(k.Progress.PhysicalProgress)

	h.Overall = combine([]subscore{
		{h.Financial, cfg.HealthWeights.Financial},
		{h.Quality, cfg.HealthWeights.Quality},
		{h.Logistics, cfg.HealthWeights.Logistics},
		{h.Progress, cfg.HealthWeights.Progress},
	})
	h.Label = healthLabelFor(h.Overall)
	return h
}

func healthLabelFor(score float64) HealthLabel {
	switch {
	case score < 20:
		return HealthCritical
	case score < 40:
		return HealthPoor
	case score < 60:
		return HealthFair
	case score < 80:
		return HealthGood
	default:
		return HealthExcellent
	}
}
