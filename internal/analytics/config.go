package analytics

import (
	"errors"
	"math"
)

// RiskWeights distributes the composite risk score across its signals.
// The four weights must sum to 1.0.
type RiskWeights struct {
	Delivery    float64
	Quality     float64
	Payment     float64
	Reliability float64
}

// HealthWeights distributes the composite health score across its subscores.
// The four weights must sum to 100.
type HealthWeights struct {
	Financial float64
	Quality   float64
	Logistics float64
	Progress  float64
}

// Config carries the tunable constants of the derivation engine. The
// defaults mirror the values the product shipped with; they are empirical
// and intentionally overridable rather than inlined.
type Config struct {
	RiskWeights   RiskWeights
	HealthWeights HealthWeights

	// AtRiskWindowDays is the look-ahead buffer: an undersupplied batch due
	// within this many days is AT_RISK instead of ON_TRACK.
	AtRiskWindowDays int

	// NCRRatePenalty is the quality-subscore penalty per NCR-rate point.
	NCRRatePenalty float64

	// NCRRiskSaturation is the weighted open-NCR count at which the quality
	// risk signal saturates to 1.0.
	NCRRiskSaturation float64

	// MilestoneRiskWindowDays marks pending milestones due within this many
	// days as at risk.
	MilestoneRiskWindowDays int

	// CashflowPeriodDays and CashflowPeriods shape the forward forecast.
	CashflowPeriodDays int
	CashflowPeriods    int

	// ClampCOShares limits change-order category shares to ±100% of the
	// absolute net total. Off by default: mixed-sign deltas legitimately
	// produce shares above 100%.
	ClampCOShares bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		RiskWeights: RiskWeights{
			Delivery:    0.35,
			Quality:     0.25,
			Payment:     0.20,
			Reliability: 0.20,
		},
		HealthWeights: HealthWeights{
			Financial: 25,
			Quality:   25,
			Logistics: 25,
			Progress:  25,
		},
		AtRiskWindowDays:        14,
		NCRRatePenalty:          10,
		NCRRiskSaturation:       10,
		MilestoneRiskWindowDays: 7,
		CashflowPeriodDays:      30,
		CashflowPeriods:         4,
	}
}

const weightTolerance = 1e-9

// Validate checks weight normalisation and bucket shape.
func (c Config) Validate() error {
	riskSum := c.RiskWeights.Delivery + c.RiskWeights.Quality + c.RiskWeights.Payment + c.RiskWeights.Reliability
	if math.Abs(riskSum-1.0) > weightTolerance {
		return errors.New("analytics: risk weights must sum to 1.0")
	}
	healthSum := c.HealthWeights.Financial + c.HealthWeights.Quality + c.HealthWeights.Logistics + c.HealthWeights.Progress
	if math.Abs(healthSum-100) > weightTolerance {
		return errors.New("analytics: health weights must sum to 100")
	}
	if c.AtRiskWindowDays < 0 {
		return errors.New("analytics: at-risk window must not be negative")
	}
	if c.CashflowPeriodDays <= 0 || c.CashflowPeriods <= 0 {
		return errors.New("analytics: cashflow buckets must be positive")
	}
	return nil
}
