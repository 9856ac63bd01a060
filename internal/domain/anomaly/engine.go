// internal/domain/anomaly/engine.go
package anomaly

import (
	"math"
)

// Observation is one requested line under evaluation
type Observation struct {
	ProductID   uint
	ProductName string
	Quantity    int
}

// Detector flags requested quantities that deviate from a product's
// historical baseline. Pure computation; the caller supplies the history.
type Detector struct {
	threshold  float64 // relative deviation that triggers a finding, e.g. 0.10
	minHistory int     // prior branch requests required before any baseline exists
}

// NewDetector creates a detector with the given threshold and history floor
func NewDetector(threshold float64, minHistory int) *Detector {
	return &Detector{
		threshold:  threshold,
		minHistory: minHistory,
	}
}

// Evaluate compares each observation against its product's history and
// returns a finding for every quantity whose relative deviation from the
// historical mean exceeds the threshold. The minHistory floor counts the
// branch's prior requests in the window, not per-product samples: a branch
// below the floor has no baseline at all, while past the floor any product
// with at least one prior sample is evaluated. Output order follows the
// input order, so evaluation is deterministic for a given request.
func (d *Detector) Evaluate(observations []Observation, history map[uint][]int, priorRequests int) []Finding {
	findings := make([]Finding, 0)

	if priorRequests < d.minHistory {
		return findings
	}

	for _, obs := range observations {
		samples := history[obs.ProductID]
		if len(samples) == 0 {
			continue
		}

		mean := meanOf(samples)
		if mean == 0 {
			continue
		}

		deviation := (float64(obs.Quantity) - mean) / mean
		if math.Abs(deviation) <= d.threshold {
			continue
		}

		anomalyType := TypeHigh
		if deviation < 0 {
			anomalyType = TypeLow
		}

		deviationPercent := math.Abs(deviation) * 100

		findings = append(findings, Finding{
			ProductID:        obs.ProductID,
			ProductName:      obs.ProductName,
			Type:             anomalyType,
			Severity:         severityFor(deviationPercent),
			ObservedQuantity: obs.Quantity,
			HistoricalMean:   mean,
			StdDev:           stdDevOf(samples, mean),
			DeviationPercent: deviationPercent,
			SampleSize:       len(samples),
		})
	}

	return findings
}

// severityFor grades a deviation percentage
func severityFor(deviationPercent float64) Severity {
	switch {
	case deviationPercent > 50:
		return SeverityCritical
	case deviationPercent > 25:
		return SeverityHigh
	default:
		return SeverityModerate
	}
}

func meanOf(samples []int) float64 {
	sum := 0
	for _, s := range samples {
		sum += s
	}
	return float64(sum) / float64(len(samples))
}

// stdDevOf computes the sample standard deviation. A single sample has no
// spread; zero is returned rather than dividing by n-1 = 0.
func stdDevOf(samples []int, mean float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		diff := float64(s) - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(samples)-1))
}
