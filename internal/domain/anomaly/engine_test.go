// internal/domain/anomaly/engine_test.go
package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorEvaluate(t *testing.T) {
	detector := NewDetector(0.10, 3)

	t.Run("flags a quantity far above the historical mean", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 35},
		}
		history := map[uint][]int{
			10: {20, 20, 20},
		}

		findings := detector.Evaluate(observations, history, 3)

		require.Len(t, findings, 1)
		f := findings[0]
		assert.Equal(t, TypeHigh, f.Type)
		assert.Equal(t, 35, f.ObservedQuantity)
		assert.InDelta(t, 20.0, f.HistoricalMean, 0.001)
		assert.InDelta(t, 75.0, f.DeviationPercent, 0.001)
		assert.Equal(t, SeverityCritical, f.Severity)
		assert.Equal(t, 3, f.SampleSize)
	})

	t.Run("flags a quantity far below the historical mean", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 10},
		}
		history := map[uint][]int{
			10: {20, 20, 20, 20},
		}

		findings := detector.Evaluate(observations, history, 4)

		require.Len(t, findings, 1)
		assert.Equal(t, TypeLow, findings[0].Type)
		assert.InDelta(t, 50.0, findings[0].DeviationPercent, 0.001)
	})

	t.Run("skips everything when the branch is below the history floor", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 100},
		}
		history := map[uint][]int{
			10: {20, 20},
		}

		findings := detector.Evaluate(observations, history, 2)
		assert.Empty(t, findings)
	})

	t.Run("evaluates once the branch reaches the floor", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 100},
		}
		history := map[uint][]int{
			10: {20, 20, 20},
		}

		findings := detector.Evaluate(observations, history, 3)
		assert.Len(t, findings, 1)
	})

	t.Run("floor counts branch requests, not per-product samples", func(t *testing.T) {
		// Three prior requests at the branch, but the product appears in
		// only two of them. The baseline still exists.
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 100},
		}
		history := map[uint][]int{
			10: {20, 20},
		}

		findings := detector.Evaluate(observations, history, 3)

		require.Len(t, findings, 1)
		assert.Equal(t, TypeHigh, findings[0].Type)
		assert.InDelta(t, 400.0, findings[0].DeviationPercent, 0.001)
		assert.Equal(t, SeverityCritical, findings[0].Severity)
		assert.Equal(t, 2, findings[0].SampleSize)
	})

	t.Run("skips products with no samples at all", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 100},
		}

		findings := detector.Evaluate(observations, map[uint][]int{}, 5)
		assert.Empty(t, findings)
	})

	t.Run("does not flag deviations at or under the threshold", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 22},
			{ProductID: 11, ProductName: "Toner Cartridge", Quantity: 18},
		}
		history := map[uint][]int{
			10: {20, 20, 20}, // +10%, exactly at threshold
			11: {20, 20, 20}, // -10%
		}

		findings := detector.Evaluate(observations, history, 3)
		assert.Empty(t, findings)
	})

	t.Run("flags deviations just over the threshold", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 23},
		}
		history := map[uint][]int{
			10: {20, 20, 20}, // +15%
		}

		findings := detector.Evaluate(observations, history, 3)

		require.Len(t, findings, 1)
		assert.Equal(t, SeverityModerate, findings[0].Severity)
	})

	t.Run("computes sample standard deviation over the history", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 40},
		}
		history := map[uint][]int{
			10: {18, 20, 22},
		}

		findings := detector.Evaluate(observations, history, 3)

		require.Len(t, findings, 1)
		assert.InDelta(t, 2.0, findings[0].StdDev, 0.001)
	})

	t.Run("skips a zero-mean baseline", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 5},
		}
		history := map[uint][]int{
			10: {0, 0, 0},
		}

		findings := detector.Evaluate(observations, history, 3)
		assert.Empty(t, findings)
	})

	t.Run("output follows input order", func(t *testing.T) {
		observations := []Observation{
			{ProductID: 11, ProductName: "Toner Cartridge", Quantity: 50},
			{ProductID: 10, ProductName: "Copy Paper A4", Quantity: 50},
		}
		history := map[uint][]int{
			10: {20, 20, 20},
			11: {20, 20, 20},
		}

		first := detector.Evaluate(observations, history, 3)
		second := detector.Evaluate(observations, history, 3)

		require.Len(t, first, 2)
		assert.Equal(t, uint(11), first[0].ProductID)
		assert.Equal(t, uint(10), first[1].ProductID)
		assert.Equal(t, first, second)
	})
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityModerate, severityFor(15))
	assert.Equal(t, SeverityModerate, severityFor(25))
	assert.Equal(t, SeverityHigh, severityFor(26))
	assert.Equal(t, SeverityHigh, severityFor(50))
	assert.Equal(t, SeverityCritical, severityFor(51))
}

func TestStdDevOf(t *testing.T) {
	// A single sample has no spread
	assert.Equal(t, 0.0, stdDevOf([]int{7}, 7))
	assert.InDelta(t, 2.0, stdDevOf([]int{18, 20, 22}, 20), 0.001)
}

func TestFindingMessage(t *testing.T) {
	f := &Finding{
		ProductID:        10,
		ProductName:      "Copy Paper A4",
		Type:             TypeHigh,
		ObservedQuantity: 35,
		HistoricalMean:   20,
		DeviationPercent: 75,
		SampleSize:       3,
	}

	msg := f.Message()
	assert.Contains(t, msg, "Copy Paper A4")
	assert.Contains(t, msg, "75.0%")
	assert.Contains(t, msg, "above")

	f.Type = TypeLow
	assert.Contains(t, f.Message(), "below")
}
