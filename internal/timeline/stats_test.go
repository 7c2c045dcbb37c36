package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, percentile(sorted, 0.50), 1e-4)
	assert.InDelta(t, 4.0, percentile(sorted, 0.75), 1e-4)
	assert.InDelta(t, 4.6, percentile(sorted, 0.90), 1e-4)
	assert.InDelta(t, 5.0, percentile(sorted, 1.00), 1e-4)
	assert.InDelta(t, 1.0, percentile(sorted, 0.00), 1e-4)
}

func TestPercentileEdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 0.9))
	assert.Equal(t, 7.0, percentile([]float64{7}, 0.9))
}

func TestMedianEvenCountInterpolates(t *testing.T) {
	assert.InDelta(t, 2.5, median([]float64{4, 1, 3, 2}), 1e-9)
	assert.InDelta(t, 3.0, median([]float64{5, 1, 3}), 1e-9)
}

func TestCoefficientOfVariation(t *testing.T) {
	// Constant gaps: zero variance.
	assert.InDelta(t, 0.0, coefficientOfVariation([]float64{5, 5, 5, 5}), 1e-9)
	// Highly clustered gaps: CV above 1.
	assert.Greater(t, coefficientOfVariation([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}), 1.0)
	assert.Equal(t, 0.0, coefficientOfVariation(nil))
}
