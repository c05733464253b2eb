package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthRate(t *testing.T) {
	g, err := GrowthRate(105, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, g, 1e-9)

	g, err = GrowthRate(90, 100)
	require.NoError(t, err)
	assert.InDelta(t, -0.10, g, 1e-9)
}

func TestGrowthRateZeroPrevious(t *testing.T) {
	_, err := GrowthRate(100, 0)
	require.Error(t, err)

	var dz *DivisionByZeroError
	assert.ErrorAs(t, err, &dz)
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0.06, TrendRapid},
		{0.05, TrendSteady}, // 阈值本身不算快速增长
		{0.01, TrendSteady},
		{0.0, TrendSteady}, // 零增长归为稳步，不算持平

		{-0.04, TrendFlat},
		{-0.05, TrendDecline}, // 阈值本身已是下滑
		{-0.20, TrendDecline},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyTrend(c.rate), "rate=%v", c.rate)
	}
}
