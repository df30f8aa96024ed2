package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AllocDesk/internal/domain/models"
)

func TestDrawdownStagingBoundaries(t *testing.T) {
	cfg := DefaultDrawdownConfig()
	cases := []struct {
		mdd        float64
		label      string
		conversion int
	}{
		{-5, models.StageNoise, 0},
		{-15, "stage 1", 20},
		{-19.999, "stage 1", 20},
		{-20.0, "stage 2", 40},
		{-25.0, "stage 3", 60},
		{-30.0, "stage 4", 80},
		{-34.999, "stage 4", 80},
		{-35.0, models.StageFinal, 100},
		{-60, models.StageFinal, 100},
	}
	for _, tc := range cases {
		label, conv := stageFor(cfg, tc.mdd)
		assert.Equal(t, tc.label, label, "mdd %v", tc.mdd)
		assert.Equal(t, tc.conversion, conv, "mdd %v", tc.mdd)
	}
}

func TestEvaluateDrawdown(t *testing.T) {
	cfg := DefaultDrawdownConfig()
	cfg.MAWindow = 2

	// ATH 100, current 80: exactly -20% -> stage 2
	ref := mkSeries("IVV", 100, 90, 80)
	st := EvaluateDrawdown(cfg, ref)
	require.True(t, st.Available)
	assert.InDelta(t, -20.0, st.DrawdownPct, 1e-9)
	assert.Equal(t, "stage 2", st.StageLabel)
	assert.Equal(t, 40, st.ConversionPct)
	assert.True(t, st.MA50Defined)
	assert.Equal(t, models.TrendBroken, st.TrendLabel) // 80 < (90+80)/2
}

func TestEvaluateDrawdownEmptySeries(t *testing.T) {
	st := EvaluateDrawdown(DefaultDrawdownConfig(), models.PriceSeries{})
	assert.False(t, st.Available)
}

func TestTrendLabels(t *testing.T) {
	assert.Equal(t, models.TrendBroken, TrendLabel(95, 100, 96, 0.97))
	assert.Equal(t, models.TrendProfitMax, TrendLabel(98, 100, 90, 0.97))
	assert.Equal(t, models.TrendProfitMax, TrendLabel(97, 100, 90, 0.97)) // boundary inclusive
	assert.Equal(t, models.TrendIntact, TrendLabel(95, 100, 90, 0.97))
	// broken wins over profit-max when both hold
	assert.Equal(t, models.TrendBroken, TrendLabel(98, 100, 99, 0.97))
}
