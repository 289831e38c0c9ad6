package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Thresholds(t *testing.T) {
	cfg := DefaultTierConfig()

	tests := []struct {
		name    string
		score   int64
		tier    FeeTier
		percent float64
	}{
		{"vip boundary", 2000, TierVIP, 0},
		{"vip high", 2500, TierVIP, 0},
		{"standard boundary", 1000, TierStandard, 1},
		{"standard upper edge", 1999, TierStandard, 1},
		{"high risk upper edge", 999, TierHighRisk, 2.5},
		{"zero", 0, TierHighRisk, 2.5},
		{"mid high risk", 500, TierHighRisk, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, percent := cfg.Classify(tt.score)
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.percent, percent)
		})
	}
}

func TestClassify_NegativeScoreFallsToHighRisk(t *testing.T) {
	cfg := DefaultTierConfig()
	tier, percent := cfg.Classify(-50)
	assert.Equal(t, TierHighRisk, tier)
	assert.Equal(t, 2.5, percent)
}

func TestClassify_FeeMonotonicallyNonIncreasing(t *testing.T) {
	cfg := DefaultTierConfig()
	prev := 100.0
	for score := int64(0); score <= 3000; score += 50 {
		_, percent := cfg.Classify(score)
		assert.LessOrEqual(t, percent, prev, "score %d", score)
		assert.Contains(t, []float64{0, 1, 2.5}, percent)
		prev = percent
	}
}

func TestClassify_AlternateConfig(t *testing.T) {
	cfg := TierConfig{
		VIPThreshold:       100,
		StandardThreshold:  50,
		VIPFeePercent:      0.5,
		StandardFeePercent: 1.5,
		HighRiskFeePercent: 3,
	}

	tier, percent := cfg.Classify(100)
	assert.Equal(t, TierVIP, tier)
	assert.Equal(t, 0.5, percent)

	tier, percent = cfg.Classify(75)
	assert.Equal(t, TierStandard, tier)
	assert.Equal(t, 1.5, percent)

	tier, percent = cfg.Classify(10)
	assert.Equal(t, TierHighRisk, tier)
	assert.Equal(t, 3.0, percent)
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "neonGreen", TierColor(TierVIP))
	assert.Equal(t, "blue", TierColor(TierStandard))
	assert.Equal(t, "warningOrange", TierColor(TierHighRisk))
}
