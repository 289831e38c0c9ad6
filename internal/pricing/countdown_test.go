package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

func TestDeriveCountdown_ExactExpiry(t *testing.T) {
	const executedAt = int64(1_700_000_000)
	const duration = int64(86400)

	cd, err := DeriveCountdown(executedAt, duration, executedAt+duration)
	require.NoError(t, err)

	assert.True(t, cd.IsExpired)
	assert.Zero(t, cd.Days)
	assert.Zero(t, cd.Hours)
	assert.Zero(t, cd.Minutes)
	assert.Zero(t, cd.Seconds)
	assert.Zero(t, cd.TotalSeconds)
	assert.Equal(t, 100.0, cd.ProgressPercent)
}

func TestDeriveCountdown_OneHourIn(t *testing.T) {
	const executedAt = int64(1_700_000_000)

	cd, err := DeriveCountdown(executedAt, 86400, executedAt+3600)
	require.NoError(t, err)

	assert.False(t, cd.IsExpired)
	assert.Equal(t, int64(0), cd.Days)
	assert.Equal(t, int64(23), cd.Hours)
	assert.Equal(t, int64(0), cd.Minutes)
	assert.Equal(t, int64(0), cd.Seconds)
	assert.Equal(t, int64(82800), cd.TotalSeconds)
	assert.InDelta(t, 100.0/24.0, cd.ProgressPercent, 0.001)
}

func TestDeriveCountdown_UnitSplit(t *testing.T) {
	const executedAt = int64(1_700_000_000)
	// 2 days, 3 hours, 4 minutes, 5 seconds remaining.
	remaining := int64(2*86400 + 3*3600 + 4*60 + 5)
	duration := int64(7 * 86400)

	cd, err := DeriveCountdown(executedAt, duration, executedAt+duration-remaining)
	require.NoError(t, err)

	assert.Equal(t, int64(2), cd.Days)
	assert.Equal(t, int64(3), cd.Hours)
	assert.Equal(t, int64(4), cd.Minutes)
	assert.Equal(t, int64(5), cd.Seconds)
	assert.Equal(t, remaining, cd.TotalSeconds)
}

func TestDeriveCountdown_PastExpiry(t *testing.T) {
	const executedAt = int64(1_700_000_000)

	cd, err := DeriveCountdown(executedAt, 3600, executedAt+7200)
	require.NoError(t, err)
	assert.True(t, cd.IsExpired)
	assert.Zero(t, cd.TotalSeconds)
}

func TestDeriveCountdown_ClockBeforeExecution(t *testing.T) {
	// A skewed clock reading before executedAt must not push progress
	// below zero.
	const executedAt = int64(1_700_000_000)

	cd, err := DeriveCountdown(executedAt, 3600, executedAt-100)
	require.NoError(t, err)
	assert.False(t, cd.IsExpired)
	assert.Equal(t, 0.0, cd.ProgressPercent)
	assert.Equal(t, int64(3700), cd.TotalSeconds)
}

func TestDeriveCountdown_NeverEnteredEscrow(t *testing.T) {
	_, err := DeriveCountdown(0, 86400, 1_700_000_000)
	assert.ErrorIs(t, err, domain.ErrNotInEscrow)
}

func TestDeriveCountdown_NonPositiveDuration(t *testing.T) {
	_, err := DeriveCountdown(1_700_000_000, 0, 1_700_000_100)
	assert.Error(t, err)
}
