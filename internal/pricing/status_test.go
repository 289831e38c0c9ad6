package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

func TestDeriveStatus_FiveState(t *testing.T) {
	tests := []struct {
		code     uint8
		disputed bool
		want     domain.DisplayStatus
	}{
		{0, false, domain.StatusActive},
		{1, false, domain.StatusEscrow},
		{2, false, domain.StatusCompleted},
		{3, false, domain.StatusCancelled},
		{4, false, domain.StatusDisputed},
		// The disputed flag wins over every code: disputes are raised
		// mid-escrow before the contract status integer updates.
		{0, true, domain.StatusDisputed},
		{1, true, domain.StatusDisputed},
		{2, true, domain.StatusDisputed},
		{3, true, domain.StatusDisputed},
		{4, true, domain.StatusDisputed},
	}

	for _, tt := range tests {
		got, err := DeriveStatus(tt.code, tt.disputed, domain.ModelFiveState)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "code %d disputed %v", tt.code, tt.disputed)
	}
}

func TestDeriveStatus_ThreeState(t *testing.T) {
	tests := []struct {
		code uint8
		want domain.DisplayStatus
	}{
		{0, domain.StatusActive},
		{1, domain.StatusCompleted}, // legacy "Executed" displays as Completed
		{2, domain.StatusCancelled},
	}

	for _, tt := range tests {
		got, err := DeriveStatus(tt.code, false, domain.ModelThreeState)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "code %d", tt.code)
	}
}

func TestDeriveStatus_OutOfRangeCode(t *testing.T) {
	_, err := DeriveStatus(3, false, domain.ModelThreeState)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)

	_, err = DeriveStatus(5, false, domain.ModelFiveState)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestDeriveStatus_UnknownModel(t *testing.T) {
	_, err := DeriveStatus(0, false, domain.StatusModel("four-state"))
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	for code := uint8(0); code <= 4; code++ {
		first, err := DeriveStatus(code, false, domain.ModelFiveState)
		require.NoError(t, err)
		second, err := DeriveStatus(code, false, domain.ModelFiveState)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}
