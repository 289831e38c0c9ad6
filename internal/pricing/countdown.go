package pricing

import (
	"fmt"

	"github.com/trusttrade/trustd/internal/domain"
)

// EscrowCountdown is the remaining escrow hold time split into display
// units. Recomputed from wall-clock time on every tick; never persisted.
type EscrowCountdown struct {
	Days            int64   `json:"days"`
	Hours           int64   `json:"hours"`
	Minutes         int64   `json:"minutes"`
	Seconds         int64   `json:"seconds"`
	TotalSeconds    int64   `json:"totalSeconds"`
	IsExpired       bool    `json:"isExpired"`
	ProgressPercent float64 `json:"progressPercent"`
}

// DeriveCountdown computes the countdown for a trade that entered escrow at
// executedAt (unix seconds) with the given hold duration, evaluated at now.
// The caller owns the 1-second re-evaluation timer.
//
// A zero executedAt means the trade never entered escrow; that is a distinct
// precondition failure (ErrNotInEscrow), not an expired countdown, and the
// two must never be conflated in display.
func DeriveCountdown(executedAt, escrowDurationSeconds, now int64) (EscrowCountdown, error) {
	if executedAt == 0 {
		return EscrowCountdown{}, fmt.Errorf("pricing: countdown: %w", domain.ErrNotInEscrow)
	}
	if escrowDurationSeconds <= 0 {
		return EscrowCountdown{}, fmt.Errorf("pricing: escrow duration must be positive, got %d", escrowDurationSeconds)
	}

	remaining := executedAt + escrowDurationSeconds - now
	if remaining <= 0 {
		return EscrowCountdown{IsExpired: true, ProgressPercent: 100}, nil
	}

	elapsed := escrowDurationSeconds - remaining
	progress := float64(elapsed) / float64(escrowDurationSeconds) * 100
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	return EscrowCountdown{
		Days:            remaining / 86400,
		Hours:           (remaining % 86400) / 3600,
		Minutes:         (remaining % 3600) / 60,
		Seconds:         remaining % 60,
		TotalSeconds:    remaining,
		IsExpired:       false,
		ProgressPercent: progress,
	}, nil
}
