package pricing

import (
	"fmt"

	"github.com/trusttrade/trustd/internal/domain"
)

// DeriveStatus maps a raw on-chain status code plus the disputed flag to a
// display status under the given contract model.
//
// Three-state (legacy): 0=Active, 1=Executed (displayed as Completed),
// 2=Cancelled. The legacy contract has no dispute flag, so disputed is
// ignored under this model.
//
// Five-state: 0=Active, 1=Escrow, 2=Completed, 3=Cancelled, 4=Disputed.
// A true disputed flag overrides any code: disputes are flagged mid-escrow
// before the contract's own status integer catches up.
func DeriveStatus(statusCode uint8, disputed bool, model domain.StatusModel) (domain.DisplayStatus, error) {
	switch model {
	case domain.ModelThreeState:
		switch statusCode {
		case 0:
			return domain.StatusActive, nil
		case 1:
			return domain.StatusCompleted, nil
		case 2:
			return domain.StatusCancelled, nil
		}
	case domain.ModelFiveState:
		if disputed {
			return domain.StatusDisputed, nil
		}
		switch statusCode {
		case 0:
			return domain.StatusActive, nil
		case 1:
			return domain.StatusEscrow, nil
		case 2:
			return domain.StatusCompleted, nil
		case 3:
			return domain.StatusCancelled, nil
		case 4:
			return domain.StatusDisputed, nil
		}
	default:
		return "", fmt.Errorf("pricing: status model %q: %w", model, domain.ErrUnknownStatus)
	}
	return "", fmt.Errorf("pricing: code %d under %s model: %w", statusCode, model, domain.ErrUnknownStatus)
}
