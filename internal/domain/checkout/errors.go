package checkout

import (
	"errors"
	"fmt"

	"github.com/example/ec-checkout/internal/domain/order"
)

var ErrTransitionRejected = errors.New("transition rejected")

// TransitionError reports why an order did not move. Err wraps either
// ErrTransitionRejected or order.ErrValidation. The order's State is unchanged.
type TransitionError struct {
	From   order.State
	To     order.State
	Reason string
	Err    error
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("cannot advance from %s: %s", e.From, e.Reason)
	}
	return fmt.Sprintf("cannot transition from %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

func rejected(from, to order.State, reason string, cause error) *TransitionError {
	err := ErrTransitionRejected
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrTransitionRejected, cause)
	}
	return &TransitionError{From: from, To: to, Reason: reason, Err: err}
}

func invalid(from, to order.State, cause error) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: cause.Error(), Err: cause}
}
