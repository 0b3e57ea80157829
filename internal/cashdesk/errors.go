// Package cashdesk holds the domain vocabulary of the cash session engine:
// the error taxonomy shared by services and handlers, and the reconciliation
// policy evaluated at close time.
package cashdesk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors — caller-supplied data violates a precondition.
var (
	ErrInvalidAmount   = errors.New("amount is invalid for this operation")
	ErrInvalidMovement = errors.New("movement is invalid")
)

// State errors — the operation is incompatible with the session lifecycle.
var (
	ErrAlreadyOpen   = errors.New("a cash session is already open for this tenant")
	ErrNoOpenSession = errors.New("no open cash session for this tenant")
	ErrSessionClosed = errors.New("cash session is already closed")
)

// Policy errors — close is rejected pending additional caller input.
var (
	ErrJustificationRequired     = errors.New("discrepancy justification is required to close this session")
	ErrAuthorizationRequired     = errors.New("manager authorization is required to close this session")
	ErrInvalidManagerCredentials = errors.New("manager credentials are invalid")
)

// ErrStoreUnavailable signals an infrastructure failure in the idempotency
// record store. Guarded operations fail closed on it: a rejected retry is
// recoverable, a duplicate financial posting is not.
var ErrStoreUnavailable = errors.New("idempotency store unavailable")

// PolicyError wraps a policy sentinel with the computed discrepancy and the
// tier that triggered it, so the presentation layer can prompt the operator
// with concrete numbers instead of a bare rejection.
type PolicyError struct {
	Err         error
	Tier        Tier
	Discrepancy decimal.Decimal
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s (tier=%s, discrepancy=%s)", e.Err.Error(), e.Tier, e.Discrepancy.StringFixed(2))
}

func (e *PolicyError) Unwrap() error { return e.Err }
