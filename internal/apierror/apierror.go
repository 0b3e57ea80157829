// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// PolicyViolation is returned when a session close is rejected by the
// reconciliation policy. It carries the computed discrepancy and the tier's
// requirements so the client can prompt for the missing input and retry.
type PolicyViolation struct {
	Detail                string `json:"detail"`
	Tier                  string `json:"tier"`
	Discrepancy           string `json:"discrepancy"`
	RequiresJustification bool   `json:"requires_justification"`
	RequiresAuthorization bool   `json:"requires_authorization"`
}
