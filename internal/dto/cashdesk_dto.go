package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance" validate:"required"`
	Shift          string          `json:"shift"           validate:"required,oneof=morning afternoon night full_day"`
	OpeningNotes   *string         `json:"opening_notes"`
}

type RegisterSaleRequest struct {
	SaleID     string          `json:"sale_id"    validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"     validate:"required,gt=0"`
	Instrument string          `json:"instrument" validate:"required,oneof=cash pix debit_card credit_card other"`
}

// ManualMovementRequest covers operator-entered withdrawals and
// reinforcements. These are authorized interactively at the drawer and are
// not idempotency-guarded the way network-retried sale postings are.
type ManualMovementRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reason string          `json:"reason" validate:"required,min=3"`
}

type CloseSessionRequest struct {
	CountedCashBalance decimal.Decimal     `json:"counted_cash_balance" validate:"min=0"`
	ClosingNotes       *string             `json:"closing_notes"`
	Justification      *string             `json:"justification"`
	ManagerAuth        *ManagerCredentials `json:"manager_auth"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SessionTotals is the derived aggregation of a session's movement ledger.
// It is recomputed from the ledger on every read — never stored.
type SessionTotals struct {
	CashIn          decimal.Decimal `json:"cash_in"`
	PixIn           decimal.Decimal `json:"pix_in"`
	DebitIn         decimal.Decimal `json:"debit_in"`
	CreditIn        decimal.Decimal `json:"credit_in"`
	CashOut         decimal.Decimal `json:"cash_out"`
	ReinforcementIn decimal.Decimal `json:"reinforcement_in"`
	SaleCount       int64           `json:"sale_count"`
}

type DiscrepancyResponse struct {
	Amount         decimal.Decimal `json:"amount"`
	Tier           string          `json:"tier"`
	RequiresReview bool            `json:"requires_review"`
}

type SessionReport struct {
	SessionID          string               `json:"session_id"`
	SessionNumber      int64                `json:"session_number"`
	TenantID           string               `json:"tenant_id"`
	Status             string               `json:"status"`
	Shift              string               `json:"shift"`
	InitialBalance     decimal.Decimal      `json:"initial_balance"`
	Totals             SessionTotals        `json:"totals"`
	ExpectedCash       decimal.Decimal      `json:"expected_cash_balance"`
	CountedCashBalance *decimal.Decimal     `json:"counted_cash_balance,omitempty"`
	Discrepancy        *DiscrepancyResponse `json:"discrepancy,omitempty"`
	OpeningNotes       *string              `json:"opening_notes,omitempty"`
	ClosingNotes       *string              `json:"closing_notes,omitempty"`
	OpenedAt           string               `json:"opened_at"`
	ClosedAt           *string              `json:"closed_at,omitempty"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Instrument    string          `json:"instrument"`
	Description   string          `json:"description"`
	RelatedSaleID *string         `json:"related_sale_id,omitempty"`
	OccurredAt    string          `json:"occurred_at"`
	RecordedAt    string          `json:"recorded_at"`
}

type CloseResult struct {
	SessionID      string          `json:"session_id"`
	SessionNumber  int64           `json:"session_number"`
	Status         string          `json:"status"`
	ExpectedCash   decimal.Decimal `json:"expected_cash_balance"`
	CountedCash    decimal.Decimal `json:"counted_cash_balance"`
	Discrepancy    decimal.Decimal `json:"discrepancy"`
	Tier           string          `json:"tier"`
	RequiresReview bool            `json:"requires_review"`
	ClosedAt       string          `json:"closed_at"`
}

type SessionSummary struct {
	SessionID     string           `json:"session_id"`
	SessionNumber int64            `json:"session_number"`
	Status        string           `json:"status"`
	Shift         string           `json:"shift"`
	Discrepancy   *decimal.Decimal `json:"discrepancy,omitempty"`
	Tier          *string          `json:"tier,omitempty"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at,omitempty"`
}
