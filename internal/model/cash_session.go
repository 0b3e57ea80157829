package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a CashSession.
// The transition is one-way: open → closed. There is no reopening — a new
// session must be opened instead.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// Shift is an informational label for the operator's work period.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftNight     Shift = "night"
	ShiftFullDay   Shift = "full_day"
)

// CashSession represents one physical drawer's accountable period, from open
// to close. Totals are never stored on the session — they are always derived
// by folding the Movement ledger, so no field here can drift from the ledger.
//
// Invariant: a tenant has at most one session with Status = open at any time
// (enforced by the service layer under a per-tenant lock, backed by the
// partial unique index on (tenant_id) WHERE status = 'open').
type CashSession struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_sessions_tenant_status"`
	SessionNumber int64         `gorm:"not null"`
	Status        SessionStatus `gorm:"type:varchar(10);not null;default:'open';index:idx_sessions_tenant_status"`

	OpeningOperator uuid.UUID  `gorm:"type:uuid;not null"`
	ClosingOperator *uuid.UUID `gorm:"type:uuid"`

	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Shift          Shift           `gorm:"type:varchar(20);not null"`

	OpeningNotes *string
	ClosingNotes *string

	// Closing fields — nil until the session is closed.
	CountedCashBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Discrepancy        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscrepancyTier    *string          `gorm:"type:varchar(20)"`

	// DiscrepancyJustification is set only when the reconciliation tier
	// demands it; ManagerAuthorization references the manager user who
	// authorized a critical/severe close.
	DiscrepancyJustification *string
	ManagerAuthorization     *uuid.UUID `gorm:"type:uuid"`

	OpenedAt time.Time
	ClosedAt *time.Time

	Movements []Movement `gorm:"foreignKey:SessionID"`
}

func (CashSession) TableName() string { return "cash_sessions" }

// IsOpen reports whether movements may still be posted against the session.
func (s *CashSession) IsOpen() bool { return s.Status == SessionOpen }
