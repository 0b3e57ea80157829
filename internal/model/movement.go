package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind is the direction of a ledger entry relative to the drawer.
type MovementKind string

const (
	MovementIn  MovementKind = "in"
	MovementOut MovementKind = "out"
)

// MovementCategory identifies why the money moved.
type MovementCategory string

const (
	CategorySale          MovementCategory = "sale"
	CategoryWithdrawal    MovementCategory = "withdrawal"
	CategoryReinforcement MovementCategory = "reinforcement"
	CategoryAdjustment    MovementCategory = "adjustment"
)

// Instrument is the settlement method of a movement. Only cash-settled
// instruments affect the physical drawer balance; PIX and card totals are
// informational.
type Instrument string

const (
	InstrumentCash       Instrument = "cash"
	InstrumentPix        Instrument = "pix"
	InstrumentDebitCard  Instrument = "debit_card"
	InstrumentCreditCard Instrument = "credit_card"
	InstrumentOther      Instrument = "other"
)

// Movement is one immutable entry in the cash session ledger. Movements are
// NEVER modified or deleted once recorded — corrections are new offsetting
// movements with category = adjustment.
type Movement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index"`

	Kind       MovementKind     `gorm:"type:varchar(5);not null"`
	Amount     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Category   MovementCategory `gorm:"type:varchar(20);not null"`
	Instrument Instrument       `gorm:"type:varchar(20);not null"`

	Description string `gorm:"not null"`
	// RelatedSaleID links a sale movement back to the originating sale in the
	// sales collaborator; it also anchors the idempotency fingerprint.
	RelatedSaleID *uuid.UUID `gorm:"type:uuid"`

	OccurredAt time.Time `gorm:"not null;index"`
	RecordedAt time.Time `gorm:"not null"`
}

func (Movement) TableName() string { return "cash_movements" }
