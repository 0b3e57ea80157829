package service

import (
	"context"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/dto"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the append-only movement ledger and its aggregation.
// Totals are a pure fold over the movements — recomputed on demand, never a
// stored field that can drift.
type LedgerService interface {
	Append(ctx context.Context, session *model.CashSession, input AppendMovement) (*model.Movement, error)
	TotalsFor(ctx context.Context, tenantID, sessionID uuid.UUID) (dto.SessionTotals, error)
	ListMovements(ctx context.Context, tenantID, sessionID uuid.UUID) ([]model.Movement, error)
}

// AppendMovement is the validated input for one ledger entry.
type AppendMovement struct {
	Kind          model.MovementKind
	Amount        decimal.Decimal
	Category      model.MovementCategory
	Instrument    model.Instrument
	Description   string
	RelatedSaleID *uuid.UUID
	OccurredAt    time.Time
}

type ledgerService struct {
	movements repository.MovementRepository
	now       func() time.Time
}

func NewLedgerService(movements repository.MovementRepository) LedgerService {
	return &ledgerService{movements: movements, now: time.Now}
}

// kindFor maps categories with a fixed direction. Adjustments carry their own
// kind and are not constrained here.
var kindFor = map[model.MovementCategory]model.MovementKind{
	model.CategorySale:          model.MovementIn,
	model.CategoryReinforcement: model.MovementIn,
	model.CategoryWithdrawal:    model.MovementOut,
}

func (s *ledgerService) Append(ctx context.Context, session *model.CashSession, input AppendMovement) (*model.Movement, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, cashdesk.ErrInvalidMovement
	}
	if fixed, ok := kindFor[input.Category]; ok && input.Kind != fixed {
		return nil, cashdesk.ErrInvalidMovement
	}
	// Re-check the lifecycle right before persisting: a close racing this
	// append must lose deterministically, not half-apply.
	if !session.IsOpen() {
		return nil, cashdesk.ErrSessionClosed
	}

	now := s.now()
	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}

	mov := &model.Movement{
		TenantID:      session.TenantID,
		SessionID:     session.ID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		Category:      input.Category,
		Instrument:    input.Instrument,
		Description:   input.Description,
		RelatedSaleID: input.RelatedSaleID,
		OccurredAt:    occurred,
		RecordedAt:    now,
	}
	if err := s.movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// TotalsFor folds the session's movements into per-instrument sums. The fold
// is commutative, so out-of-order delivery from the store never corrupts the
// result.
func (s *ledgerService) TotalsFor(ctx context.Context, tenantID, sessionID uuid.UUID) (dto.SessionTotals, error) {
	movs, err := s.movements.ListBySession(ctx, tenantID, sessionID)
	if err != nil {
		return dto.SessionTotals{}, err
	}
	return FoldTotals(movs), nil
}

func (s *ledgerService) ListMovements(ctx context.Context, tenantID, sessionID uuid.UUID) ([]model.Movement, error) {
	return s.movements.ListBySession(ctx, tenantID, sessionID)
}

// FoldTotals aggregates movements into session totals. Reinforcements are
// kept in their own bucket; every other cash-instrument inflow lands in
// CashIn so that adjustments affect the drawer the same way sales do.
func FoldTotals(movs []model.Movement) dto.SessionTotals {
	t := dto.SessionTotals{
		CashIn:          decimal.Zero,
		PixIn:           decimal.Zero,
		DebitIn:         decimal.Zero,
		CreditIn:        decimal.Zero,
		CashOut:         decimal.Zero,
		ReinforcementIn: decimal.Zero,
	}
	for _, m := range movs {
		if m.Category == model.CategorySale {
			t.SaleCount++
		}
		switch m.Kind {
		case model.MovementOut:
			t.CashOut = t.CashOut.Add(m.Amount)
		case model.MovementIn:
			if m.Category == model.CategoryReinforcement {
				t.ReinforcementIn = t.ReinforcementIn.Add(m.Amount)
				continue
			}
			switch m.Instrument {
			case model.InstrumentCash:
				t.CashIn = t.CashIn.Add(m.Amount)
			case model.InstrumentPix:
				t.PixIn = t.PixIn.Add(m.Amount)
			case model.InstrumentDebitCard:
				t.DebitIn = t.DebitIn.Add(m.Amount)
			case model.InstrumentCreditCard:
				t.CreditIn = t.CreditIn.Add(m.Amount)
			}
		}
	}
	return t
}

// ExpectedCashBalance is the cash-instrument-only balance the drawer should
// physically contain. PIX and card totals never affect this figure.
func ExpectedCashBalance(initial decimal.Decimal, t dto.SessionTotals) decimal.Decimal {
	return initial.Add(t.CashIn).Add(t.ReinforcementIn).Sub(t.CashOut)
}
