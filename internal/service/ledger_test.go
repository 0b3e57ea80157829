package service

import (
	"context"
	"testing"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession() *model.CashSession {
	return &model.CashSession{
		ID:             uuid.New(),
		TenantID:       uuid.New(),
		Status:         model.SessionOpen,
		InitialBalance: dec("100.00"),
	}
}

func TestAppendRejectsNonPositiveAmount(t *testing.T) {
	svc := NewLedgerService(newMemMovementRepo())
	session := openSession()

	for _, amount := range []string{"0", "-5.00"} {
		_, err := svc.Append(context.Background(), session, AppendMovement{
			Kind:       model.MovementIn,
			Amount:     dec(amount),
			Category:   model.CategorySale,
			Instrument: model.InstrumentCash,
		})
		assert.ErrorIs(t, err, cashdesk.ErrInvalidMovement, "amount=%s", amount)
	}
}

func TestAppendRejectsKindMismatch(t *testing.T) {
	svc := NewLedgerService(newMemMovementRepo())
	session := openSession()
	ctx := context.Background()

	// A sale can only flow in, a withdrawal only out.
	_, err := svc.Append(ctx, session, AppendMovement{
		Kind:       model.MovementOut,
		Amount:     dec("10.00"),
		Category:   model.CategorySale,
		Instrument: model.InstrumentCash,
	})
	assert.ErrorIs(t, err, cashdesk.ErrInvalidMovement)

	_, err = svc.Append(ctx, session, AppendMovement{
		Kind:       model.MovementIn,
		Amount:     dec("10.00"),
		Category:   model.CategoryWithdrawal,
		Instrument: model.InstrumentCash,
	})
	assert.ErrorIs(t, err, cashdesk.ErrInvalidMovement)

	// Adjustments carry their own direction.
	_, err = svc.Append(ctx, session, AppendMovement{
		Kind:        model.MovementOut,
		Amount:      dec("10.00"),
		Category:    model.CategoryAdjustment,
		Instrument:  model.InstrumentCash,
		Description: "offset duplicate entry",
	})
	assert.NoError(t, err)
}

func TestAppendRejectsClosedSession(t *testing.T) {
	svc := NewLedgerService(newMemMovementRepo())
	session := openSession()
	session.Status = model.SessionClosed

	_, err := svc.Append(context.Background(), session, AppendMovement{
		Kind:       model.MovementIn,
		Amount:     dec("10.00"),
		Category:   model.CategorySale,
		Instrument: model.InstrumentCash,
	})
	assert.ErrorIs(t, err, cashdesk.ErrSessionClosed)
}

func TestAppendStampsTenantAndSession(t *testing.T) {
	repo := newMemMovementRepo()
	svc := NewLedgerService(repo)
	session := openSession()

	mov, err := svc.Append(context.Background(), session, AppendMovement{
		Kind:       model.MovementIn,
		Amount:     dec("10.00"),
		Category:   model.CategorySale,
		Instrument: model.InstrumentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, session.TenantID, mov.TenantID)
	assert.Equal(t, session.ID, mov.SessionID)
	assert.False(t, mov.OccurredAt.IsZero())
	assert.False(t, mov.RecordedAt.IsZero())
}

func TestFoldTotalsIsOrderIndependent(t *testing.T) {
	movs := []model.Movement{
		{Kind: model.MovementIn, Category: model.CategorySale, Instrument: model.InstrumentCash, Amount: dec("100.00")},
		{Kind: model.MovementIn, Category: model.CategorySale, Instrument: model.InstrumentPix, Amount: dec("80.00")},
		{Kind: model.MovementIn, Category: model.CategorySale, Instrument: model.InstrumentDebitCard, Amount: dec("25.00")},
		{Kind: model.MovementIn, Category: model.CategoryReinforcement, Instrument: model.InstrumentCash, Amount: dec("50.00")},
		{Kind: model.MovementOut, Category: model.CategoryWithdrawal, Instrument: model.InstrumentCash, Amount: dec("30.00")},
		{Kind: model.MovementIn, Category: model.CategoryAdjustment, Instrument: model.InstrumentCash, Amount: dec("5.00")},
	}

	forward := FoldTotals(movs)

	reversed := make([]model.Movement, len(movs))
	for i, m := range movs {
		reversed[len(movs)-1-i] = m
	}
	backward := FoldTotals(reversed)

	assert.Equal(t, forward, backward)

	// Adjustments land in the cash bucket alongside sales.
	assert.True(t, forward.CashIn.Equal(dec("105.00")))
	assert.True(t, forward.PixIn.Equal(dec("80.00")))
	assert.True(t, forward.DebitIn.Equal(dec("25.00")))
	assert.True(t, forward.ReinforcementIn.Equal(dec("50.00")))
	assert.True(t, forward.CashOut.Equal(dec("30.00")))
	assert.Equal(t, int64(3), forward.SaleCount)
}

func TestExpectedCashBalanceFormula(t *testing.T) {
	totals := FoldTotals([]model.Movement{
		{Kind: model.MovementIn, Category: model.CategorySale, Instrument: model.InstrumentCash, Amount: dec("250.00")},
		{Kind: model.MovementIn, Category: model.CategorySale, Instrument: model.InstrumentPix, Amount: dec("999.00")},
		{Kind: model.MovementIn, Category: model.CategoryReinforcement, Instrument: model.InstrumentCash, Amount: dec("50.00")},
		{Kind: model.MovementOut, Category: model.CategoryWithdrawal, Instrument: model.InstrumentCash, Amount: dec("30.00")},
	})

	expected := ExpectedCashBalance(decimal.RequireFromString("100.00"), totals)
	assert.True(t, expected.Equal(dec("370.00")))
}
