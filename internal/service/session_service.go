package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/dto"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionService owns the open → closed lifecycle of a tenant's cash session
// and every monetary operation posted against it.
type SessionService interface {
	Open(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionReport, error)
	RegisterSale(ctx context.Context, tenantID, actorID uuid.UUID, req dto.RegisterSaleRequest) (*dto.MovementResponse, error)
	RecordWithdrawal(ctx context.Context, tenantID, actorID uuid.UUID, req dto.ManualMovementRequest) (*dto.MovementResponse, error)
	RecordReinforcement(ctx context.Context, tenantID, actorID uuid.UUID, req dto.ManualMovementRequest) (*dto.MovementResponse, error)
	Close(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseResult, error)
	Current(ctx context.Context, tenantID uuid.UUID) (*dto.SessionReport, error)
	Report(ctx context.Context, tenantID, sessionID uuid.UUID) (*dto.SessionReport, error)
	Movements(ctx context.Context, tenantID, sessionID uuid.UUID) ([]dto.MovementResponse, error)
	History(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]dto.SessionSummary, int64, error)
}

type sessionService struct {
	sessions repository.SessionRepository
	ledger   LedgerService
	guard    *Guard
	auth     AuthService
	locks    *tenantLocks
	ceiling  decimal.Decimal
	now      func() time.Time
}

func NewSessionService(
	sessions repository.SessionRepository,
	ledger LedgerService,
	guard *Guard,
	auth AuthService,
	ceiling decimal.Decimal,
) SessionService {
	return &sessionService{
		sessions: sessions,
		ledger:   ledger,
		guard:    guard,
		auth:     auth,
		locks:    newTenantLocks(),
		ceiling:  ceiling,
		now:      time.Now,
	}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *sessionService) Open(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionReport, error) {
	mu := s.locks.forTenant(tenantID)
	mu.Lock()
	defer mu.Unlock()

	if req.InitialBalance.LessThanOrEqual(decimal.Zero) || req.InitialBalance.GreaterThan(s.ceiling) {
		return nil, cashdesk.ErrInvalidAmount
	}

	existing, err := s.sessions.FindOpenByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, cashdesk.ErrAlreadyOpen
	}

	number, err := s.sessions.NextSessionNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	session := &model.CashSession{
		TenantID:        tenantID,
		SessionNumber:   number,
		Status:          model.SessionOpen,
		OpeningOperator: operatorID,
		InitialBalance:  req.InitialBalance,
		Shift:           model.Shift(req.Shift),
		OpeningNotes:    req.OpeningNotes,
		OpenedAt:        s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return s.buildReport(ctx, session)
}

// ── RegisterSale ──────────────────────────────────────────────────────────────
// Wrapped by the idempotency guard: a caller-side timeout that triggers a
// retry of the exact same registration returns the original movement and
// never double-counts.

// salePayload is the idempotency fingerprint of one sale registration. It
// carries every field that makes the operation unique — the same sale posted
// against a later session is a new operation, not a replay.
type salePayload struct {
	SaleID    string          `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	SessionID string          `json:"session_id"`
}

func (s *sessionService) RegisterSale(ctx context.Context, tenantID, actorID uuid.UUID, req dto.RegisterSaleRequest) (*dto.MovementResponse, error) {
	mu := s.locks.forTenant(tenantID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.requireOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("invalid sale_id: %w", err)
	}

	payload := salePayload{
		SaleID:    saleID.String(),
		Amount:    req.Amount,
		SessionID: session.ID.String(),
	}

	raw, err := s.guard.Execute(ctx, "RegisterSale", actorID.String(), payload, func() (any, error) {
		mov, err := s.ledger.Append(ctx, session, AppendMovement{
			Kind:          model.MovementIn,
			Amount:        req.Amount,
			Category:      model.CategorySale,
			Instrument:    model.Instrument(req.Instrument),
			Description:   fmt.Sprintf("sale %s", saleID),
			RelatedSaleID: &saleID,
		})
		if err != nil {
			return nil, err
		}
		return movementToResponse(mov), nil
	})
	if err != nil {
		return nil, err
	}

	var resp dto.MovementResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode guarded result: %w", err)
	}
	return &resp, nil
}

// ── Manual movements ──────────────────────────────────────────────────────────
// Withdrawals and reinforcements are entered interactively at the drawer and
// are not subject to network retry duplication, so they bypass the guard.

func (s *sessionService) RecordWithdrawal(ctx context.Context, tenantID, actorID uuid.UUID, req dto.ManualMovementRequest) (*dto.MovementResponse, error) {
	return s.recordManual(ctx, tenantID, req, model.MovementOut, model.CategoryWithdrawal)
}

func (s *sessionService) RecordReinforcement(ctx context.Context, tenantID, actorID uuid.UUID, req dto.ManualMovementRequest) (*dto.MovementResponse, error) {
	return s.recordManual(ctx, tenantID, req, model.MovementIn, model.CategoryReinforcement)
}

func (s *sessionService) recordManual(ctx context.Context, tenantID uuid.UUID, req dto.ManualMovementRequest, kind model.MovementKind, category model.MovementCategory) (*dto.MovementResponse, error) {
	mu := s.locks.forTenant(tenantID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.requireOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	mov, err := s.ledger.Append(ctx, session, AppendMovement{
		Kind:        kind,
		Amount:      req.Amount,
		Category:    category,
		Instrument:  model.InstrumentCash,
		Description: req.Reason,
	})
	if err != nil {
		return nil, err
	}
	return movementToResponse(mov), nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Close is a consistency barrier: it runs under the tenant lock, so every
// in-flight movement either committed before the totals were folded or fails
// afterwards with ErrNoOpenSession.

func (s *sessionService) Close(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseResult, error) {
	mu := s.locks.forTenant(tenantID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.requireOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledger.TotalsFor(ctx, tenantID, session.ID)
	if err != nil {
		return nil, err
	}
	expected := ExpectedCashBalance(session.InitialBalance, totals)
	discrepancy := req.CountedCashBalance.Sub(expected)

	rule := cashdesk.Classify(discrepancy)

	if rule.RequiresJustification && (req.Justification == nil || *req.Justification == "") {
		return nil, &cashdesk.PolicyError{
			Err:         cashdesk.ErrJustificationRequired,
			Tier:        rule.Tier,
			Discrepancy: discrepancy,
		}
	}

	var managerID *uuid.UUID
	if rule.RequiresAuthorization {
		if req.ManagerAuth == nil {
			return nil, &cashdesk.PolicyError{
				Err:         cashdesk.ErrAuthorizationRequired,
				Tier:        rule.Tier,
				Discrepancy: discrepancy,
			}
		}
		manager, err := s.auth.VerifyManager(ctx, tenantID, *req.ManagerAuth)
		if errors.Is(err, cashdesk.ErrInvalidManagerCredentials) {
			return nil, &cashdesk.PolicyError{
				Err:         cashdesk.ErrAuthorizationRequired,
				Tier:        rule.Tier,
				Discrepancy: discrepancy,
			}
		}
		if err != nil {
			// Infrastructure failure while checking credentials — not a policy
			// rejection. Retrying with different credentials cannot help.
			return nil, err
		}
		managerID = &manager.ID
	}

	closedAt := s.now()
	tier := string(rule.Tier)
	session.Status = model.SessionClosed
	session.ClosedAt = &closedAt
	session.ClosingOperator = &operatorID
	session.CountedCashBalance = &req.CountedCashBalance
	session.Discrepancy = &discrepancy
	session.DiscrepancyTier = &tier
	session.ClosingNotes = req.ClosingNotes
	session.DiscrepancyJustification = req.Justification
	session.ManagerAuthorization = managerID

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CloseResult{
		SessionID:      session.ID.String(),
		SessionNumber:  session.SessionNumber,
		Status:         string(session.Status),
		ExpectedCash:   expected,
		CountedCash:    req.CountedCashBalance,
		Discrepancy:    discrepancy,
		Tier:           tier,
		RequiresReview: rule.RequiresReview,
		ClosedAt:       closedAt.UTC().Format(time.RFC3339),
	}, nil
}

// ── Read side ─────────────────────────────────────────────────────────────────

func (s *sessionService) Current(ctx context.Context, tenantID uuid.UUID) (*dto.SessionReport, error) {
	session, err := s.sessions.FindOpenByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, cashdesk.ErrNoOpenSession
	}
	return s.buildReport(ctx, session)
}

func (s *sessionService) Report(ctx context.Context, tenantID, sessionID uuid.UUID) (*dto.SessionReport, error) {
	session, err := s.sessions.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildReport(ctx, session)
}

func (s *sessionService) Movements(ctx context.Context, tenantID, sessionID uuid.UUID) ([]dto.MovementResponse, error) {
	if _, err := s.sessions.FindByID(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}
	movs, err := s.ledger.ListMovements(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, len(movs))
	for i := range movs {
		out[i] = *movementToResponse(&movs[i])
	}
	return out, nil
}

func (s *sessionService) History(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]dto.SessionSummary, int64, error) {
	sessions, total, err := s.sessions.ListClosed(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SessionSummary, len(sessions))
	for i, sess := range sessions {
		summary := dto.SessionSummary{
			SessionID:     sess.ID.String(),
			SessionNumber: sess.SessionNumber,
			Status:        string(sess.Status),
			Shift:         string(sess.Shift),
			Discrepancy:   sess.Discrepancy,
			Tier:          sess.DiscrepancyTier,
			OpenedAt:      sess.OpenedAt.UTC().Format(time.RFC3339),
		}
		if sess.ClosedAt != nil {
			t := sess.ClosedAt.UTC().Format(time.RFC3339)
			summary.ClosedAt = &t
		}
		out[i] = summary
	}
	return out, total, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *sessionService) requireOpen(ctx context.Context, tenantID uuid.UUID) (*model.CashSession, error) {
	session, err := s.sessions.FindOpenByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, cashdesk.ErrNoOpenSession
	}
	return session, nil
}

func (s *sessionService) buildReport(ctx context.Context, session *model.CashSession) (*dto.SessionReport, error) {
	totals, err := s.ledger.TotalsFor(ctx, session.TenantID, session.ID)
	if err != nil {
		return nil, err
	}

	report := &dto.SessionReport{
		SessionID:          session.ID.String(),
		SessionNumber:      session.SessionNumber,
		TenantID:           session.TenantID.String(),
		Status:             string(session.Status),
		Shift:              string(session.Shift),
		InitialBalance:     session.InitialBalance,
		Totals:             totals,
		ExpectedCash:       ExpectedCashBalance(session.InitialBalance, totals),
		CountedCashBalance: session.CountedCashBalance,
		OpeningNotes:       session.OpeningNotes,
		ClosingNotes:       session.ClosingNotes,
		OpenedAt:           session.OpenedAt.UTC().Format(time.RFC3339),
	}

	if session.Discrepancy != nil && session.DiscrepancyTier != nil {
		report.Discrepancy = &dto.DiscrepancyResponse{
			Amount:         *session.Discrepancy,
			Tier:           *session.DiscrepancyTier,
			RequiresReview: cashdesk.Tier(*session.DiscrepancyTier) == cashdesk.TierSevere,
		}
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.UTC().Format(time.RFC3339)
		report.ClosedAt = &t
	}
	return report, nil
}

func movementToResponse(m *model.Movement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:          m.ID.String(),
		SessionID:   m.SessionID.String(),
		Kind:        string(m.Kind),
		Amount:      m.Amount,
		Category:    string(m.Category),
		Instrument:  string(m.Instrument),
		Description: m.Description,
		OccurredAt:  m.OccurredAt.UTC().Format(time.RFC3339),
		RecordedAt:  m.RecordedAt.UTC().Format(time.RFC3339),
	}
	if m.RelatedSaleID != nil {
		id := m.RelatedSaleID.String()
		resp.RelatedSaleID = &id
	}
	return resp
}
