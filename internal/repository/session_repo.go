package repository

import (
	"context"
	"errors"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository is the durable store for CashSession records. The
// (tenant_id, status) pair is the hot query path: at most one row per tenant
// may carry status = open.
type SessionRepository interface {
	Create(ctx context.Context, s *model.CashSession) error
	// FindOpenByTenant returns (nil, nil) when the tenant has no open session.
	FindOpenByTenant(ctx context.Context, tenantID uuid.UUID) (*model.CashSession, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.CashSession, error)
	Update(ctx context.Context, s *model.CashSession) error
	NextSessionNumber(ctx context.Context, tenantID uuid.UUID) (int64, error)
	ListClosed(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.CashSession, int64, error)
}

// ErrNotFound is the repository-level miss; services translate it into the
// appropriate domain error.
var ErrNotFound = errors.New("record not found")

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindOpenByTenant(ctx context.Context, tenantID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, model.SessionOpen).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) NextSessionNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&model.CashSession{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(session_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *sessionRepo) ListClosed(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64

	q := r.db.WithContext(ctx).
		Model(&model.CashSession{}).
		Where("tenant_id = ? AND status = ?", tenantID, model.SessionClosed)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
