package repository

import (
	"context"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRepository is the append-only store for ledger entries. There is
// deliberately no Update or Delete — corrections are new offsetting
// movements, never edits (compile-time guarantee).
type MovementRepository interface {
	Create(ctx context.Context, m *model.Movement) error
	// ListBySession returns movements newest-first for display. Balance
	// computation folds over the same slice and is order-independent.
	ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]model.Movement, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) Create(ctx context.Context, m *model.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movementRepo) ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]model.Movement, error) {
	var movs []model.Movement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("occurred_at DESC").
		Find(&movs).Error
	return movs, err
}
