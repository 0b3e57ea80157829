package model

import "time"

// IdempotencyRecord marks one successfully executed guarded operation.
// Key is a deterministic hash of {operation, actor, payload}; Result is the
// serialized response returned verbatim on replay. Records are created only
// on success — failed executions store nothing so retries can proceed.
type IdempotencyRecord struct {
	Key        string    `gorm:"primaryKey;size:64"`
	Result     []byte    `gorm:"type:bytes;not null"`
	RecordedAt time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

func (IdempotencyRecord) TableName() string { return "idempotency_records" }

// Expired reports whether the record's deduplication window has passed.
// An operation retried after expiry is treated as new — a documented
// trade-off of the fixed TTL, not a bug.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
