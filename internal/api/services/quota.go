package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"gorm.io/gorm"
)

// Quota decides whether a user's stored bytes stay within the cap.
type Quota struct {
	files *repositories.FileRepository
	limit int64
}

func NewQuota(files *repositories.FileRepository, limit int64) *Quota {
	return &Quota{files: files, limit: limit}
}

// WithTx returns a Quota that reads usage inside tx.
func (q *Quota) WithTx(tx *gorm.DB) *Quota {
	return &Quota{files: q.files.WithTx(tx), limit: q.limit}
}

func (q *Quota) Limit() int64 { return q.limit }

// Usage returns the bytes currently recorded for owner.
func (q *Quota) Usage(ctx context.Context, owner uuid.UUID) (int64, error) {
	return q.files.SumSizeByOwner(ctx, owner)
}

// WouldExceed reports whether storing additional more bytes for owner
// would take the total over the cap. Reaching the cap exactly is allowed.
func (q *Quota) WouldExceed(ctx context.Context, owner uuid.UUID, additional int64) (bool, error) {
	used, err := q.Usage(ctx, owner)
	if err != nil {
		return false, err
	}
	return used+additional > q.limit, nil
}
