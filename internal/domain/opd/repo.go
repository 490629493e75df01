package opd

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository handles OPD queue persistence.
type Repository interface {
	Create(ctx context.Context, q *QueueEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*QueueEntry, error)
	// TokensForDay returns every token already issued for a department on
	// a calendar day, including cancelled entries.
	TokensForDay(ctx context.Context, departmentID uuid.UUID, visitDate time.Time) ([]int, error)
	UpdateStatus(ctx context.Context, q *QueueEntry) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*QueueEntry, int, error)
}
