package admission

import (
	"context"

	"github.com/google/uuid"
)

// Repository handles admission persistence.
type Repository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	Update(ctx context.Context, a *Admission) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error)
}

// BedGateway is the bed access the admission workflow needs. Lock acquires
// a row lock so the bed cannot change under a concurrent admission in the
// same transaction window.
type BedGateway interface {
	Lock(ctx context.Context, bedID uuid.UUID) (*BedState, error)
	SetStatus(ctx context.Context, bedID uuid.UUID, status string) error
}
