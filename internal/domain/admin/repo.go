package admin

import (
	"context"

	"github.com/google/uuid"
)

// DepartmentRepository handles department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Department, int, error)
}

// BedRepository handles bed persistence and the occupancy rollup.
type BedRepository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	Update(ctx context.Context, b *Bed) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Bed, int, error)
	// HasActiveAdmission reports whether an admitted patient currently
	// holds the bed.
	HasActiveAdmission(ctx context.Context, bedID uuid.UUID) (bool, error)
	OccupancyByDepartment(ctx context.Context) ([]*DepartmentOccupancy, error)
}
