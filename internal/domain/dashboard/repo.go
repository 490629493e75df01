package dashboard

import (
	"context"
	"time"
)

// Repository aggregates counts across the operational tables. Everything is
// read-only; the day parameter anchors the "today" buckets.
type Repository interface {
	BedCounts(ctx context.Context) (total, occupied, available int, err error)
	OccupancyByDepartment(ctx context.Context) ([]DepartmentOccupancy, error)
	QueueCountsForDay(ctx context.Context, day time.Time) (QueueSummary, error)
	AdmissionCounts(ctx context.Context, day time.Time) (AdmissionSummary, error)
	InventoryCounts(ctx context.Context) (InventorySummary, error)
	PrescriptionCounts(ctx context.Context, day time.Time) (PrescriptionSummary, error)
	AppointmentCounts(ctx context.Context, day time.Time) (AppointmentSummary, error)
}
