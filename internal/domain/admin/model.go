package admin

import (
	"time"

	"github.com/google/uuid"
)

// Department maps to the departments table.
type Department struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	HeadDoctorID *uuid.UUID `db:"head_doctor_id" json:"head_doctor_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Bed maps to the beds table. Status changes are administrative overrides
// except where an active admission pins the bed to occupied.
type Bed struct {
	ID           uuid.UUID `db:"id" json:"id"`
	BedNumber    string    `db:"bed_number" json:"bed_number"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	BedType      string    `db:"bed_type" json:"bed_type"`
	Status       string    `db:"status" json:"status"`
	FloorNumber  *int      `db:"floor_number" json:"floor_number,omitempty"`
	RoomNumber   *string   `db:"room_number" json:"room_number,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentOccupancy summarises bed usage for one department.
type DepartmentOccupancy struct {
	DepartmentID   uuid.UUID `db:"department_id" json:"department_id"`
	DepartmentName string    `db:"department_name" json:"department_name"`
	TotalBeds      int       `db:"total_beds" json:"total_beds"`
	OccupiedBeds   int       `db:"occupied_beds" json:"occupied_beds"`
	OccupancyRate  int       `db:"-" json:"occupancy_rate"`
}
