package dashboard

import "github.com/google/uuid"

// Summary is the single payload behind the operations dashboard.
type Summary struct {
	Beds          BedSummary          `json:"beds"`
	Queue         QueueSummary        `json:"opd_queue"`
	Admissions    AdmissionSummary    `json:"admissions"`
	Inventory     InventorySummary    `json:"inventory"`
	Prescriptions PrescriptionSummary `json:"prescriptions"`
	Appointments  AppointmentSummary  `json:"appointments"`
}

type BedSummary struct {
	Total         int                   `json:"total"`
	Occupied      int                   `json:"occupied"`
	Available     int                   `json:"available"`
	OccupancyRate int                   `json:"occupancy_rate"`
	ByDepartment  []DepartmentOccupancy `json:"by_department"`
}

type DepartmentOccupancy struct {
	DepartmentID   uuid.UUID `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	TotalBeds      int       `json:"total_beds"`
	OccupiedBeds   int       `json:"occupied_beds"`
	OccupancyRate  int       `json:"occupancy_rate"`
}

// QueueSummary counts today's OPD traffic by status.
type QueueSummary struct {
	Waiting        int `json:"waiting"`
	InConsultation int `json:"in_consultation"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
}

type AdmissionSummary struct {
	Active          int `json:"active"`
	DischargedToday int `json:"discharged_today"`
}

type InventorySummary struct {
	LowStockItems      int `json:"low_stock_items"`
	CriticalStockItems int `json:"critical_stock_items"`
	ExpiringBatches    int `json:"expiring_batches"`
}

type PrescriptionSummary struct {
	Pending        int `json:"pending"`
	DispensedToday int `json:"dispensed_today"`
}

type AppointmentSummary struct {
	ScheduledToday int `json:"scheduled_today"`
	CompletedToday int `json:"completed_today"`
}
