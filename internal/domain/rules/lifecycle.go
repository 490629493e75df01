package rules

// Queue entry statuses.
const (
	QueueWaiting        = "waiting"
	QueueInConsultation = "in_consultation"
	QueueCompleted      = "completed"
	QueueCancelled      = "cancelled"
)

// Admission statuses.
const (
	AdmissionAdmitted    = "admitted"
	AdmissionDischarged  = "discharged"
	AdmissionTransferred = "transferred"
)

// Appointment statuses.
const (
	AppointmentScheduled  = "scheduled"
	AppointmentConfirmed  = "confirmed"
	AppointmentInProgress = "in_progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
	AppointmentNoShow     = "no_show"
)

// Prescription statuses.
const (
	PrescriptionPending   = "pending"
	PrescriptionDispensed = "dispensed"
	PrescriptionCancelled = "cancelled"
)

// Bed statuses. Beds have no lifecycle table of their own; transitions are
// operator-driven and guarded by the active-admission invariant instead.
const (
	BedAvailable   = "available"
	BedOccupied    = "occupied"
	BedReserved    = "reserved"
	BedMaintenance = "maintenance"
)

// Lifecycle is a directed graph of allowed status transitions.
type Lifecycle map[string][]string

// Can reports whether moving from one status to another is allowed.
// Terminal statuses have no outgoing edges.
func (l Lifecycle) Can(from, to string) bool {
	for _, next := range l[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions.
func (l Lifecycle) Terminal(status string) bool {
	return len(l[status]) == 0
}

// QueueLifecycle governs OPD queue entries. Waiting patients either enter
// consultation or cancel; a consultation always runs to completion.
var QueueLifecycle = Lifecycle{
	QueueWaiting:        {QueueInConsultation, QueueCancelled},
	QueueInConsultation: {QueueCompleted},
}

// AdmissionLifecycle governs inpatient admissions. Discharge and transfer
// are both terminal; a transferred admission is closed and the receiving
// ward opens a fresh one.
var AdmissionLifecycle = Lifecycle{
	AdmissionAdmitted: {AdmissionDischarged, AdmissionTransferred},
}

// AppointmentLifecycle governs appointments. Any non-terminal appointment
// may be marked no-show when the patient never arrives.
var AppointmentLifecycle = Lifecycle{
	AppointmentScheduled:  {AppointmentConfirmed, AppointmentCancelled, AppointmentNoShow},
	AppointmentConfirmed:  {AppointmentInProgress, AppointmentCancelled, AppointmentNoShow},
	AppointmentInProgress: {AppointmentCompleted, AppointmentNoShow},
}

// PrescriptionLifecycle governs prescriptions. Once dispensed the stock has
// moved, so there is no way back.
var PrescriptionLifecycle = Lifecycle{
	PrescriptionPending: {PrescriptionDispensed, PrescriptionCancelled},
}
