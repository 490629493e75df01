package rules

import "testing"

func TestQueueLifecycle(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{QueueWaiting, QueueInConsultation, true},
		{QueueWaiting, QueueCancelled, true},
		{QueueInConsultation, QueueCompleted, true},
		{QueueWaiting, QueueCompleted, false},
		{QueueInConsultation, QueueCancelled, false},
		{QueueCompleted, QueueWaiting, false},
		{QueueCancelled, QueueInConsultation, false},
	}
	for _, tt := range tests {
		if got := QueueLifecycle.Can(tt.from, tt.to); got != tt.want {
			t.Errorf("queue %s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAdmissionLifecycle(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{AdmissionAdmitted, AdmissionDischarged, true},
		{AdmissionAdmitted, AdmissionTransferred, true},
		{AdmissionDischarged, AdmissionAdmitted, false},
		{AdmissionTransferred, AdmissionDischarged, false},
	}
	for _, tt := range tests {
		if got := AdmissionLifecycle.Can(tt.from, tt.to); got != tt.want {
			t.Errorf("admission %s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{AppointmentScheduled, AppointmentConfirmed, true},
		{AppointmentScheduled, AppointmentCancelled, true},
		{AppointmentScheduled, AppointmentNoShow, true},
		{AppointmentConfirmed, AppointmentInProgress, true},
		{AppointmentConfirmed, AppointmentNoShow, true},
		{AppointmentInProgress, AppointmentCompleted, true},
		{AppointmentInProgress, AppointmentNoShow, true},
		{AppointmentScheduled, AppointmentInProgress, false},
		{AppointmentInProgress, AppointmentCancelled, false},
		{AppointmentCompleted, AppointmentNoShow, false},
		{AppointmentCancelled, AppointmentConfirmed, false},
		{AppointmentNoShow, AppointmentScheduled, false},
	}
	for _, tt := range tests {
		if got := AppointmentLifecycle.Can(tt.from, tt.to); got != tt.want {
			t.Errorf("appointment %s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPrescriptionLifecycle(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{PrescriptionPending, PrescriptionDispensed, true},
		{PrescriptionPending, PrescriptionCancelled, true},
		{PrescriptionDispensed, PrescriptionCancelled, false},
		{PrescriptionCancelled, PrescriptionPending, false},
	}
	for _, tt := range tests {
		if got := PrescriptionLifecycle.Can(tt.from, tt.to); got != tt.want {
			t.Errorf("prescription %s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	terminals := []struct {
		l      Lifecycle
		status string
		want   bool
	}{
		{QueueLifecycle, QueueCompleted, true},
		{QueueLifecycle, QueueWaiting, false},
		{AdmissionLifecycle, AdmissionDischarged, true},
		{AppointmentLifecycle, AppointmentNoShow, true},
		{AppointmentLifecycle, AppointmentConfirmed, false},
		{PrescriptionLifecycle, PrescriptionDispensed, true},
	}
	for _, tt := range terminals {
		if got := tt.l.Terminal(tt.status); got != tt.want {
			t.Errorf("Terminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
