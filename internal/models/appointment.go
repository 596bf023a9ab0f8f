package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled
}

// Appointment is a scheduled visit between a patient and a doctor
type Appointment struct {
	ID              int64             `json:"id"`
	Patient         PatientRef        `json:"patient"`
	Doctor          DoctorRef         `json:"doctor"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason"`
	Notes           string            `json:"notes,omitempty"`
	CreatedByName   string            `json:"createdByName,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// AppointmentRequest schedules a new appointment
type AppointmentRequest struct {
	PatientID       int64     `json:"patientId"`
	DoctorID        int64     `json:"doctorId"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes,omitempty"`
}

// AppointmentStatusRequest asks the server to move an appointment
type AppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status"`
	Notes  string            `json:"notes,omitempty"`
}

// AppointmentFilter narrows the appointment list. At most one scope applies;
// precedence is DoctorID, PatientID, Status.
type AppointmentFilter struct {
	Status    AppointmentStatus
	DoctorID  int64
	PatientID int64
}
