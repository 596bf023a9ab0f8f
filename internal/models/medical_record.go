package models

import "time"

// MedicalRecord is a clinical note written for a visit
type MedicalRecord struct {
	ID             int64            `json:"id"`
	Patient        PatientRef       `json:"patient"`
	Doctor         DoctorRef        `json:"doctor"`
	Appointment    *AppointmentInfo `json:"appointment,omitempty"`
	Diagnosis      string           `json:"diagnosis"`
	Prescription   string           `json:"prescription,omitempty"`
	TreatmentNotes string           `json:"treatmentNotes,omitempty"`
	LabResults     string           `json:"labResults,omitempty"`
	VisitDate      time.Time        `json:"visitDate"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// MedicalRecordRequest creates or updates a record
type MedicalRecordRequest struct {
	PatientID      int64     `json:"patientId"`
	AppointmentID  *int64    `json:"appointmentId,omitempty"`
	DoctorID       int64     `json:"doctorId"`
	Diagnosis      string    `json:"diagnosis"`
	Prescription   string    `json:"prescription,omitempty"`
	TreatmentNotes string    `json:"treatmentNotes,omitempty"`
	LabResults     string    `json:"labResults,omitempty"`
	VisitDate      time.Time `json:"visitDate"`
}

// MedicalRecordFilter narrows the record list
type MedicalRecordFilter struct {
	DoctorID int64
}
