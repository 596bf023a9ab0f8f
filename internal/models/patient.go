package models

import "time"

// Gender as recorded on the patient profile
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Patient is a registered patient profile
type Patient struct {
	ID               int64     `json:"id"`
	PatientID        string    `json:"patientId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	FullName         string    `json:"fullName"`
	DateOfBirth      string    `json:"dateOfBirth"`
	Age              int       `json:"age"`
	Gender           Gender    `json:"gender"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	Address          string    `json:"address,omitempty"`
	BloodGroup       string    `json:"bloodGroup,omitempty"`
	MedicalHistory   string    `json:"medicalHistory,omitempty"`
	Allergies        string    `json:"allergies,omitempty"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	EmergencyPhone   string    `json:"emergencyPhone,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	RecentAppointments []AppointmentSummary   `json:"recentAppointments,omitempty"`
	MedicalRecords     []MedicalRecordSummary `json:"medicalRecords,omitempty"`
}

// AppointmentSummary is the short form embedded in a patient profile
type AppointmentSummary struct {
	ID              int64             `json:"id"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	DoctorName      string            `json:"doctorName"`
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason"`
}

// MedicalRecordSummary is the short form embedded in a patient profile
type MedicalRecordSummary struct {
	ID           int64     `json:"id"`
	VisitDate    time.Time `json:"visitDate"`
	DoctorName   string    `json:"doctorName"`
	Diagnosis    string    `json:"diagnosis"`
	Prescription string    `json:"prescription,omitempty"`
}

// PatientRequest registers or updates a patient
type PatientRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	DateOfBirth      string `json:"dateOfBirth"`
	Gender           Gender `json:"gender"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Address          string `json:"address,omitempty"`
	BloodGroup       string `json:"bloodGroup,omitempty"`
	MedicalHistory   string `json:"medicalHistory,omitempty"`
	Allergies        string `json:"allergies,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	EmergencyPhone   string `json:"emergencyPhone,omitempty"`
}

// PatientFilter narrows the patient list
type PatientFilter struct {
	Query string
}

// PatientRef identifies the patient an appointment, record or bill belongs to
type PatientRef struct {
	ID         int64  `json:"id"`
	PatientID  string `json:"patientId"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Age        int    `json:"age,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
}

// DoctorRef identifies the treating doctor
type DoctorRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
