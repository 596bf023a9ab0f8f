package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FieldErrors maps a JSON field name to a display message
type FieldErrors map[string]string

func (f FieldErrors) required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		f[field] = msg
	}
}

func (f FieldErrors) maxLen(field, value string, n int, msg string) {
	if _, set := f[field]; !set && utf8.RuneCountInString(value) > n {
		f[field] = msg
	}
}

// OrNil returns nil when there are no field errors
func (f FieldErrors) OrNil() map[string]string {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Validate checks a patient registration
func (r PatientRequest) Validate() FieldErrors {
	f := FieldErrors{}
	f.required("firstName", r.FirstName, "First name is required")
	f.maxLen("firstName", r.FirstName, 50, "First name must not exceed 50 characters")
	f.required("lastName", r.LastName, "Last name is required")
	f.maxLen("lastName", r.LastName, 50, "Last name must not exceed 50 characters")
	f.required("dateOfBirth", r.DateOfBirth, "Date of birth is required")
	if _, set := f["dateOfBirth"]; !set {
		if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
			f["dateOfBirth"] = "Date of birth must be YYYY-MM-DD"
		}
	}
	switch r.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		f["gender"] = "Gender is required"
	}
	f.required("phone", r.Phone, "Phone number is required")
	f.maxLen("email", r.Email, 100, "Email must not exceed 100 characters")
	f.maxLen("address", r.Address, 500, "Address must not exceed 500 characters")
	f.maxLen("medicalHistory", r.MedicalHistory, 1000, "Medical history must not exceed 1000 characters")
	f.maxLen("allergies", r.Allergies, 500, "Allergies must not exceed 500 characters")
	f.maxLen("emergencyContact", r.EmergencyContact, 100, "Emergency contact name must not exceed 100 characters")
	return f
}

// Validate checks a scheduling request; the appointment must lie after now
func (r AppointmentRequest) Validate(now time.Time) FieldErrors {
	f := FieldErrors{}
	if r.PatientID <= 0 {
		f["patientId"] = "Patient ID is required"
	}
	if r.DoctorID <= 0 {
		f["doctorId"] = "Doctor ID is required"
	}
	switch {
	case r.AppointmentDate.IsZero():
		f["appointmentDate"] = "Appointment date and time is required"
	case !r.AppointmentDate.After(now):
		f["appointmentDate"] = "Appointment date must be in the future"
	}
	f.required("reason", r.Reason, "Reason for appointment is required")
	f.maxLen("reason", r.Reason, 500, "Reason must not exceed 500 characters")
	f.maxLen("notes", r.Notes, 1000, "Notes must not exceed 1000 characters")
	return f
}

// Validate checks a status change request
func (r AppointmentStatusRequest) Validate() FieldErrors {
	f := FieldErrors{}
	if !r.Status.Valid() {
		f["status"] = "Status is required"
	}
	f.maxLen("notes", r.Notes, 1000, "Notes must not exceed 1000 characters")
	return f
}

// Validate checks a bill before it is issued
func (r BillRequest) Validate() FieldErrors {
	f := FieldErrors{}
	if r.PatientID <= 0 {
		f["patientId"] = "Patient ID is required"
	}
	if len(r.Items) == 0 {
		f["items"] = "At least one bill item is required"
	}
	for _, it := range r.Items {
		if strings.TrimSpace(it.Description) == "" {
			f["items"] = "Item description is required"
			break
		}
		if utf8.RuneCountInString(it.Description) > 200 {
			f["items"] = "Description must not exceed 200 characters"
			break
		}
		if !PositiveAmount(it.Amount) {
			f["items"] = "Amount must be positive"
			break
		}
	}
	if r.BillDate.IsZero() {
		f["billDate"] = "Bill date is required"
	}
	return f
}

// Validate checks a payment in isolation; the outstanding bound is checked
// against the bill
func (r PaymentRequest) Validate() FieldErrors {
	f := FieldErrors{}
	if !PositiveAmount(r.Amount) {
		f["amount"] = "Payment amount must be positive"
	}
	if r.PaymentDate.IsZero() {
		f["paymentDate"] = "Payment date is required"
	}
	return f
}

// Validate checks a clinical note
func (r MedicalRecordRequest) Validate() FieldErrors {
	f := FieldErrors{}
	if r.PatientID <= 0 {
		f["patientId"] = "Patient ID is required"
	}
	if r.DoctorID <= 0 {
		f["doctorId"] = "Doctor ID is required"
	}
	f.required("diagnosis", r.Diagnosis, "Diagnosis is required")
	f.maxLen("diagnosis", r.Diagnosis, 2000, "Diagnosis must not exceed 2000 characters")
	f.maxLen("prescription", r.Prescription, 2000, "Prescription must not exceed 2000 characters")
	f.maxLen("treatmentNotes", r.TreatmentNotes, 2000, "Treatment notes must not exceed 2000 characters")
	f.maxLen("labResults", r.LabResults, 2000, "Lab results must not exceed 2000 characters")
	if r.VisitDate.IsZero() {
		f["visitDate"] = "Visit date is required"
	}
	return f
}
