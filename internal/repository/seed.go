package repository

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/otcheredev/hms-console/internal/models"
)

type seedUser struct {
	username, password, fullName, email, phone string
	role                                       models.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "Admin User", "admin@hospital.com", "1234567890", models.RoleAdmin},
	{"doctor1", "password123", "Dr. John Smith", "john.smith@hospital.com", "1234567891", models.RoleDoctor},
	{"nurse1", "password123", "Nurse Mary Johnson", "mary.johnson@hospital.com", "1234567892", models.RoleNurse},
	{"billing1", "password123", "Billing Staff - Sarah Williams", "sarah.williams@hospital.com", "1234567893", models.RoleBilling},
}

var seedPatients = []models.Patient{
	{FirstName: "Alice", LastName: "Johnson", DateOfBirth: "1990-05-15", Gender: models.GenderFemale, Phone: "5551234567",
		Email: "alice.johnson@email.com", Address: "123 Main St, City, State 12345", BloodGroup: "A+",
		MedicalHistory: "Diabetes Type 2", Allergies: "Penicillin", EmergencyContact: "Bob Johnson", EmergencyPhone: "5559876543"},
	{FirstName: "Robert", LastName: "Smith", DateOfBirth: "1985-08-22", Gender: models.GenderMale, Phone: "5552345678",
		Email: "robert.smith@email.com", Address: "456 Oak Ave, City, State 12345", BloodGroup: "O+",
		MedicalHistory: "Hypertension", Allergies: "None", EmergencyContact: "Jane Smith", EmergencyPhone: "5558765432"},
	{FirstName: "Emily", LastName: "Davis", DateOfBirth: "1995-03-10", Gender: models.GenderFemale, Phone: "5553456789",
		Email: "emily.davis@email.com", Address: "789 Pine Rd, City, State 12345", BloodGroup: "B+",
		Allergies: "Latex", EmergencyContact: "Michael Davis", EmergencyPhone: "5557654321"},
	{FirstName: "Michael", LastName: "Brown", DateOfBirth: "1978-11-30", Gender: models.GenderMale, Phone: "5554567890",
		Email: "michael.brown@email.com", Address: "321 Elm St, City, State 12345", BloodGroup: "AB+",
		MedicalHistory: "Asthma", Allergies: "Aspirin", EmergencyContact: "Lisa Brown", EmergencyPhone: "5556543210"},
	{FirstName: "Sarah", LastName: "Wilson", DateOfBirth: "2000-07-18", Gender: models.GenderFemale, Phone: "5555678901",
		Email: "sarah.wilson@email.com", Address: "654 Maple Dr, City, State 12345", BloodGroup: "O-",
		EmergencyContact: "Tom Wilson", EmergencyPhone: "5555432109"},
}

// Seed loads the demo staff accounts, patients, appointments and bills. cost is the
// bcrypt cost for the seeded passwords.
func Seed(ctx context.Context, r *Repository, cost int, now time.Time) error {
	users := make(map[models.Role]User, len(seedUsers))
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), cost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", su.username, err)
		}
		users[su.role] = r.CreateUser(ctx, User{
			StaffUser: models.StaffUser{
				Username: su.username,
				FullName: su.fullName,
				Email:    su.email,
				Phone:    su.phone,
				Role:     su.role,
				Active:   true,
			},
			PasswordHash: hash,
		})
	}

	patients := make([]models.Patient, 0, len(seedPatients))
	for _, p := range seedPatients {
		p.FullName = p.FirstName + " " + p.LastName
		patients = append(patients, r.CreatePatient(ctx, p))
	}

	doctor := users[models.RoleDoctor]
	doctorRef := models.DoctorRef{ID: doctor.ID, Name: doctor.FullName, Email: doctor.Email, Phone: doctor.Phone}
	nurse := users[models.RoleNurse]
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	visits := []struct {
		patient int
		at      time.Time
		reason  string
		status  models.AppointmentStatus
	}{
		{0, now.Add(2 * time.Hour), "Regular checkup", models.AppointmentScheduled},
		{1, now.Add(4 * time.Hour), "Follow-up consultation", models.AppointmentScheduled},
		{2, day.AddDate(0, 0, 1).Add(10 * time.Hour), "Blood pressure monitoring", models.AppointmentScheduled},
		{3, day.AddDate(0, 0, 2).Add(14*time.Hour + 30*time.Minute), "Asthma review", models.AppointmentScheduled},
		{4, now.AddDate(0, 0, -1), "Annual physical exam", models.AppointmentCompleted},
		{0, now.AddDate(0, 0, -7), "Diabetes management", models.AppointmentCompleted},
	}
	for _, v := range visits {
		r.CreateAppointment(ctx, models.Appointment{
			Patient:         PatientRefOf(patients[v.patient]),
			Doctor:          doctorRef,
			AppointmentDate: v.at,
			Status:          v.status,
			Reason:          v.reason,
			Notes:           "Sample appointment",
			CreatedByName:   nurse.FullName,
		})
	}

	billing := users[models.RoleBilling]
	charges := []struct {
		patient     int
		total, paid float64
		paidAt      *time.Time
	}{
		{0, 150, 150, ptr(now.AddDate(0, 0, -5))},
		{1, 300, 150, nil},
		{2, 200, 0, nil},
		{3, 450, 450, ptr(now.AddDate(0, 0, -2))},
	}
	for _, c := range charges {
		b := models.Bill{
			Patient:       PatientRefOf(patients[c.patient]),
			Items:         []models.BillItem{{Description: "Consultation and services", Amount: c.total}},
			TotalAmount:   c.total,
			PaidAmount:    c.paid,
			BillDate:      now.AddDate(0, 0, -7),
			PaymentDate:   c.paidAt,
			CreatedByName: billing.FullName,
		}
		b.Settle()
		r.CreateBill(ctx, b)
	}
	return nil
}

// PatientRefOf builds the embedded patient reference
func PatientRefOf(p models.Patient) models.PatientRef {
	return models.PatientRef{
		ID:         p.ID,
		PatientID:  p.PatientID,
		Name:       p.FirstName + " " + p.LastName,
		Phone:      p.Phone,
		BloodGroup: p.BloodGroup,
	}
}

func ptr[T any](v T) *T {
	return &v
}
