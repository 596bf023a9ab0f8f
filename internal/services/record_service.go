package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
	"github.com/otcheredev/hms-console/pkg/logger"
)

// RecordService manages clinical notes
type RecordService struct {
	repo   *repository.Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewRecordService creates a medical record service
func NewRecordService(repo *repository.Repository) *RecordService {
	return &RecordService{
		repo:   repo,
		logger: logger.Component("record_service"),
		now:    time.Now,
	}
}

// Create writes a record for a patient visit
func (s *RecordService) Create(ctx context.Context, req models.MedicalRecordRequest) (*models.MedicalRecord, error) {
	m, err := s.build(ctx, models.MedicalRecord{}, req)
	if err != nil {
		return nil, err
	}
	created := s.repo.CreateRecord(ctx, m)
	s.logger.Info().Int64("record_id", created.ID).Int64("patient_id", created.Patient.ID).Msg("Medical record created")
	return &created, nil
}

// Update rewrites an existing record
func (s *RecordService) Update(ctx context.Context, id int64, req models.MedicalRecordRequest) (*models.MedicalRecord, error) {
	existing, err := s.repo.RecordByID(ctx, id)
	if err != nil {
		return nil, notFound("Medical record", err)
	}
	m, err := s.build(ctx, *existing, req)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveRecord(ctx, m)
	if err != nil {
		return nil, notFound("Medical record", err)
	}
	return &saved, nil
}

// Get returns one record
func (s *RecordService) Get(ctx context.Context, id int64) (*models.MedicalRecord, error) {
	m, err := s.repo.RecordByID(ctx, id)
	if err != nil {
		return nil, notFound("Medical record", err)
	}
	return m, nil
}

// List returns records, optionally for one doctor, latest visit first
func (s *RecordService) List(ctx context.Context, doctorID int64, page models.PageRequest) repository.Page[models.MedicalRecord] {
	return s.repo.ListRecords(ctx, doctorID, page)
}

// PatientHistory returns every record for a patient
func (s *RecordService) PatientHistory(ctx context.Context, patientID int64) ([]models.MedicalRecord, error) {
	if _, err := s.repo.PatientByID(ctx, patientID); err != nil {
		return nil, notFound("Patient", err)
	}
	return s.repo.RecordsForPatient(ctx, patientID), nil
}

func (s *RecordService) build(ctx context.Context, m models.MedicalRecord, req models.MedicalRecordRequest) (models.MedicalRecord, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return m, apperrors.NewValidationError("Validation failed", fields)
	}
	patient, err := s.repo.PatientByID(ctx, req.PatientID)
	if err != nil {
		return m, notFound("Patient", err)
	}
	doctor, err := s.repo.UserByID(ctx, req.DoctorID)
	if err != nil {
		return m, notFound("Doctor", err)
	}
	if doctor.Role != models.RoleDoctor {
		return m, apperrors.NewValidationError("Selected user is not a doctor", map[string]string{
			"doctorId": "Selected user is not a doctor",
		})
	}

	m.Appointment = nil
	if req.AppointmentID != nil {
		a, err := s.repo.AppointmentByID(ctx, *req.AppointmentID)
		if err != nil {
			return m, notFound("Appointment", err)
		}
		if a.Patient.ID != patient.ID {
			return m, apperrors.NewValidationError("Appointment does not belong to this patient", map[string]string{
				"appointmentId": "Appointment does not belong to this patient",
			})
		}
		m.Appointment = appointmentInfo(a)
	}

	ref := repository.PatientRefOf(*patient)
	ref.Age = ageOn(patient.DateOfBirth, s.now())
	m.Patient = ref
	m.Doctor = doctorRef(doctor)
	m.Diagnosis = req.Diagnosis
	m.Prescription = req.Prescription
	m.TreatmentNotes = req.TreatmentNotes
	m.LabResults = req.LabResults
	m.VisitDate = req.VisitDate
	return m, nil
}

func appointmentInfo(a *models.Appointment) *models.AppointmentInfo {
	return &models.AppointmentInfo{
		ID:              a.ID,
		AppointmentDate: a.AppointmentDate,
		DoctorName:      a.Doctor.Name,
		Status:          a.Status,
	}
}
