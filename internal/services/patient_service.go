package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
	"github.com/otcheredev/hms-console/pkg/logger"
)

const recentAppointmentLimit = 10

// PatientService manages patient registration
type PatientService struct {
	repo   *repository.Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewPatientService creates a patient service
func NewPatientService(repo *repository.Repository) *PatientService {
	return &PatientService{
		repo:   repo,
		logger: logger.Component("patient_service"),
		now:    time.Now,
	}
}

// List returns registered patients, newest first
func (s *PatientService) List(ctx context.Context, page models.PageRequest) repository.Page[models.Patient] {
	return s.decoratePage(s.repo.ListPatients(ctx, page))
}

// Search matches patients by name, patient code or phone
func (s *PatientService) Search(ctx context.Context, query string, page models.PageRequest) repository.Page[models.Patient] {
	return s.decoratePage(s.repo.SearchPatients(ctx, query, page))
}

// Get returns a patient with recent appointments and medical history
func (s *PatientService) Get(ctx context.Context, id int64) (*models.Patient, error) {
	p, err := s.repo.PatientByID(ctx, id)
	if err != nil {
		return nil, notFound("Patient", err)
	}
	return s.withHistory(ctx, p), nil
}

// GetByCode returns a patient by hospital patient code
func (s *PatientService) GetByCode(ctx context.Context, code string) (*models.Patient, error) {
	p, err := s.repo.PatientByCode(ctx, code)
	if err != nil {
		return nil, notFound("Patient", err)
	}
	return s.withHistory(ctx, p), nil
}

// Create registers a patient. Phone numbers are unique.
func (s *PatientService) Create(ctx context.Context, req models.PatientRequest) (*models.Patient, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields)
	}
	if _, err := s.repo.PatientByPhone(ctx, strings.TrimSpace(req.Phone)); err == nil {
		return nil, apperrors.NewConflictError("Patient with this phone number already exists")
	}

	p := s.repo.CreatePatient(ctx, patientFromRequest(models.Patient{}, req))
	s.logger.Info().Int64("patient_id", p.ID).Str("code", p.PatientID).Msg("Patient registered")
	s.decorate(&p)
	return &p, nil
}

// Update replaces a patient's profile
func (s *PatientService) Update(ctx context.Context, id int64, req models.PatientRequest) (*models.Patient, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError("Validation failed", fields)
	}
	existing, err := s.repo.PatientByID(ctx, id)
	if err != nil {
		return nil, notFound("Patient", err)
	}
	if other, err := s.repo.PatientByPhone(ctx, strings.TrimSpace(req.Phone)); err == nil && other.ID != id {
		return nil, apperrors.NewConflictError("Patient with this phone number already exists")
	}

	p, err := s.repo.SavePatient(ctx, patientFromRequest(*existing, req))
	if err != nil {
		return nil, notFound("Patient", err)
	}
	s.decorate(&p)
	return &p, nil
}

// Delete removes a patient that has no appointments or medical records
func (s *PatientService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.PatientByID(ctx, id); err != nil {
		return notFound("Patient", err)
	}
	if s.repo.CountAppointments(ctx, repository.AppointmentQuery{PatientID: id}) > 0 ||
		len(s.repo.RecordsForPatient(ctx, id)) > 0 {
		return apperrors.NewConflictError("Cannot delete patient with existing appointments or medical records")
	}
	if err := s.repo.DeletePatient(ctx, id); err != nil {
		return notFound("Patient", err)
	}
	s.logger.Info().Int64("patient_id", id).Msg("Patient deleted")
	return nil
}

func (s *PatientService) withHistory(ctx context.Context, p *models.Patient) *models.Patient {
	s.decorate(p)

	appts := s.repo.ListAppointments(ctx, repository.AppointmentQuery{PatientID: p.ID},
		models.PageRequest{Size: recentAppointmentLimit})
	p.RecentAppointments = make([]models.AppointmentSummary, 0, len(appts.Items))
	for _, a := range appts.Items {
		p.RecentAppointments = append(p.RecentAppointments, models.AppointmentSummary{
			ID:              a.ID,
			AppointmentDate: a.AppointmentDate,
			DoctorName:      a.Doctor.Name,
			Status:          a.Status,
			Reason:          a.Reason,
		})
	}

	records := s.repo.RecordsForPatient(ctx, p.ID)
	p.MedicalRecords = make([]models.MedicalRecordSummary, 0, len(records))
	for _, m := range records {
		p.MedicalRecords = append(p.MedicalRecords, models.MedicalRecordSummary{
			ID:           m.ID,
			VisitDate:    m.VisitDate,
			DoctorName:   m.Doctor.Name,
			Diagnosis:    m.Diagnosis,
			Prescription: m.Prescription,
		})
	}
	return p
}

func (s *PatientService) decoratePage(page repository.Page[models.Patient]) repository.Page[models.Patient] {
	for i := range page.Items {
		s.decorate(&page.Items[i])
	}
	return page
}

// decorate fills the fields computed on read
func (s *PatientService) decorate(p *models.Patient) {
	p.FullName = p.FirstName + " " + p.LastName
	p.Age = ageOn(p.DateOfBirth, s.now())
}

func patientFromRequest(p models.Patient, req models.PatientRequest) models.Patient {
	p.FirstName = strings.TrimSpace(req.FirstName)
	p.LastName = strings.TrimSpace(req.LastName)
	p.DateOfBirth = req.DateOfBirth
	p.Gender = req.Gender
	p.Phone = strings.TrimSpace(req.Phone)
	p.Email = req.Email
	p.Address = req.Address
	p.BloodGroup = req.BloodGroup
	p.MedicalHistory = req.MedicalHistory
	p.Allergies = req.Allergies
	p.EmergencyContact = req.EmergencyContact
	p.EmergencyPhone = req.EmergencyPhone
	return p
}

// ageOn returns whole years between a YYYY-MM-DD birth date and now
func ageOn(dob string, now time.Time) int {
	born, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return max(age, 0)
}

// notFound converts a repository miss into the API error
func notFound(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFoundError(what + " not found")
	}
	return err
}
