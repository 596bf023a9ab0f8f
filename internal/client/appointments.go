package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
)

// AppointmentsAPI covers scheduling and appointment status
type AppointmentsAPI struct {
	c *Client
}

// List returns one page of appointments under the filter's scope
func (a *AppointmentsAPI) List(ctx context.Context, filter models.AppointmentFilter, page models.PageRequest) (*models.PagedResult[models.Appointment], error) {
	switch {
	case filter.DoctorID > 0:
		return listPage[models.Appointment](ctx, a.c, "appointments", idPath("/appointments/by-doctor/%d", filter.DoctorID), nil, page)
	case filter.PatientID > 0:
		return listPage[models.Appointment](ctx, a.c, "appointments", idPath("/appointments/by-patient/%d", filter.PatientID), nil, page)
	case filter.Status != "":
		return listPage[models.Appointment](ctx, a.c, "appointments", "/appointments/by-status/"+url.PathEscape(string(filter.Status)), nil, page)
	default:
		return listPage[models.Appointment](ctx, a.c, "appointments", "/appointments", nil, page)
	}
}

// Get fetches an appointment
func (a *AppointmentsAPI) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	return getOne[models.Appointment](ctx, a.c, "appointments", idPath("/appointments/%d", id))
}

// Schedule creates an appointment
func (a *AppointmentsAPI) Schedule(ctx context.Context, req models.AppointmentRequest) (*models.Appointment, error) {
	return send[models.Appointment](ctx, a.c, "appointments", http.MethodPost, "/appointments", req)
}

// UpdateStatus asks the server to move the appointment and returns its new state
func (a *AppointmentsAPI) UpdateStatus(ctx context.Context, id int64, req models.AppointmentStatusRequest) (*models.Appointment, error) {
	return send[models.Appointment](ctx, a.c, "appointments", http.MethodPut, idPath("/appointments/%d/status", id), req)
}

// Today lists the appointments scheduled for today
func (a *AppointmentsAPI) Today(ctx context.Context) ([]models.Appointment, error) {
	return getList[models.Appointment](ctx, a.c, "appointments", "/appointments/today", nil)
}

// TodayByDoctor lists today's appointments for one doctor
func (a *AppointmentsAPI) TodayByDoctor(ctx context.Context, doctorID int64) ([]models.Appointment, error) {
	return getList[models.Appointment](ctx, a.c, "appointments", idPath("/appointments/today/by-doctor/%d", doctorID), nil)
}

// ByDate lists the appointments on the given day
func (a *AppointmentsAPI) ByDate(ctx context.Context, day time.Time) ([]models.Appointment, error) {
	q := url.Values{"date": {day.Format("2006-01-02")}}
	return getList[models.Appointment](ctx, a.c, "appointments", "/appointments/by-date", q)
}
