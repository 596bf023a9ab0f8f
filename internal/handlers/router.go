package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otcheredev/hms-console/internal/config"
	"github.com/otcheredev/hms-console/internal/middleware"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/services"
)

// APIPrefix is where the hospital API is mounted
const APIPrefix = "/api"

// Services bundles what the router serves
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Patients     *services.PatientService
	Appointments *services.AppointmentService
	Records      *services.RecordService
	Billing      *services.BillingService
	Dashboards   *services.DashboardService
}

// RouterOptions carries the HTTP-level settings
type RouterOptions struct {
	CORS     config.CORSConfig
	Metrics  prometheus.Gatherer
	Ready    func() bool
	Compress bool
}

// NewRouter builds the sandbox API
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	healthHandler := NewHealthHandler(opts.Ready)
	authHandler := NewAuthHandler(svc.Auth, svc.Users)
	patientHandler := NewPatientHandler(svc.Patients)
	appointmentHandler := NewAppointmentHandler(svc.Appointments)
	recordHandler := NewRecordHandler(svc.Records)
	billHandler := NewBillHandler(svc.Billing)
	dashboardHandler := NewDashboardHandler(svc.Dashboards)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if opts.Compress {
		r.Use(chimiddleware.Compress(5))
	}

	if len(opts.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORS.AllowedOrigins,
			AllowedMethods:   opts.CORS.AllowedMethods,
			AllowedHeaders:   opts.CORS.AllowedHeaders,
			ExposedHeaders:   []string{"Content-Length", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	staff := middleware.RequireRoles
	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(svc.Auth))

			r.Get("/auth/me", authHandler.Me)
			r.Get("/auth/users/role/{role}", authHandler.UsersByRole)
			r.Get("/auth/users/{id}", authHandler.UserByID)

			r.Route("/patients", func(r chi.Router) {
				r.Get("/", patientHandler.List)
				r.Get("/search", patientHandler.Search)
				r.Get("/by-patient-id/{patientId}", patientHandler.GetByCode)
				r.Get("/{id}", patientHandler.Get)
				r.With(staff(models.RoleNurse, models.RoleAdmin)).Post("/", patientHandler.Create)
				r.With(staff(models.RoleNurse, models.RoleAdmin)).Put("/{id}", patientHandler.Update)
				r.With(staff(models.RoleAdmin)).Delete("/{id}", patientHandler.Delete)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", appointmentHandler.List)
				r.Get("/today", appointmentHandler.Today)
				r.Get("/today/by-doctor/{doctorId}", appointmentHandler.TodayByDoctor)
				r.Get("/by-date", appointmentHandler.ByDate)
				r.Get("/by-doctor/{doctorId}", appointmentHandler.ByDoctor)
				r.Get("/by-patient/{patientId}", appointmentHandler.ByPatient)
				r.Get("/by-status/{status}", appointmentHandler.ByStatus)
				r.Get("/{id}", appointmentHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(staff(models.RoleNurse, models.RoleDoctor, models.RoleAdmin))
					r.Post("/", appointmentHandler.Schedule)
					r.Put("/{id}/status", appointmentHandler.UpdateStatus)
				})
			})

			r.Route("/medical-records", func(r chi.Router) {
				r.Use(staff(models.RoleDoctor, models.RoleAdmin))
				r.Get("/", recordHandler.List)
				r.Get("/by-doctor/{doctorId}", recordHandler.ByDoctor)
				r.Get("/patient/{patientId}", recordHandler.PatientHistory)
				r.Get("/{id}", recordHandler.Get)
				r.Post("/", recordHandler.Create)
				r.Put("/{id}", recordHandler.Update)
			})

			r.Route("/bills", func(r chi.Router) {
				r.Use(staff(models.RoleBilling, models.RoleAdmin))
				r.Get("/", billHandler.List)
				r.Get("/unpaid", billHandler.Unpaid)
				r.Get("/revenue/stats", billHandler.RevenueStats)
				r.Get("/by-patient/{patientId}", billHandler.ByPatient)
				r.Get("/by-status/{status}", billHandler.ByStatus)
				r.Get("/by-bill-number/{billNumber}", billHandler.GetByNumber)
				r.Get("/{id}", billHandler.Get)
				r.Post("/", billHandler.Create)
				r.Post("/{id}/payment", billHandler.RecordPayment)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.With(staff(models.RoleAdmin)).Get("/admin", dashboardHandler.Admin)
				r.With(staff(models.RoleDoctor)).Get("/doctor/me", dashboardHandler.MyDoctor)
				r.With(staff(models.RoleDoctor, models.RoleAdmin)).Get("/doctor/{doctorId}", dashboardHandler.Doctor)
				r.With(staff(models.RoleBilling, models.RoleAdmin)).Get("/billing", dashboardHandler.Billing)
			})
		})
	})

	return r
}
