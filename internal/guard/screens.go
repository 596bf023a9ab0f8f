package guard

import (
	"slices"

	"github.com/otcheredev/hms-console/internal/models"
)

// Screen tags. A role may open a screen only when the screen's tag is in the role's
// set below; the navigation menu is built from the same sets.
const (
	TagAdminDashboard   = "dashboard.admin"
	TagDoctorDashboard  = "dashboard.doctor"
	TagNurseDashboard   = "dashboard.nurse"
	TagBillingDashboard = "dashboard.billing"
	TagPatientsList     = "patients.list"
	TagPatientsView     = "patients.view"
	TagPatientsEdit     = "patients.edit"
	TagAppointmentsList = "appointments.list"
	TagAppointmentsNew  = "appointments.schedule"
	TagRecordsList      = "medical-records.list"
	TagRecordsNew       = "medical-records.create"
	TagBillingList      = "billing.list"
	TagBillingNew       = "billing.create"
	TagReports          = "reports"
	TagUsers            = "users"
)

var roleTags = map[models.Role][]string{
	models.RoleAdmin: {
		TagAdminDashboard, TagBillingDashboard,
		TagPatientsList, TagPatientsView, TagPatientsEdit,
		TagAppointmentsList, TagAppointmentsNew,
		TagRecordsList, TagRecordsNew,
		TagBillingList, TagBillingNew,
		TagReports, TagUsers,
	},
	models.RoleDoctor: {
		TagDoctorDashboard,
		TagPatientsList, TagPatientsView,
		TagAppointmentsList, TagAppointmentsNew,
		TagRecordsList, TagRecordsNew,
	},
	models.RoleNurse: {
		TagNurseDashboard,
		TagPatientsList, TagPatientsView, TagPatientsEdit,
		TagAppointmentsList, TagAppointmentsNew,
	},
	models.RoleBilling: {
		TagBillingDashboard,
		TagPatientsList, TagPatientsView,
		TagBillingList, TagBillingNew,
		TagReports,
	},
}

// Allowed reports whether role may open screens tagged tag
func Allowed(role models.Role, tag string) bool {
	return slices.Contains(roleTags[role], tag)
}

// Screen is a navigable location
type Screen struct {
	Pattern string
	Tag     string
	Title   string
	// Public screens are open without a session
	Public bool
}

// Screens is the console's route table
var Screens = []Screen{
	{Pattern: "/login", Title: "Sign in", Public: true},
	{Pattern: "/admin/dashboard", Tag: TagAdminDashboard, Title: "Admin dashboard"},
	{Pattern: "/doctor/dashboard", Tag: TagDoctorDashboard, Title: "Doctor dashboard"},
	{Pattern: "/nurse/dashboard", Tag: TagNurseDashboard, Title: "Nurse dashboard"},
	{Pattern: "/billing/dashboard", Tag: TagBillingDashboard, Title: "Billing dashboard"},
	{Pattern: "/patients", Tag: TagPatientsList, Title: "Patients"},
	{Pattern: "/patients/new", Tag: TagPatientsEdit, Title: "Register patient"},
	{Pattern: "/patients/edit/{id}", Tag: TagPatientsEdit, Title: "Edit patient"},
	{Pattern: "/patients/{id}", Tag: TagPatientsView, Title: "Patient profile"},
	{Pattern: "/appointments", Tag: TagAppointmentsList, Title: "Appointments"},
	{Pattern: "/appointments/new", Tag: TagAppointmentsNew, Title: "Schedule appointment"},
	{Pattern: "/medical-records", Tag: TagRecordsList, Title: "Medical records"},
	{Pattern: "/medical-records/new", Tag: TagRecordsNew, Title: "New medical record"},
	{Pattern: "/billing", Tag: TagBillingList, Title: "Billing"},
	{Pattern: "/billing/new", Tag: TagBillingNew, Title: "New bill"},
	{Pattern: "/reports", Tag: TagReports, Title: "Reports"},
	{Pattern: "/admin/users", Tag: TagUsers, Title: "User management"},
}

// MenuItem is one entry of the navigation menu
type MenuItem struct {
	Label string
	Path  string
	Tag   string
}

var menu = []MenuItem{
	{Label: "Patients", Path: "/patients", Tag: TagPatientsList},
	{Label: "Appointments", Path: "/appointments", Tag: TagAppointmentsList},
	{Label: "Medical Records", Path: "/medical-records", Tag: TagRecordsList},
	{Label: "Billing", Path: "/billing", Tag: TagBillingList},
	{Label: "Reports", Path: "/reports", Tag: TagReports},
	{Label: "User Management", Path: "/admin/users", Tag: TagUsers},
}

var dashboardTags = map[models.Role]string{
	models.RoleAdmin:   TagAdminDashboard,
	models.RoleDoctor:  TagDoctorDashboard,
	models.RoleNurse:   TagNurseDashboard,
	models.RoleBilling: TagBillingDashboard,
}

// MenuFor returns the menu entries role may open, dashboard first
func MenuFor(role models.Role) []MenuItem {
	if !role.Valid() {
		return nil
	}
	items := []MenuItem{{Label: "Dashboard", Path: role.DashboardPath(), Tag: dashboardTags[role]}}
	for _, it := range menu {
		if Allowed(role, it.Tag) {
			items = append(items, it)
		}
	}
	return items
}
