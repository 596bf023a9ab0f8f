package client

import (
	"context"
	"net/url"

	"github.com/otcheredev/hms-console/internal/models"
)

// UsersAPI covers staff lookups
type UsersAPI struct {
	c *Client
}

// ByRole lists staff holding a role, used to pick a doctor when scheduling
func (u *UsersAPI) ByRole(ctx context.Context, role models.Role) ([]models.StaffUser, error) {
	return getList[models.StaffUser](ctx, u.c, "users", "/auth/users/role/"+url.PathEscape(string(role)), nil)
}

// Get fetches a staff member
func (u *UsersAPI) Get(ctx context.Context, id int64) (*models.StaffUser, error) {
	return getOne[models.StaffUser](ctx, u.c, "users", idPath("/auth/users/%d", id))
}

// DashboardsAPI covers the per-role summary counters
type DashboardsAPI struct {
	c *Client
}

// Admin returns hospital-wide counters
func (d *DashboardsAPI) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	return getOne[models.AdminDashboard](ctx, d.c, "dashboard", "/dashboard/admin")
}

// Doctor returns counters for a doctor
func (d *DashboardsAPI) Doctor(ctx context.Context, doctorID int64) (*models.DoctorDashboard, error) {
	return getOne[models.DoctorDashboard](ctx, d.c, "dashboard", idPath("/dashboard/doctor/%d", doctorID))
}

// MyDoctor returns counters for the signed-in doctor
func (d *DashboardsAPI) MyDoctor(ctx context.Context) (*models.DoctorDashboard, error) {
	return getOne[models.DoctorDashboard](ctx, d.c, "dashboard", "/dashboard/doctor/me")
}

// Billing returns revenue counters
func (d *DashboardsAPI) Billing(ctx context.Context) (*models.BillingDashboard, error) {
	return getOne[models.BillingDashboard](ctx, d.c, "dashboard", "/dashboard/billing")
}
