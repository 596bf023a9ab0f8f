package models

// AdminDashboard holds hospital-wide counters
type AdminDashboard struct {
	TotalPatients         int64   `json:"totalPatients"`
	TodayAppointments     int64   `json:"todayAppointments"`
	ScheduledAppointments int64   `json:"scheduledAppointments"`
	CompletedAppointments int64   `json:"completedAppointments"`
	CancelledAppointments int64   `json:"cancelledAppointments"`
	PendingBills          int64   `json:"pendingBills"`
	TotalRevenue          float64 `json:"totalRevenue"`
	OutstandingAmount     float64 `json:"outstandingAmount"`
	TotalDoctors          int64   `json:"totalDoctors"`
	TotalNurses           int64   `json:"totalNurses"`
	TotalBillingStaff     int64   `json:"totalBillingStaff"`
}

// DoctorDashboard holds counters for one doctor
type DoctorDashboard struct {
	TodayAppointments     int64 `json:"todayAppointments"`
	UpcomingAppointments  int64 `json:"upcomingAppointments"`
	CompletedAppointments int64 `json:"completedAppointments"`
	TotalPatientsTreated  int64 `json:"totalPatientsTreated"`
	MedicalRecordsCreated int64 `json:"medicalRecordsCreated"`
}

// BillingDashboard holds revenue counters
type BillingDashboard struct {
	TotalBills        int64   `json:"totalBills"`
	PaidBills         int64   `json:"paidBills"`
	PendingBills      int64   `json:"pendingBills"`
	PartialBills      int64   `json:"partialBills"`
	TotalRevenue      float64 `json:"totalRevenue"`
	RevenueToday      float64 `json:"revenueToday"`
	RevenueThisMonth  float64 `json:"revenueThisMonth"`
	OutstandingAmount float64 `json:"outstandingAmount"`
}

// NurseDashboard is composed on the client from two list calls
type NurseDashboard struct {
	TotalPatients     int           `json:"totalPatients"`
	TodayAppointments []Appointment `json:"todayAppointments"`
}
