package models

import (
	"math"
	"time"
)

// PaymentStatus is the derived settlement state of a bill
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Valid reports whether s is a known status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// BillItem is one charge on a bill
type BillItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// AppointmentInfo links a bill or record to the visit it came from
type AppointmentInfo struct {
	ID              int64             `json:"id"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	DoctorName      string            `json:"doctorName,omitempty"`
	Status          AppointmentStatus `json:"status,omitempty"`
}

// Bill is an invoice for a patient
type Bill struct {
	ID                int64            `json:"id"`
	BillNumber        string           `json:"billNumber"`
	Patient           PatientRef       `json:"patient"`
	Appointment       *AppointmentInfo `json:"appointment,omitempty"`
	Items             []BillItem       `json:"items"`
	TotalAmount       float64          `json:"totalAmount"`
	PaidAmount        float64          `json:"paidAmount"`
	OutstandingAmount float64          `json:"outstandingAmount"`
	PaymentStatus     PaymentStatus    `json:"paymentStatus"`
	BillDate          time.Time        `json:"billDate"`
	PaymentDate       *time.Time       `json:"paymentDate,omitempty"`
	CreatedByName     string           `json:"createdByName,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// BillRequest creates a bill from line items
type BillRequest struct {
	PatientID     int64      `json:"patientId"`
	AppointmentID *int64     `json:"appointmentId,omitempty"`
	Items         []BillItem `json:"items"`
	BillDate      time.Time  `json:"billDate"`
}

// PaymentRequest records money received against a bill
type PaymentRequest struct {
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"paymentDate"`
}

// BillFilter narrows the bill list. PatientID takes precedence over Status; an
// empty Status lists every bill.
type BillFilter struct {
	Status    PaymentStatus
	PatientID int64
}

// RevenueStats summarizes collected and outstanding money
type RevenueStats struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	OutstandingAmount float64 `json:"outstandingAmount"`
}

// RoundMoney rounds to cents
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// PositiveAmount reports whether v is a finite amount of at least one cent
func PositiveAmount(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return RoundMoney(v) > 0
}

// SumItems totals line item amounts
func SumItems(items []BillItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return RoundMoney(total)
}

// DerivePaymentStatus maps paid against total onto a status
func DerivePaymentStatus(total, paid float64) PaymentStatus {
	switch {
	case RoundMoney(paid) <= 0:
		return PaymentPending
	case RoundMoney(paid) >= RoundMoney(total):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// Settle recomputes the derived amounts and status from TotalAmount and PaidAmount
func (b *Bill) Settle() {
	b.TotalAmount = RoundMoney(b.TotalAmount)
	b.PaidAmount = RoundMoney(b.PaidAmount)
	b.OutstandingAmount = RoundMoney(b.TotalAmount - b.PaidAmount)
	if b.OutstandingAmount < 0 {
		b.OutstandingAmount = 0
	}
	b.PaymentStatus = DerivePaymentStatus(b.TotalAmount, b.PaidAmount)
}

// Consistent reports whether the stored status and amounts agree
func (b *Bill) Consistent() bool {
	if b.PaidAmount < 0 || RoundMoney(b.PaidAmount) > RoundMoney(b.TotalAmount) {
		return false
	}
	if RoundMoney(b.TotalAmount-b.PaidAmount) != RoundMoney(b.OutstandingAmount) {
		return false
	}
	return b.PaymentStatus == DerivePaymentStatus(b.TotalAmount, b.PaidAmount)
}
