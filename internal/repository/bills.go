package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/otcheredev/hms-console/internal/models"
)

// BillQuery selects bills; zero fields match everything
type BillQuery struct {
	PatientID int64
	Status    models.PaymentStatus
	Unpaid    bool
}

func (q BillQuery) match(b *models.Bill) bool {
	if q.PatientID > 0 && b.Patient.ID != q.PatientID {
		return false
	}
	if q.Status != "" && b.PaymentStatus != q.Status {
		return false
	}
	if q.Unpaid && b.PaymentStatus == models.PaymentPaid {
		return false
	}
	return true
}

func latestBillFirst(a, b *models.Bill) int {
	if c := b.BillDate.Compare(a.BillDate); c != 0 {
		return c
	}
	return cmpInt64(b.ID, a.ID)
}

func cloneBill(b models.Bill) models.Bill {
	b.Items = slices.Clone(b.Items)
	if b.PaymentDate != nil {
		d := *b.PaymentDate
		b.PaymentDate = &d
	}
	return b
}

// CreateBill stores a bill, assigning its id and bill number
func (r *Repository) CreateBill(ctx context.Context, b models.Bill) models.Bill {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b.ID = r.nextID("bill")
	b.BillNumber = fmt.Sprintf("B%06d", b.ID)
	b.CreatedAt = now
	b.UpdatedAt = now
	stored := cloneBill(b)
	r.bills[b.ID] = &stored
	return cloneBill(stored)
}

// UpdateBill applies fn to the stored bill under the write lock. An error from fn
// leaves the bill unchanged.
func (r *Repository) UpdateBill(ctx context.Context, id int64, fn func(*models.Bill) error) (models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.bills[id]
	if !ok {
		return models.Bill{}, ErrNotFound
	}
	next := cloneBill(*existing)
	if err := fn(&next); err != nil {
		return models.Bill{}, err
	}
	next.UpdatedAt = time.Now()
	r.bills[id] = &next
	return cloneBill(next), nil
}

// BillByID finds a bill
func (r *Repository) BillByID(ctx context.Context, id int64) (*models.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneBill(*b)
	return &out, nil
}

// BillByNumber finds a bill by its printed number
func (r *Repository) BillByNumber(ctx context.Context, number string) (*models.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bills {
		if b.BillNumber == number {
			out := cloneBill(*b)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// ListBills returns matching bills, latest first
func (r *Repository) ListBills(ctx context.Context, q BillQuery, page models.PageRequest) Page[models.Bill] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := collect(r.bills, q.match, latestBillFirst, page)
	for i := range p.Items {
		p.Items[i] = cloneBill(p.Items[i])
	}
	return p
}

// AllBills returns every matching bill, latest first
func (r *Repository) AllBills(ctx context.Context, q BillQuery) []models.Bill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := all(r.bills, q.match, latestBillFirst)
	for i := range out {
		out[i] = cloneBill(out[i])
	}
	return out
}
