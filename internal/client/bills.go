package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/otcheredev/hms-console/internal/models"
)

// BillsAPI covers invoices and payments
type BillsAPI struct {
	c *Client
}

// List returns one page of bills. The status filter is applied by the server so
// that the page count reflects the filtered set.
func (b *BillsAPI) List(ctx context.Context, filter models.BillFilter, page models.PageRequest) (*models.PagedResult[models.Bill], error) {
	switch {
	case filter.PatientID > 0:
		return listPage[models.Bill](ctx, b.c, "bills", idPath("/bills/by-patient/%d", filter.PatientID), nil, page)
	case filter.Status != "":
		return listPage[models.Bill](ctx, b.c, "bills", "/bills/by-status/"+url.PathEscape(string(filter.Status)), nil, page)
	default:
		return listPage[models.Bill](ctx, b.c, "bills", "/bills", nil, page)
	}
}

// Get fetches a bill
func (b *BillsAPI) Get(ctx context.Context, id int64) (*models.Bill, error) {
	return getOne[models.Bill](ctx, b.c, "bills", idPath("/bills/%d", id))
}

// GetByNumber fetches a bill by its printed number
func (b *BillsAPI) GetByNumber(ctx context.Context, number string) (*models.Bill, error) {
	return getOne[models.Bill](ctx, b.c, "bills", "/bills/by-bill-number/"+url.PathEscape(number))
}

// Create issues a bill
func (b *BillsAPI) Create(ctx context.Context, req models.BillRequest) (*models.Bill, error) {
	return send[models.Bill](ctx, b.c, "bills", http.MethodPost, "/bills", req)
}

// RecordPayment posts a payment and returns the bill as the server settled it
func (b *BillsAPI) RecordPayment(ctx context.Context, id int64, req models.PaymentRequest) (*models.Bill, error) {
	return send[models.Bill](ctx, b.c, "bills", http.MethodPost, idPath("/bills/%d/payment", id), req)
}

// Unpaid lists bills with money outstanding
func (b *BillsAPI) Unpaid(ctx context.Context) ([]models.Bill, error) {
	return getList[models.Bill](ctx, b.c, "bills", "/bills/unpaid", nil)
}

// RevenueStats returns collected and outstanding totals
func (b *BillsAPI) RevenueStats(ctx context.Context) (*models.RevenueStats, error) {
	return getOne[models.RevenueStats](ctx, b.c, "bills", "/bills/revenue/stats")
}
