package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/views"
)

// ErrBillNotFound is returned when a receipt is requested for a bill the user cannot see
var ErrBillNotFound = errors.New("bill not found")

// Bills drives the bill list
type Bills struct {
	store    Store
	user     session.User
	navigate Navigator
}

// NewBills creates the bill list container for user
func NewBills(store Store, user session.User, navigate Navigator) *Bills {
	return &Bills{store: store, user: user, navigate: navigate}
}

// GetBills fetches the user's bills and formats them for display, most recent first.
// Admins get every bill.
func (c *Bills) GetBills(ctx context.Context) ([]views.BillRow, error) {
	email := c.user.Email
	if c.user.IsAdmin() {
		email = ""
	}

	bills, err := c.store.List(ctx, email)
	if err != nil {
		return nil, err
	}
	bills = slices.Clone(bills)
	bill.SortByDateDesc(bills)

	rows := make([]views.BillRow, 0, len(bills))
	for _, b := range bills {
		date, err := bill.FormatDate(b.Date)
		if err != nil {
			slog.Warn("Unformattable bill date", "bill_id", b.ID, "date", b.Date, "error", err)
			date = b.Date
		}
		rows = append(rows, views.BillRow{
			ID:       b.ID,
			Type:     b.Type,
			Name:     b.Name,
			Date:     date,
			RawDate:  b.Date,
			Amount:   b.Amount.String(),
			Status:   bill.FormatStatus(b.Status),
			FileURL:  b.FileURL,
			FileName: b.FileName,
		})
	}
	return rows, nil
}

// FetchAndRenderList builds the bill list page. A store failure becomes the page's error message.
func (c *Bills) FetchAndRenderList(ctx context.Context) views.BillsPage {
	rows, err := c.GetBills(ctx)
	if err != nil {
		slog.Warn("Failed to fetch bills", "email", c.user.Email, "error", err)
		return views.BillsPage{Error: err.Error()}
	}
	return views.BillsPage{Bills: rows}
}

// HandleClickViewReceipt builds the overlay showing a bill's receipt
func (c *Bills) HandleClickViewReceipt(row views.BillRow) views.Modal {
	return views.Modal{FileURL: row.FileURL, FileName: row.FileName}
}

// OpenReceipt builds the bill list with the receipt of billID shown over it
func (c *Bills) OpenReceipt(ctx context.Context, billID string) (views.BillsPage, error) {
	page := c.FetchAndRenderList(ctx)
	if page.Error != "" {
		return page, nil
	}
	i := slices.IndexFunc(page.Bills, func(r views.BillRow) bool { return r.ID == billID })
	if i < 0 {
		return page, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	modal := c.HandleClickViewReceipt(page.Bills[i])
	page.Modal = &modal
	return page, nil
}

// HandleClickNewBill goes to the new bill form
func (c *Bills) HandleClickNewBill() {
	c.navigate(routes.NewBill)
}
