package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
)

// UnsupportedReceiptAlert is shown when the selected file is not an accepted image
const UnsupportedReceiptAlert = "Le justificatif doit être une image au format jpg, jpeg ou png."

var (
	ErrUnsupportedReceipt = errors.New("receipt must be a jpg, jpeg or png image")
	ErrReceiptRequired    = errors.New("a receipt must be uploaded before submitting")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidField       = errors.New("invalid field")
)

// ReceiptState tracks whether a receipt has been uploaded for the bill being written
type ReceiptState int

const (
	NoReceipt ReceiptState = iota
	ReceiptUploaded
)

func (s ReceiptState) String() string {
	switch s {
	case NoReceipt:
		return "no-receipt"
	case ReceiptUploaded:
		return "receipt-uploaded"
	default:
		return fmt.Sprintf("ReceiptState(%d)", int(s))
	}
}

// File is a file picked by the user
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewBill drives the new bill form: upload a receipt, then submit the bill.
// Submitting is only possible once a receipt has been uploaded.
type NewBill struct {
	store    Store
	user     session.User
	navigate Navigator
	alert    Alerter

	state  ReceiptState
	upload *bill.Upload
}

// OpenNewBill creates the new bill container for user
func OpenNewBill(store Store, user session.User, navigate Navigator, alert Alerter) *NewBill {
	return &NewBill{
		store:    store,
		user:     user,
		navigate: navigate,
		alert:    alert,
	}
}

// Restore resumes from a receipt uploaded earlier
func (c *NewBill) Restore(u bill.Upload) {
	c.upload = &u
	c.state = ReceiptUploaded
}

// State returns the current receipt state
func (c *NewBill) State() ReceiptState {
	return c.state
}

// Receipt returns the uploaded receipt, if any
func (c *NewBill) Receipt() (bill.Upload, bool) {
	if c.state != ReceiptUploaded || c.upload == nil {
		return bill.Upload{}, false
	}
	return *c.upload, true
}

func (c *NewBill) clear() {
	c.upload = nil
	c.state = NoReceipt
}

// HandleChangeFile uploads the selected receipt.
// A file that is not a png, jpg or jpeg image is refused with a single alert and never reaches the store.
func (c *NewBill) HandleChangeFile(ctx context.Context, f File) error {
	contentType, ok := bill.AcceptReceipt(f.Name, f.ContentType)
	if !ok {
		c.clear()
		c.alert(UnsupportedReceiptAlert)
		return fmt.Errorf("%w: %s", ErrUnsupportedReceipt, f.Name)
	}

	upload, err := c.store.Create(ctx, bill.NewReceipt{
		Email:       c.user.Email,
		FileName:    f.Name,
		ContentType: contentType,
		Data:        f.Data,
	})
	if err != nil {
		c.clear()
		slog.Error("Failed to upload receipt", "email", c.user.Email, "filename", f.Name, "error", err)
		return fmt.Errorf("uploading receipt: %w", err)
	}

	c.upload = upload
	c.state = ReceiptUploaded
	return nil
}

// HandleSubmit saves the bill described by form with the uploaded receipt and goes back to the bill list
func (c *NewBill) HandleSubmit(ctx context.Context, form bill.Form) (*bill.Bill, error) {
	if c.state != ReceiptUploaded {
		return nil, ErrReceiptRequired
	}

	b, err := c.compose(form)
	if err != nil {
		return nil, err
	}

	saved, err := c.store.Update(ctx, c.upload.Key, b)
	if err != nil {
		slog.Error("Failed to save bill", "email", c.user.Email, "key", c.upload.Key, "error", err)
		return nil, fmt.Errorf("saving bill: %w", err)
	}

	c.clear()
	c.navigate(routes.Bills)
	return saved, nil
}

func (c *NewBill) compose(form bill.Form) (*bill.Bill, error) {
	typ := strings.TrimSpace(form.Type)
	if typ == "" {
		return nil, fmt.Errorf("%w: expense type", ErrMissingField)
	}

	date := strings.TrimSpace(form.Date)
	if date == "" {
		return nil, fmt.Errorf("%w: date", ErrMissingField)
	}
	if _, err := time.Parse(bill.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidField, date)
	}

	rawAmount := strings.TrimSpace(form.Amount)
	if rawAmount == "" {
		return nil, fmt.Errorf("%w: amount", ErrMissingField)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", "."))
	if err != nil || amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount %q", ErrInvalidField, rawAmount)
	}

	vat := strings.TrimSpace(form.VAT)
	if vat != "" {
		if _, err := decimal.NewFromString(strings.ReplaceAll(vat, ",", ".")); err != nil {
			return nil, fmt.Errorf("%w: vat %q", ErrInvalidField, vat)
		}
	}

	pct := bill.DefaultPct
	if raw := strings.TrimSpace(form.Pct); raw != "" {
		pct, err = strconv.Atoi(raw)
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%w: pct %q", ErrInvalidField, raw)
		}
	}

	return &bill.Bill{
		Status:     bill.StatusPending,
		Email:      c.user.Email,
		Type:       typ,
		Name:       strings.TrimSpace(form.Name),
		Amount:     amount,
		Date:       date,
		VAT:        vat,
		Pct:        pct,
		Commentary: strings.TrimSpace(form.Commentary),
		FileURL:    c.upload.FileURL,
		FileName:   c.upload.FileName,
	}, nil
}
