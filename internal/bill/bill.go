package bill

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the review state of a bill
type Status string

const (
	// StatusDraft marks a bill holding only an uploaded receipt; it is hidden from listings
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// DefaultPct is the VAT percentage used when none is given
const DefaultPct = 20

// ExpenseTypes lists the categories offered by the new bill form, default first
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// Bill represents one submitted expense with its receipt
type Bill struct {
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"` // YYYY-MM-DD
	VAT          string          `json:"vat"`
	Pct          int             `json:"pct"`
	Commentary   string          `json:"commentary"`
	CommentAdmin string          `json:"commentAdmin,omitempty"`
	FileURL      string          `json:"fileUrl"`
	FileName     string          `json:"fileName"`
	ContentType  string          `json:"contentType,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewReceipt is a receipt file to store for a user
type NewReceipt struct {
	Email       string
	FileName    string
	ContentType string
	Data        []byte
}

// Upload is what the store hands back after a receipt has been stored.
// Key identifies the bill record the receipt was attached to.
type Upload struct {
	FileURL  string `json:"fileUrl"`
	Key      string `json:"key"`
	FileName string `json:"fileName"`
}
