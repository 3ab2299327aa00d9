// Package views renders the application's pages from plain data.
//
// Every renderer is a pure function of its argument: no store access, no session,
// no request. Templates are embedded at build time.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"slices"
	"strings"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/routes"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var templates = template.Must(template.New("views").Funcs(template.FuncMap{
	"billsPath":   func() string { return routes.Bills },
	"newBillPath": func() string { return routes.NewBill },
	"receiptPath": ReceiptPath,
}).ParseFS(templatesFS, "templates/*.html"))

// ReceiptPath is the page showing a bill's receipt over the bill list
func ReceiptPath(billID string) string {
	return routes.Bills + "/" + billID + "/receipt"
}

// Static returns the stylesheet and other assets
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// BillRow is one formatted line of the bill table
type BillRow struct {
	ID       string
	Type     string
	Name     string
	Date     string // display form
	RawDate  string // YYYY-MM-DD, used for ordering
	Amount   string
	Status   string
	FileURL  string
	FileName string
}

// Modal is the receipt overlay
type Modal struct {
	FileURL  string
	FileName string
}

// BillsPage is everything the bill list can show
type BillsPage struct {
	Bills   []BillRow
	Loading bool
	Error   string
	Modal   *Modal
}

// NewBillPage is the new bill form, possibly refilled after a failed submission
type NewBillPage struct {
	Form        bill.Form
	Alert       string
	Error       string
	ReceiptName string
}

// LoginPage is the login form
type LoginPage struct {
	Error string
}

// BillsUI renders the bill list, its loading placeholder or its error page.
// Rows are shown most recent first.
func BillsUI(p BillsPage) (string, error) {
	if p.Loading {
		return LoadingUI()
	}
	if p.Error != "" {
		return ErrorUI(p.Error)
	}

	rows := slices.Clone(p.Bills)
	slices.SortStableFunc(rows, func(a, b BillRow) int {
		return strings.Compare(b.RawDate, a.RawDate)
	})
	p.Bills = rows
	return render("bills.html", p)
}

// NewBillUI renders the new bill form
func NewBillUI(p NewBillPage) (string, error) {
	if p.Form.Type == "" {
		p.Form.Type = bill.ExpenseTypes[0]
	}
	return render("newbill.html", struct {
		NewBillPage
		ExpenseTypes []string
	}{p, bill.ExpenseTypes})
}

// LoginUI renders the login page
func LoginUI(p LoginPage) (string, error) {
	return render("login.html", p)
}

// LoadingUI renders the loading placeholder
func LoadingUI() (string, error) {
	return render("loading.html", nil)
}

// ErrorUI renders an error message in place of the page content
func ErrorUI(message string) (string, error) {
	return render("error.html", message)
}

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return sb.String(), nil
}
