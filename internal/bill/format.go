package bill

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// DateLayout is the storage format of Bill.Date
const DateLayout = "2006-01-02"

var frenchMonths = [...]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// FormatDate renders a YYYY-MM-DD date in the short French form, e.g. "4 Avr. 04"
func FormatDate(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", date, err)
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100), nil
}

// FormatStatus returns the display label of a status
func FormatStatus(s Status) string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refusé"
	default:
		return string(s)
	}
}

// SortByDateDesc orders bills most recent first by comparing raw date strings
func SortByDateDesc(bills []*Bill) {
	slices.SortStableFunc(bills, func(a, b *Bill) int {
		return strings.Compare(b.Date, a.Date)
	})
}

var receiptTypes = map[string][]string{
	".png":  {"image/png"},
	".jpg":  {"image/jpeg", "image/jpg"},
	".jpeg": {"image/jpeg", "image/jpg"},
}

// AcceptReceipt reports whether a file is an accepted receipt image.
// An empty content type is derived from the extension. The normalized content type is returned.
func AcceptReceipt(fileName, contentType string) (string, bool) {
	allowed, ok := receiptTypes[strings.ToLower(filepath.Ext(fileName))]
	if !ok {
		return "", false
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return allowed[0], true
	}
	if !slices.Contains(allowed, contentType) {
		return "", false
	}
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	return contentType, true
}

// ContentTypeFor guesses a stored receipt's content type from its name
func ContentTypeFor(name string) string {
	if allowed, ok := receiptTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return allowed[0]
	}
	return "application/octet-stream"
}
