package bill

// Form holds the raw values of the new bill form
type Form struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	VAT        string `json:"vat"`
	Pct        string `json:"pct"`
	Commentary string `json:"commentary"`
}
