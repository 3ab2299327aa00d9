package bill

import "github.com/shopspring/decimal"

// Fixtures returns the sample bills used for demos (--seed) and tests.
// Every call returns fresh copies.
func Fixtures() []*Bill {
	return []*Bill{
		{
			ID:           "47qAXb6fIm2zOKkLzMro",
			Status:       StatusPending,
			Email:        "a@a",
			Type:         "Hôtel et logement",
			Name:         "encore",
			Amount:       decimal.NewFromInt(400),
			Date:         "2004-04-04",
			VAT:          "80",
			Pct:          20,
			Commentary:   "séminaire billed",
			CommentAdmin: "ok",
			FileURL:      "https://test.storage.tld/v0/b/billable-677b6.appspot.com/o/justificatifs%2Fpreview-facture-free-201801-pdf-1.jpg?alt=media",
			FileName:     "preview-facture-free-201801-pdf-1.jpg",
		},
		{
			ID:           "BeKy5Mo4jkmdfPGYpTxZ",
			Status:       StatusRefused,
			Email:        "a@a",
			Type:         "Transports",
			Name:         "test1",
			Amount:       decimal.NewFromInt(100),
			Date:         "2001-01-01",
			VAT:          "",
			Pct:          20,
			Commentary:   "plop",
			CommentAdmin: "en fait non",
			FileURL:      "https://test.storage.tld/v0/b/billable-677b6.appspot.com/o/justificatifs%2F1592770761.jpeg?alt=media",
			FileName:     "1592770761.jpeg",
		},
		{
			ID:           "UIUZtnPQvnbFnB0ozvJh",
			Status:       StatusAccepted,
			Email:        "a@a",
			Type:         "Services en ligne",
			Name:         "test3",
			Amount:       decimal.NewFromInt(300),
			Date:         "2003-03-03",
			VAT:          "60",
			Pct:          20,
			Commentary:   "",
			CommentAdmin: "bon bah d'accord",
			FileURL:      "https://test.storage.tld/v0/b/billable-677b6.appspot.com/o/justificatifs%2Ffacture-client-php-exemple-format-pdf.png?alt=media",
			FileName:     "facture-client-php-exemple-format-pdf.png",
		},
		{
			ID:           "qcCK3SzECmaZAGRrHjaC",
			Status:       StatusRefused,
			Email:        "a@a",
			Type:         "Restaurants et bars",
			Name:         "test2",
			Amount:       decimal.NewFromInt(200),
			Date:         "2002-02-02",
			VAT:          "40",
			Pct:          20,
			Commentary:   "test2",
			CommentAdmin: "pas la bonne facture",
			FileURL:      "https://test.storage.tld/v0/b/billable-677b6.appspot.com/o/justificatifs%2Fpreview-facture-free-201801-pdf-1.jpg?alt=media",
			FileName:     "preview-facture-free-201801-pdf-1.jpg",
		},
	}
}
