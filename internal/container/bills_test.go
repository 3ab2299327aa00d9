package container

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/views"
)

var _ = Describe("Bills", func() {
	var (
		ctx   context.Context
		store *mockStore
		nav   *navigation
		user  session.User
		bills *Bills
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMockStore()
		nav = &navigation{}
		user = employee
	})

	JustBeforeEach(func() {
		bills = NewBills(store, user, nav.navigate)
	})

	Describe("GetBills", func() {
		It("should scope the request to the employee", func() {
			_, err := bills.GetBills(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.listEmails).To(Equal([]string{"e@e"}))
		})

		It("should format dates and statuses", func() {
			rows, err := bills.GetBills(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0].Date).To(Equal("4 Avr. 04"))
			Expect(rows[0].RawDate).To(Equal("2004-04-04"))
			Expect(rows[0].Status).To(Equal("En attente"))
			Expect(rows[0].Amount).To(Equal("400"))
		})

		It("should return bills from latest to earliest", func() {
			rows, err := bills.GetBills(ctx)
			Expect(err).NotTo(HaveOccurred())
			var dates []string
			for _, r := range rows {
				dates = append(dates, r.RawDate)
			}
			Expect(dates).To(Equal([]string{"2004-04-04", "2003-03-03", "2002-02-02", "2001-01-01"}))
		})

		It("should not reorder the store's slice", func() {
			_, err := bills.GetBills(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.bills[1].Date).To(Equal("2001-01-01"))
		})

		When("a date cannot be formatted", func() {
			BeforeEach(func() {
				store.bills = []*bill.Bill{{ID: "x", Date: "not a date", Status: bill.StatusPending}}
			})

			It("should keep the raw date", func() {
				rows, err := bills.GetBills(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(rows[0].Date).To(Equal("not a date"))
			})
		})

		When("the user is an admin", func() {
			BeforeEach(func() {
				user = session.User{Type: session.TypeAdmin, Email: "admin@test.tld"}
			})

			It("should list every bill", func() {
				_, err := bills.GetBills(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(store.listEmails).To(Equal([]string{""}))
			})
		})
	})

	Describe("FetchAndRenderList", func() {
		It("should return the rows", func() {
			page := bills.FetchAndRenderList(ctx)
			Expect(page.Error).To(BeEmpty())
			Expect(page.Bills).To(HaveLen(4))
		})

		DescribeTable("store failures become the page's error message",
			func(message string) {
				store.listErr = errors.New(message)
				page := NewBills(store, user, nav.navigate).FetchAndRenderList(ctx)
				Expect(page.Error).To(Equal(message))
				Expect(page.Bills).To(BeEmpty())

				html, err := views.BillsUI(page)
				Expect(err).NotTo(HaveOccurred())
				Expect(html).To(ContainSubstring(message))
			},
			Entry("404", "Erreur 404"),
			Entry("500", "Erreur 500"),
		)
	})

	Describe("HandleClickViewReceipt", func() {
		It("should show the row's receipt without calling the store", func() {
			modal := bills.HandleClickViewReceipt(views.BillRow{FileURL: "/receipts/a.png", FileName: "a.png"})
			Expect(modal).To(Equal(views.Modal{FileURL: "/receipts/a.png", FileName: "a.png"}))
			Expect(store.listEmails).To(BeEmpty())
		})
	})

	Describe("OpenReceipt", func() {
		It("should open the modal over the list", func() {
			page, err := bills.OpenReceipt(ctx, "UIUZtnPQvnbFnB0ozvJh")
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Modal).NotTo(BeNil())
			Expect(page.Modal.FileName).To(Equal("facture-client-php-exemple-format-pdf.png"))
			Expect(page.Bills).To(HaveLen(4))
		})

		It("should fail for an unknown bill", func() {
			_, err := bills.OpenReceipt(ctx, "nope")
			Expect(err).To(MatchError(ErrBillNotFound))
		})

		It("should show the error page when the store fails", func() {
			store.listErr = errors.New("Erreur 500")
			page, err := bills.OpenReceipt(ctx, "UIUZtnPQvnbFnB0ozvJh")
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Error).To(Equal("Erreur 500"))
			Expect(page.Modal).To(BeNil())
		})
	})

	Describe("HandleClickNewBill", func() {
		It("should navigate to the new bill form", func() {
			bills.HandleClickNewBill()
			Expect(nav.paths).To(Equal([]string{routes.NewBill}))
		})
	})
})
