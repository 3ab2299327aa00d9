package bill

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("BoltDB", func() {
	var db *BoltDB

	BeforeEach(func() {
		var err error
		db, err = NewBoltDB(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveBill and GetBill", func() {
		It("should round-trip a bill with its amount", func() {
			b := Fixtures()[0]
			Expect(db.SaveBill(b)).To(Succeed())

			saved, err := db.GetBill(b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Name).To(Equal("encore"))
			Expect(saved.Status).To(Equal(StatusPending))
			Expect(saved.Amount.Equal(decimal.NewFromInt(400))).To(BeTrue())
		})

		It("should replace an existing bill", func() {
			b := Fixtures()[0]
			Expect(db.SaveBill(b)).To(Succeed())
			b.Status = StatusAccepted
			Expect(db.SaveBill(b)).To(Succeed())

			saved, err := db.GetBill(b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Status).To(Equal(StatusAccepted))
		})
	})

	Describe("GetBill", func() {
		When("the bill does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := db.GetBill("missing")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListBills", func() {
		When("the database is empty", func() {
			It("should return an empty slice", func() {
				bills, err := db.ListBills()
				Expect(err).NotTo(HaveOccurred())
				Expect(bills).NotTo(BeNil())
				Expect(bills).To(BeEmpty())
			})
		})

		When("bills exist", func() {
			BeforeEach(func() {
				for _, b := range Fixtures() {
					Expect(db.SaveBill(b)).To(Succeed())
				}
			})

			It("should return all of them", func() {
				bills, err := db.ListBills()
				Expect(err).NotTo(HaveOccurred())
				Expect(bills).To(HaveLen(4))
			})
		})
	})

	Describe("DeleteBill", func() {
		It("should remove the bill", func() {
			b := Fixtures()[1]
			Expect(db.SaveBill(b)).To(Succeed())
			Expect(db.DeleteBill(b.ID)).To(Succeed())

			_, err := db.GetBill(b.ID)
			Expect(err).To(MatchError(ErrNotFound))
		})
	})
})
