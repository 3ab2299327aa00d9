package container

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/billed/internal/bill"
)

var _ = Describe("Containers over the bolt store", func() {
	var (
		ctx     context.Context
		tempDir string
		db      *bill.BoltDB
		service *bill.Service
		nav     *navigation
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tempDir, err = os.MkdirTemp("", "billed-container-test-*")
		Expect(err).NotTo(HaveOccurred())
		db, err = bill.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())
		storage, err := bill.NewLocalStorage(filepath.Join(tempDir, "receipts"))
		Expect(err).NotTo(HaveOccurred())
		service = bill.NewService(db, storage)
		nav = &navigation{}
	})

	AfterEach(func() {
		db.Close()
		os.RemoveAll(tempDir)
	})

	It("should not list receipts whose bill was never submitted", func() {
		newBill := OpenNewBill(service, employee, nav.navigate, func(string) {})
		Expect(newBill.HandleChangeFile(ctx, File{Name: "a.png", ContentType: "image/png", Data: []byte("a")})).To(Succeed())
		Expect(newBill.HandleChangeFile(ctx, File{Name: "b.png", ContentType: "image/png", Data: []byte("b")})).To(Succeed())

		rows, err := NewBills(service, employee, nav.navigate).GetBills(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	It("should list the bill once it is submitted", func() {
		newBill := OpenNewBill(service, employee, nav.navigate, func(string) {})
		Expect(newBill.HandleChangeFile(ctx, File{Name: "a.png", ContentType: "image/png", Data: []byte("a")})).To(Succeed())
		_, err := newBill.HandleSubmit(ctx, bill.Form{Type: "Transports", Name: "taxi", Date: "2021-11-23", Amount: "12"})
		Expect(err).NotTo(HaveOccurred())

		rows, err := NewBills(service, employee, nav.navigate).GetBills(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Name).To(Equal("taxi"))
		Expect(rows[0].Status).To(Equal("En attente"))
		Expect(rows[0].FileName).To(Equal("a.png"))
	})
})
