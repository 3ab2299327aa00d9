package server

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/billed/internal/bill"
)

// discardRecorder records discarded keys
type discardRecorder struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (d *discardRecorder) Discard(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, key)
	return d.err
}

func (d *discardRecorder) discarded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.keys...)
}

var _ = Describe("Drafts", func() {
	var (
		recorder *discardRecorder
		drafts   *Drafts
	)

	BeforeEach(func() {
		recorder = &discardRecorder{}
		drafts = NewDrafts(2, time.Hour, DiscardWith(recorder))
	})

	It("should keep one receipt per user, the latest winning", func() {
		drafts.Put("a@a", bill.Upload{Key: "1"})
		drafts.Put("a@a", bill.Upload{Key: "2"})

		u, ok := drafts.Get("a@a")
		Expect(ok).To(BeTrue())
		Expect(u.Key).To(Equal("2"))
		Expect(recorder.discarded()).To(Equal([]string{"1"}))
	})

	It("should not discard an upload put twice", func() {
		drafts.Put("a@a", bill.Upload{Key: "1"})
		drafts.Put("a@a", bill.Upload{Key: "1"})

		Expect(recorder.discarded()).To(BeEmpty())
	})

	It("should forget and discard removed drafts", func() {
		drafts.Put("a@a", bill.Upload{Key: "1"})
		drafts.Remove("a@a")

		_, ok := drafts.Get("a@a")
		Expect(ok).To(BeFalse())
		Expect(recorder.discarded()).To(Equal([]string{"1"}))
	})

	It("should evict and discard the oldest user when full", func() {
		drafts.Put("a@a", bill.Upload{Key: "1"})
		drafts.Put("b@b", bill.Upload{Key: "2"})
		drafts.Put("c@c", bill.Upload{Key: "3"})

		_, ok := drafts.Get("a@a")
		Expect(ok).To(BeFalse())
		_, ok = drafts.Get("c@c")
		Expect(ok).To(BeTrue())
		Expect(recorder.discarded()).To(Equal([]string{"1"}))
	})

	It("should expire and discard drafts after their ttl", func() {
		drafts = NewDrafts(2, 20*time.Millisecond, DiscardWith(recorder))
		drafts.Put("a@a", bill.Upload{Key: "1"})

		Eventually(func() bool {
			_, ok := drafts.Get("a@a")
			return ok
		}).WithTimeout(time.Second).Should(BeFalse())
		Eventually(recorder.discarded).WithTimeout(time.Second).Should(ContainElement("1"))
	})

	It("should survive a failing discard", func() {
		recorder.err = errors.New("db error")
		drafts.Put("a@a", bill.Upload{Key: "1"})
		drafts.Put("a@a", bill.Upload{Key: "2"})

		u, ok := drafts.Get("a@a")
		Expect(ok).To(BeTrue())
		Expect(u.Key).To(Equal("2"))
	})

	It("should work without a discard callback", func() {
		drafts = NewDrafts(2, time.Hour, nil)
		drafts.Put("a@a", bill.Upload{Key: "1"})
		drafts.Remove("a@a")

		_, ok := drafts.Get("a@a")
		Expect(ok).To(BeFalse())
	})
})
