package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zombor/billed/internal/bill"
)

// Drafts remembers, per user, the receipt uploaded for the bill they are writing.
// Entries expire so abandoned forms do not pile up. Whenever an entry leaves the
// registry (expired, evicted, replaced or removed) its upload is handed to discard.
type Drafts struct {
	cache *expirable.LRU[string, bill.Upload]
}

// NewDrafts creates a registry holding at most size drafts for ttl each.
// discard may be nil.
func NewDrafts(size int, ttl time.Duration, discard func(bill.Upload)) *Drafts {
	var onEvict expirable.EvictCallback[string, bill.Upload]
	if discard != nil {
		onEvict = func(_ string, u bill.Upload) { discard(u) }
	}
	return &Drafts{cache: expirable.NewLRU[string, bill.Upload](size, onEvict, ttl)}
}

// Put records u as the user's pending upload, dropping the one it replaces
func (d *Drafts) Put(email string, u bill.Upload) {
	if old, ok := d.cache.Peek(email); ok && old.Key != u.Key {
		d.cache.Remove(email)
	}
	d.cache.Add(email, u)
}

// Get returns the user's pending upload
func (d *Drafts) Get(email string) (bill.Upload, bool) {
	return d.cache.Get(email)
}

// Remove forgets the user's pending upload
func (d *Drafts) Remove(email string) {
	d.cache.Remove(email)
}

// Discarder deletes uploads that never became bills
type Discarder interface {
	Discard(ctx context.Context, key string) error
}

// DiscardWith returns a drafts callback deleting abandoned uploads through d
func DiscardWith(d Discarder) func(bill.Upload) {
	return func(u bill.Upload) {
		if err := d.Discard(context.Background(), u.Key); err != nil {
			slog.Warn("Failed to discard abandoned receipt", "key", u.Key, "error", err)
		}
	}
}
