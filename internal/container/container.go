// Package container pairs each page with the logic that feeds it and reacts to the user.
//
// Containers are built per interaction with the connected user passed in explicitly;
// they never read the session themselves.
package container

import (
	"context"

	"github.com/zombor/billed/internal/bill"
)

// Store is the data access the containers need
type Store interface {
	// List returns the bills of email, or all bills when email is empty
	List(ctx context.Context, email string) ([]*bill.Bill, error)

	// Create stores a receipt and returns where it lives and the key of its bill
	Create(ctx context.Context, r bill.NewReceipt) (*bill.Upload, error)

	// Update completes or replaces the bill identified by key
	Update(ctx context.Context, key string, b *bill.Bill) (*bill.Bill, error)
}

// Navigator shows the view registered for a path
type Navigator func(path string)

// Alerter tells the user something went wrong with their input
type Alerter func(message string)
