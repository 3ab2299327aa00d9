package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReceiptsPath is the URL prefix receipt files are served under
const ReceiptsPath = "/receipts/"

// IDGenerator generates bill IDs
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Service is the bill store: it lists, creates and updates bills and keeps their receipts
type Service struct {
	db          DB
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a Service with uuid IDs and the system clock
func NewService(db DB, storage Storage) *Service {
	return NewServiceWithDeps(db, storage, uuidGenerator{}, systemClock{})
}

// NewServiceWithDeps creates a Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and truncates long phone-generated names
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeChars.ReplaceAllString(base, "")
	base = spaceRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_ ")

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// List returns the bills belonging to email, or every bill when email is empty.
// Drafts are left out.
func (s *Service) List(ctx context.Context, email string) ([]*Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := s.db.ListBills()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	bills := make([]*Bill, 0, len(all))
	for _, b := range all {
		if b.Status == StatusDraft {
			continue
		}
		if email == "" || b.Email == email {
			bills = append(bills, b)
		}
	}
	return bills, nil
}

// Get returns a single bill
func (s *Service) Get(ctx context.Context, id string) (*Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return b, nil
}

// Create stores a receipt and opens a draft bill for it.
// The returned key is the ID of that bill; Update completes it, Discard drops it.
func (s *Service) Create(ctx context.Context, r NewReceipt) (*Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Email == "" {
		return nil, fmt.Errorf("creating bill: email is required")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	stored, err := s.storage.Save(id+"_"+sanitizeFilename(r.FileName), r.Data)
	if err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}

	b := &Bill{
		ID:          id,
		Status:      StatusDraft,
		Email:       r.Email,
		Pct:         DefaultPct,
		FileURL:     ReceiptsPath + stored,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.SaveBill(b); err != nil {
		if delErr := s.storage.Delete(stored); delErr != nil {
			slog.Warn("Failed to remove orphaned receipt", "filename", stored, "error", delErr)
		}
		return nil, fmt.Errorf("saving bill: %w", err)
	}

	return &Upload{FileURL: b.FileURL, Key: id, FileName: r.FileName}, nil
}

// Update overwrites the bill identified by key with the fields of b.
// Identity, owner, receipt and creation time stay with the stored bill unless b sets them.
func (s *Service) Update(ctx context.Context, key string, b *Bill) (*Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	existing, err := s.db.GetBill(key)
	if err != nil {
		return nil, fmt.Errorf("updating bill: %w", err)
	}

	updated := *b
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.timeSource.Now()
	if updated.Email == "" {
		updated.Email = existing.Email
	}
	if updated.FileURL == "" {
		updated.FileURL = existing.FileURL
		updated.FileName = existing.FileName
	}
	if updated.ContentType == "" {
		updated.ContentType = existing.ContentType
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}

	if err := s.db.SaveBill(&updated); err != nil {
		return nil, fmt.Errorf("saving bill: %w", err)
	}
	return &updated, nil
}

// Discard deletes a draft bill and its receipt file.
// Unknown keys and bills that were already completed are left alone.
func (s *Service) Discard(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := s.db.GetBill(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("discarding bill: %w", err)
	}
	if b.Status != StatusDraft {
		return nil
	}

	if err := s.db.DeleteBill(key); err != nil {
		return fmt.Errorf("deleting bill: %w", err)
	}
	if name, ok := strings.CutPrefix(b.FileURL, ReceiptsPath); ok && name != "" {
		if err := s.storage.Delete(name); err != nil {
			slog.Warn("Failed to remove discarded receipt", "filename", name, "error", err)
		}
	}
	return nil
}

// ReceiptFile returns a stored receipt and its content type
func (s *Service) ReceiptFile(ctx context.Context, name string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := s.storage.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, ContentTypeFor(name), nil
}

// Seed stores bills when the database is empty and reports how many were written
func (s *Service) Seed(ctx context.Context, bills []*Bill) (int, error) {
	existing, err := s.List(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, b := range bills {
		if err := s.db.SaveBill(b); err != nil {
			return 0, fmt.Errorf("seeding bill %s: %w", b.ID, err)
		}
	}
	return len(bills), nil
}
