package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("listing: not found")
	ErrTitleRequired = errors.New("listing: title is required")
	ErrNightlyPrice  = errors.New("listing: nightly price must be positive")
	ErrGuestLimit    = errors.New("listing: max guests must be between 1 and 50")
)

// MaxGuestLimit caps how many guests any listing may advertise.
const MaxGuestLimit = 50

type ListingID string

// Listing is the booking engine's read-only view of a property record. The
// listing directory owns the full record; only the fields the core consults
// are projected here.
type Listing struct {
	ID           ListingID
	Host         string
	Title        string
	NightlyPrice money.Money
	MaxGuests    int
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Directory is the collaborator contract the booking engine depends on.
type Directory interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
}

// Repository extends the directory with the write operations the fixture
// loader and stats task need.
type Repository interface {
	Directory
	Save(ctx context.Context, listing *Listing) error
	Count(ctx context.Context) (int64, error)
}

type CreateParams struct {
	ID           ListingID
	Host         string
	Title        string
	NightlyPrice money.Money
	MaxGuests    int
	Available    bool
	Now          time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listing: id is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !params.NightlyPrice.IsPositive() {
		return nil, ErrNightlyPrice
	}
	if params.MaxGuests < 1 || params.MaxGuests > MaxGuestLimit {
		return nil, ErrGuestLimit
	}
	now := params.Now.UTC()
	return &Listing{
		ID:           params.ID,
		Host:         params.Host,
		Title:        params.Title,
		NightlyPrice: params.NightlyPrice,
		MaxGuests:    params.MaxGuests,
		Available:    params.Available,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
