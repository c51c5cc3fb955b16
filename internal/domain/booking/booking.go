package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	ErrNotFound           = errors.New("booking: not found")
	ErrInvalidGuests      = errors.New("booking: guests count must be positive")
	ErrGuestLimitExceeded = errors.New("booking: guests exceed listing capacity")
	ErrCheckInPast        = errors.New("booking: check-in date is in the past")
	ErrListingUnavailable = errors.New("booking: listing is not available")
	ErrDateConflict       = errors.New("booking: dates conflict with an existing booking")
	ErrInvalidTransition  = errors.New("booking: invalid status transition")
	ErrCancellationWindow = errors.New("booking: cancellation window has closed")
)

// CancellationWindow is how far before check-in a guest may still cancel.
const CancellationWindow = 24 * time.Hour

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Contact carries the guest's reachable details as entered on the request.
type Contact struct {
	Email string
	Phone string
}

// Booking is a guest's reservation of a listing for a date range. TotalPrice
// is snapshotted at creation and never recomputed, even if the listing's
// nightly price changes later.
type Booking struct {
	ID             BookingID
	ListingID      listing.ListingID
	GuestID        string
	Range          daterange.DateRange
	Guests         int
	TotalPrice     money.Money
	Status         Status
	SpecialRequest string
	Contact        Contact
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// ListByGuest and ListByListing return bookings most-recent-first.
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listing.ListingID) ([]*Booking, error)
	// FindOverlapping returns pending or confirmed bookings on the listing
	// whose ranges intersect dr under half-open semantics.
	FindOverlapping(ctx context.Context, listingID listing.ListingID, dr daterange.DateRange) ([]*Booking, error)
}

type CreateParams struct {
	ID             BookingID
	ListingID      listing.ListingID
	GuestID        string
	Range          daterange.DateRange
	Guests         int
	Nightly        money.Money
	SpecialRequest string
	Contact        Contact
	CreatedAt      time.Time
}

// NewBooking validates the request and snapshots the total price from the
// nightly rate in effect right now.
func NewBooking(params CreateParams) (*Booking, error) {
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, errors.New("booking: guest id required")
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if !params.Nightly.IsPositive() {
		return nil, errors.New("booking: nightly price must be positive")
	}
	now := params.CreatedAt.UTC()
	total := params.Nightly.MulInt(int64(params.Range.Nights()))
	b := &Booking{
		ID:             params.ID,
		ListingID:      params.ListingID,
		GuestID:        params.GuestID,
		Range:          params.Range,
		Guests:         params.Guests,
		TotalPrice:     total,
		Status:         StatusPending,
		SpecialRequest: strings.TrimSpace(params.SpecialRequest),
		Contact:        params.Contact,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.Record(BookingCreated{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, Guests: b.Guests, TotalPrice: b.TotalPrice, At: now})
	return b, nil
}

// ValidateCheckIn rejects ranges whose check-in day already passed.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	if dr.CheckIn.Before(daterange.Day(now)) {
		return ErrCheckInPast
	}
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}

// Cancel marks the booking cancelled. The record stays consultable for the
// listing's calendar audit; it is never hard-deleted.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidTransition
	}
	if !b.CanCancel(now) {
		return ErrCancellationWindow
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}

// Nights is the length of the stay in whole days.
func (b *Booking) Nights() int {
	return b.Range.Nights()
}

// IsPast reports whether the stay is already over.
func (b *Booking) IsPast(now time.Time) bool {
	return b.Range.CheckOut.Before(daterange.Day(now))
}

// IsCurrent reports whether the stay is in progress today, check-out day
// included.
func (b *Booking) IsCurrent(now time.Time) bool {
	today := daterange.Day(now)
	return !today.Before(b.Range.CheckIn) && !today.After(b.Range.CheckOut)
}

// CanCancel is true while the booking is still pending or confirmed and
// check-in is more than the cancellation window away.
func (b *Booking) CanCancel(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	return b.Range.CheckIn.After(daterange.Day(now).Add(CancellationWindow))
}
