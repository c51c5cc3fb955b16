package booking

import (
	"context"
	"log/slog"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainrange "homestay/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	GuestEmail      string
	GuestPhone      string
	SpecialRequest  string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

// SerializationKey serializes creation per listing, keeping the overlap
// check and the insert inside one critical section up to commit.
func (c CreateBookingCommand) SerializationKey() string { return "listing:" + c.ListingID }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID  string `json:"booking_id"`
	TotalPrice string `json:"total_price"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

// Handle validates and prices a booking request. Checks run in a fixed
// order: range validity, check-in not in the past, listing existence,
// listing availability, guest count and capacity, then date overlap against pending
// and confirmed bookings.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}

	unit, execCtx, commit, cleanup, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listingID := domainlisting.ListingID(cmd.ListingID)
	lst, err := unit.Listings().ByID(execCtx, listingID)
	if err != nil {
		return nil, err
	}
	if !lst.Available {
		return nil, domainbooking.ErrListingUnavailable
	}
	if cmd.Guests <= 0 {
		return nil, domainbooking.ErrInvalidGuests
	}
	if cmd.Guests > lst.MaxGuests {
		return nil, domainbooking.ErrGuestLimitExceeded
	}

	overlapping, err := unit.Bookings().FindOverlapping(execCtx, listingID, dr)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, domainbooking.ErrDateConflict
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:             domainbooking.BookingID(cmd.CommandID),
		ListingID:      lst.ID,
		GuestID:        cmd.GuestID,
		Range:          dr,
		Guests:         cmd.Guests,
		Nightly:        lst.NightlyPrice,
		SpecialRequest: cmd.SpecialRequest,
		Contact:        domainbooking.Contact{Email: cmd.GuestEmail, Phone: cmd.GuestPhone},
		CreatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(execCtx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking created", "booking_id", b.ID, "listing_id", b.ListingID, "nights", b.Nights(), "total", b.TotalPrice.String())
	}
	return &CreateBookingResult{
		BookingID:  string(b.ID),
		TotalPrice: b.TotalPrice.Amount.StringFixed(2),
		Currency:   b.TotalPrice.Currency,
		Status:     string(b.Status),
	}, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
var _ middleware.SerializedCommand = CreateBookingCommand{}
