package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
)

const (
	getBookingKey          = "booking.get"
	listGuestBookingsKey   = "booking.list_by_guest"
	listListingBookingsKey = "booking.list_by_listing"
)

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

func (q GetBookingQuery) Validate() error {
	if strings.TrimSpace(q.BookingID) == "" {
		return errors.New("booking id required")
	}
	return nil
}

type ListGuestBookingsQuery struct {
	GuestID string
	// Status filters to a single status when set.
	Status string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

func (q ListGuestBookingsQuery) Validate() error {
	if strings.TrimSpace(q.GuestID) == "" {
		return errors.New("guest id required")
	}
	return nil
}

type ListListingBookingsQuery struct {
	ListingID string
	Status    string
}

func (q ListListingBookingsQuery) Key() string { return listListingBookingsKey }

func (q ListListingBookingsQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return errors.New("listing id required")
	}
	return nil
}

// QueryHandler serves the booking read side.
type QueryHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *QueryHandler) Get(ctx context.Context, query GetBookingQuery) (*dto.Booking, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(query.BookingID))
	if err != nil {
		return nil, err
	}
	mapped := dto.MapBooking(b, h.now())
	return &mapped, nil
}

func (h *QueryHandler) ListByGuest(ctx context.Context, query ListGuestBookingsQuery) (*dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByGuest(execCtx, query.GuestID)
	if err != nil {
		return nil, err
	}
	collection := dto.MapBookingCollection(filterByStatus(bookings, query.Status), h.now())
	return &collection, nil
}

func (h *QueryHandler) ListByListing(ctx context.Context, query ListListingBookingsQuery) (*dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByListing(execCtx, listing.ListingID(query.ListingID))
	if err != nil {
		return nil, err
	}
	collection := dto.MapBookingCollection(filterByStatus(bookings, query.Status), h.now())
	return &collection, nil
}

func (h *QueryHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func filterByStatus(bookings []*domainbooking.Booking, status string) []*domainbooking.Booking {
	if status == "" {
		return bookings
	}
	filtered := make([]*domainbooking.Booking, 0, len(bookings))
	for _, b := range bookings {
		if string(b.Status) == status {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

var _ queries.Handler[GetBookingQuery, *dto.Booking] = queries.HandlerFunc[GetBookingQuery, *dto.Booking]((&QueryHandler{}).Get)
