package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/infra/storage/memory"
)

func newQueryHandler(bookings *memory.BookingRepository) *QueryHandler {
	return &QueryHandler{
		UoWFactory: memory.Factory{
			ListingRepo: memory.NewListingRepository(),
			BookingRepo: bookings,
			PaymentRepo: memory.NewPaymentRepository(),
			ReviewRepo:  memory.NewReviewRepository(),
		},
	}
}

func TestGetBooking(t *testing.T) {
	bookings := memory.NewBookingRepository()
	handler := newQueryHandler(bookings)
	seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))

	res, err := handler.Get(context.Background(), GetBookingQuery{BookingID: "bkg-1"})
	require.NoError(t, err)
	assert.Equal(t, "bkg-1", res.ID)
	assert.Equal(t, 3, res.Nights)
	assert.Equal(t, "300.00", res.TotalPrice)
	assert.Equal(t, "ETB", res.Currency)
	assert.True(t, res.CanCancel)
	assert.False(t, res.IsPast)

	_, err = handler.Get(context.Background(), GetBookingQuery{BookingID: "bkg-missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestListGuestBookingsFilter(t *testing.T) {
	bookings := memory.NewBookingRepository()
	handler := newQueryHandler(bookings)

	seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))
	confirmed := seedBooking(t, bookings, "bkg-2", futureDay(20), futureDay(23))
	require.NoError(t, confirmed.Confirm(time.Now()))
	confirmed.ClearEvents()
	require.NoError(t, bookings.Save(context.Background(), confirmed))

	all, err := handler.ListByGuest(context.Background(), ListGuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	pending, err := handler.ListByGuest(context.Background(), ListGuestBookingsQuery{GuestID: "guest-1", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "bkg-1", pending.Items[0].ID)

	none, err := handler.ListByGuest(context.Background(), ListGuestBookingsQuery{GuestID: "guest-unknown"})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestListListingBookings(t *testing.T) {
	bookings := memory.NewBookingRepository()
	handler := newQueryHandler(bookings)
	seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))

	res, err := handler.ListByListing(context.Background(), ListListingBookingsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "lst-1", res.Items[0].ListingID)
}
