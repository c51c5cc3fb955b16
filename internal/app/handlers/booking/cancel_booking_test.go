package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
	"homestay/internal/infra/storage/memory"
)

func seedBooking(t *testing.T, repo *memory.BookingRepository, id string, checkIn, checkOut time.Time) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(id),
		ListingID: "lst-1",
		GuestID:   "guest-1",
		Range:     dr,
		Guests:    2,
		Nightly:   money.Must("100.00", "ETB"),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), b))
	return b
}

func newCancelHandler(bookings *memory.BookingRepository, out *memory.Outbox) *CancelBookingHandler {
	return &CancelBookingHandler{
		UoWFactory: memory.Factory{
			ListingRepo: memory.NewListingRepository(),
			BookingRepo: bookings,
			PaymentRepo: memory.NewPaymentRepository(),
			ReviewRepo:  memory.NewReviewRepository(),
		},
		Outbox: out,
	}
}

func TestCancelBookingOutsideWindow(t *testing.T) {
	bookings := memory.NewBookingRepository()
	out := memory.NewOutbox()
	handler := newCancelHandler(bookings, out)
	seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))

	res, err := handler.Handle(context.Background(), CancelBookingCommand{BookingID: "bkg-1", Reason: "plans changed"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)

	stored, err := bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)

	records := out.Pending()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.cancelled", records[0].Name)
}

func TestCancelBookingInsideWindow(t *testing.T) {
	bookings := memory.NewBookingRepository()
	handler := newCancelHandler(bookings, memory.NewOutbox())
	// Check-in tomorrow is exactly at the window boundary, so it is closed.
	seedBooking(t, bookings, "bkg-1", futureDay(1), futureDay(4))

	_, err := handler.Handle(context.Background(), CancelBookingCommand{BookingID: "bkg-1"})
	assert.ErrorIs(t, err, domainbooking.ErrCancellationWindow)

	stored, err := bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
}

func TestCancelBookingTerminalStates(t *testing.T) {
	bookings := memory.NewBookingRepository()
	handler := newCancelHandler(bookings, memory.NewOutbox())

	b := seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))
	require.NoError(t, b.Confirm(time.Now()))
	require.NoError(t, b.Complete(time.Now()))
	b.ClearEvents()
	require.NoError(t, bookings.Save(context.Background(), b))

	_, err := handler.Handle(context.Background(), CancelBookingCommand{BookingID: "bkg-1"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}

func TestCancelBookingUnknownID(t *testing.T) {
	handler := newCancelHandler(memory.NewBookingRepository(), memory.NewOutbox())
	_, err := handler.Handle(context.Background(), CancelBookingCommand{BookingID: "bkg-missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
