package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/infra/storage/memory"
)

func newTransitionHandler(bookings *memory.BookingRepository, out *memory.Outbox) *TransitionHandler {
	return &TransitionHandler{
		UoWFactory: memory.Factory{
			ListingRepo: memory.NewListingRepository(),
			BookingRepo: bookings,
			PaymentRepo: memory.NewPaymentRepository(),
			ReviewRepo:  memory.NewReviewRepository(),
		},
		Outbox: out,
	}
}

func TestConfirmThenComplete(t *testing.T) {
	bookings := memory.NewBookingRepository()
	out := memory.NewOutbox()
	handler := newTransitionHandler(bookings, out)
	seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))

	res, err := handler.Confirm(context.Background(), ConfirmBookingCommand{BookingID: "bkg-1"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", res.Status)

	res, err = handler.Complete(context.Background(), CompleteBookingCommand{BookingID: "bkg-1"})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)

	records := out.Pending()
	require.Len(t, records, 2)
	assert.Equal(t, "booking.confirmed", records[0].Name)
	assert.Equal(t, "booking.completed", records[1].Name)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	bookings := memory.NewBookingRepository()
	handler := newTransitionHandler(bookings, memory.NewOutbox())
	seedBooking(t, bookings, "bkg-1", futureDay(10), futureDay(13))

	_, err := handler.Complete(context.Background(), CompleteBookingCommand{BookingID: "bkg-1"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)

	stored, err := bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
}

func TestTransitionUnknownBooking(t *testing.T) {
	handler := newTransitionHandler(memory.NewBookingRepository(), memory.NewOutbox())
	_, err := handler.Confirm(context.Background(), ConfirmBookingCommand{BookingID: "bkg-missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
