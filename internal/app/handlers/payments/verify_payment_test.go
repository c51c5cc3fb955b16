package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/policies"
	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/payment"
	"homestay/internal/domain/shared/money"
)

func (f *paymentFixture) verifyHandler() *VerifyPaymentHandler {
	return &VerifyPaymentHandler{
		UoWFactory: f.factory,
		Processor:  f.processor,
		Outbox:     f.outbox,
	}
}

func (f *paymentFixture) seedPayment(t *testing.T, reference string, bookingID string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(payment.CreateParams{
		ID:        payment.PaymentID("pay-" + bookingID),
		BookingID: domainbooking.BookingID(bookingID),
		Amount:    money.Must("300.00", "ETB"),
		Reference: reference,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	p.ClearEvents()
	require.NoError(t, f.payments.Save(context.Background(), p))
	return p
}

func TestVerifyPaymentSuccessConfirmsBooking(t *testing.T) {
	f := newPaymentFixture()
	f.seedBooking(t, "bkg-1", domainbooking.StatusPending)
	f.seedPayment(t, "booking-bkg-1-ref", "bkg-1")
	f.processor.verifyState = "success"

	res, err := f.verifyHandler().Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 1, res.Attempts)
	require.NotNil(t, res.VerifiedAt)

	b, err := f.bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, b.Status)

	names := make([]string, 0)
	for _, rec := range f.outbox.Pending() {
		names = append(names, rec.Name)
	}
	assert.ElementsMatch(t, []string{"booking.confirmed", "payment.succeeded"}, names)
}

func TestVerifyPaymentOnAlreadyConfirmedBooking(t *testing.T) {
	f := newPaymentFixture()
	f.seedBooking(t, "bkg-1", domainbooking.StatusConfirmed)
	f.seedPayment(t, "booking-bkg-1-ref", "bkg-1")
	f.processor.verifyState = "success"

	res, err := f.verifyHandler().Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)

	b, err := f.bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, b.Status)
}

func TestVerifyPaymentFailed(t *testing.T) {
	f := newPaymentFixture()
	f.seedBooking(t, "bkg-1", domainbooking.StatusPending)
	f.seedPayment(t, "booking-bkg-1-ref", "bkg-1")
	f.processor.verifyState = "failed"

	res, err := f.verifyHandler().Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	require.NoError(t, err)
	assert.Equal(t, "failed", res.Status)

	b, err := f.bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, b.Status, "a failed payment must not touch the booking")
}

func TestVerifyPaymentUnknownGatewayStatusIsPending(t *testing.T) {
	f := newPaymentFixture()
	f.seedBooking(t, "bkg-1", domainbooking.StatusPending)
	f.seedPayment(t, "booking-bkg-1-ref", "bkg-1")
	f.processor.verifyState = "created"

	res, err := f.verifyHandler().Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
}

func TestVerifyPaymentSuccessIsSticky(t *testing.T) {
	f := newPaymentFixture()
	f.seedBooking(t, "bkg-1", domainbooking.StatusPending)
	f.seedPayment(t, "booking-bkg-1-ref", "bkg-1")
	handler := f.verifyHandler()

	f.processor.verifyState = "success"
	_, err := handler.Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	require.NoError(t, err)

	// A late failed report still counts an attempt but keeps success.
	f.processor.verifyState = "failed"
	res, err := handler.Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 2, res.Attempts)
}

func TestVerifyPaymentGatewayError(t *testing.T) {
	f := newPaymentFixture()
	f.seedBooking(t, "bkg-1", domainbooking.StatusPending)
	seeded := f.seedPayment(t, "booking-bkg-1-ref", "bkg-1")
	f.processor.verifyErr = policies.ErrGateway

	_, err := f.verifyHandler().Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-bkg-1-ref"})
	assert.ErrorIs(t, err, policies.ErrGateway)

	stored, err := f.payments.ByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusInitialized, stored.Status)
	assert.Equal(t, 0, stored.Attempts)
}

func TestVerifyPaymentUnknownReference(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.verifyHandler().Handle(context.Background(), VerifyPaymentCommand{Reference: "booking-none"})
	assert.ErrorIs(t, err, payment.ErrNotFound)
	assert.Empty(t, f.processor.verifyRefs, "the processor is only asked about known references")
}
