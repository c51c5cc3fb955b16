package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func stay(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func newTestBooking(t *testing.T, checkIn, checkOut time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:        "bkg-1",
		ListingID: "lst-1",
		GuestID:   "guest-1",
		Range:     stay(t, checkIn, checkOut),
		Guests:    2,
		Nightly:   money.Must("100.00", "ETB"),
		CreatedAt: date(2026, time.July, 1),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingSnapshotsTotalPrice(t *testing.T) {
	b := newTestBooking(t, date(2026, time.July, 10), date(2026, time.July, 13))

	assert.Equal(t, 3, b.Nights())
	assert.Equal(t, "300.00 ETB", b.TotalPrice.String())
	assert.Equal(t, StatusPending, b.Status)
	require.Len(t, b.PendingEvents(), 1)
	assert.IsType(t, BookingCreated{}, b.PendingEvents()[0])
}

func TestNewBookingValidation(t *testing.T) {
	base := CreateParams{
		ID:        "bkg-1",
		ListingID: "lst-1",
		GuestID:   "guest-1",
		Range:     stay(t, date(2026, time.July, 10), date(2026, time.July, 12)),
		Guests:    2,
		Nightly:   money.Must("100.00", "ETB"),
		CreatedAt: date(2026, time.July, 1),
	}

	noGuests := base
	noGuests.Guests = 0
	_, err := NewBooking(noGuests)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	noGuestID := base
	noGuestID.GuestID = "  "
	_, err = NewBooking(noGuestID)
	assert.Error(t, err)

	freeNight := base
	freeNight.Nightly = money.Must("0.00", "ETB")
	_, err = NewBooking(freeNight)
	assert.Error(t, err)
}

func TestValidateCheckIn(t *testing.T) {
	now := time.Date(2026, time.July, 10, 15, 30, 0, 0, time.UTC)

	past := stay(t, date(2026, time.July, 9), date(2026, time.July, 12))
	assert.ErrorIs(t, ValidateCheckIn(past, now), ErrCheckInPast)

	// Check-in on the current day is still allowed.
	today := stay(t, date(2026, time.July, 10), date(2026, time.July, 12))
	assert.NoError(t, ValidateCheckIn(today, now))
}

func TestStatusTransitions(t *testing.T) {
	now := date(2026, time.July, 2)

	t.Run("pending to confirmed to completed", func(t *testing.T) {
		b := newTestBooking(t, date(2026, time.July, 10), date(2026, time.July, 13))
		require.NoError(t, b.Confirm(now))
		assert.Equal(t, StatusConfirmed, b.Status)
		require.NoError(t, b.Complete(now))
		assert.Equal(t, StatusCompleted, b.Status)
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		b := newTestBooking(t, date(2026, time.July, 10), date(2026, time.July, 13))
		assert.ErrorIs(t, b.Complete(now), ErrInvalidTransition)
	})

	t.Run("confirm is not repeatable", func(t *testing.T) {
		b := newTestBooking(t, date(2026, time.July, 10), date(2026, time.July, 13))
		require.NoError(t, b.Confirm(now))
		assert.ErrorIs(t, b.Confirm(now), ErrInvalidTransition)
	})

	t.Run("terminal states reject everything", func(t *testing.T) {
		b := newTestBooking(t, date(2026, time.July, 10), date(2026, time.July, 13))
		require.NoError(t, b.Cancel("plans changed", now))
		assert.ErrorIs(t, b.Confirm(now), ErrInvalidTransition)
		assert.ErrorIs(t, b.Complete(now), ErrInvalidTransition)
		assert.ErrorIs(t, b.Cancel("again", now), ErrInvalidTransition)
	})
}

func TestCancelWindow(t *testing.T) {
	checkIn := date(2026, time.July, 10)
	b := newTestBooking(t, checkIn, date(2026, time.July, 13))

	// More than 24h before check-in: allowed.
	assert.True(t, b.CanCancel(date(2026, time.July, 8)))
	require.NoError(t, b.Cancel("plans changed", date(2026, time.July, 8)))
	assert.Equal(t, StatusCancelled, b.Status)

	// Within the window: rejected, booking untouched.
	late := newTestBooking(t, checkIn, date(2026, time.July, 13))
	assert.False(t, late.CanCancel(date(2026, time.July, 9)))
	assert.ErrorIs(t, late.Cancel("too late", date(2026, time.July, 9)), ErrCancellationWindow)
	assert.Equal(t, StatusPending, late.Status)

	// A confirmed booking may still cancel outside the window.
	confirmed := newTestBooking(t, checkIn, date(2026, time.July, 13))
	require.NoError(t, confirmed.Confirm(date(2026, time.July, 2)))
	require.NoError(t, confirmed.Cancel("host asked", date(2026, time.July, 8)))
}

func TestCanCancelAcrossStatuses(t *testing.T) {
	farAway := date(2026, time.July, 1)
	checkIn := date(2026, time.July, 20)

	b := newTestBooking(t, checkIn, date(2026, time.July, 22))
	assert.True(t, b.CanCancel(farAway))

	require.NoError(t, b.Confirm(farAway))
	assert.True(t, b.CanCancel(farAway))

	require.NoError(t, b.Complete(farAway))
	assert.False(t, b.CanCancel(farAway))
}

func TestIsPastAndIsCurrent(t *testing.T) {
	b := newTestBooking(t, date(2026, time.July, 10), date(2026, time.July, 13))

	assert.False(t, b.IsPast(date(2026, time.July, 12)))
	assert.False(t, b.IsPast(date(2026, time.July, 13)))
	assert.True(t, b.IsPast(date(2026, time.July, 14)))

	assert.False(t, b.IsCurrent(date(2026, time.July, 9)))
	assert.True(t, b.IsCurrent(date(2026, time.July, 10)))
	assert.True(t, b.IsCurrent(date(2026, time.July, 13)))
	assert.False(t, b.IsCurrent(date(2026, time.July, 14)))
}
