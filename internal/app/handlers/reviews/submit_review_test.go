package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
	"homestay/internal/domain/review"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
	"homestay/internal/infra/storage/memory"
)

type reviewFixture struct {
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	reviews  *memory.ReviewRepository
	outbox   *memory.Outbox
	factory  memory.Factory
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		listings: memory.NewListingRepository(),
		bookings: memory.NewBookingRepository(),
		reviews:  memory.NewReviewRepository(),
		outbox:   memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		ListingRepo: f.listings,
		BookingRepo: f.bookings,
		PaymentRepo: memory.NewPaymentRepository(),
		ReviewRepo:  f.reviews,
	}
	lst, err := listing.New(listing.CreateParams{
		ID:           "lst-1",
		Host:         "host-1",
		Title:        "Garden Loft",
		NightlyPrice: money.Must("100.00", "ETB"),
		MaxGuests:    4,
		Available:    true,
		Now:          time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), lst))
	return f
}

func (f *reviewFixture) submitHandler() *SubmitReviewHandler {
	return &SubmitReviewHandler{
		UoWFactory:  f.factory,
		Outbox:      f.outbox,
		IDGenerator: func() string { return "rev-1" },
	}
}

// seedStay stores a booking whose check-out lies the given number of days
// from today; negative values mean the stay already ended.
func (f *reviewFixture) seedStay(t *testing.T, id, guestID string, checkOutOffset int) *domainbooking.Booking {
	t.Helper()
	checkOut := daterange.Day(time.Now()).AddDate(0, 0, checkOutOffset)
	dr, err := daterange.New(checkOut.AddDate(0, 0, -3), checkOut)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(id),
		ListingID: "lst-1",
		GuestID:   guestID,
		Range:     dr,
		Guests:    2,
		Nightly:   money.Must("100.00", "ETB"),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func TestSubmitReview(t *testing.T) {
	f := newReviewFixture(t)

	res, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
		ListingID:  "lst-1",
		ReviewerID: "guest-1",
		Rating:     5,
		Comment:    "lovely place",
	})
	require.NoError(t, err)
	assert.Equal(t, "rev-1", res.ID)
	assert.Equal(t, 5, res.Rating)

	records := f.outbox.Pending()
	require.Len(t, records, 1)
	assert.Equal(t, "review.submitted", records[0].Name)
}

func TestSubmitReviewDuplicate(t *testing.T) {
	f := newReviewFixture(t)
	handler := f.submitHandler()

	cmd := SubmitReviewCommand{ListingID: "lst-1", ReviewerID: "guest-1", Rating: 4}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	cmd.Rating = 2
	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, review.ErrDuplicate)
}

func TestSubmitReviewUnknownListing(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
		ListingID:  "lst-missing",
		ReviewerID: "guest-1",
		Rating:     4,
	})
	assert.ErrorIs(t, err, listing.ErrNotFound)
}

func TestSubmitReviewInvalidRating(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
		ListingID:  "lst-1",
		ReviewerID: "guest-1",
		Rating:     6,
	})
	assert.ErrorIs(t, err, review.ErrInvalidRating)
}

func TestSubmitReviewWithBookingLink(t *testing.T) {
	f := newReviewFixture(t)
	f.seedStay(t, "bkg-done", "guest-1", -2)

	res, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
		ListingID:  "lst-1",
		ReviewerID: "guest-1",
		Rating:     5,
		BookingID:  "bkg-done",
	})
	require.NoError(t, err)
	assert.Equal(t, "bkg-done", res.BookingID)
}

func TestSubmitReviewBookingGuards(t *testing.T) {
	t.Run("stay not finished", func(t *testing.T) {
		f := newReviewFixture(t)
		f.seedStay(t, "bkg-future", "guest-1", 10)
		_, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
			ListingID:  "lst-1",
			ReviewerID: "guest-1",
			Rating:     5,
			BookingID:  "bkg-future",
		})
		assert.ErrorIs(t, err, ErrStayNotFinished)
	})

	t.Run("completed counts as finished", func(t *testing.T) {
		f := newReviewFixture(t)
		b := f.seedStay(t, "bkg-early", "guest-1", 1)
		require.NoError(t, b.Confirm(time.Now()))
		require.NoError(t, b.Complete(time.Now()))
		b.ClearEvents()
		require.NoError(t, f.bookings.Save(context.Background(), b))

		_, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
			ListingID:  "lst-1",
			ReviewerID: "guest-1",
			Rating:     5,
			BookingID:  "bkg-early",
		})
		assert.NoError(t, err)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		f := newReviewFixture(t)
		f.seedStay(t, "bkg-other", "guest-2", -2)
		_, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
			ListingID:  "lst-1",
			ReviewerID: "guest-1",
			Rating:     5,
			BookingID:  "bkg-other",
		})
		assert.ErrorIs(t, err, ErrBookingMismatch)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newReviewFixture(t)
		_, err := f.submitHandler().Handle(context.Background(), SubmitReviewCommand{
			ListingID:  "lst-1",
			ReviewerID: "guest-1",
			Rating:     5,
			BookingID:  "bkg-missing",
		})
		assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	})
}

func TestListingStats(t *testing.T) {
	f := newReviewFixture(t)
	f.seedStay(t, "bkg-1", "guest-1", -10)
	f.seedStay(t, "bkg-2", "guest-2", -5)

	for i, reviewer := range []string{"guest-1", "guest-2", "guest-3"} {
		r, err := review.Submit(review.SubmitParams{
			ID:         review.ReviewID("rev-" + reviewer),
			ListingID:  "lst-1",
			ReviewerID: reviewer,
			Rating:     3 + i,
			CreatedAt:  time.Now(),
		})
		require.NoError(t, err)
		require.NoError(t, f.reviews.Save(context.Background(), r))
	}

	queryHandler := &QueryHandler{UoWFactory: f.factory}
	stats, err := queryHandler.Stats(context.Background(), GetListingStatsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ReviewCount)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.0001)
	assert.Equal(t, 2, stats.BookingCount)

	list, err := queryHandler.ListByListing(context.Background(), ListListingReviewsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
}

func TestListingStatsEmpty(t *testing.T) {
	f := newReviewFixture(t)
	queryHandler := &QueryHandler{UoWFactory: f.factory}
	stats, err := queryHandler.Stats(context.Background(), GetListingStatsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Zero(t, stats.ReviewCount)
	assert.Zero(t, stats.AverageRating)
	assert.Zero(t, stats.BookingCount)
}
