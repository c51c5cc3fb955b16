package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/events"
)

var (
	ErrNotFound      = errors.New("review: not found")
	ErrInvalidRating = errors.New("review: rating must be between 1 and 5")
	ErrDuplicate     = errors.New("review: reviewer already reviewed this listing")
)

type ReviewID string

// Review is a guest's rating of a listing. At most one review per
// (listing, reviewer) pair; BookingID is optional and links the review to
// the stay it came from.
type Review struct {
	ID         ReviewID
	ListingID  listing.ListingID
	BookingID  booking.BookingID
	ReviewerID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

// Aggregate is the derived rating summary for a listing, computed at query
// time rather than cached on the listing record.
type Aggregate struct {
	Count   int
	Average float64
}

type Repository interface {
	ByListingAndReviewer(ctx context.Context, listingID listing.ListingID, reviewerID string) (*Review, error)
	ListByListing(ctx context.Context, listingID listing.ListingID) ([]*Review, error)
	Aggregate(ctx context.Context, listingID listing.ListingID) (Aggregate, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	ListingID  listing.ListingID
	BookingID  booking.BookingID
	ReviewerID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if strings.TrimSpace(params.ReviewerID) == "" {
		return nil, errors.New("review: reviewer id required")
	}
	now := params.CreatedAt.UTC()
	r := &Review{
		ID:         params.ID,
		ListingID:  params.ListingID,
		BookingID:  params.BookingID,
		ReviewerID: params.ReviewerID,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.Record(ReviewSubmitted{ReviewID: r.ID, ListingID: r.ListingID, BookingID: r.BookingID, Rating: r.Rating, At: now})
	return r, nil
}

type ReviewSubmitted struct {
	ReviewID  ReviewID
	ListingID listing.ListingID
	BookingID booking.BookingID
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
