package dto

import (
	"time"

	domainreview "homestay/internal/domain/review"
)

type Review struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	BookingID  string    `json:"booking_id,omitempty"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func MapReview(r *domainreview.Review) Review {
	return Review{
		ID:         string(r.ID),
		ListingID:  string(r.ListingID),
		BookingID:  string(r.BookingID),
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// ListingStats is the derived admin report for a listing: rating aggregate
// and booking count computed at query time, never cached.
type ListingStats struct {
	ListingID     string  `json:"listing_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
	BookingCount  int     `json:"booking_count"`
}
