package reviews

import (
	"context"
	"errors"
	"strings"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	"homestay/internal/domain/listing"
)

const (
	listReviewsKey     = "review.list_by_listing"
	getListingStatsKey = "listing.stats"
)

type ListListingReviewsQuery struct {
	ListingID string
}

func (q ListListingReviewsQuery) Key() string { return listReviewsKey }

func (q ListListingReviewsQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return errors.New("listing id required")
	}
	return nil
}

type GetListingStatsQuery struct {
	ListingID string
}

func (q GetListingStatsQuery) Key() string { return getListingStatsKey }

func (q GetListingStatsQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return errors.New("listing id required")
	}
	return nil
}

type ReviewCollection struct {
	Items []dto.Review `json:"items"`
}

// QueryHandler serves the review read side and the per-listing stats report.
type QueryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandler) ListByListing(ctx context.Context, query ListListingReviewsQuery) (*ReviewCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listingID := listing.ListingID(query.ListingID)
	if _, err := unit.Listings().ByID(execCtx, listingID); err != nil {
		return nil, err
	}
	reviews, err := unit.Reviews().ListByListing(execCtx, listingID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.Review, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, dto.MapReview(r))
	}
	return &ReviewCollection{Items: items}, nil
}

// Stats computes the listing's rating aggregate and total booking count at
// query time.
func (h *QueryHandler) Stats(ctx context.Context, query GetListingStatsQuery) (*dto.ListingStats, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listingID := listing.ListingID(query.ListingID)
	if _, err := unit.Listings().ByID(execCtx, listingID); err != nil {
		return nil, err
	}
	agg, err := unit.Reviews().Aggregate(execCtx, listingID)
	if err != nil {
		return nil, err
	}
	bookings, err := unit.Bookings().ListByListing(execCtx, listingID)
	if err != nil {
		return nil, err
	}
	return &dto.ListingStats{
		ListingID:     query.ListingID,
		AverageRating: agg.Average,
		ReviewCount:   agg.Count,
		BookingCount:  len(bookings),
	}, nil
}

var _ queries.Handler[GetListingStatsQuery, *dto.ListingStats] = queries.HandlerFunc[GetListingStatsQuery, *dto.ListingStats]((&QueryHandler{}).Stats)
