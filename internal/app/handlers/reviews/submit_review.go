package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
	"homestay/internal/domain/review"
)

const submitReviewKey = "review.submit"

type SubmitReviewCommand struct {
	ListingID  string
	ReviewerID string
	Rating     int
	Comment    string
	// BookingID optionally ties the review to a finished stay of the
	// reviewer on this listing.
	BookingID string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) Validate() error {
	if strings.TrimSpace(c.ListingID) == "" {
		return errors.New("listing id required")
	}
	if strings.TrimSpace(c.ReviewerID) == "" {
		return errors.New("reviewer id required")
	}
	return nil
}

var (
	ErrBookingMismatch = errors.New("reviews: booking does not belong to reviewer or listing")
	ErrStayNotFinished = errors.New("reviews: stay has not finished yet")
)

type SubmitReviewHandler struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
	IDGenerator func() string
	Now         func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*dto.Review, error) {
	unit, execCtx, commit, cleanup, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listingID := listing.ListingID(cmd.ListingID)
	if _, err := unit.Listings().ByID(execCtx, listingID); err != nil {
		return nil, err
	}

	existing, err := unit.Reviews().ByListingAndReviewer(execCtx, listingID, cmd.ReviewerID)
	if err != nil && !errors.Is(err, review.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, review.ErrDuplicate
	}

	now := h.now()
	if cmd.BookingID != "" {
		b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return nil, err
		}
		if b.GuestID != cmd.ReviewerID || b.ListingID != listingID {
			return nil, ErrBookingMismatch
		}
		if !b.IsPast(now) && b.Status != domainbooking.StatusCompleted {
			return nil, ErrStayNotFinished
		}
	}

	r, err := review.Submit(review.SubmitParams{
		ID:         review.ReviewID(h.newID()),
		ListingID:  listingID,
		BookingID:  domainbooking.BookingID(cmd.BookingID),
		ReviewerID: cmd.ReviewerID,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Save(execCtx, r); err != nil {
		return nil, err
	}

	pending := r.PendingEvents()
	r.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "review_id", r.ID, "listing_id", r.ListingID, "rating", r.Rating)
	}
	mapped := dto.MapReview(r)
	return &mapped, nil
}

func (h *SubmitReviewHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

func (h *SubmitReviewHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *SubmitReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitReviewCommand, *dto.Review] = (*SubmitReviewHandler)(nil)
