package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/handlers/reviews"
	"homestay/internal/app/middleware"
	"homestay/internal/app/policies"
	"homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
	"homestay/internal/domain/payment"
	"homestay/internal/domain/review"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

// respondError maps domain sentinels to HTTP statuses with a stable machine
// code. Unknown errors stay opaque 500s so internals never leak.
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	body := gin.H{"error": err.Error(), "code": code}
	if status == http.StatusInternalServerError {
		body = gin.H{"error": "internal error", "code": code}
	}
	c.JSON(status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, listing.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, booking.ErrDateConflict),
		errors.Is(err, review.ErrDuplicate),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrReferenceSealed):
		return http.StatusConflict, "conflict"

	case errors.Is(err, booking.ErrListingUnavailable):
		return http.StatusUnprocessableEntity, "unavailable"

	case errors.Is(err, booking.ErrCancellationWindow),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, payment.ErrBookingCancelled),
		errors.Is(err, reviews.ErrStayNotFinished),
		errors.Is(err, reviews.ErrBookingMismatch):
		return http.StatusUnprocessableEntity, "policy"

	case errors.Is(err, policies.ErrGateway):
		return http.StatusBadGateway, "gateway"

	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, booking.ErrCheckInPast),
		errors.Is(err, booking.ErrInvalidGuests),
		errors.Is(err, booking.ErrGuestLimitExceeded),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, payment.ErrReferenceRequired),
		errors.Is(err, middleware.ErrValidation):
		return http.StatusBadRequest, "validation"
	}
	return http.StatusInternalServerError, "internal"
}
