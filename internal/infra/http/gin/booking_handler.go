package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/queries"
	"homestay/internal/infra/obs"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Metrics  obs.Metrics
}

type createBookingRequest struct {
	ListingID      string    `json:"listing_id" binding:"required"`
	GuestID        string    `json:"guest_id" binding:"required"`
	CheckIn        time.Time `json:"check_in" binding:"required"`
	CheckOut       time.Time `json:"check_out" binding:"required"`
	Guests         int       `json:"guests" binding:"required"`
	SpecialRequest string    `json:"special_request"`
	GuestEmail     string    `json:"guest_email"`
	GuestPhone     string    `json:"guest_phone"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		GuestID:         req.GuestID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		SpecialRequest:  req.SpecialRequest,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.Metrics.BookingCreated("rejected")
		respondError(c, err)
		return
	}
	h.Metrics.BookingCreated(result.Status)
	c.JSON(http.StatusCreated, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Metrics.BookingTransition(result.Status)
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Confirm(c *gin.Context) {
	cmd := bookingapp.ConfirmBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *bookingapp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Metrics.BookingTransition(result.Status)
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Complete(c *gin.Context) {
	cmd := bookingapp.CompleteBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *bookingapp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Metrics.BookingTransition(result.Status)
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	query := bookingapp.GetBookingQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[bookingapp.GetBookingQuery, *dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListByGuest(c *gin.Context) {
	query := bookingapp.ListGuestBookingsQuery{GuestID: c.Param("id"), Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListByListing(c *gin.Context) {
	query := bookingapp.ListListingBookingsQuery{ListingID: c.Param("id"), Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListListingBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
