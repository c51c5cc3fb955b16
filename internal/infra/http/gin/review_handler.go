package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	reviewapp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type submitReviewRequest struct {
	ListingID  string `json:"listing_id" binding:"required"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
	BookingID  string `json:"booking_id"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		ListingID:  req.ListingID,
		ReviewerID: req.ReviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		BookingID:  req.BookingID,
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) ListByListing(c *gin.Context) {
	query := reviewapp.ListListingReviewsQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[reviewapp.ListListingReviewsQuery, *reviewapp.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReviewHandler) Stats(c *gin.Context) {
	query := reviewapp.GetListingStatsQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[reviewapp.GetListingStatsQuery, *dto.ListingStats](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = ReviewHandler{}
