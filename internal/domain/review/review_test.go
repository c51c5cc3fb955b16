package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitValidatesRating(t *testing.T) {
	base := SubmitParams{
		ID:         "rev-1",
		ListingID:  "lst-1",
		ReviewerID: "guest-1",
		Comment:    " great stay ",
		CreatedAt:  time.Date(2026, time.July, 20, 9, 0, 0, 0, time.UTC),
	}

	for _, rating := range []int{0, -1, 6} {
		params := base
		params.Rating = rating
		_, err := Submit(params)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}

	params := base
	params.Rating = 5
	r, err := Submit(params)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, "great stay", r.Comment)
	require.Len(t, r.PendingEvents(), 1)
	assert.Equal(t, "review.submitted", r.PendingEvents()[0].EventName())
}

func TestSubmitRequiresReviewer(t *testing.T) {
	_, err := Submit(SubmitParams{ID: "rev-1", ListingID: "lst-1", ReviewerID: "  ", Rating: 4})
	assert.Error(t, err)
}
