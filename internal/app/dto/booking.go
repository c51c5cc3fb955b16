package dto

import (
	"time"

	domainbooking "homestay/internal/domain/booking"
)

// Booking is the wire representation of a booking record. Field naming is
// canonical: listing_id / check_in / check_out.
type Booking struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listing_id"`
	GuestID        string    `json:"guest_id"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	Nights         int       `json:"nights"`
	Guests         int       `json:"guests"`
	TotalPrice     string    `json:"total_price"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	SpecialRequest string    `json:"special_request,omitempty"`
	GuestEmail     string    `json:"guest_email,omitempty"`
	GuestPhone     string    `json:"guest_phone,omitempty"`
	IsPast         bool      `json:"is_past"`
	IsCurrent      bool      `json:"is_current"`
	CanCancel      bool      `json:"can_cancel"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

// MapBooking projects a booking aggregate to its wire form, computing the
// derived predicates against now.
func MapBooking(b *domainbooking.Booking, now time.Time) Booking {
	return Booking{
		ID:             string(b.ID),
		ListingID:      string(b.ListingID),
		GuestID:        b.GuestID,
		CheckIn:        b.Range.CheckIn,
		CheckOut:       b.Range.CheckOut,
		Nights:         b.Nights(),
		Guests:         b.Guests,
		TotalPrice:     b.TotalPrice.Amount.StringFixed(2),
		Currency:       b.TotalPrice.Currency,
		Status:         string(b.Status),
		SpecialRequest: b.SpecialRequest,
		GuestEmail:     b.Contact.Email,
		GuestPhone:     b.Contact.Phone,
		IsPast:         b.IsPast(now),
		IsCurrent:      b.IsCurrent(now),
		CanCancel:      b.CanCancel(now),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func MapBookingCollection(bookings []*domainbooking.Booking, now time.Time) BookingCollection {
	items := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, MapBooking(b, now))
	}
	return BookingCollection{Items: items}
}
