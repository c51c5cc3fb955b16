package dto

import (
	"time"

	domainpayment "homestay/internal/domain/payment"
)

type Payment struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"booking_id"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Reference     string     `json:"reference"`
	TransactionID string     `json:"transaction_id,omitempty"`
	CheckoutURL   string     `json:"checkout_url,omitempty"`
	Status        string     `json:"status"`
	Attempts      int        `json:"verification_attempts"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func MapPayment(p *domainpayment.Payment) Payment {
	out := Payment{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		Amount:        p.Amount.Amount.StringFixed(2),
		Currency:      p.Amount.Currency,
		Reference:     p.Reference,
		TransactionID: p.TransactionID,
		CheckoutURL:   p.CheckoutURL,
		Status:        string(p.Status),
		Attempts:      p.Attempts,
		CreatedAt:     p.CreatedAt,
	}
	if !p.VerifiedAt.IsZero() {
		t := p.VerifiedAt
		out.VerifiedAt = &t
	}
	return out
}
