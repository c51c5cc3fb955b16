package payment

import (
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/shared/money"
)

type PaymentInitialized struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Reference string
	Amount    money.Money
	At        time.Time
}

func (e PaymentInitialized) EventName() string     { return "payment.initialized" }
func (e PaymentInitialized) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentInitialized) OccurredAt() time.Time { return e.At }

type PaymentSucceeded struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Reference string
	Amount    money.Money
	At        time.Time
}

func (e PaymentSucceeded) EventName() string     { return "payment.succeeded" }
func (e PaymentSucceeded) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentSucceeded) OccurredAt() time.Time { return e.At }

type PaymentFailed struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Reference string
	At        time.Time
}

func (e PaymentFailed) EventName() string     { return "payment.failed" }
func (e PaymentFailed) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentFailed) OccurredAt() time.Time { return e.At }
