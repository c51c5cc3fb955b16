package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("payment: not found")
	ErrAlreadyPaid       = errors.New("payment: booking already paid")
	ErrBookingCancelled  = errors.New("payment: booking is cancelled")
	ErrReferenceRequired = errors.New("payment: transaction reference required")
	ErrReferenceSealed   = errors.New("payment: gateway reference already recorded")
)

type PaymentID string

type Status string

const (
	StatusInitialized Status = "initialized"
	StatusPending     Status = "pending"
	StatusSuccess     Status = "success"
	StatusFailed      Status = "failed"
)

// Customer is the contact block forwarded to the payment processor.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Payment tracks one booking's transaction with the external processor.
// Reference, TransactionID and CheckoutURL are write-once; Status reaches a
// terminal state at "success" and never regresses from it.
type Payment struct {
	ID            PaymentID
	BookingID     booking.BookingID
	Amount        money.Money
	Customer      Customer
	Reference     string
	TransactionID string
	CheckoutURL   string
	Status        Status
	Attempts      int
	VerifiedAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PaymentID) (*Payment, error)
	ByReference(ctx context.Context, reference string) (*Payment, error)
	// ByBooking returns the most recent payment attempt for the booking.
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Payment, error)
	// BySuccessfulBooking returns the payment that settled the booking, or
	// ErrNotFound when none succeeded. A booking can accrue several
	// attempts; only a success answers the already-paid question.
	BySuccessfulBooking(ctx context.Context, bookingID booking.BookingID) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

type CreateParams struct {
	ID        PaymentID
	BookingID booking.BookingID
	Amount    money.Money
	Customer  Customer
	Reference string
	CreatedAt time.Time
}

func NewPayment(params CreateParams) (*Payment, error) {
	if strings.TrimSpace(params.Reference) == "" {
		return nil, ErrReferenceRequired
	}
	if !params.Amount.IsPositive() {
		return nil, errors.New("payment: amount must be positive")
	}
	now := params.CreatedAt.UTC()
	p := &Payment{
		ID:        params.ID,
		BookingID: params.BookingID,
		Amount:    params.Amount,
		Customer:  params.Customer,
		Reference: params.Reference,
		Status:    StatusInitialized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Record(PaymentInitialized{PaymentID: p.ID, BookingID: p.BookingID, Reference: p.Reference, Amount: p.Amount, At: now})
	return p, nil
}

// AttachGatewayResult records the processor's identifiers verbatim. It may
// only happen once; the fields are immutable afterwards.
func (p *Payment) AttachGatewayResult(transactionID, checkoutURL string, now time.Time) error {
	if p.TransactionID != "" || p.CheckoutURL != "" {
		return ErrReferenceSealed
	}
	p.TransactionID = transactionID
	p.CheckoutURL = checkoutURL
	p.UpdatedAt = now.UTC()
	return nil
}

// ApplyVerification folds one processor verify response into the record.
// Every call counts an attempt and stamps the verification time. A payment
// that already reached success keeps it regardless of what the processor
// reports, so stale or duplicate deliveries cannot downgrade it.
func (p *Payment) ApplyVerification(reported Status, now time.Time) {
	p.Attempts++
	p.VerifiedAt = now.UTC()
	p.UpdatedAt = p.VerifiedAt
	if p.Status == StatusSuccess {
		return
	}
	switch reported {
	case StatusSuccess:
		p.Status = StatusSuccess
		p.Record(PaymentSucceeded{PaymentID: p.ID, BookingID: p.BookingID, Reference: p.Reference, Amount: p.Amount, At: p.VerifiedAt})
	case StatusFailed:
		p.Status = StatusFailed
		p.Record(PaymentFailed{PaymentID: p.ID, BookingID: p.BookingID, Reference: p.Reference, At: p.VerifiedAt})
	default:
		p.Status = StatusPending
	}
}
