package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/payment"
	"homestay/internal/domain/shared/money"
)

const initializePaymentKey = "payment.initialize"

type InitializePaymentCommand struct {
	BookingID string
	// Currency defaults to the booking's own when empty; a different value
	// is rejected since the amount is the snapshotted booking total.
	Currency        string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ReturnURL       string
	IdempotencyKeyV string
}

func (c InitializePaymentCommand) Key() string { return initializePaymentKey }

func (c InitializePaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c InitializePaymentCommand) ResultPrototype() any { return &InitializePaymentResult{} }

func (c InitializePaymentCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return errors.New("booking id required")
	}
	if strings.TrimSpace(c.CustomerEmail) == "" {
		return errors.New("customer email required")
	}
	return nil
}

type InitializePaymentResult struct {
	PaymentID   string `json:"payment_id"`
	BookingID   string `json:"booking_id"`
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// InitializePaymentHandler creates the payment record for a booking and asks
// the external processor for a checkout session. The record is committed only
// after the processor answers, so a gateway failure leaves nothing behind and
// the guest can simply retry.
type InitializePaymentHandler struct {
	UoWFactory  uow.UoWFactory
	Processor   policies.PaymentProcessor
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	CallbackURL string
	Logger      *slog.Logger
	IDGenerator func() string
	Now         func() time.Time
}

func (h *InitializePaymentHandler) Handle(ctx context.Context, cmd InitializePaymentCommand) (*InitializePaymentResult, error) {
	unit, execCtx, commit, cleanup, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domainbooking.StatusCancelled:
		return nil, payment.ErrBookingCancelled
	}
	if cmd.Currency != "" && cmd.Currency != b.TotalPrice.Currency {
		return nil, fmt.Errorf("%w: booking is priced in %s", money.ErrCurrencyMismatch, b.TotalPrice.Currency)
	}

	// A booking may carry several attempts; only a successful one settles
	// it, so the latest attempt is not the one to ask.
	settled, err := unit.Payments().BySuccessfulBooking(execCtx, b.ID)
	if err != nil && !errors.Is(err, payment.ErrNotFound) {
		return nil, err
	}
	if settled != nil {
		return nil, payment.ErrAlreadyPaid
	}

	now := h.now()
	reference := fmt.Sprintf("booking-%s-%s", b.ID, h.newID())
	p, err := payment.NewPayment(payment.CreateParams{
		ID:        payment.PaymentID(h.newID()),
		BookingID: b.ID,
		Amount:    b.TotalPrice,
		Customer: payment.Customer{
			Name:  cmd.CustomerName,
			Email: cmd.CustomerEmail,
			Phone: cmd.CustomerPhone,
		},
		Reference: reference,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	first, last := splitName(cmd.CustomerName)
	gw, err := h.Processor.Initialize(execCtx, policies.InitializeRequest{
		Amount:      p.Amount,
		Email:       cmd.CustomerEmail,
		FirstName:   first,
		LastName:    last,
		Phone:       cmd.CustomerPhone,
		Reference:   reference,
		CallbackURL: h.CallbackURL,
		ReturnURL:   cmd.ReturnURL,
		Description: fmt.Sprintf("Payment for booking %s", b.ID),
		Meta:        map[string]string{"booking_id": string(b.ID)},
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("payment initialize failed at gateway", "booking_id", b.ID, "reference", reference, "error", err)
		}
		return nil, err
	}
	if err := p.AttachGatewayResult(gw.TransactionID, gw.CheckoutURL, now); err != nil {
		return nil, err
	}

	if err := unit.Payments().Save(execCtx, p); err != nil {
		return nil, err
	}

	pending := p.PendingEvents()
	p.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("payment initialized", "payment_id", p.ID, "booking_id", b.ID, "reference", reference)
	}
	return &InitializePaymentResult{
		PaymentID:   string(p.ID),
		BookingID:   string(p.BookingID),
		Reference:   p.Reference,
		CheckoutURL: p.CheckoutURL,
		Amount:      p.Amount.Amount.StringFixed(2),
		Currency:    p.Amount.Currency,
		Status:      string(p.Status),
	}, nil
}

func (h *InitializePaymentHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

func (h *InitializePaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *InitializePaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

var (
	_ commands.Handler[InitializePaymentCommand, *InitializePaymentResult] = (*InitializePaymentHandler)(nil)
	_ middleware.IdempotentCommand                                        = (*InitializePaymentCommand)(nil)
)
