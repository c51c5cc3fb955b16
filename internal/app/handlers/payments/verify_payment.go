package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	"homestay/internal/domain/payment"
)

const verifyPaymentKey = "payment.verify"

// VerifyPaymentCommand re-checks a transaction with the processor. Both the
// guest-facing verify endpoint and the processor webhook dispatch it, so a
// webhook arriving after a manual check is harmless.
type VerifyPaymentCommand struct {
	Reference string
}

func (c VerifyPaymentCommand) Key() string { return verifyPaymentKey }

func (c VerifyPaymentCommand) Validate() error {
	if strings.TrimSpace(c.Reference) == "" {
		return errors.New("transaction reference required")
	}
	return nil
}

type VerifyPaymentResult struct {
	PaymentID  string     `json:"payment_id"`
	BookingID  string     `json:"booking_id"`
	Reference  string     `json:"reference"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
	Attempts   int        `json:"verification_attempts"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

type VerifyPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Processor  policies.PaymentProcessor
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *VerifyPaymentHandler) Handle(ctx context.Context, cmd VerifyPaymentCommand) (*VerifyPaymentResult, error) {
	unit, execCtx, commit, cleanup, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	p, err := unit.Payments().ByReference(execCtx, cmd.Reference)
	if err != nil {
		return nil, err
	}

	gw, err := h.Processor.Verify(execCtx, cmd.Reference)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("payment verify failed at gateway", "reference", cmd.Reference, "error", err)
		}
		return nil, err
	}

	now := h.now()
	p.ApplyVerification(reportedStatus(gw.Status), now)

	if p.Status == payment.StatusSuccess {
		b, err := unit.Bookings().ByID(execCtx, p.BookingID)
		if err != nil {
			return nil, err
		}
		if err := b.Confirm(now); err == nil {
			if err := unit.Bookings().Save(execCtx, b); err != nil {
				return nil, err
			}
			pending := b.PendingEvents()
			b.ClearEvents()
			if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
				return nil, err
			}
		}
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
		h.Logger.Info("payment verified", "payment_id", p.ID, "reference", p.Reference, "status", p.Status, "attempts", p.Attempts)
	}

	result := &VerifyPaymentResult{
		PaymentID: string(p.ID),
		BookingID: string(p.BookingID),
		Reference: p.Reference,
		Status:    string(p.Status),
		Message:   gw.Message,
		Attempts:  p.Attempts,
	}
	if !p.VerifiedAt.IsZero() {
		at := p.VerifiedAt
		result.VerifiedAt = &at
	}
	return result, nil
}

func (h *VerifyPaymentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *VerifyPaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func reportedStatus(raw string) payment.Status {
	switch strings.ToLower(raw) {
	case "success":
		return payment.StatusSuccess
	case "failed":
		return payment.StatusFailed
	default:
		return payment.StatusPending
	}
}

var _ commands.Handler[VerifyPaymentCommand, *VerifyPaymentResult] = (*VerifyPaymentHandler)(nil)
