package booking

import (
	"context"
	"log/slog"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
)

const (
	confirmBookingKey  = "booking.confirm"
	completeBookingKey = "booking.complete"
)

type ConfirmBookingCommand struct {
	BookingID string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type TransitionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// TransitionHandler applies the allowed status moves: pending to confirmed
// and confirmed to completed. Cancelled and completed are terminal.
type TransitionHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *TransitionHandler) Confirm(ctx context.Context, cmd ConfirmBookingCommand) (*TransitionResult, error) {
	return h.apply(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Confirm(now)
	})
}

func (h *TransitionHandler) Complete(ctx context.Context, cmd CompleteBookingCommand) (*TransitionResult, error) {
	return h.apply(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		return b.Complete(now)
	})
}

func (h *TransitionHandler) apply(ctx context.Context, bookingID string, move func(*domainbooking.Booking, time.Time) error) (*TransitionResult, error) {
	unit, execCtx, commit, cleanup, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := move(b, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(execCtx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking transitioned", "booking_id", b.ID, "status", b.Status)
	}
	return &TransitionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *TransitionHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ConfirmBookingCommand, *TransitionResult] = commands.HandlerFunc[ConfirmBookingCommand, *TransitionResult]((&TransitionHandler{}).Confirm)
