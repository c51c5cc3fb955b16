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

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

// Handle marks a booking cancelled when the cancellation window still
// permits it. The record is kept for the listing's calendar audit.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	now := time.Now().UTC()
	if err := b.Cancel(cmd.Reason, now); err != nil {
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
		h.Logger.Info("booking cancelled", "booking_id", b.ID, "reason", cmd.Reason)
	}
	return &CancelBookingResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
