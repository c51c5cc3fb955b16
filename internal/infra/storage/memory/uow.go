package memory

import (
	"context"
	"errors"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainpayment "homestay/internal/domain/payment"
	domainreview "homestay/internal/domain/review"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingRepo domainlisting.Repository
	BookingRepo domainbooking.Repository
	PaymentRepo domainpayment.Repository
	ReviewRepo  domainreview.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports; the command pipeline's
// per-key serialization carries the concurrency guarantee here.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingRepo == nil || f.BookingRepo == nil || f.PaymentRepo == nil || f.ReviewRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings: f.ListingRepo,
		bookings: f.BookingRepo,
		payments: f.PaymentRepo,
		reviews:  f.ReviewRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings domainlisting.Repository
	bookings domainbooking.Repository
	payments domainpayment.Repository
	reviews  domainreview.Repository
}

func (u *Unit) Listings() domainlisting.Repository {
	return u.listings
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Payments() domainpayment.Repository {
	return u.payments
}

func (u *Unit) Reviews() domainreview.Repository {
	return u.reviews
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UnitOfWork = (*Unit)(nil)
var _ uow.UoWFactory = Factory{}
