package uow

import (
	"context"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainpayment "homestay/internal/domain/payment"
	domainreview "homestay/internal/domain/review"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlisting.Repository
	Bookings() domainbooking.Repository
	Payments() domainpayment.Repository
	Reviews() domainreview.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
