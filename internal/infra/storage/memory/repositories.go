package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainpayment "homestay/internal/domain/payment"
	domainreview "homestay/internal/domain/review"
	"homestay/internal/domain/shared/daterange"
)

// ListingRepository is an in-memory listing directory for dev and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ListingID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlisting.ListingID]*domainlisting.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return l, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[l.ID] = l
	return nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.GuestID == strings.TrimSpace(guestID) {
			matches = append(matches, b)
		}
	}
	sortRecentFirst(matches)
	return matches, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlisting.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.ListingID == listingID {
			matches = append(matches, b)
		}
	}
	sortRecentFirst(matches)
	return matches, nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, listingID domainlisting.ListingID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.ListingID != listingID {
			continue
		}
		if b.Status != domainbooking.StatusPending && b.Status != domainbooking.StatusConfirmed {
			continue
		}
		if b.Range.Overlaps(dr) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func sortRecentFirst(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

// PaymentRepository stores payments in memory, indexed by reference and booking.
type PaymentRepository struct {
	mu          sync.RWMutex
	items       map[domainpayment.PaymentID]*domainpayment.Payment
	byReference map[string]domainpayment.PaymentID
	byBooking   map[domainbooking.BookingID]domainpayment.PaymentID
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		items:       make(map[domainpayment.PaymentID]*domainpayment.Payment),
		byReference: make(map[string]domainpayment.PaymentID),
		byBooking:   make(map[domainbooking.BookingID]domainpayment.PaymentID),
	}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return p, nil
}

func (r *PaymentRepository) ByReference(ctx context.Context, reference string) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReference[reference]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return r.items[id], nil
}

func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return r.items[id], nil
}

func (r *PaymentRepository) BySuccessfulBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.BookingID == bookingID && p.Status == domainpayment.StatusSuccess {
			return p, nil
		}
	}
	return nil, domainpayment.ErrNotFound
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Version++
	r.items[p.ID] = p
	r.byReference[p.Reference] = p.ID
	r.byBooking[p.BookingID] = p.ID
	return nil
}

// ReviewRepository keeps reviews keyed by (listing, reviewer).
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[string]*domainreview.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[string]*domainreview.Review)}
}

func (r *ReviewRepository) ByListingAndReviewer(ctx context.Context, listingID domainlisting.ListingID, reviewerID string) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rev, ok := r.items[reviewKey(listingID, reviewerID)]; ok {
		return rev, nil
	}
	return nil, domainreview.ErrNotFound
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlisting.ListingID) ([]*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreview.Review, 0)
	for _, rev := range r.items {
		if rev.ListingID == listingID {
			matches = append(matches, rev)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *ReviewRepository) Aggregate(ctx context.Context, listingID domainlisting.ListingID) (domainreview.Aggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum, count int
	for _, rev := range r.items {
		if rev.ListingID == listingID {
			sum += rev.Rating
			count++
		}
	}
	agg := domainreview.Aggregate{Count: count}
	if count > 0 {
		agg.Average = float64(sum) / float64(count)
	}
	return agg, nil
}

func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[reviewKey(rev.ListingID, rev.ReviewerID)] = rev
	return nil
}

func reviewKey(listingID domainlisting.ListingID, reviewerID string) string {
	return string(listingID) + ":" + reviewerID
}
