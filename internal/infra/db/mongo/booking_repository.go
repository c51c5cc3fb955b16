package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
	domainrange "homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "status", Value: 1}, {Key: "range.check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listing.ListingID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"listing_id": string(listingID)})
}

// FindOverlapping matches pending and confirmed bookings whose half-open
// ranges intersect dr: stored check_in < dr.check_out AND stored check_out >
// dr.check_in.
func (r *BookingRepository) FindOverlapping(ctx context.Context, listingID listing.ListingID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"listing_id":      string(listingID),
		"status":          bson.M{"$in": []string{string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed)}},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	return r.list(ctx, filter)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, cursor.Err()
}

type bookingDocument struct {
	ID             string        `bson:"_id"`
	ListingID      string        `bson:"listing_id"`
	GuestID        string        `bson:"guest_id"`
	Range          rangeDocument `bson:"range"`
	Guests         int           `bson:"guests"`
	TotalPrice     string        `bson:"total_price"`
	Currency       string        `bson:"currency"`
	Status         string        `bson:"status"`
	SpecialRequest string        `bson:"special_request,omitempty"`
	GuestEmail     string        `bson:"guest_email,omitempty"`
	GuestPhone     string        `bson:"guest_phone,omitempty"`
	CreatedAt      int64         `bson:"created_at"`
	UpdatedAt      int64         `bson:"updated_at"`
	Version        int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:             string(b.ID),
		ListingID:      string(b.ListingID),
		GuestID:        b.GuestID,
		Range:          rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:         b.Guests,
		TotalPrice:     b.TotalPrice.Amount.String(),
		Currency:       b.TotalPrice.Currency,
		Status:         string(b.Status),
		SpecialRequest: b.SpecialRequest,
		GuestEmail:     b.Contact.Email,
		GuestPhone:     b.Contact.Phone,
		CreatedAt:      b.CreatedAt.UnixMilli(),
		UpdatedAt:      b.UpdatedAt.UnixMilli(),
		Version:        b.Version,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	total, err := money.FromString(d.TotalPrice, d.Currency)
	if err != nil {
		return nil, err
	}
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	return &domainbooking.Booking{
		ID:             domainbooking.BookingID(d.ID),
		ListingID:      listing.ListingID(d.ListingID),
		GuestID:        d.GuestID,
		Range:          dr,
		Guests:         d.Guests,
		TotalPrice:     total,
		Status:         domainbooking.Status(d.Status),
		SpecialRequest: d.SpecialRequest,
		Contact:        domainbooking.Contact{Email: d.GuestEmail, Phone: d.GuestPhone},
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
		Version:        d.Version,
	}, nil
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
