package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

type listingDocument struct {
	ID           string `bson:"_id"`
	Host         string `bson:"host"`
	Title        string `bson:"title"`
	NightlyPrice string `bson:"nightly_price"`
	Currency     string `bson:"currency"`
	MaxGuests    int    `bson:"max_guests"`
	Available    bool   `bson:"available"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	return listingDocument{
		ID:           string(l.ID),
		Host:         l.Host,
		Title:        l.Title,
		NightlyPrice: l.NightlyPrice.Amount.String(),
		Currency:     l.NightlyPrice.Currency,
		MaxGuests:    l.MaxGuests,
		Available:    l.Available,
		CreatedAt:    l.CreatedAt.UnixMilli(),
		UpdatedAt:    l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() (*domainlisting.Listing, error) {
	price, err := money.FromString(d.NightlyPrice, d.Currency)
	if err != nil {
		return nil, err
	}
	return &domainlisting.Listing{
		ID:           domainlisting.ListingID(d.ID),
		Host:         d.Host,
		Title:        d.Title,
		NightlyPrice: price,
		MaxGuests:    d.MaxGuests,
		Available:    d.Available,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}, nil
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
