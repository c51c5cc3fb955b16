package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainreview "homestay/internal/domain/review"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("agg_review")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "reviewer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) ByListingAndReviewer(ctx context.Context, listingID domainlisting.ListingID, reviewerID string) (*domainreview.Review, error) {
	var doc reviewDocument
	filter := bson.M{"listing_id": string(listingID), "reviewer_id": reviewerID}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreview.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlisting.ListingID) ([]*domainreview.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []*domainreview.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

// Aggregate computes the listing's review count and average rating server
// side with an aggregation pipeline.
func (r *ReviewRepository) Aggregate(ctx context.Context, listingID domainlisting.ListingID) (domainreview.Aggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"listing_id": string(listingID)}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domainreview.Aggregate{}, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return domainreview.Aggregate{}, cursor.Err()
	}
	var row struct {
		Count   int     `bson:"count"`
		Average float64 `bson:"average"`
	}
	if err := cursor.Decode(&row); err != nil {
		return domainreview.Aggregate{}, err
	}
	return domainreview.Aggregate{Count: row.Count, Average: row.Average}, nil
}

func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	doc := newReviewDocument(rev)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainreview.ErrDuplicate
	}
	return err
}

type reviewDocument struct {
	ID         string `bson:"_id"`
	ListingID  string `bson:"listing_id"`
	BookingID  string `bson:"booking_id,omitempty"`
	ReviewerID string `bson:"reviewer_id"`
	Rating     int    `bson:"rating"`
	Comment    string `bson:"comment,omitempty"`
	CreatedAt  int64  `bson:"created_at"`
	UpdatedAt  int64  `bson:"updated_at"`
}

func newReviewDocument(rev *domainreview.Review) reviewDocument {
	return reviewDocument{
		ID:         string(rev.ID),
		ListingID:  string(rev.ListingID),
		BookingID:  string(rev.BookingID),
		ReviewerID: rev.ReviewerID,
		Rating:     rev.Rating,
		Comment:    rev.Comment,
		CreatedAt:  rev.CreatedAt.UnixMilli(),
		UpdatedAt:  rev.UpdatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreview.Review {
	return &domainreview.Review{
		ID:         domainreview.ReviewID(d.ID),
		ListingID:  domainlisting.ListingID(d.ListingID),
		BookingID:  domainbooking.BookingID(d.BookingID),
		ReviewerID: d.ReviewerID,
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
	}
}

var _ domainreview.Repository = (*ReviewRepository)(nil)
