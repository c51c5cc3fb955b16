package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	domainpayment "homestay/internal/domain/payment"
	"homestay/internal/domain/shared/money"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	col := db.Collection("agg_payment")
	refIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	bookingIdx := mongo.IndexModel{Keys: bson.D{{Key: "booking_id", Value: 1}}}
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{refIdx, bookingIdx})
	return &PaymentRepository{col: col}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *PaymentRepository) ByReference(ctx context.Context, reference string) (*domainpayment.Payment, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainpayment.Payment, error) {
	latest := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, bson.M{"booking_id": string(bookingID)}, latest)
}

func (r *PaymentRepository) BySuccessfulBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainpayment.Payment, error) {
	filter := bson.M{
		"booking_id": string(bookingID),
		"status":     string(domainpayment.StatusSuccess),
	}
	return r.findOne(ctx, filter)
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domainpayment.Payment, error) {
	var doc paymentDocument
	if err := r.col.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpayment.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	doc := newPaymentDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
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
	p.Version = doc.Version
	return nil
}

type paymentDocument struct {
	ID            string `bson:"_id"`
	BookingID     string `bson:"booking_id"`
	Amount        string `bson:"amount"`
	Currency      string `bson:"currency"`
	CustomerName  string `bson:"customer_name,omitempty"`
	CustomerEmail string `bson:"customer_email"`
	CustomerPhone string `bson:"customer_phone,omitempty"`
	Reference     string `bson:"reference"`
	TransactionID string `bson:"transaction_id,omitempty"`
	CheckoutURL   string `bson:"checkout_url,omitempty"`
	Status        string `bson:"status"`
	Attempts      int    `bson:"attempts"`
	VerifiedAt    int64  `bson:"verified_at,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
	UpdatedAt     int64  `bson:"updated_at"`
	Version       int64  `bson:"version"`
}

func newPaymentDocument(p *domainpayment.Payment) paymentDocument {
	doc := paymentDocument{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		Amount:        p.Amount.Amount.String(),
		Currency:      p.Amount.Currency,
		CustomerName:  p.Customer.Name,
		CustomerEmail: p.Customer.Email,
		CustomerPhone: p.Customer.Phone,
		Reference:     p.Reference,
		TransactionID: p.TransactionID,
		CheckoutURL:   p.CheckoutURL,
		Status:        string(p.Status),
		Attempts:      p.Attempts,
		CreatedAt:     p.CreatedAt.UnixMilli(),
		UpdatedAt:     p.UpdatedAt.UnixMilli(),
		Version:       p.Version,
	}
	if !p.VerifiedAt.IsZero() {
		doc.VerifiedAt = p.VerifiedAt.UnixMilli()
	}
	return doc
}

func (d paymentDocument) toAggregate() (*domainpayment.Payment, error) {
	amount, err := money.FromString(d.Amount, d.Currency)
	if err != nil {
		return nil, err
	}
	p := &domainpayment.Payment{
		ID:        domainpayment.PaymentID(d.ID),
		BookingID: domainbooking.BookingID(d.BookingID),
		Amount:    amount,
		Customer: domainpayment.Customer{
			Name:  d.CustomerName,
			Email: d.CustomerEmail,
			Phone: d.CustomerPhone,
		},
		Reference:     d.Reference,
		TransactionID: d.TransactionID,
		CheckoutURL:   d.CheckoutURL,
		Status:        domainpayment.Status(d.Status),
		Attempts:      d.Attempts,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
	if d.VerifiedAt > 0 {
		p.VerifiedAt = timestampToTime(d.VerifiedAt)
	}
	return p, nil
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
