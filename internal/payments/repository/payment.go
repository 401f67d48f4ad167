package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lcr/pkg/config"
	"lcr/pkg/model"
)

const CollectionName = "Payments"

var ErrNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Upsert(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	FindByBookingID(ctx context.Context, bookingID string) (*model.Payment, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Payment, error)
	Count(ctx context.Context) (int64, error)
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Upsert writes the payment record keyed by booking id. The unique index on
// booking_id guarantees at most one record per booking; a re-triggered
// deposit overwrites the outcome fields instead of inserting a second row.
func (r *mongoPaymentRepository) Upsert(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"booking_id": payment.BookingID}
	update := bson.M{
		"$set": bson.M{
			"amount_cents":   payment.AmountCents,
			"status":         payment.Status,
			"provider":       payment.Provider,
			"provider_tx_id": payment.ProviderTxID,
			"error":          payment.Error,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"booking_id": payment.BookingID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored model.Payment
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to upsert payment: %w", err)
	}

	return &stored, nil
}

func (r *mongoPaymentRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var payment model.Payment
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return &payment, nil
}

func (r *mongoPaymentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*model.Payment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, nil
}

func (r *mongoPaymentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}

	return count, nil
}
