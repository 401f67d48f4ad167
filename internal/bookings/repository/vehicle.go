package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"lcr/pkg/config"
	"lcr/pkg/model"
)

const VehicleCollectionName = "Vehicles"

var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleReader is the bookings-side view of the fleet inventory. The
// bookings service only ever reads vehicles; writes stay with the fleet
// service.
type VehicleReader interface {
	FindByID(ctx context.Context, id string) (*model.Vehicle, error)
	FindSummaries(ctx context.Context, ids []string) (map[string]*model.VehicleSummary, error)
}

type mongoVehicleReader struct {
	collection *mongo.Collection
}

func NewMongoVehicleReader(cfg *config.Config) VehicleReader {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleReader{
		collection: db.Collection(VehicleCollectionName),
	}
}

func (r *mongoVehicleReader) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}

	var vehicle model.Vehicle
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	return &vehicle, nil
}

func (r *mongoVehicleReader) FindSummaries(ctx context.Context, ids []string) (map[string]*model.VehicleSummary, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return map[string]*model.VehicleSummary{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*model.Vehicle
	if err = cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	summaries := make(map[string]*model.VehicleSummary, len(vehicles))
	for _, v := range vehicles {
		s := v.Summary()
		summaries[v.ID] = &s
	}
	return summaries, nil
}
