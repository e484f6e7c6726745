package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

type VillaRepo struct {
	collection *mongo.Collection
	logger     *log.Logger
	Tracer     trace.Tracer
}

func NewVillaRepo(collection *mongo.Collection, logger *log.Logger, tracer trace.Tracer) *VillaRepo {
	return &VillaRepo{
		collection: collection,
		logger:     logger,
		Tracer:     tracer,
	}
}

func (vr *VillaRepo) GetActiveVilla(ctx context.Context) (*domain.Villa, error) {
	ctx, span := vr.Tracer.Start(ctx, "VillaRepo.GetActiveVilla")
	defer span.End()

	var villa domain.Villa
	err := vr.collection.FindOne(ctx, bson.M{"is_active": true}).Decode(&villa)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrVillaNotFound()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		vr.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return &villa, nil
}

func (vr *VillaRepo) UpdateVilla(ctx context.Context, villa *domain.Villa) (*domain.Villa, error) {
	ctx, span := vr.Tracer.Start(ctx, "VillaRepo.UpdateVilla")
	defer span.End()

	villa.UpdatedAt = time.Now()
	result, err := vr.collection.ReplaceOne(ctx, bson.M{"_id": villa.ID}, villa)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		vr.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	if result.MatchedCount == 0 {
		return nil, domain.ErrVillaNotFound()
	}
	return villa, nil
}

// EnsureDefaultVilla provisions the singleton villa document when the
// collection is empty. Explicitly invoked at startup, idempotent.
func (vr *VillaRepo) EnsureDefaultVilla(ctx context.Context) error {
	ctx, span := vr.Tracer.Start(ctx, "VillaRepo.EnsureDefaultVilla")
	defer span.End()

	count, err := vr.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		vr.logger.Println(err)
		return &domain.StoreUnavailableError{Inner: err}
	}
	if count > 0 {
		return nil
	}

	villa := domain.DefaultVilla()
	villa.CreatedAt = time.Now()
	villa.UpdatedAt = villa.CreatedAt
	_, err = vr.collection.InsertOne(ctx, villa)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		vr.logger.Println(err)
		return &domain.StoreUnavailableError{Inner: err}
	}
	vr.logger.Println("Provisioned default villa document")
	return nil
}
