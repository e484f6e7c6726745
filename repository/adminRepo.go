package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

type AdminRepo struct {
	collection *mongo.Collection
	logger     *log.Logger
	Tracer     trace.Tracer
}

func NewAdminRepo(collection *mongo.Collection, logger *log.Logger, tracer trace.Tracer) *AdminRepo {
	return &AdminRepo{
		collection: collection,
		logger:     logger,
		Tracer:     tracer,
	}
}

func (ar *AdminRepo) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	ctx, span := ar.Tracer.Start(ctx, "AdminRepo.FindByEmail")
	defer span.End()

	var admin domain.Admin
	err := ar.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrAdminNotFound()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return &admin, nil
}

func (ar *AdminRepo) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	ctx, span := ar.Tracer.Start(ctx, "AdminRepo.FindByID")
	defer span.End()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAdminNotFound()
	}

	var admin domain.Admin
	err = ar.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrAdminNotFound()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return &admin, nil
}

func (ar *AdminRepo) Insert(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	ctx, span := ar.Tracer.Start(ctx, "AdminRepo.Insert")
	defer span.End()

	admin.CreatedAt = time.Now()
	result, err := ar.collection.InsertOne(ctx, admin)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	admin.ID = result.InsertedID.(primitive.ObjectID)
	return admin, nil
}
