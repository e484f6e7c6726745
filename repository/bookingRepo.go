package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

type BookingRepo struct {
	collection *mongo.Collection
	logger     *log.Logger
	Tracer     trace.Tracer
}

func NewBookingRepo(collection *mongo.Collection, logger *log.Logger, tracer trace.Tracer) *BookingRepo {
	return &BookingRepo{
		collection: collection,
		logger:     logger,
		Tracer:     tracer,
	}
}

// CreateIndexes builds the lookup indexes the sweeper and the overlap query
// rely on. Safe to call on every start.
func (br *BookingRepo) CreateIndexes(ctx context.Context) error {
	_, err := br.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "can_expire", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "booking_details.check_in", Value: 1}, {Key: "booking_details.check_out", Value: 1}}},
	})
	if err != nil {
		br.logger.Println(err)
	}
	return err
}

func (br *BookingRepo) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.Insert")
	defer span.End()

	result, err := br.collection.InsertOne(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	booking.ID = result.InsertedID.(primitive.ObjectID)
	return booking, nil
}

func (br *BookingRepo) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.FindByID")
	defer span.End()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound()
	}

	var booking domain.Booking
	err = br.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrBookingNotFound()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return &booking, nil
}

func (br *BookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.Update")
	defer span.End()

	result, err := br.collection.ReplaceOne(ctx, bson.M{"_id": booking.ID}, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return &domain.StoreUnavailableError{Inner: err}
	}
	if result.MatchedCount == 0 {
		return domain.ErrBookingNotFound()
	}
	return nil
}

func (br *BookingRepo) FindAll(ctx context.Context) (domain.Bookings, error) {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.FindAll")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := br.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return br.decodeBookings(ctx, cursor, span)
}

// FindOverlapping returns bookings whose date range intersects the open
// interval [checkIn, checkOut) as of now, minus the excluded statuses and
// minus stale pending rows the sweeper has not reaped yet.
func (br *BookingRepo) FindOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeStatuses []domain.BookingStatus, now time.Time) (domain.Bookings, error) {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.FindOverlapping")
	defer span.End()

	filter := bson.M{
		"booking_details.check_in":  bson.M{"$lt": checkOut},
		"booking_details.check_out": bson.M{"$gt": checkIn},
	}
	if len(excludeStatuses) > 0 {
		filter["status"] = bson.M{"$nin": excludeStatuses}
	}
	filter["$or"] = activeViewFilter(now)

	cursor, err := br.collection.Find(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return br.decodeBookings(ctx, cursor, span)
}

func (br *BookingRepo) FindExpirable(ctx context.Context, now time.Time) (domain.Bookings, error) {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.FindExpirable")
	defer span.End()

	filter := bson.M{
		"can_expire":       true,
		"expires_at":       bson.M{"$ne": nil, "$lte": now},
		"payment_slip_ref": bson.M{"$in": bson.A{nil, ""}},
	}
	cursor, err := br.collection.Find(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return br.decodeBookings(ctx, cursor, span)
}

// MarkExpired transitions one booking to expired. The eligibility conditions
// are part of the update filter, so a payment slip attached between the
// sweep's read and this write wins the race.
func (br *BookingRepo) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.MarkExpired")
	defer span.End()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrBookingNotFound()
	}

	filter := bson.M{
		"_id":              objID,
		"can_expire":       true,
		"expires_at":       bson.M{"$ne": nil, "$lte": now},
		"payment_slip_ref": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{
		"$set":   bson.M{"status": domain.StatusExpired, "can_expire": false},
		"$unset": bson.M{"expires_at": ""},
	}

	result, err := br.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return false, &domain.StoreUnavailableError{Inner: err}
	}
	return result.ModifiedCount == 1, nil
}

func (br *BookingRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, span := br.Tracer.Start(ctx, "BookingRepo.DeleteByID")
	defer span.End()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBookingNotFound()
	}

	result, err := br.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return &domain.StoreUnavailableError{Inner: err}
	}
	if result.DeletedCount == 0 {
		return domain.ErrBookingNotFound()
	}
	return nil
}

func (br *BookingRepo) decodeBookings(ctx context.Context, cursor *mongo.Cursor, span trace.Span) (domain.Bookings, error) {
	defer cursor.Close(ctx)

	var bookings domain.Bookings
	for cursor.Next(ctx) {
		var booking domain.Booking
		if err := cursor.Decode(&booking); err != nil {
			span.SetStatus(codes.Error, err.Error())
			br.logger.Println(err)
			return nil, &domain.StoreUnavailableError{Inner: err}
		}
		bookings = append(bookings, &booking)
	}
	if err := cursor.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		br.logger.Println(err)
		return nil, &domain.StoreUnavailableError{Inner: err}
	}
	return bookings, nil
}

// activeViewFilter mirrors domain.Booking.IsActive as a query clause.
func activeViewFilter(now time.Time) bson.A {
	return bson.A{
		bson.M{"can_expire": false},
		bson.M{"expires_at": bson.M{"$gt": now}},
		bson.M{"payment_slip_ref": bson.M{"$exists": true, "$nin": bson.A{nil, ""}}},
	}
}
