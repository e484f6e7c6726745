package repository

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gocql/gocql"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"villa-booking-server/domain"
)

// EventRepo appends booking lifecycle events to Cassandra. The event store
// is the audit trail behind the expiry-as-status-transition policy.
type EventRepo struct {
	session *gocql.Session
	logger  *log.Logger
	Tracer  trace.Tracer
}

// NewEventRepo reads the Cassandra address from the environment, creates the
// booking keyspace if it does not exist yet and connects to it.
func NewEventRepo(logger *log.Logger, tracer trace.Tracer) (*EventRepo, error) {
	db := os.Getenv("CASS_DB")

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Println(err)
		return nil, err
	}
	err = session.Query(
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
					WITH replication = {
						'class' : 'SimpleStrategy',
						'replication_factor' : %d
					}`, "booking", 1)).Exec()
	if err != nil {
		logger.Println(err)
	}
	session.Close()

	cluster.Keyspace = "booking"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Println(err)
		return nil, err
	}

	return &EventRepo{
		session: session,
		logger:  logger,
		Tracer:  tracer,
	}, nil
}

func (er *EventRepo) CloseSession() {
	er.session.Close()
}

func (er *EventRepo) CreateTable() {
	err := er.session.Query(
		`CREATE TABLE IF NOT EXISTS booking_events (
        event_id_time_created timeuuid,
        event text,
        booking_id text,
        detail text,
        PRIMARY KEY ((booking_id), event_id_time_created)
    ) WITH CLUSTERING ORDER BY (event_id_time_created ASC);`,
	).Exec()

	if err != nil {
		er.logger.Println(err)
	}
}

func (er *EventRepo) InsertEvent(ctx context.Context, event *domain.BookingEvent) error {
	ctx, span := er.Tracer.Start(ctx, "EventRepo.InsertEvent")
	defer span.End()

	eventID := gocql.TimeUUID()

	err := er.session.Query(
		`INSERT INTO booking_events
         (event_id_time_created, event, booking_id, detail)
         VALUES (?, ?, ?, ?)`,
		eventID,
		event.Event,
		event.BookingID,
		event.Detail,
	).WithContext(ctx).Exec()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		er.logger.Println(err)
		return err
	}

	return nil
}

// GetEventsByBooking returns the audit trail for one booking, oldest first.
func (er *EventRepo) GetEventsByBooking(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error) {
	ctx, span := er.Tracer.Start(ctx, "EventRepo.GetEventsByBooking")
	defer span.End()

	scanner := er.session.Query(
		`SELECT event, booking_id, detail FROM booking_events WHERE booking_id = ?`,
		bookingID).WithContext(ctx).Iter().Scanner()

	var events []*domain.BookingEvent
	for scanner.Next() {
		var event domain.BookingEvent
		err := scanner.Scan(&event.Event, &event.BookingID, &event.Detail)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			er.logger.Println(err)
			return nil, err
		}
		events = append(events, &event)
	}
	if err := scanner.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		er.logger.Println(err)
		return nil, err
	}
	return events, nil
}
