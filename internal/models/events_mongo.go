package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type participant struct {
	EventID  uuid.UUID `bson:"event_id"`
	Identity string    `bson:"identity"`
	JoinedAt time.Time `bson:"joined_at"`
}

// EnsureIndexes creates the unique indexes the stores rely on.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		EventsColName: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "admin_email", Value: 1}}},
		},
		VouchersColName: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "event_id", Value: 1}}},
		},
		ParticipantsColName: {
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "identity", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "identity", Value: 1}}},
		},
	}
	for colName, specs := range indexes {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return err
		}
		if _, err := col.Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("error creating %s indexes: %w", colName, err)
		}
	}
	return nil
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, err
	}
	stored := event.clone()
	stored.ParticipantCount = 1
	if _, err := events.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("error inserting event: %w", err)
	}
	if err := mdb.insertParticipant(ctx, stored.ID, stored.AdminEmail); err != nil {
		// An event without its admin in the roster would report a count of 1 for nobody.
		if _, delErr := events.DeleteOne(ctx, bson.M{"id": stored.ID}); delErr != nil {
			return nil, fmt.Errorf("%w (rollback of event insert failed: %v)", err, delErr)
		}
		return nil, err
	}
	return stored, nil
}

func (mdb *MongodbRepo) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, err
	}
	var event Event
	if err := events.FindOne(ctx, bson.M{"id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListEventsByAdmin(ctx context.Context, adminEmail string) ([]*Event, error) {
	return mdb.findEvents(ctx, bson.M{"admin_email": adminEmail})
}

func (mdb *MongodbRepo) ListEventsForParticipant(ctx context.Context, identity string) ([]*Event, error) {
	participants, err := mdb.GetCollection(ctx, ParticipantsColName)
	if err != nil {
		return nil, err
	}
	cursor, err := participants.Find(ctx, bson.M{"identity": identity})
	if err != nil {
		return nil, fmt.Errorf("error finding participations: %w", err)
	}
	var rows []participant
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding participations: %w", err)
	}
	if len(rows) == 0 {
		return []*Event{}, nil
	}
	ids := make(bson.A, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.EventID)
	}
	return mdb.findEvents(ctx, bson.M{"id": bson.M{"$in": ids}})
}

func (mdb *MongodbRepo) findEvents(ctx context.Context, filter bson.M) ([]*Event, error) {
	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding events: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]*Event, 0)
	for cursor.Next(ctx) {
		var event Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("error decoding event: %w", err)
		}
		result = append(result, &event)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return result, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id uuid.UUID, patch *EventPatch, now time.Time) (*Event, error) {
	event, err := mdb.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(event, now)

	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, err
	}
	res, err := events.ReplaceOne(ctx, bson.M{"id": id}, event)
	if err != nil {
		return nil, fmt.Errorf("error updating event: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return event, nil
}

// DeleteEvent removes vouchers and roster rows before the event itself, so an
// interrupted delete leaves a smaller event rather than orphaned vouchers.
func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := mdb.GetEvent(ctx, id); err != nil {
		return err
	}

	for _, colName := range []string{VouchersColName, ParticipantsColName} {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return err
		}
		if _, err := col.DeleteMany(ctx, bson.M{"event_id": id}); err != nil {
			return fmt.Errorf("error deleting %s of event: %w", colName, err)
		}
	}

	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return err
	}
	res, err := events.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) insertParticipant(ctx context.Context, eventID uuid.UUID, identity string) error {
	participants, err := mdb.GetCollection(ctx, ParticipantsColName)
	if err != nil {
		return err
	}
	_, err = participants.InsertOne(ctx, participant{
		EventID:  eventID,
		Identity: identity,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("error inserting participant: %w", err)
	}
	return nil
}

// syncParticipantCount recomputes participant_count from the roster.
func (mdb *MongodbRepo) syncParticipantCount(ctx context.Context, id uuid.UUID) (*Event, error) {
	participants, err := mdb.GetCollection(ctx, ParticipantsColName)
	if err != nil {
		return nil, err
	}
	count, err := participants.CountDocuments(ctx, bson.M{"event_id": id})
	if err != nil {
		return nil, fmt.Errorf("error counting participants: %w", err)
	}

	events, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = events.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"participant_count": int(count)}},
		opts,
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating participant count: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) AddParticipant(ctx context.Context, id uuid.UUID, identity string) (*Event, error) {
	if _, err := mdb.GetEvent(ctx, id); err != nil {
		return nil, err
	}
	if err := mdb.insertParticipant(ctx, id, identity); err != nil {
		return nil, err
	}
	return mdb.syncParticipantCount(ctx, id)
}

func (mdb *MongodbRepo) RemoveParticipant(ctx context.Context, id uuid.UUID, identity string) (*Event, error) {
	participants, err := mdb.GetCollection(ctx, ParticipantsColName)
	if err != nil {
		return nil, err
	}
	if _, err := participants.DeleteOne(ctx, bson.M{"event_id": id, "identity": identity}); err != nil {
		return nil, fmt.Errorf("error removing participant: %w", err)
	}
	return mdb.syncParticipantCount(ctx, id)
}

func (mdb *MongodbRepo) IsParticipant(ctx context.Context, id uuid.UUID, identity string) (bool, error) {
	participants, err := mdb.GetCollection(ctx, ParticipantsColName)
	if err != nil {
		return false, err
	}
	count, err := participants.CountDocuments(ctx, bson.M{"event_id": id, "identity": identity}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking participant: %w", err)
	}
	return count > 0, nil
}

func (mdb *MongodbRepo) ListParticipants(ctx context.Context, id uuid.UUID) ([]string, error) {
	if _, err := mdb.GetEvent(ctx, id); err != nil {
		return nil, err
	}
	participants, err := mdb.GetCollection(ctx, ParticipantsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "identity", Value: 1}})
	cursor, err := participants.Find(ctx, bson.M{"event_id": id}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding participants: %w", err)
	}
	var rows []participant
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding participants: %w", err)
	}
	identities := make([]string, 0, len(rows))
	for _, row := range rows {
		identities = append(identities, row.Identity)
	}
	return identities, nil
}
