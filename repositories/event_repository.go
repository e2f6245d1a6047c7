package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/club-system/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	// Update — условная запись по версии документа, см. TeamRepository.Update.
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	ListByTeam(ctx context.Context, teamID string) ([]*models.Event, error)
	// ListWithUnsentReminders отдаёт события, у которых есть хотя бы одно
	// неотправленное напоминание. Фильтрацию по сроку делает сервис по часам.
	ListWithUnsentReminders(ctx context.Context) ([]*models.Event, error)
}

type mongoEventRepository struct {
	collection *mongo.Collection
}

func NewMongoEventRepository(collection *mongo.Collection) EventRepository {
	return &mongoEventRepository{collection: collection}
}

func (r *mongoEventRepository) Create(ctx context.Context, event *models.Event) error {
	event.Version = 1
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert event %q: %w", event.ID, err)
	}
	return nil
}

func (r *mongoEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := findOneByID(ctx, r.collection, id, &event, ErrEventNotFound); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *mongoEventRepository) Update(ctx context.Context, event *models.Event) error {
	readVersion := event.Version
	event.Version = readVersion + 1
	err := replaceWithVersion(ctx, r.collection, event.ID, readVersion, event, ErrEventNotFound)
	if err != nil {
		event.Version = readVersion
		return err
	}
	return nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) error {
	return deleteOneByID(ctx, r.collection, id, ErrEventNotFound)
}

func (r *mongoEventRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by team %q: %w", teamID, err)
	}
	defer cursor.Close(ctx)
	return decodeEvents(ctx, cursor)
}

func (r *mongoEventRepository) ListWithUnsentReminders(ctx context.Context) ([]*models.Event, error) {
	filter := bson.M{"reminders": bson.M{"$elemMatch": bson.M{"sent": false}}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events with unsent reminders: %w", err)
	}
	defer cursor.Close(ctx)
	return decodeEvents(ctx, cursor)
}

func decodeEvents(ctx context.Context, cursor *mongo.Cursor) ([]*models.Event, error) {
	events := make([]*models.Event, 0)
	for cursor.Next(ctx) {
		var event models.Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode event document: %w", err)
		}
		events = append(events, &event)
	}
	return events, cursor.Err()
}
