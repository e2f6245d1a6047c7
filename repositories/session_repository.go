package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrSessionNotFound = errors.New("attendance session not found")

// SessionFilter ограничивает выборку сессий команды. Нулевые поля не фильтруют.
type SessionFilter struct {
	From        *time.Time
	To          *time.Time
	SessionType *string
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.AttendanceSession) error
	GetByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	// Update — условная запись по версии документа, см. TeamRepository.Update.
	Update(ctx context.Context, session *models.AttendanceSession) error
	Delete(ctx context.Context, id string) error
	// ListByTeam возвращает сессии от самой свежей к самой старой —
	// порядок, в котором аггрегатор считает серии посещений.
	ListByTeam(ctx context.Context, teamID string, filter SessionFilter) ([]*models.AttendanceSession, error)
}

type mongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(collection *mongo.Collection) SessionRepository {
	return &mongoSessionRepository{collection: collection}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *models.AttendanceSession) error {
	session.Version = 1
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert attendance session %q: %w", session.ID, err)
	}
	return nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	if err := findOneByID(ctx, r.collection, id, &session, ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *mongoSessionRepository) Update(ctx context.Context, session *models.AttendanceSession) error {
	readVersion := session.Version
	session.Version = readVersion + 1
	err := replaceWithVersion(ctx, r.collection, session.ID, readVersion, session, ErrSessionNotFound)
	if err != nil {
		session.Version = readVersion
		return err
	}
	return nil
}

func (r *mongoSessionRepository) Delete(ctx context.Context, id string) error {
	return deleteOneByID(ctx, r.collection, id, ErrSessionNotFound)
}

func (r *mongoSessionRepository) ListByTeam(ctx context.Context, teamID string, filter SessionFilter) ([]*models.AttendanceSession, error) {
	query := bson.M{"team_id": teamID}
	if filter.From != nil || filter.To != nil {
		dateRange := bson.M{}
		if filter.From != nil {
			dateRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateRange["$lte"] = *filter.To
		}
		query["session_date"] = dateRange
	}
	if filter.SessionType != nil {
		query["session_type"] = *filter.SessionType
	}

	opts := options.Find().SetSort(bson.D{{Key: "session_date", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance sessions for team %q: %w", teamID, err)
	}
	defer cursor.Close(ctx)

	sessions := make([]*models.AttendanceSession, 0)
	for cursor.Next(ctx) {
		var session models.AttendanceSession
		if err := cursor.Decode(&session); err != nil {
			return nil, fmt.Errorf("failed to decode attendance session document: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, cursor.Err()
}
