package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/club-system/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	// Update — условная запись: совпасть должна версия, прочитанная вызывающей
	// стороной. При проигранной гонке возвращается ErrVersionConflict.
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
	ListByMember(ctx context.Context, userID string) ([]*models.Team, error)
}

type mongoTeamRepository struct {
	collection *mongo.Collection
}

func NewMongoTeamRepository(collection *mongo.Collection) TeamRepository {
	return &mongoTeamRepository{collection: collection}
}

func (r *mongoTeamRepository) Create(ctx context.Context, team *models.Team) error {
	team.Version = 1
	if _, err := r.collection.InsertOne(ctx, team); err != nil {
		return fmt.Errorf("failed to insert team %q: %w", team.ID, err)
	}
	return nil
}

func (r *mongoTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	if err := findOneByID(ctx, r.collection, id, &team, ErrTeamNotFound); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *mongoTeamRepository) Update(ctx context.Context, team *models.Team) error {
	readVersion := team.Version
	team.Version = readVersion + 1
	err := replaceWithVersion(ctx, r.collection, team.ID, readVersion, team, ErrTeamNotFound)
	if err != nil {
		team.Version = readVersion // откат локальной копии, чтобы повтор читал честно
		return err
	}
	return nil
}

func (r *mongoTeamRepository) Delete(ctx context.Context, id string) error {
	return deleteOneByID(ctx, r.collection, id, ErrTeamNotFound)
}

func (r *mongoTeamRepository) ListByMember(ctx context.Context, userID string) ([]*models.Team, error) {
	filter := bson.M{fmt.Sprintf("roster.%s", userID): bson.M{"$exists": true}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by member %q: %w", userID, err)
	}
	defer cursor.Close(ctx)

	teams := make([]*models.Team, 0)
	for cursor.Next(ctx) {
		var team models.Team
		if err := cursor.Decode(&team); err != nil {
			return nil, fmt.Errorf("failed to decode team document: %w", err)
		}
		teams = append(teams, &team)
	}
	return teams, cursor.Err()
}
