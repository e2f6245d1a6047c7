package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client — обёртка над *mongo.Client с привязкой к базе приложения.
type Client struct {
	mongoClient *mongo.Client
	database    string
}

// Connect устанавливает соединение с MongoDB и проверяет его пингом.
func Connect(connStr, databaseName string, timeout time.Duration) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			return nil, fmt.Errorf("failed to ping MongoDB: %w (disconnect also failed: %v)", err, disconnectErr)
		}
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		mongoClient: client,
		database:    databaseName,
	}, nil
}

// Collection возвращает коллекцию базы приложения по имени.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.mongoClient.Database(c.database).Collection(name)
}

// EnsureIndexes создаёт индексы, от которых зависит корректность:
// уникальный email пользователей и выборки событий/сессий по команде.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	_, err := c.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = c.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create events team index: %w", err)
	}

	_, err = c.Collection("attendance_sessions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "session_date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create attendance sessions index: %w", err)
	}

	return nil
}

// Disconnect закрывает соединение с MongoDB.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.mongoClient.Disconnect(ctx)
}
