package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrVersionConflict возвращается условной записью, когда документ существует,
// но его версия изменилась с момента чтения. Сервисный слой перечитывает
// документ и повторяет операцию, молча перезаписывать чужую запись нельзя.
var ErrVersionConflict = errors.New("document version conflict")

// replaceWithVersion выполняет условную замену документа: фильтр по _id и version,
// версия инкрементируется в новом документе. Возвращает notFoundErr, если документа
// нет вовсе, и ErrVersionConflict, если он есть, но версия уже другая.
func replaceWithVersion(ctx context.Context, collection *mongo.Collection, id string, version int64, doc interface{}, notFoundErr error) error {
	filter := bson.M{"_id": id, "version": version}

	result, err := collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("conditional replace of %q failed: %w", id, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Фильтр не совпал: либо документа нет, либо проиграна гонка версий.
	count, err := collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("existence check of %q failed: %w", id, err)
	}
	if count == 0 {
		return notFoundErr
	}
	return ErrVersionConflict
}

// findOneByID декодирует документ по _id, транслируя mongo.ErrNoDocuments в notFoundErr.
func findOneByID(ctx context.Context, collection *mongo.Collection, id string, dst interface{}, notFoundErr error) error {
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFoundErr
		}
		return fmt.Errorf("failed to find document %q: %w", id, err)
	}
	return nil
}

func deleteOneByID(ctx context.Context, collection *mongo.Collection, id string, notFoundErr error) error {
	result, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document %q: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return notFoundErr
	}
	return nil
}
