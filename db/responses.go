package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/alirezabazmara/InterviewApp/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const responsesCollection = "interview_responses"

// ResponseLogStore persists answer results in MongoDB. It implements the
// services.ResponseLog interface: append-only, readable in full, truncated
// on restart.
type ResponseLogStore struct {
	coll *mongo.Collection
}

func NewResponseLogStore(database *mongo.Database) *ResponseLogStore {
	return &ResponseLogStore{coll: database.Collection(responsesCollection)}
}

func (s *ResponseLogStore) Append(ctx context.Context, result models.AnswerResult) error {
	if _, err := s.coll.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("insert answer result: %w", err)
	}
	return nil
}

func (s *ResponseLogStore) All(ctx context.Context) ([]models.AnswerResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("read answer results: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AnswerResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode answer results: %w", err)
	}
	return results, nil
}

func (s *ResponseLogStore) Status(ctx context.Context) (int, *models.AnswerResult, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, nil, fmt.Errorf("count answer results: %w", err)
	}
	if count == 0 {
		return 0, nil, nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var last models.AnswerResult
	if err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&last); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return int(count), nil, nil
		}
		return 0, nil, fmt.Errorf("read last answer result: %w", err)
	}
	return int(count), &last, nil
}

func (s *ResponseLogStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear answer results: %w", err)
	}
	return nil
}
