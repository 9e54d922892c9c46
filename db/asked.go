package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const askedCollection = "asked_questions"

type askedDocument struct {
	Topic     string   `bson:"topic"`
	Questions []string `bson:"questions"`
}

// AskedQuestionsStore keeps the per-topic history of already-asked question
// texts in MongoDB, one document per topic, so the no-repeat guarantee
// survives process restarts. Implements services.AskedQuestionStore.
type AskedQuestionsStore struct {
	coll *mongo.Collection
}

func NewAskedQuestionsStore(database *mongo.Database) *AskedQuestionsStore {
	return &AskedQuestionsStore{coll: database.Collection(askedCollection)}
}

func (s *AskedQuestionsStore) Asked(ctx context.Context, topic string) ([]string, error) {
	var doc askedDocument
	err := s.coll.FindOne(ctx, bson.M{"topic": topic}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read asked questions: %w", err)
	}
	return doc.Questions, nil
}

func (s *AskedQuestionsStore) Add(ctx context.Context, topic string, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	update := bson.M{"$addToSet": bson.M{"questions": bson.M{"$each": texts}}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.M{"topic": topic}, update, opts); err != nil {
		return fmt.Errorf("record asked questions: %w", err)
	}
	return nil
}

func (s *AskedQuestionsStore) Reset(ctx context.Context, topic string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"topic": topic}); err != nil {
		return fmt.Errorf("reset asked questions: %w", err)
	}
	return nil
}

func (s *AskedQuestionsStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear asked questions: %w", err)
	}
	return nil
}
