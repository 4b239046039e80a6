package results

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mind-engage/mindengage-dumps/internal/grading"
)

type resultDoc struct {
	ID          string                `bson:"_id"`
	ExamCode    string                `bson:"exam_code"`
	UserID      string                `bson:"user_id"`
	CompletedAt int64                 `bson:"completed_at"`
	Result      grading.AttemptResult `bson:"result"`
}

// MongoStore keeps one document per attempt; the _id index is what makes
// Create create-once.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{collection: client.Database(database).Collection("attempt_results")}
}

// EnsureIndexes creates the listing index. Safe to call on every start.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}},
	})
	return err
}

func (s *MongoStore) Create(ctx context.Context, r grading.AttemptResult) error {
	if r.AttemptID == "" {
		return errors.New("attempt id required")
	}
	_, err := s.collection.InsertOne(ctx, resultDoc{
		ID:          r.AttemptID,
		ExamCode:    r.ExamCode,
		UserID:      r.UserID,
		CompletedAt: r.CompletedAt,
		Result:      r,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.AttemptID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, attemptID string) (grading.AttemptResult, error) {
	var doc resultDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": attemptID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return grading.AttemptResult{}, ErrNotFound
	}
	if err != nil {
		return grading.AttemptResult{}, err
	}
	return doc.Result, nil
}

func (s *MongoStore) List(ctx context.Context, opts ListOpts) ([]grading.AttemptResult, error) {
	filter := bson.M{}
	if opts.UserID != "" {
		filter["user_id"] = opts.UserID
	}
	if opts.ExamCode != "" {
		filter["exam_code"] = opts.ExamCode
	}
	limit := int64(opts.Limit)
	if limit <= 0 {
		limit = 50
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(limit).
		SetProjection(bson.M{"result.questions": 0})

	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []resultDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]grading.AttemptResult, 0, len(docs))
	for _, d := range docs {
		d.Result.Questions = nil
		out = append(out, d.Result)
	}
	return out, nil
}
