package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/letsssgooo/quizweb/internal/domain/models"
	"github.com/letsssgooo/quizweb/internal/storage"
)

const (
	questionsCollection = "questions"
	countersCollection  = "counters"
	questionsCounterID  = "questions"
)

// Storage хранит вопросы в MongoDB. id - последовательные int64
// из документа-счётчика, чтобы совпадать с остальными хранилищами.
type Storage struct {
	client    *mongo.Client
	questions *mongo.Collection
	counters  *mongo.Collection

	// writeMu упорядочивает ReplaceAll относительно Create внутри процесса
	writeMu sync.RWMutex
}

func NewStorage(ctx context.Context, uri, database string) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(database)

	return &Storage{
		client:    client,
		questions: db.Collection(questionsCollection),
		counters:  db.Collection(countersCollection),
	}, nil
}

func (s *Storage) ListAll(ctx context.Context) ([]models.Question, error) {
	cur, err := s.questions.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list questions, %w", err)
	}
	defer cur.Close(ctx)

	questions := make([]models.Question, 0)
	if err = cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("cannot list questions, %w", err)
	}

	return questions, nil
}

func (s *Storage) Create(ctx context.Context, in models.QuestionInput) (models.Question, error) {
	if err := in.Validate(); err != nil {
		return models.Question{}, err
	}

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()

	ids, err := s.nextIDs(ctx, 1)
	if err != nil {
		return models.Question{}, fmt.Errorf("cannot create question, %w", err)
	}

	question := in.WithID(ids[0])
	if _, err = s.questions.InsertOne(ctx, question); err != nil {
		return models.Question{}, fmt.Errorf("cannot create question, %w", err)
	}

	return question, nil
}

// ReplaceAll удаляет и вставляет вопросы в одной транзакции.
// Требует replica set, как и любые транзакции MongoDB.
func (s *Storage) ReplaceAll(ctx context.Context, inputs []models.QuestionInput) error {
	if err := models.ValidateAll(inputs); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ids, err := s.nextIDs(ctx, len(inputs))
	if err != nil {
		return fmt.Errorf("cannot replace questions, %w", err)
	}

	docs := make([]interface{}, 0, len(inputs))
	for i, in := range inputs {
		docs = append(docs, in.WithID(ids[i]))
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot replace questions, %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.questions.DeleteMany(sc, bson.M{}); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}

		return s.questions.InsertMany(sc, docs)
	})
	if err != nil {
		return fmt.Errorf("cannot replace questions, %w", err)
	}

	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (models.Question, error) {
	var q models.Question
	err := s.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Question{}, storage.ErrQuestionNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("cannot get question, %w", err)
	}

	return q, nil
}

func (s *Storage) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.questions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete question, %w", err)
	}
	if result.DeletedCount == 0 {
		return storage.ErrQuestionNotFound
	}

	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// nextIDs резервирует n последовательных id. Зарезервированные id
// не возвращаются в счётчик даже при ошибке вставки.
func (s *Storage) nextIDs(ctx context.Context, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": questionsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(n)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = counter.Seq - int64(n) + int64(i) + 1
	}

	return ids, nil
}
