package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/letsssgooo/quizweb/internal/domain/models"
)

// MemoryStorage реализует QuestionStore в памяти.
type MemoryStorage struct {
	questions []models.Question
	lastID    int64
	mu        sync.RWMutex
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// ListAll возвращает копию всех вопросов.
func (s *MemoryStorage) ListAll(_ context.Context) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.questions), nil
}

// Create сохраняет вопрос.
func (s *MemoryStorage) Create(_ context.Context, in models.QuestionInput) (models.Question, error) {
	if err := in.Validate(); err != nil {
		return models.Question{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	question := in.WithID(s.lastID)
	s.questions = append(s.questions, question)

	return question, nil
}

// ReplaceAll заменяет все вопросы. id продолжают расти, старые не переиспользуются.
func (s *MemoryStorage) ReplaceAll(_ context.Context, inputs []models.QuestionInput) error {
	if err := models.ValidateAll(inputs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]models.Question, 0, len(inputs))
	for _, in := range inputs {
		s.lastID++
		questions = append(questions, in.WithID(s.lastID))
	}
	s.questions = questions

	return nil
}

// GetByID возвращает вопрос по id.
func (s *MemoryStorage) GetByID(_ context.Context, id int64) (models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Question{}, ErrQuestionNotFound
	}

	return s.questions[idx], nil
}

// DeleteByID удаляет вопрос по id.
func (s *MemoryStorage) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrQuestionNotFound
	}
	s.questions = slices.Delete(s.questions, idx, idx+1)

	return nil
}

// Close ничего не делает.
func (s *MemoryStorage) Close(_ context.Context) error {
	return nil
}

func (s *MemoryStorage) indexOf(id int64) int {
	return slices.IndexFunc(s.questions, func(q models.Question) bool {
		return q.ID == id
	})
}
