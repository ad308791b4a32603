package storage

import (
	"context"
	"errors"

	"github.com/letsssgooo/quizweb/internal/domain/models"
)

// ErrQuestionNotFound возвращается, если вопроса с таким id нет.
var ErrQuestionNotFound = errors.New("question not found")

// QuestionStore определяет интерфейс для хранения вопросов.
type QuestionStore interface {
	// ListAll возвращает все вопросы в порядке добавления.
	ListAll(ctx context.Context) ([]models.Question, error)

	// Create проверяет и сохраняет вопрос, присваивая ему новый id.
	Create(ctx context.Context, in models.QuestionInput) (models.Question, error)

	// ReplaceAll удаляет все вопросы и вставляет переданные. Операция атомарна:
	// при ошибке хранилище остаётся в прежнем состоянии.
	ReplaceAll(ctx context.Context, inputs []models.QuestionInput) error

	// GetByID возвращает вопрос по id.
	GetByID(ctx context.Context, id int64) (models.Question, error)

	// DeleteByID удаляет вопрос по id.
	DeleteByID(ctx context.Context, id int64) error

	// Close освобождает ресурсы хранилища.
	Close(ctx context.Context) error
}
