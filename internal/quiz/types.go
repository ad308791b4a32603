package quiz

import (
	"errors"

	"github.com/letsssgooo/quizweb/internal/domain/models"
)

// DefaultSize - количество вопросов в квизе по умолчанию.
const DefaultSize = 5

// PassThreshold - условная граница "сдал/не сдал" в процентах.
// Движок её не применяет, интерфейс использует для раскраски результата.
const PassThreshold = 70.0

// ErrEmptyQuiz возвращается Score, если в ответе нет ни одного вопроса.
var ErrEmptyQuiz = errors.New("quiz submission has no questions")

// AttemptStatus - статус попытки прохождения квиза.
type AttemptStatus string

const (
	AttemptStatusNotStarted AttemptStatus = "not_started"
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
)

// Selection представляет выбранный для попытки набор вопросов.
// Пустой Selection (Empty() == true) означает, что вопросов в базе нет.
type Selection struct {
	AttemptID string
	Status    AttemptStatus
	Items     []Item
}

// Empty сообщает, что выбирать было не из чего.
func (s *Selection) Empty() bool {
	return len(s.Items) == 0
}

// Item представляет вопрос, подготовленный для показа.
// QuestionID и CorrectAnswer клиент должен вернуть без изменений.
type Item struct {
	Position      int
	QuestionID    int64
	Text          string
	Options       []Option
	CorrectAnswer string
}

// Option - вариант ответа с буквой для отображения.
type Option struct {
	Letter string
	Text   string
}

// Submission содержит ответы, пришедшие от клиента.
type Submission struct {
	AttemptID string
	Entries   []Entry
}

// Entry - ответ на один вопрос попытки, сопоставляется по Position (с 1).
type Entry struct {
	Position      int
	QuestionID    int64
	UserAnswer    string
	Answered      bool
	CorrectAnswer string
}

// ScoreResult содержит результат проверки попытки.
type ScoreResult struct {
	AttemptID    string
	Status       AttemptStatus
	Percentage   float64
	CorrectCount int
	Total        int
	Results      []QuestionResult
}

// Passed сообщает, достигнута ли граница PassThreshold.
func (r *ScoreResult) Passed() bool {
	return r.Percentage >= PassThreshold
}

// QuestionResult - результат по одному вопросу.
type QuestionResult struct {
	Position      int
	QuestionID    int64
	UserAnswer    string
	Answered      bool
	CorrectAnswer string
	IsCorrect     bool
}

// QuizEngine определяет основной интерфейс для работы с квизами.
type QuizEngine interface { //nolint:revive
	// SelectQuiz выбирает до k случайных вопросов без повторов.
	// Для пустого списка возвращает пустой Selection, а не ошибку.
	SelectQuiz(questions []models.Question, k int) *Selection

	// Score проверяет ответы по вернувшимся с клиента правильным ответам.
	Score(submission Submission) (*ScoreResult, error)

	// ExportCSV экспортирует результат проверки в CSV.
	ExportCSV(result *ScoreResult) ([]byte, error)
}

// AnswerLetters - буквы для вариантов ответа.
var AnswerLetters = []string{"A", "B", "C", "D"}

// LetterToIndex преобразует букву в индекс (A=0, B=1, ...).
func LetterToIndex(letter string) (int, bool) {
	for i, l := range AnswerLetters {
		if l == letter {
			return i, true
		}
	}

	return -1, false
}

// IndexToLetter преобразует индекс в букву (0=A, 1=B, ...).
func IndexToLetter(idx int) string {
	if idx >= 0 && idx < len(AnswerLetters) {
		return AnswerLetters[idx]
	}

	return ""
}
