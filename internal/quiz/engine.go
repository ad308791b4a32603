package quiz

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letsssgooo/quizweb/internal/domain/models"
)

// Engine реализует QuizEngine. Состояния между вызовами не хранит,
// кроме генератора случайных чисел.
type Engine struct {
	rnd *rand.Rand
	mu  sync.Mutex
}

// NewEngine создаёт новый QuizEngine.
func NewEngine() *Engine {
	return &Engine{
		rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
}

// NewEngineWithSeed создаёт движок с детерминированной выборкой.
func NewEngineWithSeed(seed uint64) *Engine {
	return &Engine{
		rnd: rand.New(rand.NewPCG(seed, seed)),
	}
}

// SelectQuiz выбирает min(k, len(questions)) вопросов равновероятно и без повторов.
// Порядок вопросов в квизе - порядок выборки.
func (e *Engine) SelectQuiz(questions []models.Question, k int) *Selection {
	if len(questions) == 0 {
		return &Selection{Status: AttemptStatusNotStarted}
	}

	if k <= 0 {
		k = DefaultSize
	}

	picked := e.sample(len(questions), min(k, len(questions)))

	selection := &Selection{
		AttemptID: uuid.NewString(),
		Status:    AttemptStatusInProgress,
		Items:     make([]Item, 0, len(picked)),
	}

	for i, idx := range picked {
		question := questions[idx]

		options := make([]Option, 0, len(AnswerLetters))
		for j, text := range question.Options() {
			options = append(options, Option{Letter: IndexToLetter(j), Text: text})
		}

		selection.Items = append(selection.Items, Item{
			Position:      i + 1,
			QuestionID:    question.ID,
			Text:          question.Text,
			Options:       options,
			CorrectAnswer: question.CorrectAnswer,
		})
	}

	return selection
}

// sample возвращает k различных индексов из [0, n) частичным Фишером-Йетсом.
func (e *Engine) sample(n, k int) []int {
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < k; i++ {
		j := i + e.rnd.IntN(n-i)
		indexes[i], indexes[j] = indexes[j], indexes[i]
	}

	return indexes[:k]
}

// Score проверяет ответы точным сравнением строк, с учётом регистра.
// Неотвеченный вопрос считается неверным.
func (e *Engine) Score(submission Submission) (*ScoreResult, error) {
	total := len(submission.Entries)
	if total == 0 {
		return nil, ErrEmptyQuiz
	}

	result := &ScoreResult{
		AttemptID: submission.AttemptID,
		Status:    AttemptStatusSubmitted,
		Total:     total,
		Results:   make([]QuestionResult, 0, total),
	}

	for _, entry := range submission.Entries {
		isCorrect := entry.Answered && entry.UserAnswer == entry.CorrectAnswer
		if isCorrect {
			result.CorrectCount++
		}

		result.Results = append(result.Results, QuestionResult{
			Position:      entry.Position,
			QuestionID:    entry.QuestionID,
			UserAnswer:    entry.UserAnswer,
			Answered:      entry.Answered,
			CorrectAnswer: entry.CorrectAnswer,
			IsCorrect:     isCorrect,
		})
	}

	result.Percentage = 100 * float64(result.CorrectCount) / float64(total)

	return result, nil
}
