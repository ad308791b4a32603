package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/quizweb/internal/domain/models"
	"github.com/letsssgooo/quizweb/internal/storage"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS questions (
		id             BIGSERIAL PRIMARY KEY,
		question_text  TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		option1        TEXT NOT NULL,
		option2        TEXT NOT NULL,
		option3        TEXT NOT NULL,
		option4        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_question_text ON questions (question_text)`,
}

const insertQuestion = `
	INSERT INTO questions (question_text, correct_answer, option1, option2, option3, option4)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
`

const selectQuestions = `
	SELECT id, question_text, correct_answer, option1, option2, option3, option4
	FROM questions
`

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Storage{pool: pool}
	if err = s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Migrate создаёт таблицу вопросов, если её ещё нет.
func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("cannot migrate questions schema, %w", err)
		}
	}

	return nil
}

func (s *Storage) ListAll(ctx context.Context) ([]models.Question, error) {
	rows, err := s.pool.Query(ctx, selectQuestions+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("cannot list questions, %w", err)
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		if err = scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("cannot list questions, %w", err)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot list questions, %w", err)
	}

	return questions, nil
}

func (s *Storage) Create(ctx context.Context, in models.QuestionInput) (models.Question, error) {
	if err := in.Validate(); err != nil {
		return models.Question{}, err
	}

	var id int64
	err := s.pool.QueryRow(ctx, insertQuestion,
		in.Text, in.CorrectAnswer, in.Option1, in.Option2, in.Option3, in.Option4,
	).Scan(&id)
	if err != nil {
		return models.Question{}, fmt.Errorf("cannot create question, %w", err)
	}

	return in.WithID(id), nil
}

// ReplaceAll удаляет все вопросы и вставляет новые в одной транзакции.
// Блокировка таблицы не даёт параллельному Create попасть между DELETE и COMMIT.
// id берутся из последовательности и не переиспользуются.
func (s *Storage) ReplaceAll(ctx context.Context, inputs []models.QuestionInput) error {
	if err := models.ValidateAll(inputs); err != nil {
		return err
	}

	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE questions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, in := range inputs {
			batch.Queue(insertQuestion, in.Text, in.CorrectAnswer, in.Option1, in.Option2, in.Option3, in.Option4)
		}

		results := tx.SendBatch(ctx, batch)
		for range inputs {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}

		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("cannot replace questions, %w", err)
	}

	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (models.Question, error) {
	var q models.Question
	err := scanQuestion(s.pool.QueryRow(ctx, selectQuestions+` WHERE id = $1`, id), &q)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Question{}, storage.ErrQuestionNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("cannot get question, %w", err)
	}

	return q, nil
}

func (s *Storage) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cannot delete question, %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrQuestionNotFound
	}

	return nil
}

func (s *Storage) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

func scanQuestion(row pgx.Row, q *models.Question) error {
	return row.Scan(&q.ID, &q.Text, &q.CorrectAnswer, &q.Option1, &q.Option2, &q.Option3, &q.Option4)
}
