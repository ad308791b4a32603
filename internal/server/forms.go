package server

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/letsssgooo/quizweb/internal/domain/models"
	"github.com/letsssgooo/quizweb/internal/quiz"
)

var errMalformedSubmission = errors.New("malformed quiz submission")

var questionIDKey = regexp.MustCompile(`^question_\d+_id$`)

func questionInputFromForm(form url.Values) models.QuestionInput {
	return models.QuestionInput{
		Text:          form.Get("question_text"),
		CorrectAnswer: form.Get("correct_answer"),
		Option1:       form.Get("option1"),
		Option2:       form.Get("option2"),
		Option3:       form.Get("option3"),
		Option4:       form.Get("option4"),
	}
}

// submissionFromForm собирает ответы question_{i}_id, correct_{i}, answer_{i} для i = 1..N,
// где N - количество полей question_{i}_id. Отсутствующий answer_{i} оставляет вопрос неотвеченным.
func submissionFromForm(form url.Values) (quiz.Submission, error) {
	total := 0
	for key := range form {
		if questionIDKey.MatchString(key) {
			total++
		}
	}

	submission := quiz.Submission{
		AttemptID: form.Get("attempt_id"),
		Entries:   make([]quiz.Entry, 0, total),
	}

	for i := 1; i <= total; i++ {
		idKey := fmt.Sprintf("question_%d_id", i)
		id, err := strconv.ParseInt(form.Get(idKey), 10, 64)
		if err != nil {
			return quiz.Submission{}, fmt.Errorf("%w, bad or missing %s", errMalformedSubmission, idKey)
		}

		entry := quiz.Entry{
			Position:      i,
			QuestionID:    id,
			CorrectAnswer: form.Get(fmt.Sprintf("correct_%d", i)),
		}
		if answers := form[fmt.Sprintf("answer_%d", i)]; len(answers) > 0 {
			entry.UserAnswer = answers[0]
			entry.Answered = true
		}

		submission.Entries = append(submission.Entries, entry)
	}

	return submission, nil
}
