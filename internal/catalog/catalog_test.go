package catalog

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizweb/internal/domain/models"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, c.Version)
	assert.Equal(t, 15, c.Size())
	assert.Equal(t, "What is the capital of France?", c.Questions[0].Text)
	assert.Equal(t, "Paris", c.Questions[0].CorrectAnswer)

	for _, q := range c.Questions {
		options := []string{q.Option1, q.Option2, q.Option3, q.Option4}
		assert.True(t, slices.Contains(options, q.CorrectAnswer), q.Text)
	}
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{invalid json}`},
		{name: "missing version", data: `{"questions": [
			{"question_text": "Q", "correct_answer": "A", "option1": "A", "option2": "B", "option3": "C", "option4": "D"}
		]}`},
		{name: "no questions", data: `{"version": 1, "questions": []}`},
		{name: "missing option", data: `{"version": 1, "questions": [
			{"question_text": "Q", "correct_answer": "A", "option1": "A", "option2": "B", "option3": "C"}
		]}`},
		{name: "correct answer not in options", data: `{"version": 1, "questions": [
			{"question_text": "Q", "correct_answer": "E", "option1": "A", "option2": "B", "option3": "C", "option4": "D"}
		]}`},
		{name: "duplicate question", data: `{"version": 1, "questions": [
			{"question_text": "Q", "correct_answer": "A", "option1": "A", "option2": "B", "option3": "C", "option4": "D"},
			{"question_text": "Q", "correct_answer": "B", "option1": "A", "option2": "B", "option3": "C", "option4": "D"}
		]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse([]byte(tc.data))
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestParse_MissingOptionIsValidationError(t *testing.T) {
	_, err := Parse([]byte(`{"version": 1, "questions": [
		{"question_text": "Q", "correct_answer": "A", "option1": "A", "option2": "B", "option3": "C"}
	]}`))
	require.ErrorIs(t, err, models.ErrValidation)
}
