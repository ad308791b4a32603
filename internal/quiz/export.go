package quiz

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
)

// ExportCSV экспортирует результаты в CSV.
func (e *Engine) ExportCSV(result *ScoreResult) ([]byte, error) {
	if result == nil {
		return nil, errors.New("score result is nil")
	}

	rows := make([][]string, len(result.Results)+1)
	rows[0] = []string{
		"Position",
		"QuestionID",
		"UserAnswer",
		"CorrectAnswer",
		"IsCorrect",
	}
	for i, line := range result.Results {
		rows[i+1] = []string{
			strconv.Itoa(line.Position),
			strconv.FormatInt(line.QuestionID, 10),
			line.UserAnswer,
			line.CorrectAnswer,
			strconv.FormatBool(line.IsCorrect),
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}

	// итоги после пустой строки
	summary := [][]string{
		{},
		{"Total", strconv.Itoa(result.Total)},
		{"CorrectCount", strconv.Itoa(result.CorrectCount)},
		{"Percentage", fmt.Sprintf("%.1f", result.Percentage)},
	}
	if err := w.WriteAll(summary); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
