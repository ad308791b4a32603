package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/letsssgooo/quizweb/internal/domain/models"
)

//go:embed samples.json
var samplesJSON []byte

// Catalog представляет версионированный набор примерных вопросов.
type Catalog struct {
	Version   int                    `json:"version"`
	Title     string                 `json:"title"`
	Questions []models.QuestionInput `json:"questions"`
}

// Size возвращает количество вопросов в каталоге.
func (c *Catalog) Size() int {
	return len(c.Questions)
}

// Load парсит встроенный каталог и проверяет его.
func Load() (*Catalog, error) {
	return Parse(samplesJSON)
}

// MustLoad как Load, но паникует при ошибке. Каталог встроен в бинарник,
// поэтому ошибка означает битую сборку.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}

	return c
}

// Parse парсит JSON каталога.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}

	if err := isCorrectCatalog(c); err != nil {
		return nil, fmt.Errorf("can not load catalog, %w", err)
	}

	return c, nil
}

func isCorrectCatalog(c *Catalog) error {
	if c.Version <= 0 {
		return fmt.Errorf("missing field version")
	}

	if len(c.Questions) == 0 {
		return fmt.Errorf("need at least one question")
	}

	if err := models.ValidateAll(c.Questions); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Questions))
	for i, q := range c.Questions {
		options := []string{q.Option1, q.Option2, q.Option3, q.Option4}
		if !slices.Contains(options, q.CorrectAnswer) {
			return fmt.Errorf("correct answer of %d question is not among its options", i)
		}

		if _, ok := seen[q.Text]; ok {
			return fmt.Errorf("duplicate text of %d question", i)
		}
		seen[q.Text] = struct{}{}
	}

	return nil
}
