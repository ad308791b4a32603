// Package storagetest содержит общие проверки для реализаций storage.QuestionStore.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizweb/internal/domain/models"
	"github.com/letsssgooo/quizweb/internal/storage"
)

// Factory создаёт пустое хранилище для одного теста.
type Factory func(t *testing.T) storage.QuestionStore

// Input строит корректный вопрос с номером n.
func Input(n int) models.QuestionInput {
	return models.QuestionInput{
		Text:          fmt.Sprintf("Question %d?", n),
		CorrectAnswer: fmt.Sprintf("right %d", n),
		Option1:       fmt.Sprintf("wrong %d", n),
		Option2:       fmt.Sprintf("right %d", n),
		Option3:       fmt.Sprintf("other %d", n),
		Option4:       fmt.Sprintf("another %d", n),
	}
}

// Inputs строит count корректных вопросов, начиная с номера from.
func Inputs(from, count int) []models.QuestionInput {
	inputs := make([]models.QuestionInput, 0, count)
	for i := from; i < from+count; i++ {
		inputs = append(inputs, Input(i))
	}

	return inputs
}

// Run прогоняет все проверки хранилища.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateThenList", func(t *testing.T) { testCreateThenList(t, newStore(t)) })
	t.Run("CreateValidation", func(t *testing.T) { testCreateValidation(t, newStore(t)) })
	t.Run("ReplaceAll", func(t *testing.T) { testReplaceAll(t, newStore(t)) })
	t.Run("ReplaceAllOnEmpty", func(t *testing.T) { testReplaceAllOnEmpty(t, newStore(t)) })
	t.Run("ReplaceAllInvalidKeepsData", func(t *testing.T) { testReplaceAllInvalidKeepsData(t, newStore(t)) })
	t.Run("IDsNeverReused", func(t *testing.T) { testIDsNeverReused(t, newStore(t)) })
	t.Run("GetAndDelete", func(t *testing.T) { testGetAndDelete(t, newStore(t)) })
	t.Run("ConcurrentReplaceAndCreate", func(t *testing.T) { testConcurrentReplaceAndCreate(t, newStore(t)) })
}

func testCreateThenList(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	first, err := st.Create(ctx, Input(1))
	require.NoError(t, err)

	before, err := st.ListAll(ctx)
	require.NoError(t, err)

	in := Input(2)
	created, err := st.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, created.ID)
	assert.Equal(t, in.WithID(created.ID), created)

	after, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	for _, q := range before {
		assert.NotEqual(t, created.ID, q.ID)
	}
	assert.Equal(t, created, after[len(after)-1])
}

func testCreateValidation(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	in := Input(1)
	in.Option4 = ""

	_, err := st.Create(ctx, in)
	require.ErrorIs(t, err, models.ErrValidation)

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testReplaceAll(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	for _, in := range Inputs(1, 7) {
		_, err := st.Create(ctx, in)
		require.NoError(t, err)
	}

	samples := Inputs(100, 15)
	require.NoError(t, st.ReplaceAll(ctx, samples))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 15)

	for i, q := range all {
		assert.Equal(t, samples[i].Text, q.Text)
		assert.Equal(t, samples[i].CorrectAnswer, q.CorrectAnswer)
	}

	// повторная замена не накапливает вопросы
	require.NoError(t, st.ReplaceAll(ctx, samples))
	all, err = st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func testReplaceAllOnEmpty(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	require.NoError(t, st.ReplaceAll(ctx, Inputs(1, 15)))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func testReplaceAllInvalidKeepsData(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	for _, in := range Inputs(1, 3) {
		_, err := st.Create(ctx, in)
		require.NoError(t, err)
	}

	broken := Inputs(10, 5)
	broken[4].Text = ""

	err := st.ReplaceAll(ctx, broken)
	require.ErrorIs(t, err, models.ErrValidation)

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, Input(1).Text, all[0].Text)
}

func testIDsNeverReused(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	seen := make(map[int64]struct{})
	remember := func(qs []models.Question) {
		for _, q := range qs {
			_, dup := seen[q.ID]
			require.False(t, dup, "id %d reused", q.ID)
			seen[q.ID] = struct{}{}
		}
	}

	created, err := st.Create(ctx, Input(1))
	require.NoError(t, err)
	remember([]models.Question{created})

	require.NoError(t, st.DeleteByID(ctx, created.ID))

	require.NoError(t, st.ReplaceAll(ctx, Inputs(2, 4)))
	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	remember(all)

	require.NoError(t, st.ReplaceAll(ctx, Inputs(2, 4)))
	all, err = st.ListAll(ctx)
	require.NoError(t, err)
	remember(all)

	created, err = st.Create(ctx, Input(9))
	require.NoError(t, err)
	remember([]models.Question{created})
}

func testGetAndDelete(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()

	created, err := st.Create(ctx, Input(1))
	require.NoError(t, err)

	got, err := st.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = st.GetByID(ctx, created.ID+1000)
	require.ErrorIs(t, err, storage.ErrQuestionNotFound)

	require.NoError(t, st.DeleteByID(ctx, created.ID))

	_, err = st.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, storage.ErrQuestionNotFound)

	err = st.DeleteByID(ctx, created.ID)
	require.ErrorIs(t, err, storage.ErrQuestionNotFound)
}

// testConcurrentReplaceAndCreate проверяет, что читатель никогда не видит
// промежуточного состояния замены, а созданные после замены вопросы не теряются.
func testConcurrentReplaceAndCreate(t *testing.T, st storage.QuestionStore) {
	ctx := context.Background()
	samples := Inputs(100, 15)

	require.NoError(t, st.ReplaceAll(ctx, samples))

	const rounds = 20

	var wg sync.WaitGroup
	errs := make(chan error, 3*rounds)

	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := st.ReplaceAll(ctx, samples); err != nil {
				errs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := st.Create(ctx, Input(i)); err != nil {
				errs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			all, err := st.ListAll(ctx)
			if err != nil {
				errs <- err
				continue
			}
			if len(all) < len(samples) {
				errs <- fmt.Errorf("reader observed %d questions mid-replace", len(all))
			}
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	// последняя замена могла пройти до или после части вставок
	require.NoError(t, st.ReplaceAll(ctx, samples))
	created, err := st.Create(ctx, Input(500))
	require.NoError(t, err)

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(samples)+1)
	assert.Equal(t, created, all[len(all)-1])
}
