package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizweb/internal/catalog"
	"github.com/letsssgooo/quizweb/internal/domain/models"
	"github.com/letsssgooo/quizweb/internal/quiz"
	"github.com/letsssgooo/quizweb/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, store storage.QuestionStore) http.Handler {
	t.Helper()

	router, err := NewRouter(Options{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:    store,
		Engine:   quiz.NewEngineWithSeed(42),
		Catalog:  catalog.MustLoad(),
		QuizSize: 5,
	})
	require.NoError(t, err)

	return router
}

func do(t *testing.T, router http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func postForm(t *testing.T, router http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	return do(t, router, http.MethodPost, target, strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return env
}

func listJSON(t *testing.T, router http.Handler) []models.Question {
	t.Helper()

	rec := do(t, router, http.MethodGet, "/api/questions", nil, map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)

	var questions []models.Question
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &questions))

	return questions
}

func questionForm() url.Values {
	return url.Values{
		"question_text":  {"What is the capital of France?"},
		"correct_answer": {"Paris"},
		"option1":        {"Paris"},
		"option2":        {"London"},
		"option3":        {"Berlin"},
		"option4":        {"Madrid"},
	}
}

func TestHome(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Welcome to Quiz App")
	assert.Contains(t, rec.Body.String(), `href="/start-quiz"`)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListQuestions_Empty(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodGet, "/api/questions", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No questions available")

	assert.Empty(t, listJSON(t, router))
}

func TestAddSampleQuestions_ReplacesEverything(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	for i := 0; i < 3; i++ {
		rec := postForm(t, router, "/api/questions", questionForm())
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Len(t, listJSON(t, router), 3)

	rec := do(t, router, http.MethodGet, "/api/add-sample-questions", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "15 Sample Questions Added Successfully!")
	assert.Contains(t, rec.Body.String(), `content="2;url=/api/questions"`)

	questions := listJSON(t, router)
	require.Len(t, questions, 15)
	assert.Equal(t, "What is the capital of France?", questions[0].Text)

	rec = do(t, router, http.MethodGet, "/api/questions", nil, nil)
	assert.Contains(t, rec.Body.String(), "1. What is the capital of France?")
	assert.Contains(t, rec.Body.String(), "Correct Answer: Paris")
	assert.Contains(t, rec.Body.String(), "D) Madrid")
}

func TestCreateQuestion(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := postForm(t, router, "/api/questions", questionForm())
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Question created successfully", env.Message)

	var created models.Question
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Positive(t, created.ID)
	assert.Equal(t, "Paris", created.CorrectAnswer)
	assert.Equal(t, "Madrid", created.Option4)

	rec = do(t, router, http.MethodGet, "/api/questions/"+strconv.FormatInt(created.ID, 10), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Question
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, created, got)
}

func TestCreateQuestion_Multipart(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range questionForm() {
		require.NoError(t, mw.WriteField(k, v[0]))
	}
	require.NoError(t, mw.Close())

	rec := do(t, router, http.MethodPost, "/api/questions", &body,
		map[string]string{"Content-Type": mw.FormDataContentType()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, listJSON(t, router), 1)
}

func TestCreateQuestion_MissingField(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	form := questionForm()
	form.Del("option3")

	rec := postForm(t, router, "/api/questions", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "option3")
	assert.Empty(t, listJSON(t, router))
}

func TestGetQuestion_Errors(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodGet, "/api/questions/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/questions/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteQuestion(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := postForm(t, router, "/api/questions", questionForm())
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.Question
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))

	target := "/api/questions/" + strconv.FormatInt(created.ID, 10)

	rec = do(t, router, http.MethodDelete, target, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, listJSON(t, router))

	rec = do(t, router, http.MethodDelete, target, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartQuiz_NoQuestions(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodGet, "/start-quiz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No questions available")
	assert.Contains(t, rec.Body.String(), `href="/api/add-sample-questions"`)
	assert.NotContains(t, rec.Body.String(), "<form")
}

var (
	hiddenQuestionID = regexp.MustCompile(`name="question_(\d+)_id" value="(\d+)"`)
	hiddenCorrect    = regexp.MustCompile(`name="correct_(\d+)" value="([^"]*)"`)
	hiddenAttempt    = regexp.MustCompile(`name="attempt_id" value="([^"]*)"`)
)

// quizForm вытаскивает скрытые поля из формы квиза.
func quizForm(t *testing.T, body string) (url.Values, map[string]string) {
	t.Helper()

	form := url.Values{}
	correct := make(map[string]string)

	for _, m := range hiddenQuestionID.FindAllStringSubmatch(body, -1) {
		form.Set("question_"+m[1]+"_id", m[2])
	}
	for _, m := range hiddenCorrect.FindAllStringSubmatch(body, -1) {
		value := html.UnescapeString(m[2])
		form.Set("correct_"+m[1], value)
		correct[m[1]] = value
	}
	if m := hiddenAttempt.FindStringSubmatch(body); m != nil {
		form.Set("attempt_id", m[1])
	}

	return form, correct
}

func TestStartQuiz_ThenSubmit(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodGet, "/api/add-sample-questions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/start-quiz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Quiz Time!")
	assert.Equal(t, 20, strings.Count(body, `type="radio"`))
	assert.Equal(t, 4, strings.Count(body, `name="answer_5"`))

	form, correct := quizForm(t, body)
	require.Len(t, correct, 5)
	assert.NotEmpty(t, form.Get("attempt_id"))

	ids := make(map[string]struct{})
	for i := 1; i <= 5; i++ {
		id := form.Get("question_" + strconv.Itoa(i) + "_id")
		require.NotEmpty(t, id)
		ids[id] = struct{}{}
	}
	assert.Len(t, ids, 5)

	// четыре правильных ответа и один неправильный
	for pos, answer := range correct {
		form.Set("answer_"+pos, answer)
	}
	form.Set("answer_3", "definitely wrong")

	rec = postForm(t, router, "/submit-quiz", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your Score: 80.0%")
	assert.Contains(t, rec.Body.String(), "Correct Answers: 4 out of 5")
	assert.Contains(t, rec.Body.String(), "score passed")
}

func TestSubmitQuiz_HalfCorrect(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := postForm(t, router, "/submit-quiz", url.Values{
		"question_1_id": {"1"}, "correct_1": {"Paris"}, "answer_1": {"Paris"},
		"question_2_id": {"2"}, "correct_2": {"Paris"}, "answer_2": {"London"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Your Score: 50.0%")
	assert.Contains(t, body, "Correct Answers: 1 out of 2")
	assert.Contains(t, body, "score failed")
	assert.Contains(t, body, "Incorrect. Correct answer: Paris")
}

func TestSubmitQuiz_CaseSensitive(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := postForm(t, router, "/submit-quiz", url.Values{
		"question_1_id": {"1"}, "correct_1": {"Paris"}, "answer_1": {"paris"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your Score: 0.0%")
}

func TestSubmitQuiz_Unanswered(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := postForm(t, router, "/submit-quiz", url.Values{
		"question_1_id": {"1"}, "correct_1": {"Paris"},
		"question_2_id": {"2"}, "correct_2": {"Mars"}, "answer_2": {"Mars"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your Score: 50.0%")
	assert.Contains(t, rec.Body.String(), "Your answer: (none)")
}

func TestSubmitQuiz_Invalid(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	testCases := []struct {
		name string
		form url.Values
	}{
		{name: "empty", form: url.Values{}},
		{name: "answers without questions", form: url.Values{"answer_1": {"Paris"}, "correct_1": {"Paris"}}},
		{name: "gap in positions", form: url.Values{"question_2_id": {"2"}, "correct_2": {"Paris"}}},
		{name: "non numeric id", form: url.Values{"question_1_id": {"x"}, "correct_1": {"Paris"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postForm(t, router, "/submit-quiz", tc.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid submission")
		})
	}
}

func TestSubmitQuiz_CSV(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := postForm(t, router, "/submit-quiz", url.Values{
		"format":        {"csv"},
		"attempt_id":    {"0b6b1bb4-8a37-4d5e-9a0e-3f5f3c0c1f11"},
		"question_1_id": {"4"}, "correct_1": {"Paris"}, "answer_1": {"Paris"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "quiz-results-0b6b1bb4-8a37-4d5e-9a0e-3f5f3c0c1f11.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Position,QuestionID,UserAnswer,CorrectAnswer,IsCorrect\n1,4,Paris,Paris,true\n"))
}

func TestCORS_Preflight(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStorage())

	rec := do(t, router, http.MethodOptions, "/api/questions", nil, map[string]string{
		"Origin":                        "http://example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// failingStore отвечает ошибкой на любой запрос.
type failingStore struct{}

var errStoreDown = errors.New("store is down")

func (failingStore) ListAll(context.Context) ([]models.Question, error) { return nil, errStoreDown }
func (failingStore) Create(context.Context, models.QuestionInput) (models.Question, error) {
	return models.Question{}, errStoreDown
}
func (failingStore) ReplaceAll(context.Context, []models.QuestionInput) error { return errStoreDown }
func (failingStore) GetByID(context.Context, int64) (models.Question, error) {
	return models.Question{}, errStoreDown
}
func (failingStore) DeleteByID(context.Context, int64) error { return errStoreDown }
func (failingStore) Close(context.Context) error             { return nil }

func TestStorageFailures(t *testing.T) {
	router := newTestRouter(t, failingStore{})

	testCases := []struct {
		name    string
		method  string
		target  string
		body    io.Reader
		headers map[string]string
	}{
		{name: "list html", method: http.MethodGet, target: "/api/questions"},
		{name: "list json", method: http.MethodGet, target: "/api/questions", headers: map[string]string{"Accept": "application/json"}},
		{name: "seed", method: http.MethodGet, target: "/api/add-sample-questions"},
		{name: "start quiz", method: http.MethodGet, target: "/start-quiz"},
		{name: "get", method: http.MethodGet, target: "/api/questions/1"},
		{name: "delete", method: http.MethodDelete, target: "/api/questions/1"},
		{
			name:    "create",
			method:  http.MethodPost,
			target:  "/api/questions",
			body:    strings.NewReader(questionForm().Encode()),
			headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.target, tc.body, tc.headers)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), errStoreDown.Error())
		})
	}
}
