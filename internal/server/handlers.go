package server

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/letsssgooo/quizweb/internal/catalog"
	"github.com/letsssgooo/quizweb/internal/domain/models"
	"github.com/letsssgooo/quizweb/internal/quiz"
	"github.com/letsssgooo/quizweb/internal/storage"
)

const maxFormMemory = 1 << 20

// Handler обслуживает HTTP запросы квиза.
type Handler struct {
	log      *slog.Logger
	store    storage.QuestionStore
	engine   quiz.QuizEngine
	catalog  *catalog.Catalog
	quizSize int
	views    *template.Template
}

// Home отдаёт стартовую страницу.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", nil)
}

// Health отвечает, что сервис жив.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// ListQuestions отдаёт все вопросы: HTML, или JSON при Accept: application/json.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListAll(r.Context())
	if err != nil {
		h.storageFailure(w, r, "cannot list questions", err)
		return
	}

	if wantsJSON(r) {
		if questions == nil {
			questions = []models.Question{}
		}
		h.respondSuccess(w, "Success", questions)
		return
	}

	h.render(w, r, http.StatusOK, "questions", questions)
}

// AddSampleQuestions удаляет все вопросы и загружает каталог примеров.
func (h *Handler) AddSampleQuestions(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ReplaceAll(r.Context(), h.catalog.Questions); err != nil {
		h.storageFailure(w, r, "cannot add sample questions", err)
		return
	}

	h.log.Info("sample questions loaded",
		slog.Int("count", h.catalog.Size()),
		slog.Int("catalog_version", h.catalog.Version),
	)

	h.render(w, r, http.StatusOK, "seeded", h.catalog.Size())
}

// CreateQuestion создаёт вопрос из полей формы.
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.logFailure(r, http.StatusBadRequest, "cannot parse question form", err)
		h.respondError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}

	question, err := h.store.Create(r.Context(), questionInputFromForm(r.PostForm))
	if errors.Is(err, models.ErrValidation) {
		h.logFailure(r, http.StatusBadRequest, "invalid question", err)
		h.respondError(w, http.StatusBadRequest, "All fields are required: "+err.Error())
		return
	}
	if err != nil {
		h.logFailure(r, http.StatusInternalServerError, "cannot create question", err)
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.log.Info("question created", slog.Int64("id", question.ID))
	h.respondSuccess(w, "Question created successfully", question)
}

// GetQuestion отдаёт вопрос по id.
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.questionID(w, r)
	if !ok {
		return
	}

	question, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrQuestionNotFound) {
		h.respondError(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		h.logFailure(r, http.StatusInternalServerError, "cannot get question", err)
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.respondSuccess(w, "Success", question)
}

// DeleteQuestion удаляет вопрос по id.
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.questionID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteByID(r.Context(), id)
	if errors.Is(err, storage.ErrQuestionNotFound) {
		h.respondError(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		h.logFailure(r, http.StatusInternalServerError, "cannot delete question", err)
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.log.Info("question deleted", slog.Int64("id", id))
	h.respondSuccess(w, "Question deleted successfully", nil)
}

// StartQuiz выбирает вопросы и отдаёт форму квиза.
func (h *Handler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListAll(r.Context())
	if err != nil {
		h.storageFailure(w, r, "cannot start quiz", err)
		return
	}

	selection := h.engine.SelectQuiz(questions, h.quizSize)
	if selection.Empty() {
		h.render(w, r, http.StatusOK, "no_questions", nil)
		return
	}

	h.log.Info("quiz started",
		slog.String("attempt_id", selection.AttemptID),
		slog.Int("questions", len(selection.Items)),
	)

	h.render(w, r, http.StatusOK, "quiz", selection)
}

// SubmitQuiz проверяет ответы. При format=csv отдаёт результат файлом.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.logFailure(r, http.StatusBadRequest, "cannot parse quiz form", err)
		h.renderError(w, r, http.StatusBadRequest, "Invalid submission", "The quiz form could not be read.")
		return
	}

	submission, err := submissionFromForm(r.PostForm)
	if err != nil {
		h.logFailure(r, http.StatusBadRequest, "malformed quiz submission", err)
		h.renderError(w, r, http.StatusBadRequest, "Invalid submission", "The quiz form is incomplete.")
		return
	}

	for _, entry := range submission.Entries {
		if !entry.Answered {
			h.log.Warn("unanswered question in submission",
				slog.String("attempt_id", submission.AttemptID),
				slog.Int("position", entry.Position),
			)
		}
	}

	result, err := h.engine.Score(submission)
	if errors.Is(err, quiz.ErrEmptyQuiz) {
		h.logFailure(r, http.StatusBadRequest, "empty quiz submission", err)
		h.renderError(w, r, http.StatusBadRequest, "Invalid submission", "The submission contains no questions.")
		return
	}
	if err != nil {
		h.logFailure(r, http.StatusInternalServerError, "cannot score quiz", err)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	h.log.Info("quiz submitted",
		slog.String("attempt_id", result.AttemptID),
		slog.Int("correct", result.CorrectCount),
		slog.Int("total", result.Total),
	)

	if r.PostForm.Get("format") == "csv" {
		h.sendCSV(w, r, result)
		return
	}

	h.render(w, r, http.StatusOK, "result", result)
}

func (h *Handler) sendCSV(w http.ResponseWriter, r *http.Request, result *quiz.ScoreResult) {
	data, err := h.engine.ExportCSV(result)
	if err != nil {
		h.logFailure(r, http.StatusInternalServerError, "cannot export results", err)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	name := "quiz-results.csv"
	if _, err = uuid.Parse(result.AttemptID); err == nil {
		name = fmt.Sprintf("quiz-results-%s.csv", result.AttemptID)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

func (h *Handler) questionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid question id")
		return 0, false
	}

	return id, true
}

func (h *Handler) storageFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logFailure(r, http.StatusInternalServerError, msg, err)

	if wantsJSON(r) {
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "The question store is unavailable.")
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}

	return r.ParseForm()
}
