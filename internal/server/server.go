package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"github.com/letsssgooo/quizweb/internal/catalog"
	"github.com/letsssgooo/quizweb/internal/quiz"
	"github.com/letsssgooo/quizweb/internal/storage"
)

// Options содержит зависимости HTTP слоя. Хранилище создаётся один раз
// при старте процесса и передаётся сюда.
type Options struct {
	Log         *slog.Logger
	Store       storage.QuestionStore
	Engine      quiz.QuizEngine
	Catalog     *catalog.Catalog
	QuizSize    int
	CORSOrigins []string
}

// NewHandler создаёт Handler и разбирает шаблоны страниц.
func NewHandler(opts Options) (*Handler, error) {
	views, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("cannot parse templates, %w", err)
	}

	quizSize := opts.QuizSize
	if quizSize <= 0 {
		quizSize = quiz.DefaultSize
	}

	return &Handler{
		log:      opts.Log.With(slog.String("component", "server")),
		store:    opts.Store,
		engine:   opts.Engine,
		catalog:  opts.Catalog,
		quizSize: quizSize,
		views:    views,
	}, nil
}

// NewRouter собирает маршруты и middleware.
func NewRouter(opts Options) (http.Handler, error) {
	h, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Log))
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.Home)
	r.Get("/health", h.Health)

	// Question routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", h.ListQuestions)
		r.Post("/questions", h.CreateQuestion)
		r.Get("/questions/{id}", h.GetQuestion)
		r.Delete("/questions/{id}", h.DeleteQuestion)
		r.Get("/add-sample-questions", h.AddSampleQuestions)
	})

	// Quiz routes
	r.Get("/start-quiz", h.StartQuiz)
	r.Post("/submit-quiz", h.SubmitQuiz)

	return r, nil
}
