package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Драйверы хранилища вопросов.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Config содержит настройки сервиса.
type Config struct {
	Env             string
	HTTPAddr        string
	Storage         string
	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	CORSOrigins     []string
	QuizSize        int
	ShutdownTimeout time.Duration
}

// Load читает .env (если есть), переменные окружения и флаги.
// Флаги имеют приоритет над окружением.
func Load(args []string) (*Config, error) {
	// .env необязателен, без него используется окружение процесса
	_ = godotenv.Load()

	quizSize, err := strconv.Atoi(GetEnv("QUIZ_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUIZ_SIZE, %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(GetEnv("QUIZ_SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUIZ_SHUTDOWN_TIMEOUT, %w", err)
	}

	cfg := &Config{}

	flags := pflag.NewFlagSet("quizweb", pflag.ContinueOnError)
	flags.StringVar(&cfg.Env, "env", GetEnv("QUIZ_ENV", EnvLocal), "environment: local, dev or prod")
	flags.StringVar(&cfg.HTTPAddr, "http-addr", GetEnv("QUIZ_HTTP_ADDR", ":8000"), "address of the HTTP server")
	flags.StringVar(&cfg.Storage, "storage", GetEnv("QUIZ_STORAGE", StorageMemory), "question storage: memory, postgres or mongo")
	flags.StringVar(&cfg.PostgresDSN, "postgres-dsn", GetEnv("QUIZ_POSTGRES_DSN"), "postgres connection string")
	flags.StringVar(&cfg.MongoURI, "mongo-uri", GetEnv("QUIZ_MONGO_URI"), "mongodb connection uri")
	flags.StringVar(&cfg.MongoDatabase, "mongo-database", GetEnv("QUIZ_MONGO_DATABASE", "quiz"), "mongodb database name")
	flags.StringSliceVar(&cfg.CORSOrigins, "cors-origins", splitList(GetEnv("QUIZ_CORS_ORIGINS", "*")), "allowed CORS origins")
	flags.IntVar(&cfg.QuizSize, "quiz-size", quizSize, "number of questions in one quiz")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", shutdownTimeout, "graceful shutdown timeout")

	if err = flags.Parse(args); err != nil {
		return nil, err
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetEnv возвращает переменную окружения или значение по умолчанию.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres storage needs a dsn")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("mongo storage needs a uri")
		}
		if c.MongoDatabase == "" {
			return errors.New("mongo storage needs a database name")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}

	if c.QuizSize < 1 {
		return errors.New("quiz size must be at least one")
	}

	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
