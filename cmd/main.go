package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"softsell-assistant/internal/domain"
	"softsell-assistant/internal/faq"
	"softsell-assistant/internal/integrations/cohere"
	"softsell-assistant/internal/integrations/paramstore"
	"softsell-assistant/internal/repository"
	"softsell-assistant/internal/usecase"
	"softsell-assistant/widget"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	// ---- Logging (the widget owns the terminal) ----
	logFile, err := os.OpenFile(envString("LOG_FILE", "softsell-assistant.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		slog.Error("failed to open log file", "err", err)
		os.Exit(1)
	}
	defer func() { _ = logFile.Close() }()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	apiKey := strings.TrimSpace(os.Getenv("COHERE_API_KEY"))
	apiKeyParam := strings.TrimSpace(os.Getenv("COHERE_API_KEY_PARAM"))
	if apiKey == "" && apiKeyParam == "" {
		slog.Error("one of COHERE_API_KEY or COHERE_API_KEY_PARAM must be set")
		os.Exit(1)
	}
	baseURL := envString("COHERE_BASE_URL", "https://api.cohere.ai")
	model := envString("COHERE_MODEL", "command")
	faqTable := strings.TrimSpace(os.Getenv("FAQ_TABLE"))
	cannedFile := strings.TrimSpace(os.Getenv("CANNED_ANSWERS_FILE"))
	welcomeDelay := envDuration("WELCOME_DELAY", 500*time.Millisecond)
	cannedDelay := envDuration("CANNED_DELAY", 800*time.Millisecond)
	replyDelay := envDuration("REPLY_DELAY", 800*time.Millisecond)
	backoffBase := envDuration("BACKOFF_BASE", time.Second)
	maxAttempts := envInt("MAX_ATTEMPTS", 3)

	// ---- AWS SDK config, only when something lives in AWS ----
	var awsCfg aws.Config
	if apiKeyParam != "" || faqTable != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
	}

	// ---- Clients ----
	var creds cohere.Credentials = cohere.StaticKey(apiKey)
	if apiKey == "" {
		params, err := paramstore.NewStore(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		secret, err := params.Secret(apiKeyParam)
		if err != nil {
			slog.Error("failed to create API key source", "err", err)
			os.Exit(1)
		}
		creds = secret
	}

	cohereClient, err := cohere.NewClient(creds, cohere.WithBaseURL(baseURL), cohere.WithModel(model))
	if err != nil {
		slog.Error("failed to create Cohere client", "err", err)
		os.Exit(1)
	}

	entries, err := loadCannedAnswers(ctx, awsCfg, faqTable, cannedFile)
	if err != nil {
		slog.Error("failed to load canned answers", "err", err)
		os.Exit(1)
	}
	canned, err := usecase.NewCannedAnswers(entries)
	if err != nil {
		slog.Error("invalid canned answers", "err", err)
		os.Exit(1)
	}

	// ---- Engine ----
	engine, err := usecase.NewEngine(cohereClient, canned,
		usecase.WithLogger(logger),
		usecase.WithDelays(welcomeDelay, cannedDelay, replyDelay),
		usecase.WithBackoffBase(backoffBase),
		usecase.WithMaxAttempts(maxAttempts),
	)
	if err != nil {
		slog.Error("failed to create conversation engine", "err", err)
		os.Exit(1)
	}
	slog.Info("session started", "session_id", engine.SessionID(), "canned_answers", canned.Len())

	// ---- Widget ----
	if _, err := tea.NewProgram(widget.New(ctx, engine), tea.WithAltScreen()).Run(); err != nil {
		slog.Error("widget exited with error", "err", err)
		os.Exit(1)
	}
}

// loadCannedAnswers prefers the DynamoDB table, then the YAML file, then the
// built-in table.
func loadCannedAnswers(ctx context.Context, awsCfg aws.Config, table, file string) ([]domain.CannedAnswer, error) {
	switch {
	case table != "":
		store, err := repository.NewFAQStore(awsdynamodb.NewFromConfig(awsCfg), table)
		if err != nil {
			return nil, err
		}
		return store.LoadCannedAnswers(ctx)
	case file != "":
		return faq.LoadFile(file)
	default:
		return faq.Defaults(), nil
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
