package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xaenox/sentimentlens/internal/analyzer"
	"github.com/xaenox/sentimentlens/internal/console"
	"github.com/xaenox/sentimentlens/internal/history"
	"github.com/xaenox/sentimentlens/internal/session"
	"github.com/xaenox/sentimentlens/internal/storage"
	"github.com/xaenox/sentimentlens/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxKeyPhrases = 5

// app holds everything one command invocation needs.
type app struct {
	logger  *zap.Logger
	kv      storage.KV
	session *session.Machine
	out     *console.Renderer
}

func openApp(cmd *cobra.Command, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	kv, err := openStorage(cfg.Storage, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
		return nil, err
	}

	hist := history.NewKVStore(kv, history.Options{
		Key:      cfg.History.Key,
		Capacity: cfg.History.Capacity,
	}, logger)
	hist.Load(cmd.Context())

	model, err := newModel(cfg)
	if err != nil {
		kv.Close()
		return nil, err
	}
	logger.Debug("Using model", zap.String("model", model.Name()))

	status := console.NewRenderer(cmd.ErrOrStderr(), logger)
	sess := session.New(analyzer.NewClient(model, logger), hist, logger,
		session.WithObserver(func(s session.State) { _ = status.Status(s) }))

	return &app{
		logger:  logger,
		kv:      kv,
		session: sess,
		out:     console.NewRenderer(cmd.OutOrStdout(), logger),
	}, nil
}

func (a *app) Close() error {
	err := a.kv.Close()
	_ = a.logger.Sync()
	return err
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}

func openStorage(cfg config.StorageConfig, logger *zap.Logger) (storage.KV, error) {
	path := expandHome(cfg.Path)
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Debug("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	case config.BackendSQLite:
		logger.Debug("Using SQLite storage", zap.String("path", path))
		return storage.NewSQLiteStorage(filepath.Join(path, "history.db"))
	default:
		logger.Debug("Using file storage", zap.String("path", path))
		return storage.NewFileStorage(path)
	}
}

func newModel(cfg *config.Config) (analyzer.Model, error) {
	switch cfg.Provider.Name {
	case config.ProviderGemini:
		return analyzer.NewGeminiModel(analyzer.GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		}), nil
	case config.ProviderOpenAI:
		return analyzer.NewOpenAIModel(analyzer.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		}), nil
	case config.ProviderOffline:
		return analyzer.NewLexiconModel(maxKeyPhrases), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
