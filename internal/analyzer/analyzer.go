package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/sentimentlens/internal/analysis"
	"github.com/xaenox/sentimentlens/internal/models"
	"go.uber.org/zap"
)

// Analyzer turns a text into a complete analysis result.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// Model is a provider able to answer a prompt with the structured payload
// described by the analysis package. An empty string means the provider
// returned no text.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client issues exactly one provider call per Analyze and attaches the
// identity and time metadata the model does not produce.
type Client struct {
	model  Model
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Client)

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithIDGenerator overrides how result ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(c *Client) { c.newID = newID }
}

func NewClient(model Model, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		model:  model,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	output, err := c.model.Generate(ctx, analysis.BuildPrompt(text))
	if err != nil {
		c.logger.Error("Failed to get model response",
			zap.Error(err),
			zap.String("model", c.model.Name()))
		return nil, &TransportError{Provider: c.model.Name(), Err: err}
	}

	payload, err := analysis.Decode(output)
	if err != nil {
		c.logger.Error("Failed to parse model response",
			zap.Error(err),
			zap.String("model", c.model.Name()),
			zap.Int("response_len", len(output)))
		return nil, err
	}

	if violations := analysis.RangeViolations(payload); len(violations) > 0 {
		c.logger.Warn("Model returned scores outside documented ranges",
			zap.String("model", c.model.Name()),
			zap.Strings("fields", violations))
	}

	result := payload.Result()
	result.ID = c.newID()
	result.Timestamp = c.now().UnixMilli()
	result.OriginalText = text

	c.logger.Debug("Analysis completed",
		zap.String("result_id", result.ID),
		zap.String("label", string(result.Sentiment.Label)))

	return &result, nil
}

var _ Analyzer = (*Client)(nil)
