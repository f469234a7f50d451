package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/xaenox/sentimentlens/internal/analysis"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient is optional; the transport default applies otherwise.
	HTTPClient *http.Client
}

// GeminiModel calls the Gemini API with the response schema attached.
// The underlying client is built on first use so that a missing credential
// fails the call instead of the program start.
type GeminiModel struct {
	cfg GeminiConfig

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiModel(cfg GeminiConfig) *GeminiModel {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	return &GeminiModel{cfg: cfg}
}

func (g *GeminiModel) Name() string {
	return "gemini/" + g.cfg.Model
}

func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: analysis.ResponseMIMEType,
		ResponseSchema:   analysis.GeminiSchema(),
	}

	res, err := client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}

func (g *GeminiModel) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     g.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.cfg.HTTPClient,
	}
	if g.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	g.client = client
	return client, nil
}
