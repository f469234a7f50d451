package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xaenox/sentimentlens/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const scenarioText = "I love this product, it exceeded all expectations!"

const scenarioOutput = `{"sentiment":{"label":"Positive","score":0.9,"confidence":0.95},"emotions":[{"emotion":"Joy","score":0.8}],"keyPhrases":["exceeded expectations"],"summary":"Enthusiastic satisfaction.","intensityScore":72}`

type stubModel struct {
	output  string
	err     error
	prompts []string
}

func (s *stubModel) Name() string { return "stub" }

func (s *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.output, s.err
}

func TestAnalyze_Success(t *testing.T) {
	t.Parallel()

	model := &stubModel{output: scenarioOutput}
	fixed := time.UnixMilli(1_700_000_000_123)
	c := NewClient(model, nil, WithClock(func() time.Time { return fixed }))

	got, err := c.Analyze(context.Background(), scenarioText)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("calls=%d", len(model.prompts))
	}
	wantPrompt := `Analyze the emotional context and sentiment of the following text: "` + scenarioText + `"`
	if model.prompts[0] != wantPrompt {
		t.Fatalf("prompt=%q", model.prompts[0])
	}
	if got.OriginalText != scenarioText {
		t.Fatalf("OriginalText=%q", got.OriginalText)
	}
	if got.Timestamp != fixed.UnixMilli() {
		t.Fatalf("Timestamp=%d", got.Timestamp)
	}
	if got.ID == "" {
		t.Fatalf("expected generated id")
	}
	if got.Sentiment.Label != models.SentimentPositive || got.Sentiment.Score != 0.9 {
		t.Fatalf("sentiment=%+v", got.Sentiment)
	}
	if len(got.Emotions) != 1 || got.Emotions[0].Emotion != "Joy" {
		t.Fatalf("emotions=%+v", got.Emotions)
	}
	if got.IntensityScore != 72 || got.Summary != "Enthusiastic satisfaction." {
		t.Fatalf("result=%+v", got)
	}
}

func TestAnalyze_FreshIdentityPerCall(t *testing.T) {
	t.Parallel()

	c := NewClient(&stubModel{output: scenarioOutput}, nil)
	first, err := c.Analyze(context.Background(), scenarioText)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := c.Analyze(context.Background(), scenarioText)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must differ, both %q", first.ID)
	}
}

func TestAnalyze_PayloadIdentityIgnored(t *testing.T) {
	t.Parallel()

	out := `{"id":"from-model","timestamp":1,"originalText":"spoofed","sentiment":{"label":"Neutral","score":0,"confidence":0.5},"emotions":[],"keyPhrases":[],"summary":"","intensityScore":0}`
	c := NewClient(&stubModel{output: out}, nil, WithIDGenerator(func() string { return "generated" }))

	got, err := c.Analyze(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.ID != "generated" || got.OriginalText != "hello" || got.Timestamp == 1 {
		t.Fatalf("identity leaked from payload: %+v", got)
	}
}

func TestAnalyze_BlankTextSkipsProvider(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\t"} {
		model := &stubModel{output: scenarioOutput}
		c := NewClient(model, nil)
		_, err := c.Analyze(context.Background(), text)
		if !errors.Is(err, ErrEmptyText) {
			t.Fatalf("text=%q err=%v", text, err)
		}
		if len(model.prompts) != 0 {
			t.Fatalf("text=%q provider called %d times", text, len(model.prompts))
		}
	}
}

func TestAnalyze_Errors(t *testing.T) {
	t.Parallel()

	providerErr := errors.New("429 too many requests")

	tests := []struct {
		name  string
		model *stubModel
		check func(t *testing.T, err error)
	}{
		{
			name:  "transport",
			model: &stubModel{err: providerErr},
			check: func(t *testing.T, err error) {
				var terr *TransportError
				if !errors.As(err, &terr) {
					t.Fatalf("err=%T %v", err, err)
				}
				if !errors.Is(err, providerErr) {
					t.Fatalf("cause lost: %v", err)
				}
			},
		},
		{
			name:  "empty",
			model: &stubModel{output: "  "},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrEmptyResponse) {
					t.Fatalf("err=%v", err)
				}
			},
		},
		{
			name:  "malformed",
			model: &stubModel{output: "Sure! Here is the analysis: positive."},
			check: func(t *testing.T, err error) {
				var merr *MalformedResponseError
				if !errors.As(err, &merr) {
					t.Fatalf("err=%T %v", err, err)
				}
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClient(tt.model, nil)
			got, err := c.Analyze(context.Background(), scenarioText)
			if got != nil {
				t.Fatalf("expected nil result, got %+v", got)
			}
			tt.check(t, err)
			if len(tt.model.prompts) != 1 {
				t.Fatalf("calls=%d, want exactly one", len(tt.model.prompts))
			}
		})
	}
}

func TestAnalyze_LogsOutOfRangeScores(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	out := `{"sentiment":{"label":"Positive","score":1.7,"confidence":0.9},"emotions":[],"keyPhrases":[],"summary":"","intensityScore":140}`
	c := NewClient(&stubModel{output: out}, zap.New(core))

	got, err := c.Analyze(context.Background(), "wow")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Sentiment.Score != 1.7 || got.IntensityScore != 140 {
		t.Fatalf("values must pass through unchanged: %+v", got)
	}
	if logs.FilterMessage("Model returned scores outside documented ranges").Len() != 1 {
		t.Fatalf("expected one range warning, got %v", logs.All())
	}
}
