// Package console renders analysis results, the history list and session
// status as plain text.
package console

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xaenox/sentimentlens/internal/models"
	"github.com/xaenox/sentimentlens/internal/session"
	"go.uber.org/zap"
)

const (
	timeLayout     = "2006-01-02 15:04"
	previewRunes   = 48
	emotionBarSize = 20
)

type Renderer struct {
	w      io.Writer
	logger *zap.Logger
	loc    *time.Location
}

type Option func(*Renderer)

// WithLocation sets the zone timestamps are shown in. Defaults to local time.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) { r.loc = loc }
}

func NewRenderer(w io.Writer, logger *zap.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{w: w, logger: logger, loc: time.Local}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Result(res models.AnalysisResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Sentiment:  %s (score %+.2f, confidence %.0f%%)\n",
		res.Sentiment.Label, res.Sentiment.Score, res.Sentiment.Confidence*100)
	fmt.Fprintf(&b, "Intensity:  %.0f/100\n", res.IntensityScore)

	if len(res.Emotions) > 0 {
		b.WriteString("Emotions:\n")
		width := 0
		for _, e := range res.Emotions {
			width = max(width, utf8.RuneCountInString(e.Emotion))
		}
		for _, e := range res.Emotions {
			fmt.Fprintf(&b, "  %-*s %s %3.0f%%\n", width, e.Emotion, bar(e.Score), e.Score*100)
		}
	}

	if len(res.KeyPhrases) > 0 {
		fmt.Fprintf(&b, "Key phrases: %s\n", strings.Join(formatPhrases(res.KeyPhrases), " "))
	}
	fmt.Fprintf(&b, "\nSummary: %s\n", res.Summary)
	fmt.Fprintf(&b, "\n[%s] %s\n", res.ID, res.CreatedAt().In(r.loc).Format(timeLayout))

	return r.write(b.String(), "result")
}

func (r *Renderer) History(items []models.AnalysisResult) error {
	if len(items) == 0 {
		return r.write("No analyses yet.\n", "history")
	}

	var b strings.Builder
	b.WriteString("Recent analyses:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s  %s  %-8s  %s\n",
			item.ID,
			item.CreatedAt().In(r.loc).Format(timeLayout),
			item.Sentiment.Label,
			preview(item.OriginalText))
	}
	return r.write(b.String(), "history")
}

// Status prints a line for the Loading and Error states and nothing
// otherwise.
func (r *Renderer) Status(s session.State) error {
	switch s.Status {
	case session.StatusLoading:
		return r.write("Analyzing...\n", "status")
	case session.StatusError:
		return r.write("⚠️ "+s.ErrorMessage+"\n", "status")
	default:
		return nil
	}
}

func (r *Renderer) write(text, what string) error {
	if _, err := io.WriteString(r.w, text); err != nil {
		r.logger.Error("Failed to write output",
			zap.Error(err),
			zap.String("what", what))
		return err
	}
	return nil
}

func formatPhrases(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = "#" + strings.ReplaceAll(strings.TrimPrefix(p, "#"), " ", "_")
	}
	return out
}

func bar(score float64) string {
	n := int(math.Round(score * emotionBarSize))
	n = min(max(n, 0), emotionBarSize)
	return strings.Repeat("█", n) + strings.Repeat("·", emotionBarSize-n)
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewRunes-3]) + "..."
}
