package models

import "time"

// SentimentLabel is the overall polarity reported by the model.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// EmotionScore is the intensity of one detected emotion, 0 to 1.
type EmotionScore struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

// SentimentJudgment is the polarity of a text with its score (-1 to 1) and
// the model's confidence (0 to 1).
type SentimentJudgment struct {
	Label      SentimentLabel `json:"label"`
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
}

// AnalysisResult represents one complete analysis of a submitted text.
// It is never mutated after creation.
type AnalysisResult struct {
	ID             string            `json:"id"`
	Timestamp      int64             `json:"timestamp"`
	OriginalText   string            `json:"originalText"`
	Sentiment      SentimentJudgment `json:"sentiment"`
	Emotions       []EmotionScore    `json:"emotions"`
	KeyPhrases     []string          `json:"keyPhrases"`
	Summary        string            `json:"summary"`
	IntensityScore float64           `json:"intensityScore"`
}

// CreatedAt returns the creation instant of the result.
func (r *AnalysisResult) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Clone returns a deep copy, so callers can hand results out without
// sharing the Emotions and KeyPhrases backing arrays.
func (r AnalysisResult) Clone() AnalysisResult {
	if r.Emotions != nil {
		emotions := make([]EmotionScore, len(r.Emotions))
		copy(emotions, r.Emotions)
		r.Emotions = emotions
	}
	if r.KeyPhrases != nil {
		phrases := make([]string, len(r.KeyPhrases))
		copy(phrases, r.KeyPhrases)
		r.KeyPhrases = phrases
	}
	return r
}
