package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/xaenox/sentimentlens/internal/analysis"
)

type cueSet struct {
	name  string
	words []string
}

var (
	positiveCues = []string{"love", "great", "excellent", "amazing", "happy", "wonderful", "exceeded", "good", "glad", "thanks", "awesome", "perfect", "enjoy"}
	negativeCues = []string{"hate", "bad", "terrible", "awful", "angry", "sad", "disappointed", "worst", "broken", "annoyed", "poor", "fail", "failed"}

	// Order is the output order of emotions.
	emotionCues = []cueSet{
		{name: "Joy", words: []string{"love", "happy", "great", "wonderful", "exceeded", "glad", "awesome", "enjoy", "delighted"}},
		{name: "Anger", words: []string{"angry", "hate", "furious", "annoyed", "outraged", "worst"}},
		{name: "Sadness", words: []string{"sad", "disappointed", "unhappy", "lonely", "miss", "sorry"}},
		{name: "Fear", words: []string{"afraid", "scared", "worried", "anxious", "nervous"}},
		{name: "Surprise", words: []string{"surprised", "unexpected", "wow", "shocked", "expectations"}},
	}
)

// LexiconModel is an offline keyword-cue model. It is deterministic and
// never calls the network, which makes it suitable for local runs and as a
// stand-in provider in tests.
type LexiconModel struct {
	maxPhrases int
}

func NewLexiconModel(maxPhrases int) *LexiconModel {
	if maxPhrases <= 0 {
		maxPhrases = 5
	}
	return &LexiconModel{maxPhrases: maxPhrases}
}

func (m *LexiconModel) Name() string {
	return "offline/lexicon"
}

func (m *LexiconModel) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := promptText(prompt)
	words := tokenize(text)

	pos := countCues(words, positiveCues)
	neg := countCues(words, negativeCues)

	payload := analysis.Payload{
		Sentiment:  lexiconSentiment(pos, neg),
		Emotions:   []analysis.Emotion{},
		KeyPhrases: m.keyPhrases(text, words),
	}

	emotionHits := 0
	for _, set := range emotionCues {
		hits := countCues(words, set.words)
		if hits == 0 {
			continue
		}
		emotionHits += hits
		payload.Emotions = append(payload.Emotions, analysis.Emotion{
			Emotion: set.name,
			Score:   math.Min(1, 0.4*float64(hits)),
		})
	}

	if len(words) > 0 {
		payload.IntensityScore = math.Min(100, math.Round(100*float64(pos+neg+emotionHits)/float64(len(words))*2))
	}
	payload.Summary = fmt.Sprintf("Lexicon estimate: %d positive and %d negative cues across %d words.", pos, neg, len(words))

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal lexicon payload: %w", err)
	}
	return string(b), nil
}

func lexiconSentiment(pos, neg int) analysis.Sentiment {
	total := pos + neg
	if total == 0 {
		return analysis.Sentiment{Label: "Neutral", Score: 0, Confidence: 0.5}
	}

	score := float64(pos-neg) / float64(total)
	label := "Neutral"
	switch {
	case score > 0.2:
		label = "Positive"
	case score < -0.2:
		label = "Negative"
	}
	return analysis.Sentiment{
		Label:      label,
		Score:      score,
		Confidence: 0.5 + 0.5*math.Abs(score),
	}
}

// Hashtags first, then matched cue words, without duplicates.
func (m *LexiconModel) keyPhrases(text string, words []string) []string {
	seen := make(map[string]struct{})
	phrases := make([]string, 0, m.maxPhrases)
	add := func(p string) {
		if p == "" || len(phrases) >= m.maxPhrases {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}

	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "#") {
			add(strings.ToLower(strings.TrimFunc(strings.TrimPrefix(field, "#"), isNotWordRune)))
		}
	}
	for _, w := range words {
		if containsWord(positiveCues, w) || containsWord(negativeCues, w) {
			add(w)
		}
	}
	return phrases
}

func promptText(prompt string) string {
	prefix, _, _ := strings.Cut(analysis.PromptTemplate, "%s")
	if !strings.HasPrefix(prompt, prefix) {
		return prompt
	}
	return strings.TrimSuffix(strings.TrimPrefix(prompt, prefix), `"`)
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), isNotWordRune)
	return fields
}

func isNotWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}

func countCues(words, cues []string) int {
	n := 0
	for _, w := range words {
		if containsWord(cues, w) {
			n++
		}
	}
	return n
}

func containsWord(list []string, w string) bool {
	for _, c := range list {
		if c == w {
			return true
		}
	}
	return false
}
