package analysis

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/xaenox/sentimentlens/internal/models"
	"google.golang.org/genai"
)

// PromptTemplate wraps the user's text for the model.
const PromptTemplate = `Analyze the emotional context and sentiment of the following text: "%s"`

// ResponseMIMEType is the payload type requested from the provider.
const ResponseMIMEType = "application/json"

// SchemaName identifies the contract in providers that require a name.
const SchemaName = "sentiment_analysis"

// BuildPrompt embeds text verbatim in the prompt template.
func BuildPrompt(text string) string {
	return fmt.Sprintf(PromptTemplate, text)
}

// Payload is the analytic part of a result, exactly what the model returns.
// Identity, time and the original text are attached by the client.
type Payload struct {
	Sentiment      Sentiment `json:"sentiment" jsonschema:"required"`
	Emotions       []Emotion `json:"emotions" jsonschema:"required"`
	KeyPhrases     []string  `json:"keyPhrases" jsonschema:"required"`
	Summary        string    `json:"summary" jsonschema:"required,description=A brief psychological summary of the emotional state"`
	IntensityScore float64   `json:"intensityScore" jsonschema:"required,minimum=0,maximum=100,description=Overall emotional intensity from 0 to 100"`
}

type Sentiment struct {
	Label      string  `json:"label" jsonschema:"required,enum=Positive,enum=Negative,enum=Neutral,description=One of: Positive or Negative or Neutral"`
	Score      float64 `json:"score" jsonschema:"required,minimum=-1,maximum=1,description=Numeric score from -1 (negative) to 1 (positive)"`
	Confidence float64 `json:"confidence" jsonschema:"required,minimum=0,maximum=1,description=Confidence score from 0 to 1"`
}

type Emotion struct {
	Emotion string  `json:"emotion" jsonschema:"required,description=Emotion name (e.g. Joy or Anger or Sadness or Surprise)"`
	Score   float64 `json:"score" jsonschema:"required,minimum=0,maximum=1,description=Intensity score from 0 to 1"`
}

// Result converts the payload into the model types. Slices are copied in
// model order and never re-sorted.
func (p Payload) Result() models.AnalysisResult {
	emotions := make([]models.EmotionScore, 0, len(p.Emotions))
	for _, e := range p.Emotions {
		emotions = append(emotions, models.EmotionScore{Emotion: e.Emotion, Score: e.Score})
	}
	phrases := make([]string, len(p.KeyPhrases))
	copy(phrases, p.KeyPhrases)

	return models.AnalysisResult{
		Sentiment: models.SentimentJudgment{
			Label:      models.SentimentLabel(p.Sentiment.Label),
			Score:      p.Sentiment.Score,
			Confidence: p.Sentiment.Confidence,
		},
		Emotions:       emotions,
		KeyPhrases:     phrases,
		Summary:        p.Summary,
		IntensityScore: p.IntensityScore,
	}
}

// GeminiSchema returns the response schema handed to Gemini.
func GeminiSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sentiment": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": {
						Type:        genai.TypeString,
						Description: "One of: Positive, Negative, Neutral",
						Enum:        []string{string(models.SentimentPositive), string(models.SentimentNegative), string(models.SentimentNeutral)},
					},
					"score":      {Type: genai.TypeNumber, Description: "Numeric score from -1 (negative) to 1 (positive)"},
					"confidence": {Type: genai.TypeNumber, Description: "Confidence score from 0 to 1"},
				},
				Required: []string{"label", "score", "confidence"},
			},
			"emotions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"emotion": {Type: genai.TypeString, Description: "Emotion name (e.g., Joy, Anger, Sadness, Surprise)"},
						"score":   {Type: genai.TypeNumber, Description: "Intensity score from 0 to 1"},
					},
					Required: []string{"emotion", "score"},
				},
			},
			"keyPhrases": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"summary":        {Type: genai.TypeString, Description: "A brief psychological summary of the emotional state"},
			"intensityScore": {Type: genai.TypeNumber, Description: "Overall emotional intensity from 0 to 100"},
		},
		Required:         RequiredFields(),
		PropertyOrdering: RequiredFields(),
	}
}

// RequiredFields lists the top-level fields every payload must carry.
func RequiredFields() []string {
	return []string{"sentiment", "emotions", "keyPhrases", "summary", "intensityScore"}
}

// JSONSchema reflects Payload into a strict JSON schema for providers that
// accept standard JSON Schema.
func JSONSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		Anonymous:                  true,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return reflector.Reflect(&Payload{})
}
