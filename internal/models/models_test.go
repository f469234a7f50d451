package models

import "testing"

func TestAnalysisResult_Clone(t *testing.T) {
	t.Parallel()

	orig := AnalysisResult{
		ID:         "r1",
		Emotions:   []EmotionScore{{Emotion: "Joy", Score: 0.8}},
		KeyPhrases: []string{"launch"},
	}
	c := orig.Clone()
	c.Emotions[0].Score = 0.1
	c.KeyPhrases[0] = "changed"

	if orig.Emotions[0].Score != 0.8 || orig.KeyPhrases[0] != "launch" {
		t.Fatalf("clone shares slices with original: %+v", orig)
	}

	empty := AnalysisResult{Emotions: []EmotionScore{}, KeyPhrases: []string{}}.Clone()
	if empty.Emotions == nil || empty.KeyPhrases == nil {
		t.Fatalf("empty slices became nil: %+v", empty)
	}
	if (AnalysisResult{}).Clone().KeyPhrases != nil {
		t.Fatalf("nil slice became non-nil")
	}
}
