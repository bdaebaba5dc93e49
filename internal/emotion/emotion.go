// Package emotion holds the emotion scores returned by the classification
// service and the rules for picking and describing the dominant emotion.
package emotion

import (
	"encoding/json"
	"fmt"
)

// Emotion is one of the five labels scored by the classifier
type Emotion string

const (
	Anger   Emotion = "anger"
	Disgust Emotion = "disgust"
	Fear    Emotion = "fear"
	Joy     Emotion = "joy"
	Sadness Emotion = "sadness"
)

// Order is the declaration order used to break ties between equal scores.
var Order = [...]Emotion{Anger, Disgust, Fear, Joy, Sadness}

// Scores holds one confidence value in [0, 1] per emotion
type Scores struct {
	Anger   float64 `json:"anger"`
	Disgust float64 `json:"disgust"`
	Fear    float64 `json:"fear"`
	Joy     float64 `json:"joy"`
	Sadness float64 `json:"sadness"`
}

// Get returns the score for a label
func (s Scores) Get(e Emotion) float64 {
	switch e {
	case Anger:
		return s.Anger
	case Disgust:
		return s.Disgust
	case Fear:
		return s.Fear
	case Joy:
		return s.Joy
	case Sadness:
		return s.Sadness
	default:
		return 0
	}
}

// Dominant returns the label with the highest score. The first label in
// Order that reaches the maximum wins a tie.
func (s Scores) Dominant() Emotion {
	dominant, best := Anger, s.Anger
	if s.Disgust > best {
		dominant, best = Disgust, s.Disgust
	}
	if s.Fear > best {
		dominant, best = Fear, s.Fear
	}
	if s.Joy > best {
		dominant, best = Joy, s.Joy
	}
	if s.Sadness > best {
		dominant = Sadness
	}
	return dominant
}

// Validate checks every score lies in [0, 1]
func (s Scores) Validate() error {
	for _, e := range Order {
		v := s.Get(e)
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("score %s=%v outside [0, 1]", e, v)
		}
	}
	return nil
}

// Analysis is the classification of one text. The zero value is the absent
// analysis returned when the service rejects the input; it is distinct from a
// populated analysis with all-zero scores, whose dominant emotion is anger.
type Analysis struct {
	Scores          Scores
	DominantEmotion Emotion
}

// NewAnalysis builds a populated analysis from scores
func NewAnalysis(s Scores) Analysis {
	return Analysis{Scores: s, DominantEmotion: s.Dominant()}
}

// Absent returns the analysis for rejected input
func Absent() Analysis {
	return Analysis{}
}

// IsAbsent reports whether the service could not classify the text
func (a Analysis) IsAbsent() bool {
	return a.DominantEmotion == ""
}

type analysisJSON struct {
	Anger           *float64 `json:"anger"`
	Disgust         *float64 `json:"disgust"`
	Fear            *float64 `json:"fear"`
	Joy             *float64 `json:"joy"`
	Sadness         *float64 `json:"sadness"`
	DominantEmotion *Emotion `json:"dominant_emotion"`
}

// MarshalJSON writes the five scores and the dominant emotion, or nulls for the absent analysis
func (a Analysis) MarshalJSON() ([]byte, error) {
	if a.IsAbsent() {
		return json.Marshal(analysisJSON{})
	}
	s, d := a.Scores, a.DominantEmotion
	return json.Marshal(analysisJSON{
		Anger:           &s.Anger,
		Disgust:         &s.Disgust,
		Fear:            &s.Fear,
		Joy:             &s.Joy,
		Sadness:         &s.Sadness,
		DominantEmotion: &d,
	})
}

// UnmarshalJSON accepts the MarshalJSON shape; all-null input yields the absent analysis
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var raw analysisJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.DominantEmotion == nil {
		*a = Absent()
		return nil
	}

	fields := []*float64{raw.Anger, raw.Disgust, raw.Fear, raw.Joy, raw.Sadness}
	for i, f := range fields {
		if f == nil {
			return fmt.Errorf("missing score %s", Order[i])
		}
	}

	*a = Analysis{
		Scores: Scores{
			Anger:   *raw.Anger,
			Disgust: *raw.Disgust,
			Fear:    *raw.Fear,
			Joy:     *raw.Joy,
			Sadness: *raw.Sadness,
		},
		DominantEmotion: *raw.DominantEmotion,
	}
	return nil
}
