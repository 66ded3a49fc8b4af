package risk

import (
	"log"
	"math"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
)

// Model is the learned scoring capability. Score returns the
// probability of an unsafe outcome; Attribute returns per-feature
// contributions aligned to FeatureNames order. Absence of a Model is a
// valid runtime state, not an error.
type Model interface {
	Score(fv FeatureVector) (float64, error)
	Attribute(fv FeatureVector) ([NumFeatures]float64, error)
}

// Scorer evaluates mission risk against a configured airspace. Safe
// for concurrent use: it holds only read-only configuration and an
// optional read-only model.
type Scorer struct {
	space airspace.Config
	model Model
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithModel attaches a learned model. Without it every call takes the
// deterministic rule-based path.
func WithModel(m Model) Option {
	return func(s *Scorer) { s.model = m }
}

// NewScorer creates a scorer for the given airspace.
func NewScorer(space airspace.Config, opts ...Option) *Scorer {
	s := &Scorer{space: space}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasModel reports whether a learned model is attached.
func (s *Scorer) HasModel() bool {
	return s.model != nil
}

// Features extracts the feature vector for a mission.
func (s *Scorer) Features(m mission.Mission) FeatureVector {
	return ExtractFeatures(m, s.space)
}

// Score returns the risk probability in [0,1] for a mission. Model
// failures fall back to the rule-based score and are never surfaced.
func (s *Scorer) Score(m mission.Mission) float64 {
	fv := s.Features(m)
	return s.ScoreFeatures(fv)
}

// ScoreFeatures scores an already-extracted feature vector.
func (s *Scorer) ScoreFeatures(fv FeatureVector) float64 {
	if s.model != nil {
		p, err := s.model.Score(fv)
		if err == nil && !math.IsNaN(p) {
			return clamp01(p)
		}
		if err != nil {
			log.Printf("Risk model scoring failed, using rule-based fallback: %v", err)
		}
	}
	return RuleScore(fv)
}

// RuleScore is the deterministic rule-based fallback score. It is a
// pure function of the feature vector.
func RuleScore(fv FeatureVector) float64 {
	score := 0.0

	switch {
	case fv.RouteLengthKm > 10:
		score += 0.3
	case fv.RouteLengthKm > 5:
		score += 0.1
	}

	switch {
	case fv.BatteryMargin < 10:
		score += 0.4
	case fv.BatteryMargin < 20:
		score += 0.2
	}

	switch {
	case fv.WindSpeedAvg > 15:
		score += 0.3
	case fv.WindSpeedAvg > 10:
		score += 0.1
	}

	switch {
	case fv.MinDistanceToNoFly < 500:
		score += 0.4
	case fv.MinDistanceToNoFly < 1000:
		score += 0.2
	}

	return math.Min(1.0, score)
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
