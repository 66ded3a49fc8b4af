package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// LinearModel is a logistic-regression scorer trained offline and
// shipped as a JSON weights file. It satisfies the Model capability:
// Score applies the logistic function to the weighted feature sum, and
// Attribute reports each feature's signed contribution relative to the
// training mean.
type LinearModel struct {
	Weights [NumFeatures]float64
	Means   [NumFeatures]float64
	Bias    float64
	Version string
}

// modelFile is the on-disk weights format.
type modelFile struct {
	Features []string  `json:"features"`
	Weights  []float64 `json:"weights"`
	Means    []float64 `json:"means"`
	Bias     float64   `json:"bias"`
	Version  string    `json:"version"`
}

// LoadModelFile reads a LinearModel from a JSON weights file. The file
// must list feature names in the exact contract order; a mismatch
// means the weights were derived against a different feature layout
// and must not be used.
func LoadModelFile(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}

	if len(mf.Features) != NumFeatures || len(mf.Weights) != NumFeatures {
		return nil, fmt.Errorf("model file has %d features and %d weights, want %d",
			len(mf.Features), len(mf.Weights), NumFeatures)
	}
	for i, name := range mf.Features {
		if name != FeatureNames[i] {
			return nil, fmt.Errorf("model feature %d is %q, want %q: feature order mismatch",
				i, name, FeatureNames[i])
		}
	}

	m := &LinearModel{Bias: mf.Bias, Version: mf.Version}
	copy(m.Weights[:], mf.Weights)
	if len(mf.Means) == NumFeatures {
		copy(m.Means[:], mf.Means)
	}
	return m, nil
}

// Score returns the logistic probability for the feature vector.
func (m *LinearModel) Score(fv FeatureVector) (float64, error) {
	vals := fv.Values()
	z := m.Bias
	for i, v := range vals {
		z += m.Weights[i] * v
	}
	return 1.0 / (1.0 + math.Exp(-z)), nil
}

// Attribute returns per-feature contributions in feature order: the
// weight times the feature's deviation from its training mean.
func (m *LinearModel) Attribute(fv FeatureVector) ([NumFeatures]float64, error) {
	vals := fv.Values()
	var out [NumFeatures]float64
	for i, v := range vals {
		out[i] = m.Weights[i] * (v - m.Means[i])
	}
	return out, nil
}
