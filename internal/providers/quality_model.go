package providers

import (
	"fmt"
	"math"
	"math/rand"
)

// LinearQualityModel is the reference learned-quality estimator: a fixed
// linear probe over the embedding with weights drawn once from a seeded
// source. Parameters never change after construction, so concurrent reads
// during scoring are safe and predictions are reproducible.
type LinearQualityModel struct {
	weights []float64
	bias    float64
}

// NewLinearQualityModel builds a model for embeddings of the given dimension.
// The seed pins the weight vector so the model is deterministic across runs.
func NewLinearQualityModel(dim int, seed int64) (*LinearQualityModel, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("model dimension must be positive, got %d", dim)
	}

	rng := rand.New(rand.NewSource(seed))
	weights := make([]float64, dim)
	for i := range weights {
		weights[i] = rng.NormFloat64() / math.Sqrt(float64(dim))
	}

	return &LinearQualityModel{weights: weights, bias: 0.4}, nil
}

// Predict returns the raw quality estimate in [0,1] and the model's own
// confidence, which shrinks for inputs far from the training distribution
// (approximated by the embedding norm).
func (m *LinearQualityModel) Predict(embedding []float64) (float64, float64, error) {
	if len(embedding) != len(m.weights) {
		return 0, 0, fmt.Errorf("embedding dimension %d does not match model dimension %d",
			len(embedding), len(m.weights))
	}

	dot := m.bias
	norm := 0.0
	for i, v := range embedding {
		dot += v * m.weights[i]
		norm += v * v
	}
	norm = math.Sqrt(norm)

	raw := 1 / (1 + math.Exp(-dot))

	// embeddings are L2-normalized upstream; a norm far from 1 means the
	// input is unlike anything the probe was fit on
	confidence := 0.75 - 0.25*math.Min(math.Abs(norm-1), 1)

	return raw, confidence, nil
}
