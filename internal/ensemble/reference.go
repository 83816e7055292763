package ensemble

import (
	"fmt"
	"math"
)

// ReferenceSet is the read-only baseline the detectors score against:
// embeddings of known-good code plus their per-dimension statistics.
// Initialized once at startup and never mutated during scoring.
type ReferenceSet struct {
	Vectors  [][]float64
	Centroid []float64
	Std      []float64
}

// NewReferenceSet computes the baseline statistics from reference embeddings
func NewReferenceSet(vectors [][]float64) (*ReferenceSet, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("reference set requires at least one vector")
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("reference vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	centroid := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			centroid[i] += x
		}
	}
	for i := range centroid {
		centroid[i] /= float64(len(vectors))
	}

	std := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			d := x - centroid[i]
			std[i] += d * d
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / float64(len(vectors)))
		if std[i] < 1e-6 {
			std[i] = 1e-6
		}
	}

	return &ReferenceSet{Vectors: vectors, Centroid: centroid, Std: std}, nil
}

// Dim returns the reference embedding dimension
func (r *ReferenceSet) Dim() int {
	return len(r.Centroid)
}

// BuildReference embeds a corpus of known-good snippets into a ReferenceSet
func BuildReference(embed func(string) ([]float64, error), corpus []string) (*ReferenceSet, error) {
	vectors := make([][]float64, 0, len(corpus))
	for i, code := range corpus {
		v, err := embed(code)
		if err != nil {
			return nil, fmt.Errorf("embedding reference snippet %d: %w", i, err)
		}
		vectors = append(vectors, v)
	}
	return NewReferenceSet(vectors)
}

// DefaultCorpus is a small set of clean, conventional functions used to seed
// the reference baseline when no external corpus is supplied.
func DefaultCorpus() []string {
	return []string{
		`def calculate_total(items):
    total = 0
    for item in items:
        total += item.price * item.quantity
    return total`,
		`def process_user_data(users):
    result = []
    for user in users:
        if user.active:
            result.append({"name": user.name, "score": user.calculate_score()})
    return result`,
		`def validate_input(data, rules):
    errors = []
    for field, value in data.items():
        if field in rules and not rules[field](value):
            errors.append(field)
    return len(errors) == 0, errors`,
		`def find_maximum(values):
    if not values:
        return None
    best = values[0]
    for v in values[1:]:
        if v > best:
            best = v
    return best`,
		`def merge_settings(defaults, overrides):
    merged = dict(defaults)
    for key, value in overrides.items():
        merged[key] = value
    return merged`,
		`def count_words(text):
    counts = {}
    for word in text.split():
        counts[word] = counts.get(word, 0) + 1
    return counts`,
		`def filter_active(records):
    return [r for r in records if r.active]`,
		`def compute_average(numbers):
    if not numbers:
        return 0.0
    return sum(numbers) / len(numbers)`,
	}
}
