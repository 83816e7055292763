package ensemble

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Detector names, matching the configuration keys
const (
	DetectorCentroidDistance    = "centroid_distance"
	DetectorReconstructionError = "reconstruction_error"
	DetectorKNNDistance         = "knn_distance"
)

// CentroidDistanceDetector scores by Euclidean distance to the reference
// centroid: embeddings far from the dense region of known-good code are
// suspicious.
type CentroidDistanceDetector struct {
	ref *ReferenceSet
}

func NewCentroidDistanceDetector(ref *ReferenceSet) *CentroidDistanceDetector {
	return &CentroidDistanceDetector{ref: ref}
}

func (d *CentroidDistanceDetector) Name() string {
	return DetectorCentroidDistance
}

func (d *CentroidDistanceDetector) Score(ctx context.Context, embedding []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(embedding) != d.ref.Dim() {
		return 0, fmt.Errorf("embedding dimension %d, reference dimension %d", len(embedding), d.ref.Dim())
	}

	return euclidean(embedding, d.ref.Centroid), nil
}

// ReconstructionErrorDetector scores by per-dimension standardized error
// against the reference distribution: the root mean square of
// (x - mean) / std across dimensions.
type ReconstructionErrorDetector struct {
	ref *ReferenceSet
}

func NewReconstructionErrorDetector(ref *ReferenceSet) *ReconstructionErrorDetector {
	return &ReconstructionErrorDetector{ref: ref}
}

func (d *ReconstructionErrorDetector) Name() string {
	return DetectorReconstructionError
}

func (d *ReconstructionErrorDetector) Score(ctx context.Context, embedding []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(embedding) != d.ref.Dim() {
		return 0, fmt.Errorf("embedding dimension %d, reference dimension %d", len(embedding), d.ref.Dim())
	}

	sum := 0.0
	for i, x := range embedding {
		z := (x - d.ref.Centroid[i]) / d.ref.Std[i]
		sum += z * z
	}

	return math.Sqrt(sum / float64(len(embedding))), nil
}

// KNNDistanceDetector scores by the mean distance to the k nearest reference
// embeddings. Units dissimilar to every individual reference score high even
// when they sit near the overall centroid.
type KNNDistanceDetector struct {
	ref *ReferenceSet
	k   int
}

func NewKNNDistanceDetector(ref *ReferenceSet, k int) *KNNDistanceDetector {
	if k < 1 {
		k = 1
	}
	if k > len(ref.Vectors) {
		k = len(ref.Vectors)
	}
	return &KNNDistanceDetector{ref: ref, k: k}
}

func (d *KNNDistanceDetector) Name() string {
	return DetectorKNNDistance
}

func (d *KNNDistanceDetector) Score(ctx context.Context, embedding []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(embedding) != d.ref.Dim() {
		return 0, fmt.Errorf("embedding dimension %d, reference dimension %d", len(embedding), d.ref.Dim())
	}

	distances := make([]float64, len(d.ref.Vectors))
	for i, v := range d.ref.Vectors {
		distances[i] = euclidean(embedding, v)
	}
	sort.Float64s(distances)

	sum := 0.0
	for _, dist := range distances[:d.k] {
		sum += dist
	}

	return sum / float64(d.k), nil
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i, x := range a {
		d := x - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
