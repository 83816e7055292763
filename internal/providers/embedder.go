package providers

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder is the reference embedding model: a hashing-trick vectorizer
// over token unigrams and bigrams plus derived structural feature tokens,
// L2-normalized. Pure function of the input, so identical code always embeds
// to the identical vector.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder creates an embedder producing vectors of the given length
func NewHashingEmbedder(dim int) (*HashingEmbedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	return &HashingEmbedder{dim: dim}, nil
}

// Dim returns the embedding vector length
func (e *HashingEmbedder) Dim() int {
	return e.dim
}

// Embed vectorizes source code. Returns an error only for empty input.
func (e *HashingEmbedder) Embed(code string) ([]float64, error) {
	tokens := tokenize(code)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no tokens in input")
	}

	features := make([]string, 0, 2*len(tokens)+8)
	features = append(features, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		features = append(features, tokens[i]+"_"+tokens[i+1])
	}
	features = append(features, structuralFeatures(code, tokens)...)

	vec := make([]float64, e.dim)
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dim))
		// signed hashing keeps the expected bucket value centered at zero
		if sum&(1<<63) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec, nil
}

func tokenize(code string) []string {
	tokens := []string{}
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range code {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// structuralFeatures derives coarse shape tokens: operation kinds, control
// flow pressure, and return style
func structuralFeatures(code string, tokens []string) []string {
	features := []string{}

	counts := map[string]int{}
	for _, t := range tokens {
		counts[t]++
	}

	conditionals := counts["if"] + counts["elif"] + counts["case"] + counts["switch"]
	loops := counts["for"] + counts["while"]
	returns := counts["return"]

	if conditionals > 3 {
		features = append(features, "high_conditional_complexity")
	}
	if loops > 2 {
		features = append(features, "high_loop_complexity")
	}

	switch {
	case returns == 0:
		features = append(features, "return_none")
	case returns == 1:
		features = append(features, "return_single")
	default:
		features = append(features, "return_multiple")
	}

	if strings.Contains(code, "=") {
		features = append(features, "operation_assign")
	}
	if strings.ContainsAny(code, "+-*/%") {
		features = append(features, "operation_math")
	}
	if strings.Contains(code, "(") {
		features = append(features, "operation_call")
	}
	if strings.Contains(code, "[") {
		features = append(features, "operation_subscript")
	}

	lineCount := strings.Count(code, "\n") + 1
	switch {
	case lineCount <= 10:
		features = append(features, "size_small")
	case lineCount <= 50:
		features = append(features, "size_medium")
	default:
		features = append(features, "size_large")
	}

	return features
}
