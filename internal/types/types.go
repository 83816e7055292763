package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// CodeUnit is a single analysis target: opaque source text plus a stable
// identifier derived from the content. Immutable once created.
type CodeUnit struct {
	ID     string `json:"id"`
	Source string `json:"-"`
}

// NewCodeUnit builds a CodeUnit whose ID is the sha256 of the source, so
// identical input always maps to the same unit.
func NewCodeUnit(source string) CodeUnit {
	sum := sha256.Sum256([]byte(source))
	return CodeUnit{
		ID:     hex.EncodeToString(sum[:]),
		Source: source,
	}
}

// AnalyzeRequest is the request body for the analyze endpoint
type AnalyzeRequest struct {
	Code string `json:"code" binding:"required"`
}

// BatchAnalyzeRequest is the request body for the batch analyze endpoint
type BatchAnalyzeRequest struct {
	Codes []string `json:"codes" binding:"required"`
}
