// Package providers defines the external collaborator contracts the
// integrator consumes, plus in-process reference implementations so the
// service runs end to end without external analyzers.
package providers

import "fmt"

// StructureProvider extracts static structural metrics from source code
type StructureProvider interface {
	// AnalyzeStructure returns metric name -> numeric value. It may return a
	// *ParseError on malformed input; the integrator treats that as a fully
	// degraded structure category rather than aborting.
	AnalyzeStructure(code string) (map[string]float64, error)
}

// SecurityScanner scans source code for security findings
type SecurityScanner interface {
	Scan(code string) ([]Finding, error)
}

// Embedder turns source code into a fixed-length numeric vector. Must be
// deterministic for identical input; score reproducibility depends on it.
type Embedder interface {
	Embed(code string) ([]float64, error)
	// Dim is the embedding vector length
	Dim() int
}

// QualityModel is a learned estimator of code quality from an embedding
type QualityModel interface {
	// Predict returns a raw quality estimate in [0,1] and the model's own
	// confidence in that estimate.
	Predict(embedding []float64) (raw float64, modelConfidence float64, err error)
}

// ParseError reports source the structure provider could not parse
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Finding severity levels
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Finding is one security rule hit
type Finding struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Location int    `json:"location"`
}

var severityWeights = map[string]float64{
	SeverityLow:      0.5,
	SeverityMedium:   1.0,
	SeverityHigh:     2.0,
	SeverityCritical: 4.0,
}

// ReduceFindings collapses a finding list into the single bounded severity
// value the signal adapter normalizes. Zero findings reduce to zero.
func ReduceFindings(findings []Finding) float64 {
	total := 0.0
	for _, f := range findings {
		if w, ok := severityWeights[f.Severity]; ok {
			total += w
		} else {
			total += severityWeights[SeverityMedium]
		}
	}
	return total
}
