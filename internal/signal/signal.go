package signal

// SourceKind identifies the family of a signal's producer
type SourceKind string

const (
	KindStatic    SourceKind = "static"
	KindMLAnomaly SourceKind = "ml-anomaly"
	KindMLQuality SourceKind = "ml-quality"
)

// Category names for signal grouping. Complexity metrics enter the structure
// category so the four-way category weight split holds.
const (
	CategoryStructure        = "structure"
	CategorySecurity         = "security"
	CategoryAnomaly          = "anomaly"
	CategoryPredictedQuality = "predicted_quality"
)

// Degraded reason codes
const (
	ReasonMissing     = "missing"
	ReasonOutOfDomain = "out_of_domain"
	ReasonParseError  = "parse_error"
	ReasonTimeout     = "timeout"
	ReasonError       = "error"
	ReasonQuorum      = "quorum"
)

// Scale is the declared range of a value. Unbounded producers set Bounded
// false and rely on their registered transform for squashing.
type Scale struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Bounded bool    `json:"bounded"`
}

// UnitScale is the common [0,1] scale every normalized signal lands on
var UnitScale = Scale{Min: 0, Max: 1, Bounded: true}

// Signal is one named, normalized measurement about a code unit. Values are
// quality-oriented: higher is better. Signals are immutable once produced and
// carry enough metadata for the integrator to fuse them without inspecting
// their producer.
type Signal struct {
	Name       string     `json:"name"`
	Value      float64    `json:"value"`
	Scale      Scale      `json:"scale"`
	Confidence float64    `json:"confidence"`
	Kind       SourceKind `json:"source_kind"`
	Category   string     `json:"category"`
}

// Degraded records a signal that could not be computed, with the reason it
// was excluded rather than silently defaulted.
type Degraded struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Raw is one producer output before normalization. Confidence below zero
// means the producer declared none and the registered rule's default applies.
type Raw struct {
	Value      float64
	Confidence float64
}

// RawValue wraps a producer output that carries no confidence of its own
func RawValue(v float64) Raw {
	return Raw{Value: v, Confidence: -1}
}
