package match

// Trace outcome reasons.
const (
	ReasonAccepted       = "accepted"
	ReasonBelowThreshold = "below_threshold"
	ReasonDuplicateTag   = "duplicate_tag"
	ReasonReplaced       = "replaced_duplicate"
)

// Trace is a diagnostic event describing one candidate evaluation.
// Traces flow to an injected observer instead of being logged inline
// with the matching algorithm.
type Trace struct {
	Phrase   string
	Variant  string
	TagID    string
	TagName  string
	Score    float64
	Accepted bool
	Reason   string
}
