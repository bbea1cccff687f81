package domain

// DuplicateMatch is an existing destination record whose identifying
// fields overlap the effective record. At most one is retained per
// session: the first match becomes the candidate to replace.
type DuplicateMatch struct {
	RecordID  string `json:"record_id"`
	RecordURL string `json:"record_url,omitempty"`
	Title     string `json:"title,omitempty"`
}

// DuplicateDecision is the explicit user choice that moves a session out
// of the duplicate state.
type DuplicateDecision string

// Duplicate decisions.
const (
	DecisionCancel   DuplicateDecision = "cancel"
	DecisionReplace  DuplicateDecision = "replace"
	DecisionKeepBoth DuplicateDecision = "keepBoth"
)

// Valid reports whether the decision is one of the known values.
func (d DuplicateDecision) Valid() bool {
	switch d {
	case DecisionCancel, DecisionReplace, DecisionKeepBoth:
		return true
	}
	return false
}
