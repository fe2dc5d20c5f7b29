package contact

type MatchType string

const (
	MatchEmail MatchType = "email"
	MatchPhone MatchType = "phone"
	MatchNone  MatchType = "none"
)

// MatchResult classifies one incoming row against the contact store.
// Email matches take precedence over phone matches.
type MatchResult struct {
	Row              NormalizedRow
	IsDuplicate      bool
	MatchType        MatchType
	MatchedContactID string
}
