package enums

import "fmt"

// QuoteStatus tracks a quote through its review lifecycle.
type QuoteStatus string

const (
	QuoteStatusSubmitted   QuoteStatus = "submitted"
	QuoteStatusUnderReview QuoteStatus = "under_review"
	QuoteStatusQuoted      QuoteStatus = "quoted"
	QuoteStatusAccepted    QuoteStatus = "accepted"
	QuoteStatusDeclined    QuoteStatus = "declined"
	QuoteStatusExpired     QuoteStatus = "expired"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusSubmitted,
	QuoteStatusUnderReview,
	QuoteStatusQuoted,
	QuoteStatusAccepted,
	QuoteStatusDeclined,
	QuoteStatusExpired,
}

// quoteTransitions holds the allowed forward moves. Terminal statuses have no
// outgoing edges.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusSubmitted:   {QuoteStatusUnderReview},
	QuoteStatusUnderReview: {QuoteStatusQuoted},
	QuoteStatusQuoted:      {QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired},
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteStatus.
func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (q QuoteStatus) IsTerminal() bool {
	return q.IsValid() && len(quoteTransitions[q]) == 0
}

// CanTransitionTo reports whether the move from q to next is allowed.
func (q QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, candidate := range quoteTransitions[q] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
