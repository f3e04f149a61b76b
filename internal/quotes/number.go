package quotes

import (
	"fmt"
	"regexp"
	"time"
)

var quoteNumberRe = regexp.MustCompile(`^Q-(\d{8})-(\d{5})$`)

// FormatQuoteNumber renders the day-scoped quote number, e.g. Q-20250615-00042.
func FormatQuoteNumber(day time.Time, sequence int64) string {
	return fmt.Sprintf("Q-%s-%05d", day.UTC().Format("20060102"), sequence)
}

// ParseQuoteNumber extracts the day and sequence from a quote number.
func ParseQuoteNumber(value string) (time.Time, int64, error) {
	m := quoteNumberRe.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("invalid quote number %q", value)
	}
	day, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid quote number date %q: %w", m[1], err)
	}
	var sequence int64
	if _, err := fmt.Sscanf(m[2], "%d", &sequence); err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid quote number sequence %q: %w", m[2], err)
	}
	return day, sequence, nil
}
