package quotes

import (
	"testing"
	"time"
)

func TestQuoteNumberRoundTrip(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	number := FormatQuoteNumber(day, 42)
	if number != "Q-20250615-00042" {
		t.Fatalf("unexpected format %s", number)
	}

	parsedDay, sequence, err := ParseQuoteNumber(number)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsedDay.Format("20060102") != "20250615" || sequence != 42 {
		t.Fatalf("round trip mismatch: %s %d", parsedDay, sequence)
	}
}

func TestParseQuoteNumberRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "Q-2025-1", "X-20250615-00001", "Q-20250615-1"} {
		if _, _, err := ParseQuoteNumber(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
