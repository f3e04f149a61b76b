package types

import "testing"

func TestAddressValidate(t *testing.T) {
	t.Parallel()

	addr := Address{Line1: "500 Mercer St", City: "Seattle", State: "wa", PostalCode: "98109"}
	if missing := addr.Validate(); missing != "" {
		t.Fatalf("expected valid address, missing %q", missing)
	}

	addr.City = " "
	if missing := addr.Validate(); missing != "city" {
		t.Fatalf("expected city to be reported, got %q", missing)
	}
}

func TestAddressNormalized(t *testing.T) {
	t.Parallel()

	addr := Address{Line1: " 500 Mercer St ", City: "Seattle", State: " wa ", PostalCode: "98109"}
	norm := addr.Normalized()
	if norm.State != "WA" {
		t.Fatalf("expected upper-cased state, got %q", norm.State)
	}
	if norm.Country != "US" {
		t.Fatalf("expected defaulted country, got %q", norm.Country)
	}
	if norm.Line1 != "500 Mercer St" {
		t.Fatalf("expected trimmed line1, got %q", norm.Line1)
	}
}
