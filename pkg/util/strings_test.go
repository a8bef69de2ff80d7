package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 8080); got != 8080 {
		t.Fatalf("empty input: got %d", got)
	}
	if got := ParseIntDefault("nope", 8080); got != 8080 {
		t.Fatalf("invalid input: got %d", got)
	}
	if got := ParseIntDefault("9090", 8080); got != 9090 {
		t.Fatalf("valid input: got %d", got)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{
		"  aapl ": "AAPL",
		"MSFT":    "MSFT",
		"brk.b":   "BRK.B",
		"   ":     "",
	}
	for in, want := range cases {
		if got := NormalizeSymbol(in); got != want {
			t.Fatalf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
