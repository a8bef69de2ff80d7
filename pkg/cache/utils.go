package cache

import (
	"fmt"
	"strings"
)

// Key builds a cache key from a kind and an identifier, e.g. "quote_AAPL".
func Key(kind, id string) string {
	return fmt.Sprintf("%s_%s", kind, id)
}

// KeyWithParams builds a cache key from a kind and multiple parameters,
// e.g. "chart_AAPL_compact".
func KeyWithParams(kind string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, kind)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%v", p))
	}
	return strings.Join(parts, "_")
}
