package alphavantage

import "fmt"

// Kind classifies an upstream fetch failure. Every failed operation returns
// an *Error carrying exactly one Kind; handlers map kinds to HTTP statuses.
type Kind string

const (
	KindTimeout       Kind = "timeout"
	KindRequestFailed Kind = "request_failed"
	KindInvalidFormat Kind = "invalid_format"
	KindRateLimited   Kind = "rate_limited"
	KindUpstream      Kind = "upstream_error"
	KindParse         Kind = "parse_error"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation_error"
)

// Error is a classified upstream failure. Errors are never cached; the next
// identical request re-attempts the upstream call.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func wrapError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the classification from err, or empty when err is not an
// *Error from this package.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
