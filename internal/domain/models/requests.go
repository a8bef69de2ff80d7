package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type QuoteRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,min=1,max=10"`
}

type SearchRequest struct {
	Query string `param:"query" json:"query" validate:"required,min=1,max=64"`
}

type ChartRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	// Compact stays a string so an explicit "false" survives defaulting.
	Compact string `query:"compact" json:"compact" default:"true" validate:"omitempty,oneof=true false"`
}

// IsCompact reports whether the compact output size was requested.
func (r *ChartRequest) IsCompact() bool { return r.Compact != "false" }

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=120"` // username or email
	Password   string `json:"password" validate:"required,max=128"`
}

type WatchlistAddRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=10"`
}
