package models

import "time"

// Quote is a normalized point-in-time price record for a ticker symbol.
// It is immutable once constructed; history lives only in the cache tiers
// and the optional archive.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"change_percent"` // percent sign stripped
	Volume        int64   `json:"volume"`
	Timestamp     string  `json:"timestamp"` // latest trading day, YYYY-MM-DD
}

// ChartBar is one daily OHLCV bar.
type ChartBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// ChartSeries is an ascending-by-date daily series for a symbol.
type ChartSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []ChartBar `json:"data"`
}

// SymbolMatch is one fuzzy-search result from the upstream provider.
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Region   string `json:"region"`
	Currency string `json:"currency"`
}

// SymbolError records a per-symbol failure during an aggregate fetch.
// Partial results are success; failures are surfaced, not hidden.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// MarketOverview is a best-effort batched quote fetch result.
type MarketOverview struct {
	Quotes []Quote       `json:"quotes"`
	Failed []SymbolError `json:"failed,omitempty"`
}

// PriceTick is a single trade observation from the live stream.
type PriceTick struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64 // unix seconds
}

// TickTime returns the tick timestamp as time.Time.
func (t *PriceTick) TickTime() time.Time { return time.Unix(t.Timestamp, 0) }
