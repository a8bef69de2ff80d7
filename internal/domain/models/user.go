package models

import "time"

// User is an account record. PasswordHash is a bcrypt hash and never
// leaves the process.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(80);not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// WatchlistItem is one tracked symbol for a user. A user cannot track the
// same symbol twice.
type WatchlistItem struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;index:idx_user_symbol,unique" json:"-"`
	Symbol  string    `gorm:"type:varchar(10);not null;index:idx_user_symbol,unique" json:"symbol"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (WatchlistItem) TableName() string { return "watchlist_items" }

// QuoteRecord is the durable last-known-good quote for a symbol. It is
// upserted on every successful fetch; LastUpdated drives the staleness check.
type QuoteRecord struct {
	ID            uint      `gorm:"primaryKey"`
	Symbol        string    `gorm:"type:varchar(10);not null;uniqueIndex"`
	Price         float64   `gorm:"type:numeric;not null"`
	Change        float64   `gorm:"type:numeric;not null"`
	ChangePercent string    `gorm:"type:varchar(20);not null"`
	Volume        int64     `gorm:"not null"`
	TradingDay    string    `gorm:"type:varchar(10);not null"`
	LastUpdated   time.Time `gorm:"not null"`
}

func (QuoteRecord) TableName() string { return "quote_cache" }

// Quote converts the record back to the wire shape.
func (r *QuoteRecord) Quote() Quote {
	return Quote{
		Symbol:        r.Symbol,
		Price:         r.Price,
		Change:        r.Change,
		ChangePercent: r.ChangePercent,
		Volume:        r.Volume,
		Timestamp:     r.TradingDay,
	}
}

// NewQuoteRecord builds a record from a quote, stamping LastUpdated now.
func NewQuoteRecord(q Quote) *QuoteRecord {
	return &QuoteRecord{
		Symbol:        q.Symbol,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		TradingDay:    q.Timestamp,
		LastUpdated:   time.Now().UTC(),
	}
}
