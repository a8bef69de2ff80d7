package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
	"StockPulse/pkg/util"
)

// ClickHouseArchive appends every successfully fetched quote to an
// append-only history table. Archive failures never reach the request path.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// ArchiveSchema returns the idempotent DDL for the quote history table.
func ArchiveSchema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		fetched_at DateTime,
		trading_day Date,
		symbol LowCardinality(String),
		price Float64,
		change Float64,
		change_percent String,
		volume Int64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(fetched_at)
	ORDER BY (symbol, fetched_at)`, table)}
}

// NewClickHouseArchive creates ClickHouse-backed quote archival.
func NewClickHouseArchive(db *sql.DB, table string) repository.Archiver {
	return &ClickHouseArchive{db: db, table: table}
}

func (a *ClickHouseArchive) Archive(ctx context.Context, q models.Quote) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (fetched_at, trading_day, symbol, price, change, change_percent, volume) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.table)
	_, err := a.db.ExecContext(ctx, stmt,
		time.Now().UTC(),
		util.ParseTimeDefault(q.Timestamp, time.Now().UTC()),
		q.Symbol,
		q.Price,
		q.Change,
		q.ChangePercent,
		q.Volume,
	)
	return err
}

func (a *ClickHouseArchive) Close() error {
	return nil // pool owned by pkg/clickhouse
}

// KafkaArchive publishes fetched quotes to a topic instead of writing
// storage directly. A consumer drains the topic into ClickHouse.
type KafkaArchive struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaArchive creates Kafka-backed quote archival.
func NewKafkaArchive(producer *pkgkafka.Producer, topic string) repository.Archiver {
	return &KafkaArchive{producer: producer, topic: topic}
}

func (a *KafkaArchive) Archive(ctx context.Context, q models.Quote) error {
	return a.producer.Publish(ctx, a.topic, []byte(q.Symbol), q)
}

func (a *KafkaArchive) Close() error {
	if a.producer != nil {
		return a.producer.Close()
	}
	return nil
}

// NoopArchive drops quotes; used when archival is disabled.
type NoopArchive struct{}

// NewNoopArchive creates a disabled archiver.
func NewNoopArchive() repository.Archiver { return &NoopArchive{} }

func (NoopArchive) Archive(ctx context.Context, q models.Quote) error { return nil }

func (NoopArchive) Close() error { return nil }
