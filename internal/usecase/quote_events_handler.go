package usecase

import (
	"context"
	"encoding/json"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// QuoteEventsHandler drains the quote archive topic into durable history
// storage. It is only wired when the archive backend is kafka.
type QuoteEventsHandler struct {
	topic   string
	sink    drepo.Archiver
	metrics drepo.Metrics
}

func NewQuoteEventsHandler(topic string, sink drepo.Archiver, metrics drepo.Metrics) *QuoteEventsHandler {
	return &QuoteEventsHandler{topic: topic, sink: sink, metrics: metrics}
}

func (h *QuoteEventsHandler) Topic() string { return h.topic }

func (h *QuoteEventsHandler) Handle(ctx context.Context, _ []byte, value []byte) error {
	var q models.Quote
	if err := json.Unmarshal(value, &q); err != nil {
		h.metrics.RecordUpstreamCall("archive_consume", "unmarshal_error")
		return err
	}

	start := time.Now()
	err := h.sink.Archive(ctx, q)
	h.metrics.RecordLatency("archive_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordUpstreamCall("archive_consume", "store_error")
		return err
	}
	h.metrics.RecordUpstreamCall("archive_consume", "success")
	return nil
}

var _ pkgkafka.MessageHandler = (*QuoteEventsHandler)(nil)
