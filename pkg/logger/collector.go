package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher ships a batch of log digests to a topic. The Kafka producer
// satisfies this.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectorConfig controls digest batching.
type CollectorConfig struct {
	FlushInterval time.Duration // periodic flush cadence
	MaxEntries    int           // flush early when this many distinct digests accumulate
	Topic         string
	Publisher     Publisher
}

// LogDigest is one deduplicated log line with occurrence bookkeeping.
// Identical lines from a hot error path collapse into a single digest
// instead of flooding the topic.
type LogDigest struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Collector aggregates warn/error logs and periodically publishes them.
type Collector struct {
	cfg     *CollectorConfig
	mu      sync.Mutex
	entries map[string]*LogDigest
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCollector starts a collector flushing on cfg.FlushInterval.
func NewCollector(cfg *CollectorConfig) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Collector{
		cfg:     cfg,
		entries: make(map[string]*LogDigest),
		cancel:  cancel,
	}
	c.wg.Add(1)
	go c.run(ctx)
	return c
}

// Record folds one log line into the pending digests.
func (c *Collector) Record(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := digestKey(level, message, fields, caller)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.Count++
		entry.LastSeen = now
	} else {
		c.entries[key] = &LogDigest{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var batch []LogDigest
	if len(c.entries) >= c.cfg.MaxEntries {
		batch = c.drain()
	}
	c.mu.Unlock()

	c.publish(batch)
}

func digestKey(level, message string, fields map[string]interface{}, caller string) string {
	payload, _ := json.Marshal(struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller})
	return fmt.Sprintf("%x", sha256.Sum256(payload))
}

func (c *Collector) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-ctx.Done():
			c.flush()
			return
		}
	}
}

// drain moves pending digests out. Caller must hold the mutex.
func (c *Collector) drain() []LogDigest {
	if len(c.entries) == 0 {
		return nil
	}
	batch := make([]LogDigest, 0, len(c.entries))
	for _, entry := range c.entries {
		batch = append(batch, *entry)
	}
	c.entries = make(map[string]*LogDigest)
	return batch
}

func (c *Collector) flush() {
	c.mu.Lock()
	batch := c.drain()
	c.mu.Unlock()
	c.publish(batch)
}

func (c *Collector) publish(batch []LogDigest) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
		fmt.Printf("log digest publish failed: %v\n", err)
	}
}

// Close flushes pending digests and stops the flush loop.
func (c *Collector) Close() {
	c.cancel()
	c.wg.Wait()
}
