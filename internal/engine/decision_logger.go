package engine

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"reversalbot/internal/strategy"

	"github.com/rs/zerolog"
)

// JournalEntry is one NDJSON line: a skipped symbol or an order outcome.
type JournalEntry struct {
	RunID         string          `json:"run_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Symbol        string          `json:"symbol"`
	Intent        strategy.Action `json:"intent,omitempty"`
	Qty           string          `json:"qty,omitempty"`
	Result        string          `json:"result"`
	Reason        string          `json:"reason,omitempty"`
	OrderID       string          `json:"order_id,omitempty"`
	ClientOrderID string          `json:"client_order_id,omitempty"`
	Attempts      int             `json:"attempts,omitempty"`
}

type DecisionLogger struct {
	file   *os.File
	writer *bufio.Writer
	log    zerolog.Logger
	mu     sync.Mutex
}

func NewDecisionLogger(path string, logger zerolog.Logger) (*DecisionLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &DecisionLogger{
		file:   file,
		writer: bufio.NewWriter(file),
		log:    logger.With().Str("component", "journal").Logger(),
	}, nil
}

func (d *DecisionLogger) Append(entry JournalEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload, err := json.Marshal(entry)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to marshal decision")
		return
	}
	if _, err := d.writer.Write(append(payload, '\n')); err != nil {
		d.log.Error().Err(err).Msg("failed to write decision")
		return
	}
	if err := d.writer.Flush(); err != nil {
		d.log.Error().Err(err).Msg("failed to flush decision log")
	}
}

func (d *DecisionLogger) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writer.Flush(); err != nil {
		_ = d.file.Close()
		return err
	}
	return d.file.Close()
}
