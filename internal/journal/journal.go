// Package journal appends every committed trade to a CSV file.
package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/events"
)

var header = []string{
	"trade_id", "time", "height", "pair_id", "source", "side",
	"price", "amount", "quote_amount", "buyer", "seller", "order_id", "maker_order_id",
}

// Journal is a buffered CSV trade log, flushed on a ticker and on Close.
// It handles events.TradeExecuted and ignores every other event.
type Journal struct {
	mu     sync.Mutex
	writer *csv.Writer
	file   *os.File
	ticker *time.Ticker
	done   chan struct{}
	logger *zap.Logger
	path   string

	written uint64
	flushes uint64
}

// Open appends to path, writing the header when the file is new.
func Open(path string, flushInterval time.Duration, logger *zap.Logger) (*Journal, error) {
	if flushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be positive, got %s", flushInterval)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}

	j := &Journal{
		writer: csv.NewWriter(file),
		file:   file,
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
		logger: logger.Named("journal"),
		path:   path,
	}
	if stat.Size() == 0 {
		if err := j.writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		j.writer.Flush()
	}

	go j.periodicFlush()
	return j, nil
}

// Handle records a trade event.
func (j *Journal) Handle(_ context.Context, ev events.Event) error {
	var tr events.TradeExecutedEvent
	switch e := ev.(type) {
	case events.TradeExecutedEvent:
		tr = e
	case *events.TradeExecutedEvent:
		tr = *e
	default:
		return nil
	}
	return j.write(record(tr))
}

func record(tr events.TradeExecutedEvent) []string {
	maker := ""
	if tr.MakerOrderID != 0 {
		maker = strconv.FormatUint(tr.MakerOrderID, 10)
	}
	return []string{
		strconv.FormatUint(tr.TradeID, 10),
		tr.EventTime.UTC().Format(time.RFC3339),
		strconv.FormatUint(tr.Height, 10),
		tr.PairID,
		tr.Source,
		tr.Side,
		tr.Price,
		tr.Amount,
		tr.QuoteAmount,
		tr.Buyer,
		tr.Seller,
		strconv.FormatUint(tr.OrderID, 10),
		maker,
	}
}

func (j *Journal) write(rec []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Write(rec); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	j.written++
	return nil
}

// Flush writes buffered records through to disk.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("csv writer: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	j.flushes++
	return nil
}

func (j *Journal) periodicFlush() {
	for {
		select {
		case <-j.ticker.C:
			if err := j.Flush(); err != nil {
				j.logger.Error("Periodic flush failed", zap.String("file", j.path), zap.Error(err))
			}
		case <-j.done:
			return
		}
	}
}

// Close flushes and closes the file. It matches the shutdown closer signature.
func (j *Journal) Close(context.Context) error {
	close(j.done)
	j.ticker.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.flushLocked(); err != nil {
		j.file.Close()
		return err
	}
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	j.logger.Info("Trade journal closed",
		zap.String("file", j.path),
		zap.Uint64("records", j.written),
		zap.Uint64("flushes", j.flushes))
	return nil
}

// Stats returns the records written and flushes done so far.
func (j *Journal) Stats() (records, flushes uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.written, j.flushes
}
