// Package slog provides logging decorators for docdex services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docdex/docdex"
)

// Ensure LoggingInventoryFetcher implements docdex.InventoryFetcher.
var _ docdex.InventoryFetcher = (*LoggingInventoryFetcher)(nil)

// LoggingInventoryFetcher wraps an InventoryFetcher with logging.
type LoggingInventoryFetcher struct {
	next   docdex.InventoryFetcher
	logger *slog.Logger
}

// NewLoggingInventoryFetcher creates a new LoggingInventoryFetcher.
func NewLoggingInventoryFetcher(next docdex.InventoryFetcher, logger *slog.Logger) *LoggingInventoryFetcher {
	return &LoggingInventoryFetcher{next: next, logger: logger}
}

// FetchInventory delegates to the wrapped fetcher and logs the operation.
func (f *LoggingInventoryFetcher) FetchInventory(ctx context.Context, url string) (inv *docdex.Inventory, err error) {
	defer func(begin time.Time) {
		entries := 0
		if inv != nil {
			entries = len(inv.Entries)
		}
		f.logger.Info("inventory fetch",
			"url", url,
			"entries", entries,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchInventory(ctx, url)
}
