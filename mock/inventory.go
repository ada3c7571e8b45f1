package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.InventoryFetcher = (*InventoryFetcher)(nil)

// InventoryFetcher is a mock implementation of docdex.InventoryFetcher.
type InventoryFetcher struct {
	FetchInventoryFn func(ctx context.Context, url string) (*docdex.Inventory, error)
}

func (f *InventoryFetcher) FetchInventory(ctx context.Context, url string) (*docdex.Inventory, error) {
	return f.FetchInventoryFn(ctx, url)
}
