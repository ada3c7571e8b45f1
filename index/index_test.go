package index_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/mock"
)

// memStore is a thread-safe in-memory ConfigStore for engine tests.
type memStore struct {
	mu sync.Mutex
	kv map[string]string
}

func newMemStore() *memStore {
	return &memStore{kv: make(map[string]string)}
}

func (s *memStore) mock() *mock.ConfigStore {
	return &mock.ConfigStore{
		GetFn: func(ctx context.Context, key string) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			value, ok := s.kv[key]
			if !ok {
				return "", docdex.Errorf(docdex.ENOTFOUND, "config key %q not found", key)
			}
			return value, nil
		},
		PutFn: func(ctx context.Context, key, value string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.kv[key] = value
			return nil
		},
		DeleteFn: func(ctx context.Context, keys ...string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, key := range keys {
				delete(s.kv, key)
			}
			return nil
		},
		ListFn: func(ctx context.Context, prefix string) (map[string]string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			out := make(map[string]string)
			for key, value := range s.kv {
				if strings.HasPrefix(key, prefix) {
					out[key] = value
				}
			}
			return out, nil
		},
	}
}

// addSource seeds a registered source directly into the store.
func (s *memStore) addSource(pkg, inventoryURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docdex.ConfigInventories + "." + pkg
	s.kv[key] = pkg
	s.kv[key+".base_url"] = docdex.BaseURLFromInventoryURL(inventoryURL)
	s.kv[key+".inventory_url"] = inventoryURL
}

// inventoryFetcher serves fixed inventories keyed by URL and counts calls.
type inventoryFetcher struct {
	mu    sync.Mutex
	byURL map[string]*docdex.Inventory
	errs  map[string]error
	calls map[string]int
}

func newInventoryFetcher() *inventoryFetcher {
	return &inventoryFetcher{
		byURL: make(map[string]*docdex.Inventory),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *inventoryFetcher) mock() *mock.InventoryFetcher {
	return &mock.InventoryFetcher{
		FetchInventoryFn: func(ctx context.Context, url string) (*docdex.Inventory, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.calls[url]++
			if err, ok := f.errs[url]; ok {
				return nil, err
			}
			if inv, ok := f.byURL[url]; ok {
				return inv, nil
			}
			return nil, docdex.Errorf(docdex.EUNAVAILABLE, "no inventory at %q", url)
		},
	}
}

func (f *inventoryFetcher) serve(url string, inv *docdex.Inventory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byURL[url] = inv
	delete(f.errs, url)
}

func (f *inventoryFetcher) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

func (f *inventoryFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func entries(pairs ...string) []docdex.InventoryEntry {
	if len(pairs)%3 != 0 {
		panic("entries wants group, name, location triples")
	}
	out := make([]docdex.InventoryEntry, 0, len(pairs)/3)
	for i := 0; i < len(pairs); i += 3 {
		out = append(out, docdex.InventoryEntry{
			Group:    pairs[i],
			Name:     pairs[i+1],
			Location: pairs[i+2],
		})
	}
	return out
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}
