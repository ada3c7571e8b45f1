package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a mock implementation of docdex.ConfigStore.
type ConfigStore struct {
	GetFn    func(ctx context.Context, key string) (string, error)
	PutFn    func(ctx context.Context, key, value string) error
	DeleteFn func(ctx context.Context, keys ...string) error
	ListFn   func(ctx context.Context, prefix string) (map[string]string, error)
}

func (s *ConfigStore) Get(ctx context.Context, key string) (string, error) {
	return s.GetFn(ctx, key)
}

func (s *ConfigStore) Put(ctx context.Context, key, value string) error {
	return s.PutFn(ctx, key, value)
}

func (s *ConfigStore) Delete(ctx context.Context, keys ...string) error {
	return s.DeleteFn(ctx, keys...)
}

func (s *ConfigStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	return s.ListFn(ctx, prefix)
}
