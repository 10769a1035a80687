// Package scoped binds a namespaced key-value backend to one namespace, so
// that every page visit of a session sees its own "cart" key.
package scoped

import "context"

type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
}

type Storage struct {
	backend   Backend
	namespace string
}

func New(backend Backend, namespace string) *Storage {
	return &Storage{
		backend:   backend,
		namespace: namespace,
	}
}

func (s *Storage) Namespace() string {
	return s.namespace
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.namespace, key, value)
}
