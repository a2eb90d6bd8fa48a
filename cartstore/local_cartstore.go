package cartstore

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// LocalCartStore is a simple in-memory slot storage.
// It is guarded by sync.RWMutex so several sessions can share one instance.
type LocalCartStore struct {
	mu    sync.RWMutex
	store map[string][]byte

	log logrus.FieldLogger
}

// NewLocalCartStore constructor
func NewLocalCartStore(log logrus.FieldLogger) *LocalCartStore {
	return &LocalCartStore{
		store: make(map[string][]byte),
		log:   log,
	}
}

// Initialize does nothing in this implementation.
func (l *LocalCartStore) Initialize(ctx context.Context) error {
	l.log.Info("LocalCartStore initialized")
	return nil
}

// Load returns a copy of the bytes saved under key.
func (l *LocalCartStore) Load(ctx context.Context, key string) ([]byte, error) {
	l.log.WithField("key", key).Debug("LocalCartStore: Load called")
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, exists := l.store[key]
	if !exists {
		return nil, ErrSlotNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the slot contents.
func (l *LocalCartStore) Save(ctx context.Context, key string, data []byte) error {
	l.log.WithFields(logrus.Fields{"key": key, "bytes": len(data)}).Debug("LocalCartStore: Save called")
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store[key] = append([]byte(nil), data...)
	return nil
}

// Ping is a health check that always returns true.
func (l *LocalCartStore) Ping(ctx context.Context) bool {
	return true
}
