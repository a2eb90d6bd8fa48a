package cartstore

import (
	"context"

	"github.com/pkg/errors"
)

// ErrSlotNotFound is returned by Load when nothing has been saved under a key.
var ErrSlotNotFound = errors.New("cart slot not found")

// ICartStore is an interface for persisted cart slot operations.
// A slot holds one serialized cart and is overwritten wholesale on Save.
type ICartStore interface {
	Initialize(ctx context.Context) error

	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error

	Ping(ctx context.Context) bool
}
