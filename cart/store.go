package cart

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/devkhadem/samsungonlineshop/cartstore"
)

// DefaultSlotKey is the name of the persisted cart slot.
const DefaultSlotKey = "cartItems"

// Confirmer asks the user to approve a checkout.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// CheckoutResult is the outcome of Store.Checkout.
type CheckoutResult int

const (
	// CheckoutInactive means the store was not initialized.
	CheckoutInactive CheckoutResult = iota
	// CheckoutEmpty means there was nothing to check out.
	CheckoutEmpty
	// CheckoutCancelled means the user declined the confirmation.
	CheckoutCancelled
	// CheckoutPlaced means the order was confirmed and the cart cleared.
	CheckoutPlaced
)

func (r CheckoutResult) String() string {
	switch r {
	case CheckoutEmpty:
		return "empty"
	case CheckoutCancelled:
		return "cancelled"
	case CheckoutPlaced:
		return "placed"
	default:
		return "inactive"
	}
}

// Store owns the cart state. Every mutation writes the state through to
// the slot, updates the count badge and re-renders the surface before it
// returns. All operations, including those reached through Row handlers,
// are serialized.
type Store struct {
	key      string
	slot     cartstore.ICartStore
	surface  Surface
	notifier Notifier
	log      logrus.FieldLogger
	tracer   trace.Tracer
	metrics  *storeMetrics

	mu          sync.Mutex
	items       []LineItem
	rows        []*Row
	gen         uint64
	initialized bool
}

// NewStore creates a store persisting under key. Call Initialize before use.
func NewStore(key string, slot cartstore.ICartStore, surface Surface, notifier Notifier, log logrus.FieldLogger) *Store {
	if key == "" {
		key = DefaultSlotKey
	}
	if notifier == nil {
		notifier = NotifyFunc(func(string) {})
	}
	log = log.WithField("slot", key)
	return &Store{
		key:      key,
		slot:     slot,
		surface:  surface,
		notifier: notifier,
		log:      log,
		tracer:   otel.Tracer("cart"),
		metrics:  newStoreMetrics(log),
		items:    []LineItem{},
	}
}

// Initialize loads the persisted cart. A missing, unreadable or malformed
// slot yields an empty cart. Only a malformed slot is rewritten; the slot
// is left alone when it is absent or when the backend could not be read.
func (s *Store) Initialize(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "Initialize")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	items, rewrite := s.loadLocked(ctx)
	s.items = items
	s.initialized = true
	span.SetAttributes(
		attribute.Int("app.cart.items", len(s.items)),
		attribute.Bool("app.cart.rewrite", rewrite),
	)
	s.log.WithField("items", len(s.items)).Info("cart initialized")

	if rewrite {
		s.persistLocked(ctx)
	}
	s.surface.SetCount(len(s.items))
	s.renderLocked()
}

// loadLocked reads the slot. rewrite is true when the slot held data that
// could not be decoded and should be replaced by the empty cart.
func (s *Store) loadLocked(ctx context.Context) (items []LineItem, rewrite bool) {
	data, err := s.slot.Load(ctx, s.key)
	if errors.Is(err, cartstore.ErrSlotNotFound) {
		return []LineItem{}, false
	}
	if err != nil {
		s.log.WithError(err).Warn("cart slot unreadable, starting empty")
		return []LineItem{}, false
	}
	items, err = decodeItems(data)
	if err != nil {
		s.log.WithError(err).Warn("cart slot malformed, starting empty")
		return []LineItem{}, true
	}
	return items, false
}

// Teardown detaches the rendered rows. Later mutations are ignored until
// Initialize is called again.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.rows = nil
	s.gen++
}

// AddItem appends an item. It reports false only when the store is not
// initialized or the name is blank.
func (s *Store) AddItem(ctx context.Context, name, price string) bool {
	ctx, span := s.tracer.Start(ctx, "AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.String("app.item.name", name),
		attribute.String("app.item.price", price),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		s.log.Warn("AddItem on inactive cart ignored")
		return false
	}
	if strings.TrimSpace(name) == "" {
		s.log.WithField("price", price).Warn("AddItem without a name ignored")
		return false
	}

	s.items = append(s.items, LineItem{Name: name, Price: price})
	s.syncLocked(ctx)
	s.notifier.Notify(MsgItemAdded)
	s.metrics.added.Add(ctx, 1)
	return true
}

// RemoveItem removes the item at index. An index outside the cart is
// ignored and reported as false.
func (s *Store) RemoveItem(ctx context.Context, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return false
	}
	return s.removeLocked(ctx, index)
}

func (s *Store) removeLocked(ctx context.Context, index int) bool {
	ctx, span := s.tracer.Start(ctx, "RemoveItem")
	defer span.End()
	span.SetAttributes(attribute.Int("app.item.index", index))

	if index < 0 || index >= len(s.items) {
		s.log.WithFields(logrus.Fields{
			"index": index,
			"items": len(s.items),
		}).Debug("stale remove ignored")
		return false
	}

	s.items = slices.Delete(s.items, index, index+1)
	s.syncLocked(ctx)
	s.notifier.Notify(MsgItemRemoved)
	s.metrics.removed.Add(ctx, 1)
	return true
}

// Checkout asks confirm to approve the total and clears the cart when it
// does. A nil confirm declines.
func (s *Store) Checkout(ctx context.Context, confirm Confirmer) CheckoutResult {
	ctx, span := s.tracer.Start(ctx, "Checkout")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.checkoutLocked(ctx, confirm)
	span.SetAttributes(attribute.String("app.checkout.result", result.String()))
	return result
}

func (s *Store) checkoutLocked(ctx context.Context, confirm Confirmer) CheckoutResult {
	if !s.initialized {
		return CheckoutInactive
	}
	if len(s.items) == 0 {
		s.notifier.Notify(MsgCartEmpty)
		return CheckoutEmpty
	}

	total := FormatPrice(totalCents(s.items, s.log))
	if confirm == nil || !confirm.Confirm(CheckoutPrompt(total)) {
		return CheckoutCancelled
	}

	count := len(s.items)
	s.items = []LineItem{}
	s.syncLocked(ctx)
	s.notifier.Notify(MsgOrderPlaced)
	s.surface.SetPanelOpen(false)
	s.metrics.orders.Add(ctx, 1)
	s.log.WithFields(logrus.Fields{"items": count, "total": total}).Info("order placed")
	return CheckoutPlaced
}

// CheckoutPrompt is the confirmation text for a formatted total.
func CheckoutPrompt(total string) string {
	return fmt.Sprintf("Total: %s\n\nProceed to checkout?", total)
}

// Total returns the sum of the item prices.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(totalCents(s.items, s.log)) / 100
}

// Items returns a copy of the cart contents in display order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Count is the number of items in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Row returns the live handler set for the row at index.
func (s *Store) Row(index int) (*Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || index < 0 || index >= len(s.rows) {
		return nil, false
	}
	return s.rows[index], true
}

// OpenPanel shows the cart panel.
func (s *Store) OpenPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.SetPanelOpen(true)
}

// ClosePanel hides the cart panel.
func (s *Store) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.SetPanelOpen(false)
}

// syncLocked persists the state, refreshes the badge and re-renders.
func (s *Store) syncLocked(ctx context.Context) {
	s.persistLocked(ctx)
	// The badge is shown even for an empty cart.
	s.surface.SetCount(len(s.items))
	s.renderLocked()
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := encodeItems(s.items)
	if err != nil {
		s.log.WithError(err).Warn("cart encode failed")
		return
	}
	if err := s.slot.Save(ctx, s.key, data); err != nil {
		s.log.WithError(err).Warn("cart persist failed")
	}
}

// renderLocked replaces the whole interactive surface. Rows from the
// previous generation stop responding.
func (s *Store) renderLocked() {
	s.gen++
	rows := make([]*Row, len(s.items))
	for i := range s.items {
		rows[i] = &Row{store: s, gen: s.gen, index: i}
	}
	s.rows = rows
	s.surface.Render(Project(s.items))
}

func totalCents(items []LineItem, log logrus.FieldLogger) int64 {
	var sum int64
	for _, item := range items {
		cents, err := ParsePrice(item.Price)
		if err != nil {
			if log != nil {
				log.WithError(err).WithField("item", item.Name).Warn("unpriced item left out of total")
			}
			continue
		}
		sum = addCents(sum, cents)
	}
	return sum
}

// addCents adds two non-negative amounts, saturating at math.MaxInt64.
func addCents(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
