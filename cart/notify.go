package cart

import (
	"sync"
	"time"
)

// Messages shown on the notification surface.
const (
	MsgItemAdded   = "Item added to cart!"
	MsgItemRemoved = "Item removed from cart!"
	MsgCartEmpty   = "Your cart is empty!"
	MsgOrderPlaced = "Order placed successfully!"
	MsgWelcome     = "Welcome to our store!"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 3 * time.Second

// Notifier shows transient user-visible messages.
type Notifier interface {
	Notify(msg string)
}

// Display is the element a Toast writes to.
type Display interface {
	ShowNotification(msg string)
	HideNotification()
}

// Toast shows one message at a time on a Display and hides it after TTL.
// A new message replaces the current one and restarts the hide timer.
type Toast struct {
	display Display
	ttl     time.Duration

	// afterFunc schedules f and returns its cancel function.
	afterFunc func(d time.Duration, f func()) (stop func() bool)

	mu      sync.Mutex
	stop    func() bool
	pending uint64
}

// NewToast returns a Toast writing to display. A non-positive ttl uses
// DefaultNotificationTTL.
func NewToast(display Display, ttl time.Duration) *Toast {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Toast{
		display: display,
		ttl:     ttl,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

// Notify shows msg now and schedules it to hide.
func (t *Toast) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		t.stop()
	}
	t.pending++
	seq := t.pending
	t.display.ShowNotification(msg)
	t.stop = t.afterFunc(t.ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// A newer message owns the display.
		if seq != t.pending {
			return
		}
		t.stop = nil
		t.display.HideNotification()
	})
}

// Stop cancels the pending hide. The current message stays visible.
func (t *Toast) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
	t.pending++
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(msg string)

// Notify calls f.
func (f NotifyFunc) Notify(msg string) { f(msg) }
