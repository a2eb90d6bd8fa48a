package cart

import "context"

// Swipe-to-remove tuning, in pixels.
const (
	SwipeThreshold = 100
	MaxSwipeOffset = 100
)

// Swipe tracks one horizontal drag. Leftward movement is the dismiss
// direction.
type Swipe struct {
	startX   float64
	currentX float64
	dragging bool
}

// Begin records the start position.
func (s *Swipe) Begin(x float64) {
	s.startX = x
	s.currentX = x
	s.dragging = true
}

// Dragging reports whether a drag is in progress.
func (s *Swipe) Dragging() bool {
	return s.dragging
}

// Move updates the position and returns the visual offset to apply.
// ok is false when the row should not move: no drag in progress, or
// displacement away from the dismiss direction.
func (s *Swipe) Move(x float64) (offset float64, ok bool) {
	if !s.dragging {
		return 0, false
	}
	s.currentX = x
	diff := s.startX - s.currentX
	if diff <= 0 {
		return 0, false
	}
	if diff > MaxSwipeOffset {
		diff = MaxSwipeOffset
	}
	return -diff, true
}

// End finishes the drag and reports whether it travelled past the dismiss
// threshold.
func (s *Swipe) End() (dismiss bool, ok bool) {
	if !s.dragging {
		return false, false
	}
	s.dragging = false
	return s.startX-s.currentX > SwipeThreshold, true
}

// Row is the interactive handler set for one rendered row. A Row belongs
// to the render generation that created it; once the store re-renders,
// every method on it is a no-op.
type Row struct {
	store *Store
	gen   uint64
	index int
	swipe Swipe
}

// Index is the row position this handler targets.
func (r *Row) Index() int {
	return r.index
}

// Live reports whether the row still belongs to the current render.
func (r *Row) Live() bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.liveLocked()
}

func (r *Row) liveLocked() bool {
	return r.store.initialized && r.gen == r.store.gen
}

// Dismiss is the remove control of the row.
func (r *Row) Dismiss(ctx context.Context) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.liveLocked() {
		return false
	}
	return r.store.removeLocked(ctx, r.index)
}

// TouchStart begins a swipe at x.
func (r *Row) TouchStart(x float64) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.liveLocked() {
		return
	}
	r.swipe.Begin(x)
	r.store.surface.SetRowDragging(r.index, true)
}

// TouchMove follows the swipe to x.
func (r *Row) TouchMove(x float64) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.liveLocked() {
		return
	}
	if offset, ok := r.swipe.Move(x); ok {
		r.store.surface.SetRowOffset(r.index, offset)
	}
}

// TouchEnd finishes the swipe, removing the row when it went far enough
// and snapping it back otherwise. It reports whether the row was removed.
func (r *Row) TouchEnd(ctx context.Context) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.liveLocked() {
		return false
	}
	dismiss, ok := r.swipe.End()
	if !ok {
		return false
	}
	r.store.surface.SetRowDragging(r.index, false)
	if dismiss {
		return r.store.removeLocked(ctx, r.index)
	}
	r.store.surface.SetRowOffset(r.index, 0)
	return false
}
