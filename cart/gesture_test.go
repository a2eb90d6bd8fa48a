package cart

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSwipeMove(t *testing.T) {
	var s Swipe
	if _, ok := s.Move(10); ok {
		t.Fatal("Move without Begin produced an offset")
	}

	s.Begin(300)
	tests := []struct {
		x      float64
		want   float64
		wantOK bool
	}{
		{x: 260, want: -40, wantOK: true},
		{x: 150, want: -100, wantOK: true},
		{x: 0, want: -100, wantOK: true},
		{x: 320, wantOK: false},
		{x: 300, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := s.Move(tt.x)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Move(%v) = %v, %v; want %v, %v", tt.x, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSwipeEnd(t *testing.T) {
	tests := []struct {
		name  string
		moves []float64
		want  bool
	}{
		{name: "tap", want: false},
		{name: "short", moves: []float64{260}, want: false},
		{name: "exact threshold", moves: []float64{200}, want: false},
		{name: "long", moves: []float64{150}, want: true},
		{name: "wrong direction", moves: []float64{450}, want: false},
		{name: "back and forth", moves: []float64{100, 280}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Swipe
			s.Begin(300)
			for _, x := range tt.moves {
				s.Move(x)
			}
			got, ok := s.End()
			if !ok || got != tt.want {
				t.Errorf("End() = %v, %v; want %v, true", got, ok, tt.want)
			}
			if s.Dragging() {
				t.Error("still dragging after End")
			}
			if _, ok := s.End(); ok {
				t.Error("second End reported a finished drag")
			}
		})
	}
}

func TestRowSwipeBelowThreshold(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.AddItem(ctx, "Shirt", "$20.00")
	renders := h.surface.renders

	row, ok := h.store.Row(0)
	if !ok {
		t.Fatal("no row 0")
	}
	row.TouchStart(300)
	if !h.surface.dragging[0] {
		t.Error("row not marked dragging on start")
	}
	row.TouchMove(260)
	if got := h.surface.offsets[0]; got != -40 {
		t.Errorf("offset during drag = %v, want -40", got)
	}
	if row.TouchEnd(ctx) {
		t.Fatal("40px swipe removed the row")
	}

	if h.store.Count() != 1 || len(h.persisted(t)) != 1 {
		t.Error("short swipe changed the cart")
	}
	if got := h.surface.offsets[0]; got != 0 {
		t.Errorf("offset after release = %v, want 0", got)
	}
	if h.surface.dragging[0] {
		t.Error("row still marked dragging")
	}
	if h.surface.renders != renders {
		t.Error("short swipe re-rendered the surface")
	}
}

func TestRowSwipeRightGivesNoFeedback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.AddItem(ctx, "Shirt", "$20.00")

	row, _ := h.store.Row(0)
	row.TouchStart(100)
	row.TouchMove(250)
	if _, moved := h.surface.offsets[0]; moved {
		t.Error("rightward drag offset the row")
	}
	if row.TouchEnd(ctx) {
		t.Error("rightward drag removed the row")
	}
}

func TestRowSwipeRemoves(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.AddItem(ctx, "Shirt", "$20.00")
	h.store.AddItem(ctx, "Hat", "$15.00")

	row, _ := h.store.Row(1)
	row.TouchStart(300)
	row.TouchMove(150)
	if got := h.surface.offsets[1]; got != -100 {
		t.Errorf("offset = %v, want capped -100", got)
	}
	if !row.TouchEnd(ctx) {
		t.Fatal("150px swipe did not remove the row")
	}

	want := []LineItem{{Name: "Shirt", Price: "$20.00"}}
	if diff := cmp.Diff(want, h.store.Items()); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if h.notes.last() != MsgItemRemoved {
		t.Errorf("notification = %q", h.notes.last())
	}
}

func TestRowDismiss(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.AddItem(ctx, "Shirt", "$20.00")
	h.store.AddItem(ctx, "Hat", "$15.00")

	row, _ := h.store.Row(0)
	if row.Index() != 0 {
		t.Fatalf("Index = %d", row.Index())
	}
	if !row.Dismiss(ctx) {
		t.Fatal("Dismiss returned false")
	}
	if diff := cmp.Diff([]LineItem{{Name: "Hat", Price: "$15.00"}}, h.store.Items()); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
}

func TestStaleRowsAreDetached(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.AddItem(ctx, "Shirt", "$20.00")
	h.store.AddItem(ctx, "Hat", "$15.00")
	h.store.AddItem(ctx, "Sock", "$3.00")

	stale, _ := h.store.Row(0)
	swiping, _ := h.store.Row(2)
	swiping.TouchStart(300)
	swiping.TouchMove(100)

	// A click on another row re-renders while the swipe is still in flight.
	h.store.RemoveItem(ctx, 0)

	if stale.Live() {
		t.Error("row from previous render still live")
	}
	if stale.Dismiss(ctx) {
		t.Error("stale Dismiss removed an item")
	}
	if swiping.TouchEnd(ctx) {
		t.Error("swipe begun before the re-render removed an item")
	}

	want := []LineItem{{Name: "Hat", Price: "$15.00"}, {Name: "Sock", Price: "$3.00"}}
	if diff := cmp.Diff(want, h.store.Items()); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}

	live, ok := h.store.Row(1)
	if !ok || !live.Live() || live.Index() != 1 {
		t.Fatal("current render has no live row 1")
	}
	if _, ok := h.store.Row(2); ok {
		t.Error("row beyond the cart is available")
	}
}
