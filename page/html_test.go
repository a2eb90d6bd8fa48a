package page

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devkhadem/samsungonlineshop/cart"
)

var (
	_ cart.Surface = (*HTMLSurface)(nil)
	_ cart.Display = (*HTMLSurface)(nil)
)

func TestMarkupEmpty(t *testing.T) {
	s := NewHTMLSurface()
	s.SetCount(0)

	html, err := s.Markup()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<p class="empty-cart-message">Your cart is empty.</p>`,
		`<span class="total-price">$0.00</span>`,
		`<span class="cart-count" style="display: block">0</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("markup missing %s\n%s", want, html)
		}
	}
	if strings.Contains(html, `class="cart-item`) {
		t.Error("empty cart rendered rows")
	}
}

func TestMarkupRows(t *testing.T) {
	s := NewHTMLSurface()
	s.Render(cart.Project([]cart.LineItem{
		{Name: "Shirt", Price: "$20.00"},
		{Name: "<b>Hat</b>", Price: "$15.00"},
	}))
	s.SetCount(2)
	s.SetPanelOpen(true)
	s.SetRowDragging(1, true)
	s.SetRowOffset(1, -40)
	s.ShowNotification(cart.MsgItemAdded)

	html, err := s.Markup()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<div class="cart-item" data-index="0"`,
		`<div class="cart-item swipe-active" data-index="1"`,
		`translateX(-40px)`,
		`action="/cart/items/1/remove"`,
		`&lt;b&gt;Hat&lt;/b&gt;`,
		`<span class="total-price">$35.00</span>`,
		`class="cart-sidebar active"`,
		`class="app-notification show">Item added to cart!</div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("markup missing %s\n%s", want, html)
		}
	}
}

func TestRenderDropsRowState(t *testing.T) {
	s := NewHTMLSurface()
	s.Render(cart.Project([]cart.LineItem{{Name: "A", Price: "$1.00"}}))
	s.SetRowOffset(0, -80)
	s.SetRowDragging(0, true)

	s.Render(cart.Project([]cart.LineItem{{Name: "B", Price: "$2.00"}}))

	want := []Row{{RowView: cart.RowView{Index: 0, Name: "B", Price: "$2.00"}}}
	if diff := cmp.Diff(want, s.Snapshot().Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestNotificationHide(t *testing.T) {
	s := NewHTMLSurface()
	s.ShowNotification(cart.MsgOrderPlaced)
	s.HideNotification()

	snap := s.Snapshot()
	if snap.NotificationVisible {
		t.Error("notification still visible")
	}
	if snap.Notification != cart.MsgOrderPlaced {
		t.Errorf("notification text = %q", snap.Notification)
	}
}
