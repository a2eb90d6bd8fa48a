// Package page renders the cart onto an HTML page. HTMLSurface is the
// page-side collaborator of cart.Store: it keeps the latest projection and
// the presentation state classes and produces markup on demand.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/devkhadem/samsungonlineshop/cart"
)

//go:embed templates/*.html
var templateFS embed.FS

var cartTemplate = template.Must(
	template.New("cart.html").Funcs(template.FuncMap{
		"px": func(v float64) string {
			if v == 0 {
				return "0"
			}
			return strconv.FormatFloat(v, 'f', -1, 64) + "px"
		},
	}).ParseFS(templateFS, "templates/cart.html"),
)

// Row is a rendered row with its presentation state.
type Row struct {
	cart.RowView
	Offset   float64
	Dragging bool
}

// Snapshot is everything the page currently shows.
type Snapshot struct {
	View                cart.View
	Rows                []Row
	Count               int
	PanelOpen           bool
	Notification        string
	NotificationVisible bool
}

// HTMLSurface implements cart.Surface and cart.Display. It is safe for use
// by the store and a notification timer at the same time.
type HTMLSurface struct {
	mu           sync.Mutex
	view         cart.View
	offsets      map[int]float64
	dragging     map[int]bool
	count        int
	panelOpen    bool
	notification string
	notifyShown  bool
}

// NewHTMLSurface returns a surface showing an empty cart.
func NewHTMLSurface() *HTMLSurface {
	return &HTMLSurface{
		view:     cart.Project(nil),
		offsets:  map[int]float64{},
		dragging: map[int]bool{},
	}
}

// Render replaces all rows; offsets and drag classes of old rows are dropped.
func (s *HTMLSurface) Render(v cart.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.offsets = map[int]float64{}
	s.dragging = map[int]bool{}
}

// SetCount sets the badge number.
func (s *HTMLSurface) SetCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = n
}

// SetPanelOpen shows or hides the cart panel.
func (s *HTMLSurface) SetPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = open
}

// SetRowOffset moves a rendered row horizontally by px.
func (s *HTMLSurface) SetRowOffset(index int, px float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if px == 0 {
		delete(s.offsets, index)
		return
	}
	s.offsets[index] = px
}

// SetRowDragging toggles the swiping class on a rendered row.
func (s *HTMLSurface) SetRowDragging(index int, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !active {
		delete(s.dragging, index)
		return
	}
	s.dragging[index] = true
}

// ShowNotification makes msg the visible notification.
func (s *HTMLSurface) ShowNotification(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notification = msg
	s.notifyShown = true
}

// HideNotification hides the notification and keeps its text.
func (s *HTMLSurface) HideNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyShown = false
}

// Snapshot copies the current page state.
func (s *HTMLSurface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]Row, len(s.view.Rows))
	for i, rv := range s.view.Rows {
		rows[i] = Row{
			RowView:  rv,
			Offset:   s.offsets[rv.Index],
			Dragging: s.dragging[rv.Index],
		}
	}
	view := s.view
	view.Rows = append([]cart.RowView(nil), s.view.Rows...)
	return Snapshot{
		View:                view,
		Rows:                rows,
		Count:               s.count,
		PanelOpen:           s.panelOpen,
		Notification:        s.notification,
		NotificationVisible: s.notifyShown,
	}
}

// Markup renders the cart panel, badge and notification as HTML.
func (s *HTMLSurface) Markup() (string, error) {
	var buf bytes.Buffer
	if err := cartTemplate.ExecuteTemplate(&buf, "cart.html", s.Snapshot()); err != nil {
		return "", errors.Wrap(err, "render cart template")
	}
	return buf.String(), nil
}

func (s *HTMLSurface) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf("HTMLSurface{rows=%d count=%d total=%s open=%t}",
		len(snap.Rows), snap.Count, snap.View.Total, snap.PanelOpen)
}
