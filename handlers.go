package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/devkhadem/samsungonlineshop/cart"
	"github.com/devkhadem/samsungonlineshop/services"
)

const cookieSessionID = "shop_session-id"

type ctxKeySessionID struct{}

type frontendServer struct {
	carts  *services.CartService
	health *services.HealthCheckService
	log    logrus.FieldLogger
}

func (fe *frontendServer) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName, otelmux.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz"
	})))
	r.Handle("/healthz", fe.health).Methods(http.MethodGet, http.MethodHead)

	app := r.NewRoute().Subrouter()
	app.Use(ensureSessionID, fe.logHandler)
	app.HandleFunc("/", fe.homeHandler).Methods(http.MethodGet, http.MethodHead)
	app.HandleFunc("/cart", fe.viewCartHandler).Methods(http.MethodGet)
	app.HandleFunc("/cart/items", fe.addToCartHandler).Methods(http.MethodPost)
	app.HandleFunc("/cart/items/{index:[0-9]+}/remove", fe.removeHandler).Methods(http.MethodPost)
	app.HandleFunc("/cart/items/{index:[0-9]+}/swipe", fe.swipeHandler).Methods(http.MethodPost)
	app.HandleFunc("/cart/checkout", fe.checkoutHandler).Methods(http.MethodPost)
	app.HandleFunc("/cart/open", fe.panelHandler(true)).Methods(http.MethodPost)
	app.HandleFunc("/cart/close", fe.panelHandler(false)).Methods(http.MethodPost)
	return r
}

func (fe *frontendServer) session(r *http.Request) *services.Session {
	return fe.carts.Session(r.Context(), sessionID(r))
}

func (fe *frontendServer) homeHandler(w http.ResponseWriter, r *http.Request) {
	markup, err := fe.session(r).Surface.Markup()
	if err != nil {
		fe.renderHTTPError(r, w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!DOCTYPE html>\n<html><body>\n" + markup + "</body></html>\n"))
}

func (fe *frontendServer) viewCartHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(fe.session(r), ""))
}

func (fe *frontendServer) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fe.renderHTTPError(r, w, errors.Wrap(err, "invalid form"), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	// Product cards show "price [was-price]"; the first token is current.
	price := firstField(r.FormValue("price"))
	if name == "" {
		fe.renderHTTPError(r, w, errors.New("product name is required"), http.StatusBadRequest)
		return
	}
	if _, err := cart.ParsePrice(price); err != nil {
		fe.renderHTTPError(r, w, errors.Wrap(err, "invalid price"), http.StatusBadRequest)
		return
	}

	sess := fe.session(r)
	sess.Store.AddItem(r.Context(), name, price)
	fe.respond(w, r, sess, "")
}

func (fe *frontendServer) removeHandler(w http.ResponseWriter, r *http.Request) {
	sess := fe.session(r)
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		fe.renderHTTPError(r, w, errors.Wrap(err, "invalid index"), http.StatusBadRequest)
		return
	}
	// A row gone since the page was rendered is a stale click, not an error.
	if row, ok := sess.Store.Row(index); ok {
		row.Dismiss(r.Context())
	}
	fe.respond(w, r, sess, "")
}

func (fe *frontendServer) swipeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fe.renderHTTPError(r, w, errors.Wrap(err, "invalid form"), http.StatusBadRequest)
		return
	}
	sess := fe.session(r)
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		fe.renderHTTPError(r, w, errors.Wrap(err, "invalid index"), http.StatusBadRequest)
		return
	}
	phase := r.FormValue("phase")
	var x float64
	if phase != "end" {
		if x, err = strconv.ParseFloat(r.FormValue("x"), 64); err != nil {
			fe.renderHTTPError(r, w, errors.Wrap(err, "invalid x"), http.StatusBadRequest)
			return
		}
	}

	row, ok := sess.Store.Row(index)
	if !ok {
		fe.respond(w, r, sess, "")
		return
	}
	switch phase {
	case "start":
		row.TouchStart(x)
	case "move":
		row.TouchMove(x)
	case "end":
		row.TouchEnd(r.Context())
	default:
		fe.renderHTTPError(r, w, errors.Errorf("unknown swipe phase %q", phase), http.StatusBadRequest)
		return
	}
	fe.respond(w, r, sess, "")
}

func (fe *frontendServer) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fe.renderHTTPError(r, w, errors.Wrap(err, "invalid form"), http.StatusBadRequest)
		return
	}
	confirmed, _ := strconv.ParseBool(r.FormValue("confirm"))

	sess := fe.session(r)
	result := sess.Store.Checkout(r.Context(), cart.ConfirmFunc(func(prompt string) bool {
		fe.log.WithField("prompt", prompt).Debug("checkout confirmation requested")
		return confirmed
	}))
	fe.respond(w, r, sess, result.String())
}

func (fe *frontendServer) panelHandler(open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := fe.session(r)
		if open {
			sess.Store.OpenPanel()
		} else {
			sess.Store.ClosePanel()
		}
		fe.respond(w, r, sess, "")
	}
}

// respond answers JSON clients with the cart and sends browsers back to
// the page.
func (fe *frontendServer) respond(w http.ResponseWriter, r *http.Request, sess *services.Session, checkout string) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, newCartResponse(sess, checkout))
		return
	}
	w.Header().Set("Location", "/")
	w.WriteHeader(http.StatusSeeOther)
}

type cartResponse struct {
	Items        []cart.LineItem `json:"items"`
	Count        int             `json:"count"`
	Total        string          `json:"total"`
	PanelOpen    bool            `json:"panel_open"`
	Notification string          `json:"notification,omitempty"`
	Checkout     string          `json:"checkout,omitempty"`
}

func newCartResponse(sess *services.Session, checkout string) cartResponse {
	snap := sess.Surface.Snapshot()
	resp := cartResponse{
		Items:     sess.Store.Items(),
		Count:     snap.Count,
		Total:     snap.View.Total,
		PanelOpen: snap.PanelOpen,
		Checkout:  checkout,
	}
	if snap.NotificationVisible {
		resp.Notification = snap.Notification
	}
	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (fe *frontendServer) renderHTTPError(r *http.Request, w http.ResponseWriter, err error, code int) {
	fe.log.WithFields(logrus.Fields{
		"http.req.path":   r.URL.Path,
		"http.req.method": r.Method,
		"error":           err.Error(),
	}).Warn("request error")
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (fe *frontendServer) logHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rr, r)
		fe.log.WithFields(logrus.Fields{
			"http.req.path":     r.URL.Path,
			"http.req.method":   r.Method,
			"http.resp.status":  rr.status,
			"http.resp.took_ms": time.Since(start).Milliseconds(),
			"session":           sessionID(r),
		}).Debug("request complete")
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ensureSessionID assigns a session cookie to first-time visitors.
func ensureSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		c, err := r.Cookie(cookieSessionID)
		if err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     cookieSessionID,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int((48 * time.Hour).Seconds()),
			})
		}
		ctx := context.WithValue(r.Context(), ctxKeySessionID{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	if v, ok := r.Context().Value(ctxKeySessionID{}).(string); ok {
		return v
	}
	return ""
}

func firstField(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
