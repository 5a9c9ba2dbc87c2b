package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/tradedesk/tradedesk/internal/account"
	"github.com/tradedesk/tradedesk/internal/auth"
	"github.com/tradedesk/tradedesk/internal/book"
	"github.com/tradedesk/tradedesk/internal/chart"
	"github.com/tradedesk/tradedesk/internal/feed"
	"github.com/tradedesk/tradedesk/internal/models"
	"github.com/tradedesk/tradedesk/internal/trading"
)

type ctxKey string

const identityIDKey ctxKey = "identity_id"

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Accounts *account.Store
	Orders   *trading.Store
	Books    *book.Registry
	Auth     *auth.Service
	Bus      *feed.Bus

	chartsMu sync.Mutex
	charts   map[string]*chart.Series
}

// NewHandler creates a new handler
func NewHandler(accounts *account.Store, orders *trading.Store, books *book.Registry, authService *auth.Service, bus *feed.Bus) *Handler {
	return &Handler{
		Accounts: accounts,
		Orders:   orders,
		Books:    books,
		Auth:     authService,
		Bus:      bus,
		charts:   make(map[string]*chart.Series),
	}
}

// NewRouter wires all routes onto a fresh chi router.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Public endpoints
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
	r.Get("/pairs", h.GetPairs)
	r.Get("/book", h.GetBook)
	r.Get("/chart", h.GetChart)
	r.Get("/ws", h.HandleWS)

	// Protected endpoints (require a session token)
	r.Group(func(r chi.Router) {
		r.Use(h.SessionMiddleware)
		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders", h.GetOrders)
		r.Delete("/orders/{id}", h.CancelOrder)
	})

	return r
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Login handles wallet login: it creates a fresh identity for the
// address and returns it with a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "Address required")
		return
	}

	identity, err := h.Accounts.Login(r.Context(), req.Address)
	if err != nil {
		slog.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	token, err := h.Auth.IssueToken(identity)
	if err != nil {
		slog.Error("token issue failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to issue session token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":    token,
		"identity": identity,
	})
}

// Me returns the current identity, or 404 when nobody is logged in.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Accounts.Current(r.Context())
	if err != nil {
		slog.Error("identity load failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load identity")
		return
	}
	if identity == nil {
		writeError(w, http.StatusNotFound, "No current identity")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// Logout clears the current identity. Logging out while logged out
// still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Logout(r.Context()); err != nil {
		slog.Error("logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// SessionMiddleware verifies session tokens and stores the identity id
// in the request context.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}

		identityID, err := h.Auth.IdentityFromToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityIDKey, identityID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(r *http.Request) (string, bool) {
	identityID, ok := r.Context().Value(identityIDKey).(string)
	return identityID, ok && identityID != ""
}

// PlaceOrder records a new mock order for the current identity.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFromContext(r); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var spec models.OrderSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Orders.Place(r.Context(), spec)
	if err != nil {
		if errors.Is(err, trading.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetOrders returns the caller's orders, or every identity's orders
// with ?all=true.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	identityID, ok := identityFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if r.URL.Query().Get("all") == "true" {
		identityID = ""
	}

	orders, err := h.Orders.List(r.Context(), identityID)
	if err != nil {
		slog.Error("order list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// CancelOrder cancels an open order owned by the caller. Not-found,
// foreign, and non-open orders map to distinct statuses.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFromContext(r); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orderID := chi.URLParam(r, "id")

	err := h.Orders.Cancel(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
	case errors.Is(err, trading.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, trading.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, trading.ErrNotOrderOwner):
		writeError(w, http.StatusForbidden, "Order not owned by caller")
	case errors.Is(err, trading.ErrOrderNotOpen):
		writeError(w, http.StatusConflict, "Order not open")
	default:
		slog.Error("order cancel failed", "order_id", orderID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to cancel order")
	}
}

// GetPairs lists the configured trading pairs.
func (h *Handler) GetPairs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Books.Pairs())
}

// GetBook returns the static book snapshot for ?pair=. Unknown pairs
// get an empty snapshot, not an error.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "Pair required")
		return
	}
	writeJSON(w, http.StatusOK, h.Books.Get(pair))
}

// GetChart returns the rolling price window for ?pair=.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "Pair required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pair":   pair,
		"points": h.series(pair).Points(),
	})
}

func (h *Handler) series(pair string) *chart.Series {
	h.chartsMu.Lock()
	defer h.chartsMu.Unlock()

	s, ok := h.charts[pair]
	if !ok {
		s = chart.NewDefaultSeries()
		h.charts[pair] = s
	}
	return s
}

// RunCharts consumes the tick feed and appends each price to its
// pair's chart window until ctx is cancelled.
func (h *Handler) RunCharts(ctx context.Context) error {
	ticks, unsubscribe := h.Bus.Subscribe(64)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick := <-ticks:
			h.series(tick.Pair).Append(tick.Price)
		}
	}
}
