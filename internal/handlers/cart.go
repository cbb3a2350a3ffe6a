package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/greenfeen/storefront/internal/platform/httpx"
	"github.com/greenfeen/storefront/internal/platform/session"
	"github.com/greenfeen/storefront/internal/services"
	"github.com/greenfeen/storefront/internal/view"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the session-scoped cart endpoints.
type CartHandlers struct {
	carts   services.CartService
	notices services.NoticeService
}

// NewCartHandlers constructs handlers over the cart and notice services.
func NewCartHandlers(carts services.CartService, notices services.NoticeService) *CartHandlers {
	return &CartHandlers{carts: carts, notices: notices}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{itemID}", h.updateQuantity)
	r.Delete("/items/{itemID}", h.removeItem)
}

// cartResponse is the payload shared by every cart endpoint: the rendered cart,
// the header badge, and the currently visible notice when one is live.
type cartResponse struct {
	Cart   view.CartView  `json:"cart"`
	Badge  view.Badge     `json:"badge"`
	Notice *noticePayload `json:"notice,omitempty"`
}

type noticePayload struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	snapshot, err := h.carts.Snapshot(ctx, sessionID)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	snapshot, err := h.carts.AddItem(ctx, services.AddItemCommand{
		SessionID: sessionID,
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) updateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req updateQuantityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	if req.Delta == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "delta must be non-zero", http.StatusBadRequest))
		return
	}

	snapshot, err := h.carts.UpdateQuantity(ctx, services.UpdateQuantityCommand{
		SessionID: sessionID,
		ItemID:    itemID,
		Delta:     req.Delta,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	snapshot, err := h.carts.RemoveItem(ctx, services.RemoveItemCommand{
		SessionID: sessionID,
		ItemID:    itemID,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildResponse(ctx, snapshot))
}

func (h *CartHandlers) buildResponse(ctx context.Context, snapshot services.CartSnapshot) cartResponse {
	resp := cartResponse{
		Cart:  view.RenderCart(snapshot),
		Badge: view.RenderBadge(snapshot),
	}
	if h.notices != nil {
		if notice, ok := h.notices.Current(ctx, snapshot.SessionID); ok {
			resp.Notice = &noticePayload{Text: notice.Text, Severity: string(notice.Severity)}
		}
	}
	return resp
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", "cart item not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart is temporarily unavailable", http.StatusServiceUnavailable))
	}
}

func requireSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := session.FromRequest(r)
	if strings.TrimSpace(sessionID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("session_required", "no session on request", http.StatusBadRequest))
		return "", false
	}
	return sessionID, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}
