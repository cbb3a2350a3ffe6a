package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenfeen/storefront/internal/platform/httpx"
	"github.com/greenfeen/storefront/internal/services"
	"github.com/greenfeen/storefront/internal/view"
)

const maxCheckoutBodySize = 16 * 1024

// CheckoutHandlers exposes the checkout summary and order placement endpoints.
type CheckoutHandlers struct {
	carts           services.CartService
	checkout        services.CheckoutService
	notices         services.NoticeService
	submissionGuard func(http.Handler) http.Handler
}

// CheckoutOption customises checkout handler behaviour.
type CheckoutOption func(*CheckoutHandlers)

// WithSubmissionGuard wraps the order placement endpoint with a middleware
// that deduplicates repeated submissions.
func WithSubmissionGuard(guard func(http.Handler) http.Handler) CheckoutOption {
	return func(h *CheckoutHandlers) {
		h.submissionGuard = guard
	}
}

// NewCheckoutHandlers constructs handlers over the checkout services.
func NewCheckoutHandlers(carts services.CartService, checkout services.CheckoutService, notices services.NoticeService, opts ...CheckoutOption) *CheckoutHandlers {
	h := &CheckoutHandlers{carts: carts, checkout: checkout, notices: notices}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getSummary)
	if h.submissionGuard != nil {
		r.With(h.submissionGuard).Post("/", h.placeOrder)
		return
	}
	r.Post("/", h.placeOrder)
}

type placeOrderRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Phone    string `json:"phone"`
}

type summaryResponse struct {
	Summary view.SummaryView `json:"summary"`
	Notice  *noticePayload   `json:"notice,omitempty"`
}

type confirmationResponse struct {
	Confirmation view.ConfirmationView `json:"confirmation"`
	Badge        view.Badge            `json:"badge"`
	Notice       *noticePayload        `json:"notice,omitempty"`
}

func (h *CheckoutHandlers) getSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	snapshot, err := h.carts.Snapshot(ctx, sessionID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart is temporarily unavailable", http.StatusServiceUnavailable))
		return
	}

	resp := summaryResponse{Summary: view.RenderCheckoutSummary(snapshot)}
	resp.Notice = h.currentNotice(ctx, sessionID)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req placeOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	confirmation, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		SessionID: sessionID,
		FullName:  req.FullName,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		Postcode:  req.Postcode,
		Phone:     req.Phone,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	resp := confirmationResponse{
		Confirmation: view.RenderConfirmation(confirmation.Order),
		Badge:        view.Badge{},
	}
	resp.Notice = h.currentNotice(ctx, sessionID)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *CheckoutHandlers) currentNotice(ctx context.Context, sessionID string) *noticePayload {
	if h.notices == nil {
		return nil
	}
	notice, ok := h.notices.Current(ctx, sessionID)
	if !ok {
		return nil
	}
	return &noticePayload{Text: notice.Text, Severity: string(notice.Severity)}
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "name and email are required", http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart is empty", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutSendFailed):
		httpx.WriteError(ctx, w, httpx.NewError("confirmation_send_failed", "order confirmation could not be sent", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is temporarily unavailable", http.StatusServiceUnavailable))
	}
}
