package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/platform/requestctx"
	"github.com/greenfeen/storefront/internal/services"
)

type stubCartService struct {
	snapshot   services.CartSnapshot
	err        error
	addCmds    []services.AddItemCommand
	updateCmds []services.UpdateQuantityCommand
	removeCmds []services.RemoveItemCommand
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddItemCommand) (services.CartSnapshot, error) {
	s.addCmds = append(s.addCmds, cmd)
	return s.snapshot, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, cmd services.UpdateQuantityCommand) (services.CartSnapshot, error) {
	s.updateCmds = append(s.updateCmds, cmd)
	return s.snapshot, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, cmd services.RemoveItemCommand) (services.CartSnapshot, error) {
	s.removeCmds = append(s.removeCmds, cmd)
	return s.snapshot, s.err
}

func (s *stubCartService) Snapshot(ctx context.Context, sessionID string) (services.CartSnapshot, error) {
	return s.snapshot, s.err
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string) error { return s.err }

type stubNoticeService struct {
	notice domain.Notice
	live   bool
}

func (s *stubNoticeService) Publish(ctx context.Context, sessionID, text string, severity domain.Severity) {
	s.notice = domain.Notice{Text: text, Severity: severity}
	s.live = true
}

func (s *stubNoticeService) Current(ctx context.Context, sessionID string) (domain.Notice, bool) {
	return s.notice, s.live
}

func (s *stubNoticeService) Dismiss(ctx context.Context, sessionID string) { s.live = false }

func sessionRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := requestctx.WithSessionID(req.Context(), "01JTESTSESSION0000000000000")
	return req.WithContext(ctx)
}

func cartTestRouter(carts services.CartService, notices services.NoticeService) chi.Router {
	r := chi.NewRouter()
	r.Route("/cart", NewCartHandlers(carts, notices).Routes)
	return r
}

func decodeCartResponse(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestGetCartReturnsViewBadgeAndNotice(t *testing.T) {
	carts := &stubCartService{snapshot: services.CartSnapshot{
		SessionID: "01JTESTSESSION0000000000000",
		Items: []domain.LineItem{
			{ID: "item-basil", Name: "Basil Plant", UnitPrice: 350, Quantity: 5},
		},
		Total:     1750,
		ItemCount: 5,
	}}
	notices := &stubNoticeService{
		notice: domain.Notice{Text: "Basil Plant added to cart!", Severity: domain.SeveritySuccess},
		live:   true,
	}
	router := cartTestRouter(carts, notices)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodGet, "/cart/", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeCartResponse(t, rec)
	if len(resp.Cart.Lines) != 1 || resp.Cart.Lines[0].LineTotal != "£17.50" {
		t.Fatalf("unexpected cart lines %+v", resp.Cart.Lines)
	}
	if resp.Badge.Count != 5 || !resp.Badge.Pulse {
		t.Fatalf("unexpected badge %+v", resp.Badge)
	}
	if resp.Notice == nil || resp.Notice.Severity != "success" {
		t.Fatalf("expected success notice, got %+v", resp.Notice)
	}
}

func TestAddItemPassesCommand(t *testing.T) {
	carts := &stubCartService{}
	router := cartTestRouter(carts, &stubNoticeService{})

	body := `{"product_id":"item-basil","name":"Basil Plant","unit_price":350,"quantity":2}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPost, "/cart/items", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(carts.addCmds) != 1 {
		t.Fatalf("expected one add command, got %d", len(carts.addCmds))
	}
	cmd := carts.addCmds[0]
	if cmd.SessionID != "01JTESTSESSION0000000000000" {
		t.Fatalf("expected session from request, got %q", cmd.SessionID)
	}
	if cmd.ProductID != "item-basil" || cmd.UnitPrice != 350 || cmd.Quantity != 2 {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestAddItemRejectsMalformedBody(t *testing.T) {
	router := cartTestRouter(&stubCartService{}, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPost, "/cart/items", "{not json"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateQuantityAddressesByItemID(t *testing.T) {
	carts := &stubCartService{}
	router := cartTestRouter(carts, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPatch, "/cart/items/item-fern", `{"delta":-1}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(carts.updateCmds) != 1 {
		t.Fatalf("expected one update command")
	}
	cmd := carts.updateCmds[0]
	if cmd.ItemID != "item-fern" || cmd.Delta != -1 {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestUpdateQuantityRejectsZeroDelta(t *testing.T) {
	router := cartTestRouter(&stubCartService{}, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPatch, "/cart/items/item-fern", `{"delta":0}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateQuantityUnknownItemIs404(t *testing.T) {
	carts := &stubCartService{err: services.ErrCartItemNotFound}
	router := cartTestRouter(carts, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPatch, "/cart/items/item-ghost", `{"delta":1}`))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRemoveItem(t *testing.T) {
	carts := &stubCartService{}
	router := cartTestRouter(carts, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodDelete, "/cart/items/item-basil", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(carts.removeCmds) != 1 || carts.removeCmds[0].ItemID != "item-basil" {
		t.Fatalf("unexpected remove commands %+v", carts.removeCmds)
	}
}

func TestCartRequiresSession(t *testing.T) {
	router := cartTestRouter(&stubCartService{}, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session, got %d", rec.Code)
	}
}

func TestCartUnavailableIs503(t *testing.T) {
	carts := &stubCartService{err: services.ErrCartUnavailable}
	router := cartTestRouter(carts, &stubNoticeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodGet, "/cart/", ""))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
