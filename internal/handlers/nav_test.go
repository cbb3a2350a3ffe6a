package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func navTestRouter() chi.Router {
	r := chi.NewRouter()
	r.Route("/nav", NewNavHandlers().Routes)
	return r
}

func doNav(t *testing.T, router chi.Router, method, target string) navResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, method, target, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp navResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestNavStateStartsClosed(t *testing.T) {
	router := navTestRouter()

	resp := doNav(t, router, http.MethodGet, "/nav/")
	if resp.State != "closed" || resp.OverlayCreated || resp.ScrollLocked {
		t.Fatalf("unexpected initial state %+v", resp)
	}
}

func TestNavToggleAndClose(t *testing.T) {
	router := navTestRouter()

	opened := doNav(t, router, http.MethodPost, "/nav/toggle")
	if opened.State != "open" || !opened.OverlayCreated || !opened.ScrollLocked {
		t.Fatalf("unexpected open state %+v", opened)
	}

	closed := doNav(t, router, http.MethodPost, "/nav/close")
	if closed.State != "closed" || closed.ScrollLocked {
		t.Fatalf("unexpected closed state %+v", closed)
	}
	if !closed.OverlayCreated {
		t.Fatalf("expected overlay retained after close")
	}

	again := doNav(t, router, http.MethodPost, "/nav/close")
	if again.State != "closed" {
		t.Fatalf("expected close to be idempotent, got %+v", again)
	}
}

func TestNavStatePersistsAcrossRequests(t *testing.T) {
	router := navTestRouter()

	doNav(t, router, http.MethodPost, "/nav/toggle")
	resp := doNav(t, router, http.MethodGet, "/nav/")
	if resp.State != "open" {
		t.Fatalf("expected open state across requests, got %+v", resp)
	}
}
