package handlers

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/greenfeen/storefront/internal/view"
)

// NavHandlers tracks the mobile navigation drawer per session so the state
// machine survives page loads.
type NavHandlers struct {
	mu          sync.Mutex
	controllers map[string]*view.NavController
}

// NewNavHandlers constructs the session-scoped navigation handlers.
func NewNavHandlers() *NavHandlers {
	return &NavHandlers{controllers: make(map[string]*view.NavController)}
}

// Routes wires the /nav endpoints onto the provided router.
func (h *NavHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.state)
	r.Post("/toggle", h.toggle)
	r.Post("/close", h.close)
}

type navResponse struct {
	State          string `json:"state"`
	OverlayCreated bool   `json:"overlay_created"`
	ScrollLocked   bool   `json:"scroll_locked"`
}

func (h *NavHandlers) state(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.render(h.controller(sessionID)))
}

func (h *NavHandlers) toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	nav := h.controllerLocked(sessionID)
	nav.Toggle()
	resp := h.render(nav)
	h.mu.Unlock()

	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *NavHandlers) close(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	nav := h.controllerLocked(sessionID)
	nav.LinkClicked()
	resp := h.render(nav)
	h.mu.Unlock()

	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *NavHandlers) controller(sessionID string) *view.NavController {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.controllerLocked(sessionID)
}

func (h *NavHandlers) controllerLocked(sessionID string) *view.NavController {
	nav, ok := h.controllers[sessionID]
	if !ok {
		nav = view.NewNavController()
		h.controllers[sessionID] = nav
	}
	return nav
}

func (h *NavHandlers) render(nav *view.NavController) navResponse {
	return navResponse{
		State:          string(nav.State()),
		OverlayCreated: nav.OverlayCreated(),
		ScrollLocked:   nav.ScrollLocked(),
	}
}
