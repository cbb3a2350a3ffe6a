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

const maxContactBodySize = 32 * 1024

// ContactHandlers exposes the contact form and newsletter endpoints.
type ContactHandlers struct {
	contact services.ContactService
	notices services.NoticeService
}

// NewContactHandlers constructs handlers over the contact service.
func NewContactHandlers(contact services.ContactService, notices services.NoticeService) *ContactHandlers {
	return &ContactHandlers{contact: contact, notices: notices}
}

// Routes wires the /contact endpoints onto the provided router.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
}

// NewsletterRoutes wires the /newsletter endpoints onto the provided router.
func (h *ContactHandlers) NewsletterRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.subscribe)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactResponse struct {
	Thanks view.ThanksView `json:"thanks"`
	Notice *noticePayload  `json:"notice,omitempty"`
}

type newsletterRequest struct {
	Email string `json:"email"`
}

type newsletterResponse struct {
	Acknowledgment string `json:"acknowledgment"`
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := requireSession(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxContactBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req contactRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	contact, err := h.contact.Submit(ctx, services.SubmitContactCommand{
		SessionID: sessionID,
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		h.writeContactError(ctx, w, err)
		return
	}

	resp := contactResponse{Thanks: view.RenderContactThanks(contact.Name)}
	if h.notices != nil {
		if notice, ok := h.notices.Current(ctx, sessionID); ok {
			resp.Notice = &noticePayload{Text: notice.Text, Severity: string(notice.Severity)}
		}
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *ContactHandlers) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxContactBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req newsletterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	ack, err := h.contact.SubscribeNewsletter(ctx, req.Email)
	if err != nil {
		h.writeContactError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, newsletterResponse{Acknowledgment: ack})
}

func (h *ContactHandlers) writeContactError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "required fields are missing", http.StatusBadRequest))
	case errors.Is(err, services.ErrContactSendFailed):
		httpx.WriteError(ctx, w, httpx.NewError("message_send_failed", "message could not be sent", http.StatusBadGateway))
	case errors.Is(err, services.ErrNewsletterDisabled):
		httpx.WriteError(ctx, w, httpx.NewError("newsletter_disabled", "newsletter signups are disabled", http.StatusForbidden))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("contact_unavailable", "contact is temporarily unavailable", http.StatusServiceUnavailable))
	}
}
