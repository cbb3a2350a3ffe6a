package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/services"
)

type stubContactService struct {
	contact      domain.ContactMessage
	submitErr    error
	ack          string
	subscribeErr error
	cmds         []services.SubmitContactCommand
	emails       []string
}

func (s *stubContactService) Submit(ctx context.Context, cmd services.SubmitContactCommand) (domain.ContactMessage, error) {
	s.cmds = append(s.cmds, cmd)
	return s.contact, s.submitErr
}

func (s *stubContactService) SubscribeNewsletter(ctx context.Context, email string) (string, error) {
	s.emails = append(s.emails, email)
	return s.ack, s.subscribeErr
}

func contactTestRouter(contact services.ContactService) chi.Router {
	handlers := NewContactHandlers(contact, &stubNoticeService{})
	r := chi.NewRouter()
	r.Route("/contact", handlers.Routes)
	r.Route("/newsletter", handlers.NewsletterRoutes)
	return r
}

func TestContactSubmit(t *testing.T) {
	contact := &stubContactService{contact: domain.ContactMessage{Name: "Ash"}}
	router := contactTestRouter(contact)

	body := `{"name":"Ash","email":"ash@example.com","subject":"Plant Care","message":"Do you ship ferns?"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPost, "/contact/", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp contactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Thanks.Message != "Thanks Ash, we'll get back to you soon." {
		t.Fatalf("unexpected thanks %+v", resp.Thanks)
	}
	if len(contact.cmds) != 1 || contact.cmds[0].Subject != "Plant Care" {
		t.Fatalf("unexpected commands %+v", contact.cmds)
	}
}

func TestContactSubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid input", err: services.ErrContactInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "send failed", err: services.ErrContactSendFailed, wantStatus: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := contactTestRouter(&stubContactService{submitErr: tc.err})

			rec := httptest.NewRecorder()
			body := `{"name":"Ash","email":"ash@example.com","message":"hi"}`
			router.ServeHTTP(rec, sessionRequest(t, http.MethodPost, "/contact/", body))

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestNewsletterSubscribe(t *testing.T) {
	contact := &stubContactService{ack: "Subscribed with leaf@example.com!"}
	router := contactTestRouter(contact)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPost, "/newsletter/", `{"email":"leaf@example.com"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp newsletterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Acknowledgment != "Subscribed with leaf@example.com!" {
		t.Fatalf("unexpected acknowledgment %q", resp.Acknowledgment)
	}
	if len(contact.emails) != 1 || contact.emails[0] != "leaf@example.com" {
		t.Fatalf("unexpected emails %v", contact.emails)
	}
}

func TestNewsletterDisabledIs403(t *testing.T) {
	router := contactTestRouter(&stubContactService{subscribeErr: services.ErrNewsletterDisabled})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, sessionRequest(t, http.MethodPost, "/newsletter/", `{"email":"leaf@example.com"}`))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
