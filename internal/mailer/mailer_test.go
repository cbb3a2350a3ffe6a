package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEmailJSSenderPostsPayload(t *testing.T) {
	var received emailJSRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender, err := NewEmailJSSender(EmailJSConfig{
		Endpoint:    server.URL,
		ServiceID:   "service_greenfeen",
		PublicKey:   "pk_test",
		AccessToken: "token_test",
	})
	if err != nil {
		t.Fatalf("NewEmailJSSender returned error: %v", err)
	}

	err = sender.Send(context.Background(), Message{
		TemplateID: "template_order",
		ToEmail:    "shopper@example.com",
		Params:     map[string]string{"order_number": "GF-TEST1"},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if received.ServiceID != "service_greenfeen" {
		t.Fatalf("unexpected service id %q", received.ServiceID)
	}
	if received.TemplateID != "template_order" {
		t.Fatalf("unexpected template id %q", received.TemplateID)
	}
	if received.UserID != "pk_test" {
		t.Fatalf("unexpected user id %q", received.UserID)
	}
	if received.AccessToken != "token_test" {
		t.Fatalf("unexpected access token %q", received.AccessToken)
	}
	if received.TemplateParams["to_email"] != "shopper@example.com" {
		t.Fatalf("expected recipient in template params, got %v", received.TemplateParams)
	}
	if received.TemplateParams["order_number"] != "GF-TEST1" {
		t.Fatalf("expected order number param, got %v", received.TemplateParams)
	}
}

func TestEmailJSSenderNonOKIsSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The user_id parameter is invalid", http.StatusForbidden)
	}))
	defer server.Close()

	sender, err := NewEmailJSSender(EmailJSConfig{
		Endpoint:  server.URL,
		ServiceID: "service_greenfeen",
		PublicKey: "pk_test",
	})
	if err != nil {
		t.Fatalf("NewEmailJSSender returned error: %v", err)
	}

	sendErr := sender.Send(context.Background(), Message{
		TemplateID: "template_order",
		ToEmail:    "shopper@example.com",
	})
	if !errors.Is(sendErr, ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", sendErr)
	}
}

func TestEmailJSSenderRequiresCredentials(t *testing.T) {
	if _, err := NewEmailJSSender(EmailJSConfig{PublicKey: "pk"}); err == nil {
		t.Fatalf("expected error without service id")
	}
	if _, err := NewEmailJSSender(EmailJSConfig{ServiceID: "svc"}); err == nil {
		t.Fatalf("expected error without public key")
	}
}

func TestMessageValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "valid", msg: Message{TemplateID: "t", ToEmail: "a@b.c"}},
		{name: "missing template", msg: Message{ToEmail: "a@b.c"}, wantErr: true},
		{name: "missing recipient", msg: Message{TemplateID: "t"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("expected ErrInvalidMessage, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected valid message, got %v", err)
			}
		})
	}
}

func TestSimulatorSucceedsAfterDelay(t *testing.T) {
	sim := NewSimulator(10*time.Millisecond, nil)

	start := time.Now()
	err := sim.Send(context.Background(), Message{TemplateID: "template_order", ToEmail: "a@b.c"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("expected at least the configured delay, waited %s", elapsed)
	}
}

func TestSimulatorHonoursCancellation(t *testing.T) {
	sim := NewSimulator(time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sim.Send(ctx, Message{TemplateID: "template_order", ToEmail: "a@b.c"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
