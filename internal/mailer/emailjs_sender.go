package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

var (
	errEmailJSServiceIDRequired = errors.New("emailjs sender: service id is required")
	errEmailJSPublicKeyRequired = errors.New("emailjs sender: public key is required")
)

// EmailJSConfig holds the REST credentials for the EmailJS send endpoint.
type EmailJSConfig struct {
	Endpoint    string
	ServiceID   string
	PublicKey   string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// EmailJSSender delivers mail through the EmailJS REST API.
type EmailJSSender struct {
	endpoint    string
	serviceID   string
	publicKey   string
	accessToken string
	client      *http.Client
}

// NewEmailJSSender validates credentials and constructs the transport.
func NewEmailJSSender(cfg EmailJSConfig) (*EmailJSSender, error) {
	serviceID := strings.TrimSpace(cfg.ServiceID)
	if serviceID == "" {
		return nil, errEmailJSServiceIDRequired
	}
	publicKey := strings.TrimSpace(cfg.PublicKey)
	if publicKey == "" {
		return nil, errEmailJSPublicKeyRequired
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &EmailJSSender{
		endpoint:    endpoint,
		serviceID:   serviceID,
		publicKey:   publicKey,
		accessToken: strings.TrimSpace(cfg.AccessToken),
		client:      client,
	}, nil
}

// Name identifies the transport in logs.
func (s *EmailJSSender) Name() string { return "emailjs" }

// emailJSRequest is the wire payload for api/v1.0/email/send.
type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts the message to EmailJS. Any non-200 response is a send failure.
func (s *EmailJSSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	params := make(map[string]string, len(msg.Params)+1)
	for k, v := range msg.Params {
		params[k] = v
	}
	params["to_email"] = msg.ToEmail

	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      s.serviceID,
		TemplateID:     msg.TemplateID,
		UserID:         s.publicKey,
		AccessToken:    s.accessToken,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = resp.Status
		}
		return fmt.Errorf("%w: emailjs responded %d: %s", ErrSendFailed, resp.StatusCode, detail)
	}
	return nil
}
