package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/mailer"
)

var errContactSenderRequired = errors.New("contact service: mail sender is required")

// ErrContactInvalidInput indicates required contact fields are missing.
var ErrContactInvalidInput = errors.New("contact service: invalid input")

// ErrContactSendFailed indicates the message could not be delivered. The form
// contents stay with the caller for a retry.
var ErrContactSendFailed = errors.New("contact service: send failed")

// ErrNewsletterDisabled indicates newsletter signups are switched off.
var ErrNewsletterDisabled = errors.New("contact service: newsletter disabled")

// ContactServiceDeps wires the collaborators for contact-form handling.
type ContactServiceDeps struct {
	Sender            mailer.Sender
	Notices           NoticePublisher
	TemplateID        string
	NewsletterEnabled bool
	Logger            func(context.Context, string, map[string]any)
}

type contactService struct {
	sender     mailer.Sender
	notices    NoticePublisher
	templateID string
	newsletter bool
	sanitizer  *bluemonday.Policy
	logger     func(context.Context, string, map[string]any)
}

// NewContactService constructs a ContactService enforcing dependency validation.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Sender == nil {
		return nil, errContactSenderRequired
	}

	templateID := strings.TrimSpace(deps.TemplateID)
	if templateID == "" {
		templateID = "template_contact"
	}

	notices := deps.Notices
	if notices == nil {
		notices = noopPublisher{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &contactService{
		sender:     deps.Sender,
		notices:    notices,
		templateID: templateID,
		newsletter: deps.NewsletterEnabled,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
	}, nil
}

// Submit validates and sanitizes the message, then forwards it via the sender.
// Send failures are surfaced so the form stays editable.
func (s *contactService) Submit(ctx context.Context, cmd SubmitContactCommand) (domain.ContactMessage, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	name := strings.TrimSpace(cmd.Name)
	email := strings.TrimSpace(cmd.Email)
	message := strings.TrimSpace(cmd.Message)
	if name == "" || email == "" || message == "" {
		s.notices.Publish(ctx, sessionID, "Please fill in all required fields.", domain.SeverityError)
		return domain.ContactMessage{}, fmt.Errorf("%w: name, email and message are required", ErrContactInvalidInput)
	}

	subject := strings.TrimSpace(cmd.Subject)
	if subject == "" {
		subject = "General Inquiry"
	}

	contact := domain.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: strings.TrimSpace(s.sanitizer.Sanitize(message)),
	}

	msg := mailer.Message{
		TemplateID: s.templateID,
		ToEmail:    contact.Email,
		Params: map[string]string{
			"from_name":  contact.Name,
			"from_email": contact.Email,
			"subject":    contact.Subject,
			"message":    contact.Message,
		},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger(ctx, "contact.send_failed", map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		s.notices.Publish(ctx, sessionID,
			"Your message could not be sent. Please try again.", domain.SeverityError)
		return domain.ContactMessage{}, fmt.Errorf("%w: %v", ErrContactSendFailed, err)
	}

	s.logger(ctx, "contact.message_sent", map[string]any{"session_id": sessionID})
	s.notices.Publish(ctx, sessionID, "Message sent successfully!", domain.SeveritySuccess)
	return contact, nil
}

// SubscribeNewsletter records interest and returns the acknowledgment line.
func (s *contactService) SubscribeNewsletter(ctx context.Context, email string) (string, error) {
	if !s.newsletter {
		return "", ErrNewsletterDisabled
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrContactInvalidInput)
	}

	s.logger(ctx, "newsletter.subscribed", map[string]any{"email": email})
	return fmt.Sprintf("Subscribed with %s!", email), nil
}
