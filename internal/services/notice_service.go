package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/greenfeen/storefront/internal/domain"
)

var errNoticeClockRequired = errors.New("notice service: clock is required")

const defaultNoticeTTL = 3 * time.Second

// NoticeServiceDeps configures the in-memory notice store.
type NoticeServiceDeps struct {
	Clock func() time.Time
	TTL   time.Duration
}

// noticeService keeps at most one live notice per session. Publishing replaces
// whatever is currently visible; expiry is checked lazily against the clock on
// read, so a superseded notice's timer needs no cancellation.
type noticeService struct {
	mu      sync.Mutex
	notices map[string]domain.Notice
	now     func() time.Time
	ttl     time.Duration
}

// NewNoticeService constructs a NoticeService with lazy TTL expiry.
func NewNoticeService(deps NoticeServiceDeps) (NoticeService, error) {
	if deps.Clock == nil {
		return nil, errNoticeClockRequired
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	return &noticeService{
		notices: make(map[string]domain.Notice),
		now:     func() time.Time { return deps.Clock().UTC() },
		ttl:     ttl,
	}, nil
}

// Publish replaces the session's visible notice.
func (s *noticeService) Publish(ctx context.Context, sessionID, text string, severity domain.Severity) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return
	}
	if !severity.Valid() {
		severity = domain.SeverityInfo
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[sessionID] = domain.Notice{
		Text:      text,
		Severity:  severity,
		ExpiresAt: s.now().Add(s.ttl),
	}
}

// Current returns the session's notice when one is live, pruning it when expired.
func (s *noticeService) Current(ctx context.Context, sessionID string) (domain.Notice, bool) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Notice{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	notice, ok := s.notices[sessionID]
	if !ok {
		return domain.Notice{}, false
	}
	if notice.Expired(s.now()) {
		delete(s.notices, sessionID)
		return domain.Notice{}, false
	}
	return notice, true
}

// Dismiss drops the session's notice ahead of its expiry.
func (s *noticeService) Dismiss(ctx context.Context, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notices, sessionID)
}
