package services

import (
	"context"
	"testing"
	"time"

	"github.com/greenfeen/storefront/internal/domain"
)

type movableClock struct {
	now time.Time
}

func (c *movableClock) Now() time.Time { return c.now }

func (c *movableClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestNoticeService(t *testing.T, clock *movableClock, ttl time.Duration) NoticeService {
	t.Helper()
	svc, err := NewNoticeService(NoticeServiceDeps{Clock: clock.Now, TTL: ttl})
	if err != nil {
		t.Fatalf("NewNoticeService returned error: %v", err)
	}
	return svc
}

func TestNoticeVisibleUntilTTL(t *testing.T) {
	clock := &movableClock{now: fixedClock()}
	svc := newTestNoticeService(t, clock, 3*time.Second)
	ctx := context.Background()

	svc.Publish(ctx, "sess-1", "Basil Plant added to cart!", domain.SeveritySuccess)

	notice, ok := svc.Current(ctx, "sess-1")
	if !ok {
		t.Fatalf("expected notice to be visible")
	}
	if notice.Text != "Basil Plant added to cart!" || notice.Severity != domain.SeveritySuccess {
		t.Fatalf("unexpected notice %+v", notice)
	}

	clock.Advance(2900 * time.Millisecond)
	if _, ok := svc.Current(ctx, "sess-1"); !ok {
		t.Fatalf("expected notice still visible before TTL")
	}

	clock.Advance(200 * time.Millisecond)
	if _, ok := svc.Current(ctx, "sess-1"); ok {
		t.Fatalf("expected notice expired after TTL")
	}
}

func TestPublishReplacesCurrentNotice(t *testing.T) {
	clock := &movableClock{now: fixedClock()}
	svc := newTestNoticeService(t, clock, 3*time.Second)
	ctx := context.Background()

	svc.Publish(ctx, "sess-1", "first", domain.SeverityInfo)
	svc.Publish(ctx, "sess-1", "second", domain.SeverityWarning)

	notice, ok := svc.Current(ctx, "sess-1")
	if !ok {
		t.Fatalf("expected a visible notice")
	}
	if notice.Text != "second" || notice.Severity != domain.SeverityWarning {
		t.Fatalf("expected replacement notice, got %+v", notice)
	}
}

func TestNoticesAreSessionScoped(t *testing.T) {
	clock := &movableClock{now: fixedClock()}
	svc := newTestNoticeService(t, clock, 3*time.Second)
	ctx := context.Background()

	svc.Publish(ctx, "sess-1", "only for one", domain.SeverityInfo)

	if _, ok := svc.Current(ctx, "sess-2"); ok {
		t.Fatalf("expected no notice for another session")
	}
}

func TestDismissDropsNotice(t *testing.T) {
	clock := &movableClock{now: fixedClock()}
	svc := newTestNoticeService(t, clock, 3*time.Second)
	ctx := context.Background()

	svc.Publish(ctx, "sess-1", "going away", domain.SeverityInfo)
	svc.Dismiss(ctx, "sess-1")

	if _, ok := svc.Current(ctx, "sess-1"); ok {
		t.Fatalf("expected dismissed notice to be gone")
	}
}

func TestPublishIgnoresInvalidSeverity(t *testing.T) {
	clock := &movableClock{now: fixedClock()}
	svc := newTestNoticeService(t, clock, 3*time.Second)
	ctx := context.Background()

	svc.Publish(ctx, "sess-1", "odd level", domain.Severity("fatal"))

	notice, ok := svc.Current(ctx, "sess-1")
	if !ok {
		t.Fatalf("expected notice to be visible")
	}
	if notice.Severity != domain.SeverityInfo {
		t.Fatalf("expected unknown severity to fall back to info, got %s", notice.Severity)
	}
}
