package view

import (
	"testing"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/services"
)

func sampleSnapshot() services.CartSnapshot {
	return services.CartSnapshot{
		SessionID: "sess-1",
		Items: []domain.LineItem{
			{ID: "item-basil", Name: "Basil Plant", UnitPrice: 350, Quantity: 5},
			{ID: "item-fern", Name: "Boston Fern", UnitPrice: 1200, Quantity: 1},
		},
		Total:     2950,
		ItemCount: 6,
	}
}

func TestRenderCart(t *testing.T) {
	cart := RenderCart(sampleSnapshot())

	if cart.Empty {
		t.Fatalf("expected non-empty cart view")
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
	if cart.Lines[0].UnitPrice != "£3.50" || cart.Lines[0].LineTotal != "£17.50" {
		t.Fatalf("unexpected first line %+v", cart.Lines[0])
	}
	if cart.Total != "£29.50" {
		t.Fatalf("expected total £29.50, got %s", cart.Total)
	}
}

func TestRenderCartEmptyState(t *testing.T) {
	cart := RenderCart(services.CartSnapshot{SessionID: "sess-1"})

	if !cart.Empty {
		t.Fatalf("expected empty state")
	}
	if cart.EmptyTitle != "Your cart is empty" {
		t.Fatalf("unexpected empty title %q", cart.EmptyTitle)
	}
	if cart.EmptyLink != "/shop" {
		t.Fatalf("expected call-to-action link, got %q", cart.EmptyLink)
	}
	if cart.Total != "£0.00" {
		t.Fatalf("expected zero total, got %s", cart.Total)
	}
}

func TestRenderCheckoutSummary(t *testing.T) {
	summary := RenderCheckoutSummary(sampleSnapshot())

	if summary.Empty {
		t.Fatalf("expected non-empty summary")
	}
	if summary.Total != "£29.50" {
		t.Fatalf("expected total £29.50, got %s", summary.Total)
	}
	if summary.Lines[1].Name != "Boston Fern" || summary.Lines[1].LineTotal != "£12.00" {
		t.Fatalf("unexpected second line %+v", summary.Lines[1])
	}
}

func TestRenderBadge(t *testing.T) {
	badge := RenderBadge(sampleSnapshot())
	if badge.Count != 6 || !badge.Pulse {
		t.Fatalf("expected count 6 with pulse, got %+v", badge)
	}

	empty := RenderBadge(services.CartSnapshot{})
	if empty.Count != 0 || empty.Pulse {
		t.Fatalf("expected dormant badge for empty cart, got %+v", empty)
	}
}

func TestRenderConfirmation(t *testing.T) {
	order := domain.Order{
		Number:   "GF-TEST123",
		Customer: domain.Customer{Email: "fern@example.com"},
	}
	confirmation := RenderConfirmation(order)

	if confirmation.OrderNumber != "GF-TEST123" {
		t.Fatalf("unexpected order number %q", confirmation.OrderNumber)
	}
	if confirmation.Message != "Order GF-TEST123 confirmed. A confirmation has been sent to fern@example.com." {
		t.Fatalf("unexpected message %q", confirmation.Message)
	}
}

func TestRenderContactThanks(t *testing.T) {
	thanks := RenderContactThanks("Ash")
	if thanks.Message != "Thanks Ash, we'll get back to you soon." {
		t.Fatalf("unexpected message %q", thanks.Message)
	}
}
