package view

import (
	"fmt"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/services"
)

// LineView is one rendered cart row.
type LineView struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// CartView is the rendered cart page model.
type CartView struct {
	Lines      []LineView `json:"lines"`
	Total      string     `json:"total"`
	Empty      bool       `json:"empty"`
	EmptyTitle string     `json:"empty_title,omitempty"`
	EmptyLink  string     `json:"empty_link,omitempty"`
}

// SummaryView is the rendered checkout summary model.
type SummaryView struct {
	Lines []LineView `json:"lines"`
	Total string     `json:"total"`
	Empty bool       `json:"empty"`
}

// Badge is the rendered header cart badge.
type Badge struct {
	Count int  `json:"count"`
	Pulse bool `json:"pulse"`
}

// ConfirmationView is the rendered order confirmation model.
type ConfirmationView struct {
	Heading     string `json:"heading"`
	OrderNumber string `json:"order_number"`
	Message     string `json:"message"`
}

// ThanksView is the rendered contact thank-you model.
type ThanksView struct {
	Heading string `json:"heading"`
	Message string `json:"message"`
}

// RenderCart formats a cart snapshot for the cart page. An empty cart renders
// the call-to-action state instead of a zero-line table.
func RenderCart(snapshot services.CartSnapshot) CartView {
	if len(snapshot.Items) == 0 {
		return CartView{
			Lines:      []LineView{},
			Total:      domain.FormatGBP(0),
			Empty:      true,
			EmptyTitle: "Your cart is empty",
			EmptyLink:  "/shop",
		}
	}
	return CartView{
		Lines: renderLines(snapshot.Items),
		Total: domain.FormatGBP(snapshot.Total),
	}
}

// RenderCheckoutSummary formats a cart snapshot for the checkout sidebar.
func RenderCheckoutSummary(snapshot services.CartSnapshot) SummaryView {
	return SummaryView{
		Lines: renderLines(snapshot.Items),
		Total: domain.FormatGBP(snapshot.Total),
		Empty: len(snapshot.Items) == 0,
	}
}

// RenderBadge formats the header item counter. Pulse marks a non-empty cart so
// the badge animation runs.
func RenderBadge(snapshot services.CartSnapshot) Badge {
	return Badge{
		Count: snapshot.ItemCount,
		Pulse: snapshot.ItemCount > 0,
	}
}

// RenderConfirmation formats the post-checkout confirmation.
func RenderConfirmation(order domain.Order) ConfirmationView {
	return ConfirmationView{
		Heading:     "Thank you for your order!",
		OrderNumber: order.Number,
		Message:     fmt.Sprintf("Order %s confirmed. A confirmation has been sent to %s.", order.Number, order.Customer.Email),
	}
}

// RenderContactThanks formats the contact form acknowledgment.
func RenderContactThanks(name string) ThanksView {
	return ThanksView{
		Heading: "Message sent!",
		Message: fmt.Sprintf("Thanks %s, we'll get back to you soon.", name),
	}
}

func renderLines(items []domain.LineItem) []LineView {
	lines := make([]LineView, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineView{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: domain.FormatGBP(item.UnitPrice),
			Quantity:  item.Quantity,
			LineTotal: domain.FormatGBP(item.LineTotal()),
		})
	}
	return lines
}
