package services

import (
	"context"

	"github.com/greenfeen/storefront/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	LineItem = domain.LineItem
	Cart     = domain.Cart
	Order    = domain.Order
	Product  = domain.Product
	Notice   = domain.Notice
	Severity = domain.Severity
)

// CartSnapshot is the read model returned from cart operations: the lines plus
// totals computed without intermediate rounding.
type CartSnapshot struct {
	SessionID string
	Items     []LineItem
	Total     int64
	ItemCount int
}

// AddItemCommand describes a product being added to a session's cart.
type AddItemCommand struct {
	SessionID string
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
}

// UpdateQuantityCommand adjusts an existing line by a signed delta, addressed by item ID.
type UpdateQuantityCommand struct {
	SessionID string
	ItemID    string
	Delta     int
}

// RemoveItemCommand removes a line from the cart, addressed by item ID.
type RemoveItemCommand struct {
	SessionID string
	ItemID    string
}

// CartService owns all cart mutations. Every mutation persists the whole cart
// and reports the resulting snapshot.
type CartService interface {
	AddItem(ctx context.Context, cmd AddItemCommand) (CartSnapshot, error)
	UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (CartSnapshot, error)
	RemoveItem(ctx context.Context, cmd RemoveItemCommand) (CartSnapshot, error)
	Snapshot(ctx context.Context, sessionID string) (CartSnapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

// NoticePublisher is the write side of the notice service, consumed by other services.
type NoticePublisher interface {
	Publish(ctx context.Context, sessionID, text string, severity Severity)
}

// NoticeService manages the single transient notice visible per session.
type NoticeService interface {
	NoticePublisher
	Current(ctx context.Context, sessionID string) (Notice, bool)
	Dismiss(ctx context.Context, sessionID string)
}

// PlaceOrderCommand carries the checkout form fields for a session.
type PlaceOrderCommand struct {
	SessionID string
	FullName  string
	Email     string
	Address   string
	City      string
	Postcode  string
	Phone     string
}

// OrderConfirmation is returned after a successful checkout.
type OrderConfirmation struct {
	Order Order
}

// CheckoutService turns a session's cart into a confirmed order.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (OrderConfirmation, error)
}

// SubmitContactCommand carries the contact form fields.
type SubmitContactCommand struct {
	SessionID string
	Name      string
	Email     string
	Subject   string
	Message   string
}

// ContactService forwards visitor messages and newsletter signups.
type ContactService interface {
	Submit(ctx context.Context, cmd SubmitContactCommand) (domain.ContactMessage, error)
	SubscribeNewsletter(ctx context.Context, email string) (string, error)
}

// FilterResult is the outcome of a catalog filter: matching products plus the
// human-readable count label shown above the grid.
type FilterResult struct {
	Products []Product
	Category string
	Summary  string
}

// CatalogService serves the product listing and its category filter.
type CatalogService interface {
	List(ctx context.Context) ([]Product, error)
	Filter(ctx context.Context, category string) (FilterResult, error)
	Seed(ctx context.Context, products []Product) error
}
