package domain

import (
	"time"
)

// MaxQuantityPerItem caps how many units of a single product a cart may hold.
const MaxQuantityPerItem = 10

// LineItem stores a single product entry within a cart. UnitPrice is held in
// pence so totals never accumulate floating-point error.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice int64
	Quantity  int
}

// LineTotal returns price multiplied by quantity, in pence.
func (li LineItem) LineTotal() int64 {
	if li.Quantity <= 0 || li.UnitPrice < 0 {
		return 0
	}
	return li.UnitPrice * int64(li.Quantity)
}

// Cart aggregates the mutable shopping state for one storefront session.
// Items preserve insertion order and are persisted as a whole on every mutation.
type Cart struct {
	SessionID string
	Items     []LineItem
	UpdatedAt time.Time
}

// Total returns the exact sum of line totals in pence.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount returns the sum of all line quantities, used for the header badge.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		if item.Quantity > 0 {
			count += item.Quantity
		}
	}
	return count
}

// Customer captures the checkout form fields supplied by the shopper.
type Customer struct {
	FullName string
	Email    string
	Address  string
	City     string
	Postcode string
	Phone    string
}

// Order is the transient payload assembled at checkout. It exists only for the
// duration of one submission attempt and is never persisted.
type Order struct {
	Number   string
	Customer Customer
	Items    []LineItem
	Total    int64
	PlacedAt time.Time
}

// ContactMessage carries a contact-form submission to the mail sender.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Product describes a catalog entry shown on the shop page.
type Product struct {
	ID        string
	Name      string
	UnitPrice int64
	Category  string
}

// Severity classifies transient notices shown to the shopper.
type Severity string

const (
	// SeveritySuccess confirms a completed action.
	SeveritySuccess Severity = "success"
	// SeverityWarning flags a rejected action the shopper can adjust.
	SeverityWarning Severity = "warning"
	// SeverityError reports a failure requiring a retry.
	SeverityError Severity = "error"
	// SeverityInfo carries neutral status updates.
	SeverityInfo Severity = "info"
)

// Valid reports whether the severity is one of the known levels.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityWarning, SeverityError, SeverityInfo:
		return true
	}
	return false
}

// Notice is a transient message with a fixed lifetime. A newer notice replaces
// any currently visible one; notices never stack.
type Notice struct {
	Text      string
	Severity  Severity
	ExpiresAt time.Time
}

// Expired reports whether the notice should no longer be shown at the given instant.
func (n Notice) Expired(now time.Time) bool {
	return !n.ExpiresAt.After(now)
}
