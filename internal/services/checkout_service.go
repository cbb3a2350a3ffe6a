package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/mailer"
)

var (
	errCheckoutCartRequired   = errors.New("checkout service: cart service is required")
	errCheckoutSenderRequired = errors.New("checkout service: mail sender is required")
	errCheckoutClockRequired  = errors.New("checkout service: clock is required")
)

// ErrCheckoutInvalidInput indicates required checkout fields are missing.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// ErrCheckoutEmptyCart indicates checkout was attempted with nothing in the cart.
var ErrCheckoutEmptyCart = errors.New("checkout service: cart is empty")

// ErrCheckoutSendFailed indicates the confirmation mail could not be delivered.
// The cart is left intact so the shopper can retry.
var ErrCheckoutSendFailed = errors.New("checkout service: confirmation send failed")

const orderNumberPrefix = "GF-"

// CheckoutServiceDeps wires the collaborators for order placement.
type CheckoutServiceDeps struct {
	Cart       CartService
	Sender     mailer.Sender
	Notices    NoticePublisher
	Clock      func() time.Time
	TemplateID string
	Logger     func(context.Context, string, map[string]any)
}

type checkoutService struct {
	cart       CartService
	sender     mailer.Sender
	notices    NoticePublisher
	now        func() time.Time
	templateID string
	logger     func(context.Context, string, map[string]any)
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errCheckoutCartRequired
	}
	if deps.Sender == nil {
		return nil, errCheckoutSenderRequired
	}
	if deps.Clock == nil {
		return nil, errCheckoutClockRequired
	}

	templateID := strings.TrimSpace(deps.TemplateID)
	if templateID == "" {
		templateID = "template_order"
	}

	notices := deps.Notices
	if notices == nil {
		notices = noopPublisher{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		cart:       deps.Cart,
		sender:     deps.Sender,
		notices:    notices,
		now:        func() time.Time { return deps.Clock().UTC() },
		templateID: templateID,
		logger:     logger,
	}, nil
}

// PlaceOrder validates the form, assembles the order payload, sends the
// confirmation mail, and clears the cart. A failed send leaves the cart
// untouched and is reported to the caller; partial completion never happens.
func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (OrderConfirmation, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	fullName := strings.TrimSpace(cmd.FullName)
	email := strings.TrimSpace(cmd.Email)
	if sessionID == "" {
		return OrderConfirmation{}, fmt.Errorf("%w: session id is required", ErrCheckoutInvalidInput)
	}
	if fullName == "" || email == "" {
		s.notices.Publish(ctx, sessionID, "Please fill in all required fields.", domain.SeverityWarning)
		return OrderConfirmation{}, fmt.Errorf("%w: name and email are required", ErrCheckoutInvalidInput)
	}

	snapshot, err := s.cart.Snapshot(ctx, sessionID)
	if err != nil {
		return OrderConfirmation{}, err
	}
	if len(snapshot.Items) == 0 {
		s.notices.Publish(ctx, sessionID, "Your cart is empty!", domain.SeverityWarning)
		return OrderConfirmation{}, ErrCheckoutEmptyCart
	}

	placedAt := s.now()
	order := domain.Order{
		Number: orderNumber(placedAt),
		Customer: domain.Customer{
			FullName: fullName,
			Email:    email,
			Address:  strings.TrimSpace(cmd.Address),
			City:     strings.TrimSpace(cmd.City),
			Postcode: strings.TrimSpace(cmd.Postcode),
			Phone:    strings.TrimSpace(cmd.Phone),
		},
		Items:    snapshot.Items,
		Total:    snapshot.Total,
		PlacedAt: placedAt,
	}

	if err := s.sender.Send(ctx, s.confirmationMessage(order)); err != nil {
		s.logger(ctx, "checkout.send_failed", map[string]any{
			"session_id":   sessionID,
			"order_number": order.Number,
			"error":        err.Error(),
		})
		s.notices.Publish(ctx, sessionID,
			"We could not send your confirmation. Please try again.", domain.SeverityError)
		return OrderConfirmation{}, fmt.Errorf("%w: %v", ErrCheckoutSendFailed, err)
	}

	if err := s.cart.Clear(ctx, sessionID); err != nil {
		return OrderConfirmation{}, err
	}

	s.logger(ctx, "checkout.order_placed", map[string]any{
		"session_id":   sessionID,
		"order_number": order.Number,
		"total_pence":  order.Total,
		"items":        len(order.Items),
	})
	s.notices.Publish(ctx, sessionID, "Order placed successfully!", domain.SeveritySuccess)
	return OrderConfirmation{Order: order}, nil
}

func (s *checkoutService) confirmationMessage(order domain.Order) mailer.Message {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%s x%d - %s",
			item.Name, item.Quantity, domain.FormatGBP(item.LineTotal())))
	}

	phone := order.Customer.Phone
	if phone == "" {
		phone = "Not provided"
	}

	return mailer.Message{
		TemplateID: s.templateID,
		ToEmail:    order.Customer.Email,
		Params: map[string]string{
			"customer_name":  order.Customer.FullName,
			"customer_email": order.Customer.Email,
			"address": strings.Join(nonEmpty(
				order.Customer.Address, order.Customer.City, order.Customer.Postcode), ", "),
			"phone":        phone,
			"order_items":  strings.Join(lines, "\n"),
			"order_total":  domain.FormatGBP(order.Total),
			"order_number": order.Number,
		},
	}
}

// orderNumber derives the shopper-facing reference from the placement instant,
// an uppercased base-36 millisecond timestamp behind the shop prefix.
func orderNumber(placedAt time.Time) string {
	return orderNumberPrefix + strings.ToUpper(strconv.FormatInt(placedAt.UnixMilli(), 36))
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
