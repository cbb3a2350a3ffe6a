package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// ErrCartItemNotFound indicates the addressed line no longer exists in the cart.
var ErrCartItemNotFound = errors.New("cart service: item not found")

// CartServiceDeps wires the repository and notice dependencies for cart operations.
type CartServiceDeps struct {
	Repository         repositories.CartRepository
	Notices            NoticePublisher
	Clock              func() time.Time
	MaxQuantityPerItem int
	Logger             func(context.Context, string, map[string]any)
}

type cartService struct {
	repo    repositories.CartRepository
	notices NoticePublisher
	now     func() time.Time
	maxQty  int
	logger  func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	maxQty := deps.MaxQuantityPerItem
	if maxQty <= 0 {
		maxQty = domain.MaxQuantityPerItem
	}

	notices := deps.Notices
	if notices == nil {
		notices = noopPublisher{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:    deps.Repository,
		notices: notices,
		now:     func() time.Time { return deps.Clock().UTC() },
		maxQty:  maxQty,
		logger:  logger,
	}, nil
}

// AddItem merges the product onto an existing line when present, otherwise
// appends a new line. The per-item quantity cap is enforced here, not by
// callers: an add that would push the line past the cap leaves the cart
// untouched and raises a warning notice instead.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (CartSnapshot, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	productID := strings.TrimSpace(cmd.ProductID)
	name := strings.TrimSpace(cmd.Name)
	if sessionID == "" || productID == "" || name == "" {
		return CartSnapshot{}, fmt.Errorf("%w: session, product id and name are required", ErrCartInvalidInput)
	}
	if cmd.UnitPrice <= 0 {
		return CartSnapshot{}, fmt.Errorf("%w: unit price must be positive", ErrCartInvalidInput)
	}

	quantity := cmd.Quantity
	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}

	idx := findLine(cart.Items, productID)
	if idx >= 0 {
		merged := cart.Items[idx].Quantity + quantity
		if merged > s.maxQty {
			s.notices.Publish(ctx, sessionID,
				fmt.Sprintf("Maximum %d per item allowed.", s.maxQty), domain.SeverityWarning)
			return s.snapshotOf(cart), nil
		}
		cart.Items[idx].Quantity = merged
	} else {
		if quantity > s.maxQty {
			s.notices.Publish(ctx, sessionID,
				fmt.Sprintf("Maximum %d per item allowed.", s.maxQty), domain.SeverityWarning)
			return s.snapshotOf(cart), nil
		}
		cart.Items = append(cart.Items, domain.LineItem{
			ID:        productID,
			Name:      name,
			UnitPrice: cmd.UnitPrice,
			Quantity:  quantity,
		})
	}

	cart.SessionID = sessionID
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}

	s.logger(ctx, "cart.item_added", map[string]any{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   quantity,
	})
	s.notices.Publish(ctx, sessionID, fmt.Sprintf("%s added to cart!", name), domain.SeveritySuccess)
	return s.snapshotOf(cart), nil
}

// UpdateQuantity adjusts a line by delta, addressing it by item ID so that a
// concurrent reorder of the cart cannot retarget the change. A result above
// the cap is rejected with a warning; a result below one removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (CartSnapshot, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	itemID := strings.TrimSpace(cmd.ItemID)
	if sessionID == "" || itemID == "" {
		return CartSnapshot{}, fmt.Errorf("%w: session and item id are required", ErrCartInvalidInput)
	}

	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}

	idx := findLine(cart.Items, itemID)
	if idx < 0 {
		return CartSnapshot{}, ErrCartItemNotFound
	}

	next := cart.Items[idx].Quantity + cmd.Delta
	switch {
	case next > s.maxQty:
		s.notices.Publish(ctx, sessionID,
			fmt.Sprintf("Maximum %d per item allowed.", s.maxQty), domain.SeverityWarning)
		return s.snapshotOf(cart), nil
	case next < 1:
		removed := cart.Items[idx]
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		s.notices.Publish(ctx, sessionID,
			fmt.Sprintf("%s removed from cart.", removed.Name), domain.SeverityInfo)
	default:
		cart.Items[idx].Quantity = next
	}

	cart.SessionID = sessionID
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}
	return s.snapshotOf(cart), nil
}

// RemoveItem deletes a line by item ID and announces the removal.
func (s *cartService) RemoveItem(ctx context.Context, cmd RemoveItemCommand) (CartSnapshot, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	itemID := strings.TrimSpace(cmd.ItemID)
	if sessionID == "" || itemID == "" {
		return CartSnapshot{}, fmt.Errorf("%w: session and item id are required", ErrCartInvalidInput)
	}

	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}

	idx := findLine(cart.Items, itemID)
	if idx < 0 {
		return CartSnapshot{}, ErrCartItemNotFound
	}

	removed := cart.Items[idx]
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.SessionID = sessionID
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}

	s.notices.Publish(ctx, sessionID,
		fmt.Sprintf("%s removed from cart.", removed.Name), domain.SeverityInfo)
	return s.snapshotOf(cart), nil
}

// Snapshot returns the current cart with exact totals.
func (s *cartService) Snapshot(ctx context.Context, sessionID string) (CartSnapshot, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CartSnapshot{}, fmt.Errorf("%w: session id is required", ErrCartInvalidInput)
	}

	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return CartSnapshot{}, s.translateRepoError(err)
	}
	return s.snapshotOf(cart), nil
}

// Clear drops the session's cart entirely.
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrCartInvalidInput)
	}
	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) snapshotOf(cart domain.Cart) CartSnapshot {
	items := make([]domain.LineItem, len(cart.Items))
	copy(items, cart.Items)
	return CartSnapshot{
		SessionID: cart.SessionID,
		Items:     items,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
	}
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() {
			return ErrCartItemNotFound
		}
		return ErrCartUnavailable
	}
	return ErrCartUnavailable
}

func findLine(items []domain.LineItem, itemID string) int {
	for i, item := range items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, domain.Severity) {}
