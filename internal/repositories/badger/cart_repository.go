package badger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/repositories"
)

type cartRepository struct {
	db *badgerdb.DB
}

// cartRecord is the stored wire form of a cart. Prices are pence.
type cartRecord struct {
	Items     []cartItemRecord `json:"items"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type cartItemRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func (r *cartRepository) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Cart{}, repositories.NewNotFoundError("load cart", errors.New("session id required"))
	}

	empty := domain.Cart{SessionID: sessionID}

	var payload []byte
	err := r.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(cartKey(sessionID))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return empty, nil
	}
	if err != nil {
		return domain.Cart{}, repositories.NewUnavailableError("load cart", err)
	}

	var record cartRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		// A record we cannot decode is treated as no cart at all. The next
		// save overwrites it with a well-formed payload.
		return empty, nil
	}

	cart := domain.Cart{
		SessionID: sessionID,
		UpdatedAt: record.UpdatedAt,
		Items:     make([]domain.LineItem, 0, len(record.Items)),
	}
	for _, item := range record.Items {
		if item.ID == "" || item.Quantity <= 0 {
			continue
		}
		cart.Items = append(cart.Items, domain.LineItem{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart domain.Cart) error {
	sessionID := strings.TrimSpace(cart.SessionID)
	if sessionID == "" {
		return repositories.NewNotFoundError("save cart", errors.New("session id required"))
	}

	record := cartRecord{
		UpdatedAt: cart.UpdatedAt,
		Items:     make([]cartItemRecord, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		record.Items = append(record.Items, cartItemRecord{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.UnitPrice,
			Quantity: item.Quantity,
		})
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return repositories.NewUnavailableError("save cart", err)
	}

	err = r.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(cartKey(sessionID), payload)
	})
	if err != nil {
		return repositories.NewUnavailableError("save cart", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return repositories.NewNotFoundError("clear cart", errors.New("session id required"))
	}

	err := r.db.Update(func(txn *badgerdb.Txn) error {
		err := txn.Delete(cartKey(sessionID))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return repositories.NewUnavailableError("clear cart", err)
	}
	return nil
}
