package badger

import (
	"context"
	"errors"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/greenfeen/storefront/internal/repositories"
)

type healthRepository struct {
	db *badgerdb.DB
}

func (r *healthRepository) Check(ctx context.Context) error {
	if r == nil || r.db == nil {
		return repositories.NewUnavailableError("store health", errors.New("store not initialised"))
	}
	if r.db.IsClosed() {
		return repositories.NewUnavailableError("store health", errors.New("store closed"))
	}

	err := r.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte("health:probe"))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return repositories.NewUnavailableError("store health", err)
	}
	return nil
}
