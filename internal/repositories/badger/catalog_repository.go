package badger

import (
	"context"
	"encoding/json"
	"sort"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/repositories"
)

type catalogRepository struct {
	db *badgerdb.DB
}

type productRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
}

func (r *catalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(catalogKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			payload, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var record productRecord
			if err := json.Unmarshal(payload, &record); err != nil {
				continue
			}
			products = append(products, domain.Product{
				ID:        record.ID,
				Name:      record.Name,
				UnitPrice: record.Price,
				Category:  record.Category,
			})
		}
		return nil
	})
	if err != nil {
		return nil, repositories.NewUnavailableError("list catalog", err)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *catalogRepository) Replace(ctx context.Context, products []domain.Product) error {
	err := r.db.Update(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(catalogKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for _, product := range products {
			payload, err := json.Marshal(productRecord{
				ID:       product.ID,
				Name:     product.Name,
				Price:    product.UnitPrice,
				Category: product.Category,
			})
			if err != nil {
				return err
			}
			if err := txn.Set(catalogKey(product.ID), payload); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return repositories.NewUnavailableError("replace catalog", err)
	}
	return nil
}

func (r *catalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(catalogKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, repositories.NewUnavailableError("count catalog", err)
	}
	return count, nil
}
