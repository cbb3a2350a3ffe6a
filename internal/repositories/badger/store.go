package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/greenfeen/storefront/internal/repositories"
)

const (
	cartKeyPrefix    = "cart:"
	catalogKeyPrefix = "catalog:"
)

// Options configures the embedded store.
type Options struct {
	// DataDir is the directory holding the database files. Ignored when InMemory is set.
	DataDir string
	// InMemory keeps all data in process memory, used by tests and demo deployments.
	InMemory bool
	// Logger receives store lifecycle events. Optional.
	Logger *zap.Logger
}

// Store is a badger-backed repositories.Registry.
type Store struct {
	db     *badgerdb.DB
	logger *zap.Logger

	carts   *cartRepository
	catalog *catalogRepository
	health  *healthRepository
}

// NewStore opens the embedded database and wires the typed repositories.
func NewStore(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var badgerOpts badgerdb.Options
	if opts.InMemory {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dir := strings.TrimSpace(opts.DataDir)
		if dir == "" {
			return nil, errors.New("badger store requires a data directory")
		}
		badgerOpts = badgerdb.DefaultOptions(dir)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	store := &Store{db: db, logger: logger}
	store.carts = &cartRepository{db: db}
	store.catalog = &catalogRepository{db: db}
	store.health = &healthRepository{db: db}

	logger.Info("store opened",
		zap.Bool("in_memory", opts.InMemory),
		zap.String("data_dir", opts.DataDir),
	)
	return store, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return repositories.NewUnavailableError("close store", err)
	}
	s.logger.Info("store closed")
	return nil
}

// Carts returns the cart repository.
func (s *Store) Carts() repositories.CartRepository { return s.carts }

// Catalog returns the catalog repository.
func (s *Store) Catalog() repositories.CatalogRepository { return s.catalog }

// Health returns the health repository.
func (s *Store) Health() repositories.HealthRepository { return s.health }

func cartKey(sessionID string) []byte {
	return []byte(cartKeyPrefix + sessionID)
}

func catalogKey(productID string) []byte {
	return []byte(catalogKeyPrefix + productID)
}
