package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a completed submission blocks replays. It covers the
// double-submit window of an impatient shopper without pinning records forever.
const DefaultTTL = 10 * time.Minute

// Status represents the lifecycle state of a submission record.
type Status string

const (
	// StatusPending indicates a request has reserved the key but not yet stored its response.
	StatusPending Status = "pending"
	// StatusCompleted indicates the response has been stored and can be replayed.
	StatusCompleted Status = "completed"
)

// ReservationState describes the outcome of attempting to reserve a key.
type ReservationState int

const (
	// ReservationStateNew means the caller may continue processing.
	ReservationStateNew ReservationState = iota
	// ReservationStateCompleted means a stored response should be replayed.
	ReservationStateCompleted
	// ReservationStatePending means another request is processing this key.
	ReservationStatePending
)

// Record captures the stored response for a submission key.
type Record struct {
	Key            string
	Fingerprint    string
	Status         Status
	ResponseStatus int
	ResponseBody   []byte
	ExpiresAt      time.Time
}

// Reservation is the result of reserving a key.
type Reservation struct {
	State  ReservationState
	Record Record
}

// ErrFingerprintMismatch is returned when a key is reused with a different request body.
var ErrFingerprintMismatch = errors.New("idempotency: key reserved for different request fingerprint")

// Store persists submission reservations and responses.
type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error)
	SaveResponse(ctx context.Context, key, fingerprint string, status int, body []byte, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// MemoryStore is the in-process Store used by the storefront. Carts are
// session-local, so cross-instance coordination is out of scope.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore constructs an empty memory-backed store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Reserve implements the Store interface.
func (s *MemoryStore) Reserve(_ context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := recordID(key)
	record, ok := s.records[id]
	if !ok || !now.Before(record.ExpiresAt) {
		record = Record{
			Key:         key,
			Fingerprint: fingerprint,
			Status:      StatusPending,
			ExpiresAt:   now.Add(ttl),
		}
		s.records[id] = record
		return Reservation{State: ReservationStateNew, Record: record}, nil
	}

	if record.Fingerprint != fingerprint {
		return Reservation{}, ErrFingerprintMismatch
	}
	if record.Status == StatusCompleted {
		return Reservation{State: ReservationStateCompleted, Record: record}, nil
	}
	return Reservation{State: ReservationStatePending, Record: record}, nil
}

// SaveResponse implements the Store interface.
func (s *MemoryStore) SaveResponse(_ context.Context, key, fingerprint string, status int, body []byte, now time.Time, ttl time.Duration) error {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := recordID(key)
	record, ok := s.records[id]
	if ok && record.Fingerprint != fingerprint {
		return ErrFingerprintMismatch
	}
	if !ok {
		record = Record{Key: key, Fingerprint: fingerprint}
	}

	record.Status = StatusCompleted
	record.ResponseStatus = status
	record.ResponseBody = append([]byte(nil), body...)
	record.ExpiresAt = now.Add(ttl)
	s.records[id] = record
	return nil
}

// Release deletes the reservation so that subsequent attempts may retry.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordID(key))
	return nil
}

func recordID(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes a request body for reuse detection.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
