package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	refScheme           = "secret://"
	defaultFallbackPath = ".secrets.local"
)

// ErrNotFound is returned when a reference cannot be resolved by any source.
var ErrNotFound = errors.New("secrets: reference not found")

// Fetcher resolves secret:// references from the process environment or a
// local fallback file, caching values for the lifetime of the process.
//
// Supported forms:
//
//	secret://env/NAME        value of the NAME environment variable
//	secret://file/path/to/f  trimmed contents of the named file
//	secret://name            lookup in the fallback file, then SECRET_NAME env
type Fetcher struct {
	logger       *zap.Logger
	lookupEnv    func(string) (string, bool)
	fallbackPath string

	fallbackOnce sync.Once
	fallbackVals map[string]string
	fallbackErr  error

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	source    string
	fetchedAt time.Time
}

// Option customises Fetcher construction.
type Option func(*Fetcher)

// WithLogger attaches a logger for resolution events.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFallbackFile overrides the fallback file path.
func WithFallbackFile(path string) Option {
	return func(f *Fetcher) {
		f.fallbackPath = path
	}
}

// WithEnvLookup overrides environment lookups, primarily for tests.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(f *Fetcher) {
		if lookup != nil {
			f.lookupEnv = lookup
		}
	}
}

// NewFetcher constructs a Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		logger:       zap.NewNop(),
		lookupEnv:    os.LookupEnv,
		fallbackPath: defaultFallbackPath,
		cache:        make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ResolveSecret resolves a secret:// reference. Plain values without the
// scheme are returned unchanged so callers can pass config fields through.
func (f *Fetcher) ResolveSecret(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, refScheme) {
		return ref, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.RLock()
	entry, ok := f.cache[ref]
	f.mu.RUnlock()
	if ok {
		return entry.value, nil
	}

	value, source, err := f.fetch(ref)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.cache[ref] = cacheEntry{value: value, source: source, fetchedAt: time.Now().UTC()}
	f.mu.Unlock()

	f.logger.Debug("secret resolved", zap.String("ref", ref), zap.String("source", source))
	return value, nil
}

func (f *Fetcher) fetch(ref string) (string, string, error) {
	name := strings.TrimPrefix(ref, refScheme)
	if name == "" {
		return "", "", fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	switch {
	case strings.HasPrefix(name, "env/"):
		key := strings.TrimPrefix(name, "env/")
		if value, ok := f.lookupEnv(key); ok && value != "" {
			return value, "env", nil
		}
		return "", "", fmt.Errorf("%w: environment variable %s", ErrNotFound, key)

	case strings.HasPrefix(name, "file/"):
		path := strings.TrimPrefix(name, "file/")
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", "", fmt.Errorf("secrets: read %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), "file", nil

	default:
		values, err := f.loadFallback()
		if err != nil {
			return "", "", err
		}
		if value, ok := values[name]; ok {
			return value, "fallback", nil
		}
		envKey := "SECRET_" + strings.ToUpper(strings.NewReplacer("-", "_", "/", "_").Replace(name))
		if value, ok := f.lookupEnv(envKey); ok && value != "" {
			return value, "env", nil
		}
		return "", "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
}

// loadFallback parses the fallback file once. Lines are "name=value", with
// "secret://name=value" accepted for compatibility with copied references.
func (f *Fetcher) loadFallback() (map[string]string, error) {
	f.fallbackOnce.Do(func() {
		f.fallbackVals = make(map[string]string)
		if f.fallbackPath == "" {
			return
		}
		file, err := os.Open(f.fallbackPath)
		if err != nil {
			if !os.IsNotExist(err) {
				f.fallbackErr = fmt.Errorf("secrets: open fallback file %s: %w", f.fallbackPath, err)
			}
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, value, found := strings.Cut(line, "=")
			if !found {
				continue
			}
			key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), refScheme))
			if key == "" {
				continue
			}
			f.fallbackVals[key] = strings.TrimSpace(value)
		}
		if err := scanner.Err(); err != nil {
			f.fallbackErr = fmt.Errorf("secrets: read fallback file %s: %w", f.fallbackPath, err)
		}
	})
	return f.fallbackVals, f.fallbackErr
}
