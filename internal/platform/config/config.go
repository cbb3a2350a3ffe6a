package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultDataDir         = "data"
	defaultMailEndpoint    = "https://api.emailjs.com/api/v1.0/email/send"
	defaultMailTimeout     = 10 * time.Second
	defaultSimulatedDelay  = 1500 * time.Millisecond
	defaultOrderTemplate   = "template_order"
	defaultContactTemplate = "template_contact"
	defaultNoticeTTL       = 3 * time.Second
	defaultMaxQuantity     = 10
	defaultSessionCookie   = "greenfeen_session"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mail     MailConfig
	Cart     CartConfig
	Notices  NoticeConfig
	Catalog  CatalogConfig
	Features FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	SessionCookie string
}

// StoreConfig locates the embedded key-value store holding carts and catalog entries.
type StoreConfig struct {
	DataDir  string
	InMemory bool
}

// MailConfig holds the EmailJS transport settings. When Enabled is false the
// service runs in demo mode and order/contact sends are simulated.
type MailConfig struct {
	Enabled           bool
	Endpoint          string
	ServiceID         string
	OrderTemplateID   string
	ContactTemplateID string
	PublicKey         string
	AccessToken       string
	Timeout           time.Duration
	SimulatedDelay    time.Duration
}

// CartConfig controls cart business rules.
type CartConfig struct {
	MaxQuantityPerItem int
}

// NoticeConfig controls transient notice behaviour.
type NoticeConfig struct {
	TTL time.Duration
}

// CatalogConfig locates the product seed applied when the store is empty.
type CatalogConfig struct {
	SeedFile string
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	EnableNewsletter bool
}

// SecretResolver resolves references to external secrets (e.g. secret:// URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets a custom secret resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional secret resolver lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
		secret: SecretResolverFunc(func(ctx context.Context, ref string) (string, error) {
			return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
		}),
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:          stringWithDefault(lookup, "SHOP_SERVER_PORT", defaultPort),
			ReadTimeout:   durationWithDefault(lookup, "SHOP_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:  durationWithDefault(lookup, "SHOP_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:   durationWithDefault(lookup, "SHOP_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			SessionCookie: stringWithDefault(lookup, "SHOP_SERVER_SESSION_COOKIE", defaultSessionCookie),
		},
		Store: StoreConfig{
			DataDir:  stringWithDefault(lookup, "SHOP_STORE_DATA_DIR", defaultDataDir),
			InMemory: boolWithDefault(lookup, "SHOP_STORE_IN_MEMORY", false),
		},
		Mail: MailConfig{
			Enabled:           boolWithDefault(lookup, "SHOP_MAIL_ENABLED", false),
			Endpoint:          stringWithDefault(lookup, "SHOP_MAIL_ENDPOINT", defaultMailEndpoint),
			ServiceID:         stringWithDefault(lookup, "SHOP_MAIL_SERVICE_ID", ""),
			OrderTemplateID:   stringWithDefault(lookup, "SHOP_MAIL_ORDER_TEMPLATE_ID", defaultOrderTemplate),
			ContactTemplateID: stringWithDefault(lookup, "SHOP_MAIL_CONTACT_TEMPLATE_ID", defaultContactTemplate),
			PublicKey:         stringWithDefault(lookup, "SHOP_MAIL_PUBLIC_KEY", ""),
			AccessToken:       stringWithDefault(lookup, "SHOP_MAIL_ACCESS_TOKEN", ""),
			Timeout:           durationWithDefault(lookup, "SHOP_MAIL_TIMEOUT", defaultMailTimeout),
			SimulatedDelay:    durationWithDefault(lookup, "SHOP_MAIL_SIMULATED_DELAY", defaultSimulatedDelay),
		},
		Cart: CartConfig{
			MaxQuantityPerItem: intWithDefault(lookup, "SHOP_CART_MAX_QUANTITY", defaultMaxQuantity),
		},
		Notices: NoticeConfig{
			TTL: durationWithDefault(lookup, "SHOP_NOTICE_TTL", defaultNoticeTTL),
		},
		Catalog: CatalogConfig{
			SeedFile: stringWithDefault(lookup, "SHOP_CATALOG_SEED_FILE", ""),
		},
		Features: FeatureFlags{
			EnableNewsletter: boolWithDefault(lookup, "SHOP_FEATURE_NEWSLETTER", true),
		},
	}

	// The access token may reference an external secret store.
	resolved, err := resolveSecret(ctx, cfg.Mail.AccessToken, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Mail.AccessToken = resolved

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" {
		return value, nil
	}
	if !isSecretReference(value) {
		return value, nil
	}
	if resolver == nil {
		return "", &SecretError{Ref: strings.TrimSpace(value), Err: errSecretResolverNotConfigured}
	}
	ref := strings.TrimSpace(value)
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Server.SessionCookie) == "" {
		missing = append(missing, "Server.SessionCookie")
	}
	if !cfg.Store.InMemory && strings.TrimSpace(cfg.Store.DataDir) == "" {
		missing = append(missing, "Store.DataDir")
	}
	if cfg.Cart.MaxQuantityPerItem <= 0 {
		missing = append(missing, "Cart.MaxQuantityPerItem")
	}
	if cfg.Notices.TTL <= 0 {
		missing = append(missing, "Notices.TTL")
	}
	if cfg.Mail.Enabled {
		if strings.TrimSpace(cfg.Mail.ServiceID) == "" {
			missing = append(missing, "Mail.ServiceID")
		}
		if strings.TrimSpace(cfg.Mail.PublicKey) == "" {
			missing = append(missing, "Mail.PublicKey")
		}
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://")
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
