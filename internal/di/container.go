package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/greenfeen/storefront/internal/mailer"
	"github.com/greenfeen/storefront/internal/platform/config"
	"github.com/greenfeen/storefront/internal/repositories"
	"github.com/greenfeen/storefront/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Cart     services.CartService
	Notices  services.NoticeService
	Checkout services.CheckoutService
	Contact  services.ContactService
	Catalog  services.CatalogService
}

// Container wires repositories, services, and the mail transport for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Sender       mailer.Sender
	Services     Services
}

// NewContainer constructs the runtime dependencies. The mail transport is
// chosen here, once, from configuration: the EmailJS client when mail is
// enabled, the demo simulator otherwise.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, logger *zap.Logger) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sender, err := buildSender(cfg, logger)
	if err != nil {
		return nil, err
	}

	svc, err := buildServices(cfg, reg, sender, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Sender:       sender,
		Services:     svc,
	}, nil
}

// Close releases resources such as the embedded store.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildSender(cfg config.Config, logger *zap.Logger) (mailer.Sender, error) {
	if !cfg.Mail.Enabled {
		return mailer.NewSimulator(cfg.Mail.SimulatedDelay, logger.Named("mailer")), nil
	}
	sender, err := mailer.NewEmailJSSender(mailer.EmailJSConfig{
		Endpoint:    cfg.Mail.Endpoint,
		ServiceID:   cfg.Mail.ServiceID,
		PublicKey:   cfg.Mail.PublicKey,
		AccessToken: cfg.Mail.AccessToken,
		Timeout:     cfg.Mail.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build mail sender: %w", err)
	}
	return sender, nil
}

func buildServices(cfg config.Config, reg repositories.Registry, sender mailer.Sender, logger *zap.Logger) (Services, error) {
	var svc Services

	notices, err := services.NewNoticeService(services.NoticeServiceDeps{
		Clock: time.Now,
		TTL:   cfg.Notices.TTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build notice service: %w", err)
	}
	svc.Notices = notices

	eventLogger := func(ctx context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Named("services").Info(event, zapFields...)
	}

	cart, err := services.NewCartService(services.CartServiceDeps{
		Repository:         reg.Carts(),
		Notices:            notices,
		Clock:              time.Now,
		MaxQuantityPerItem: cfg.Cart.MaxQuantityPerItem,
		Logger:             eventLogger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cart

	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:       cart,
		Sender:     sender,
		Notices:    notices,
		Clock:      time.Now,
		TemplateID: cfg.Mail.OrderTemplateID,
		Logger:     eventLogger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkout

	contact, err := services.NewContactService(services.ContactServiceDeps{
		Sender:            sender,
		Notices:           notices,
		TemplateID:        cfg.Mail.ContactTemplateID,
		NewsletterEnabled: cfg.Features.EnableNewsletter,
		Logger:            eventLogger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build contact service: %w", err)
	}
	svc.Contact = contact

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repository: reg.Catalog(),
		Logger:     eventLogger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalog

	return svc, nil
}
