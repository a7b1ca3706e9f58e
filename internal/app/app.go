// internal/app/app.go
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/checkout"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/payment"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/review"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/localstore"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"github.com/your-org/storefront/internal/remote"
)

// App wires the storefront together: the remote document backend, local
// device storage, the domain stores and the checkout flow.
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	Remote remote.Service
	Local  *localstore.Store

	Users    *user.Service
	Products *product.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Orders   *order.Store
	Reviews  *review.Store
	Gateway  *payment.UPIGateway
	Checkout *checkout.Service
	Receipts *pdf.Service
}

// New builds the application from configuration. The remote backend is
// selected by config: redis for the hosted service, memory for local-only
// mode.
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	var svc remote.Service
	switch cfg.Remote.Backend {
	case "memory":
		logger.Info("running in local-only mode, nothing leaves this device")
		svc = remote.NewMemoryService()
	default:
		redisSvc, err := remote.NewRedisService(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect remote backend: %w", err)
		}
		if err := redisSvc.Health(); err != nil {
			_ = redisSvc.Close()
			return nil, fmt.Errorf("remote backend health check failed: %w", err)
		}
		svc = redisSvc
	}

	local, err := localstore.New(cfg.Storage.Path)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	cartStore := cart.NewStore(local, logger.WithField("store", "cart"))
	orderStore := order.NewStore(svc, local, logger.WithField("store", "order"))
	gateway := payment.NewUPIGateway(cfg)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Remote:   svc,
		Local:    local,
		Users:    user.NewService(svc, cfg),
		Products: product.NewStore(svc, cfg, logger),
		Cart:     cartStore,
		Wishlist: wishlist.NewStore(svc, local, logger.WithField("store", "wishlist")),
		Orders:   orderStore,
		Reviews:  review.NewStore(orderStore, local, logger.WithField("store", "review")),
		Gateway:  gateway,
		Checkout: checkout.NewService(cartStore, orderStore, gateway, logger.WithField("service", "checkout")),
		Receipts: pdf.NewService(cfg),
	}
	return a, nil
}

// Start opens the live catalog subscription.
func (a *App) Start(ctx context.Context) error {
	if err := a.Products.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to start catalog subscription: %w", err)
	}
	return nil
}

// Stop tears down subscriptions, drains pending writes and closes the remote
// connection.
func (a *App) Stop() {
	a.Products.Unsubscribe()
	a.Orders.Unsubscribe()
	a.Wishlist.Flush()
	if err := a.Remote.Close(); err != nil {
		a.Logger.WithError(err).Warn("failed to close remote backend")
	}
}
