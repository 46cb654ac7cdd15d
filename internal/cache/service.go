package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quickshop/storefront/pkg/logger"
	"github.com/quickshop/storefront/pkg/metrics"
)

// Scope names the caches an invalidation applies to.
type Scope string

const (
	ScopeProducts Scope = "products"
	ScopeUser     Scope = "user"
	ScopeAll      Scope = "all"
)

// Service owns both entity caches and coordinates cross-cutting
// invalidation. It is the only accessor for cached entities; callers never
// touch the underlying adapters.
type Service struct {
	Products *ProductCache
	Users    *UserCache

	log *zap.Logger
}

// Option customises the Service.
type Option func(*options)

type options struct {
	freshness time.Duration
	slotStore Store
}

// WithFreshness overrides the freshness window applied to both caches.
func WithFreshness(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.freshness = d
		}
	}
}

// WithSlotStore overrides the key-value backend for the user slot, e.g. with
// a Redis store when one is configured.
func WithSlotStore(store Store) Option {
	return func(o *options) {
		if store != nil {
			o.slotStore = store
		}
	}
}

// NewService wires both caches over the supplied database handle.
func NewService(db *gorm.DB, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("cache: service requires a database handle")
	}

	cfg := options{freshness: DefaultFreshness}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.slotStore == nil {
		cfg.slotStore = NewDatabaseStore(db)
	}

	productStore, err := NewProductStore(db, cfg.freshness)
	if err != nil {
		return nil, err
	}
	products, err := NewProductCache(productStore, cfg.freshness)
	if err != nil {
		return nil, err
	}
	users, err := NewUserCache(cfg.slotStore, cfg.freshness)
	if err != nil {
		return nil, err
	}

	return &Service{
		Products: products,
		Users:    users,
		log:      logger.WithModule("cache"),
	}, nil
}

// Invalidate clears the named cache(s). Mutating API calls await this so the
// local mirror can never outlive a successful server-side mutation.
func (s *Service) Invalidate(ctx context.Context, scope Scope) error {
	var errs error

	switch scope {
	case ScopeProducts:
		errs = s.invalidateProducts(ctx)
	case ScopeUser:
		errs = s.invalidateUser(ctx)
	case ScopeAll:
		errs = multierr.Append(s.invalidateProducts(ctx), s.invalidateUser(ctx))
	default:
		return fmt.Errorf("cache: unknown invalidation scope %q", scope)
	}

	if errs != nil {
		s.log.Warn("invalidation incomplete", zap.String("scope", string(scope)), zap.Error(errs))
	}
	return errs
}

func (s *Service) invalidateProducts(ctx context.Context) error {
	metrics.CacheEvictions.WithLabelValues("products", "invalidated").Inc()
	return s.Products.Clear(ctx)
}

func (s *Service) invalidateUser(ctx context.Context) error {
	metrics.CacheEvictions.WithLabelValues("user", "invalidated").Inc()
	return s.Users.Clear(ctx)
}
