package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quickshop/storefront/internal/cache"
	"github.com/quickshop/storefront/internal/models"
	"github.com/quickshop/storefront/pkg/logger"
)

const defaultSchedule = "@hourly"

// Sweeper periodically removes cache rows whose freshness window has lapsed,
// so abandoned entries do not accumulate on disk between reads. Reads evict
// expired entries on their own; the sweeper only cleans up what nobody asks
// for anymore.
type Sweeper struct {
	db        *gorm.DB
	freshness time.Duration
	schedule  string
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper over the cache database.
func NewSweeper(db *gorm.DB, freshness time.Duration, opts ...Option) (*Sweeper, error) {
	if db == nil {
		return nil, errors.New("sweeper: db is required")
	}
	if freshness <= 0 {
		freshness = cache.DefaultFreshness
	}

	sweeper := &Sweeper{
		db:        db,
		freshness: freshness,
		schedule:  defaultSchedule,
		now:       time.Now,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper, nil
}

// Start registers the sweep job and launches the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("cache sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce sweeps every cache table sequentially. Also used during graceful
// shutdown and in tests.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := s.now().Add(-s.freshness)
	var errs error

	if result := s.db.WithContext(ctx).
		Where("expires_at != ? AND expires_at < ?", time.Time{}, s.now()).
		Delete(&models.CacheEntry{}); result.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("sweep cache entries: %w", result.Error))
	} else if result.RowsAffected > 0 {
		s.log.Debug("swept cache entries", zap.Int64("count", result.RowsAffected))
	}

	if result := s.db.WithContext(ctx).
		Where("cached_at < ?", cutoff).
		Delete(&models.CachedProduct{}); result.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("sweep product snapshot: %w", result.Error))
	}

	if result := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.ProductCacheMeta{}); result.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("sweep snapshot meta: %w", result.Error))
	}

	return errs
}
