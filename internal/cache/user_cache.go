package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/models"
	"github.com/quickshop/storefront/pkg/logger"
	"github.com/quickshop/storefront/pkg/metrics"
)

const userSlotKey = "user:current"

// envelopeVersion is bumped when the persisted envelope shape changes;
// entries written by an older version are discarded on read.
const envelopeVersion = 1

// userEnvelope is the persisted wrapper around the profile. The whole
// envelope is base64-encoded before it reaches the key-value slot. That
// encoding is a reversible obfuscation used only to keep casual inspection
// honest and to make corruption detectable; it is not encryption and provides
// no confidentiality.
type userEnvelope struct {
	Data      models.UserProfile `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
	Hash      string             `json:"hash"`
	Version   int                `json:"version"`
}

// UserCache is the single-slot cache for the signed-in user's profile.
type UserCache struct {
	store     Store
	freshness time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewUserCache builds the facade over a key-value slot backend.
func NewUserCache(store Store, freshness time.Duration) (*UserCache, error) {
	if store == nil {
		return nil, errors.New("cache: user cache requires a store")
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &UserCache{
		store:     store,
		freshness: freshness,
		now:       time.Now,
		log:       logger.WithModule("cache.user"),
	}, nil
}

// Set wraps the profile with timestamp and integrity hash and writes the
// encoded blob to the fixed slot.
func (c *UserCache) Set(ctx context.Context, user models.UserProfile) error {
	hash, err := Fingerprint(user)
	if err != nil {
		return err
	}

	envelope := userEnvelope{
		Data:      user,
		Timestamp: c.now(),
		Hash:      hash,
		Version:   envelopeVersion,
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("cache: encode user envelope: %w", err)
	}

	blob := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(blob, raw)

	if err := c.store.Set(ctx, userSlotKey, blob, c.freshness); err != nil {
		c.log.Warn("user slot write failed", zap.Error(err))
		return err
	}
	return nil
}

// Get decodes and verifies the slot. Decode failures, version or hash
// mismatches, and expired entries all clear the slot and report a miss.
func (c *UserCache) Get(ctx context.Context) (*models.UserProfile, bool) {
	return collapse(c.lookup(ctx), c.log, "user")
}

func (c *UserCache) lookup(ctx context.Context) result[*models.UserProfile] {
	blob, ok, err := c.store.Get(ctx, userSlotKey)
	if err != nil {
		return fault[*models.UserProfile](err)
	}
	if !ok {
		return miss[*models.UserProfile]()
	}

	envelope, err := c.decode(blob)
	if err != nil {
		c.evict(ctx, "integrity")
		return miss[*models.UserProfile]()
	}

	if c.now().Sub(envelope.Timestamp) > c.freshness {
		c.evict(ctx, "expired")
		return miss[*models.UserProfile]()
	}

	hash, err := Fingerprint(envelope.Data)
	if err != nil || hash != envelope.Hash {
		// Hash disagreement means corruption or tampering, not staleness.
		c.evict(ctx, "integrity")
		return miss[*models.UserProfile]()
	}

	profile := envelope.Data
	return hit(&profile)
}

// IsExpired is a freshness probe: it decodes the envelope for the timestamp
// but skips the hash recompute a full Get performs.
func (c *UserCache) IsExpired(ctx context.Context) bool {
	blob, ok, err := c.store.Get(ctx, userSlotKey)
	if err != nil || !ok {
		return true
	}

	envelope, err := c.decode(blob)
	if err != nil {
		return true
	}

	return c.now().Sub(envelope.Timestamp) > c.freshness
}

// Clear removes the slot.
func (c *UserCache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, userSlotKey)
}

func (c *UserCache) decode(blob []byte) (*userEnvelope, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(raw, blob)
	if err != nil {
		return nil, fmt.Errorf("cache: decode user blob: %w", err)
	}

	var envelope userEnvelope
	if err := json.Unmarshal(raw[:n], &envelope); err != nil {
		return nil, fmt.Errorf("cache: decode user envelope: %w", err)
	}
	if envelope.Version != envelopeVersion {
		return nil, fmt.Errorf("cache: unsupported envelope version %d", envelope.Version)
	}
	return &envelope, nil
}

func (c *UserCache) evict(ctx context.Context, reason string) {
	metrics.CacheEvictions.WithLabelValues("user", reason).Inc()
	if err := c.store.Delete(ctx, userSlotKey); err != nil {
		c.log.Warn("user slot eviction failed", zap.Error(err))
	}
}
