package cache

import (
	"go.uber.org/zap"

	"github.com/quickshop/storefront/pkg/metrics"
)

// Lookup outcomes. Faults carry the internal reason so the fail-open policy
// is explicit: a fault is logged and collapsed to a miss at the public
// boundary, never surfaced to the caller.
type outcome int

const (
	outcomeHit outcome = iota
	outcomeMiss
	outcomeFault
)

type result[T any] struct {
	value   T
	outcome outcome
	reason  error
}

func hit[T any](v T) result[T] {
	return result[T]{value: v, outcome: outcomeHit}
}

func miss[T any]() result[T] {
	return result[T]{outcome: outcomeMiss}
}

func fault[T any](err error) result[T] {
	return result[T]{outcome: outcomeFault, reason: err}
}

// collapse reduces a lookup result to the public (value, ok) shape, recording
// metrics and logging fault reasons on the way out.
func collapse[T any](r result[T], log *zap.Logger, entity string) (T, bool) {
	switch r.outcome {
	case outcomeHit:
		metrics.CacheLookups.WithLabelValues(entity, "hit").Inc()
		return r.value, true
	case outcomeFault:
		metrics.CacheLookups.WithLabelValues(entity, "fault").Inc()
		if log != nil {
			log.Warn("cache fault, degrading to miss", zap.String("entity", entity), zap.Error(r.reason))
		}
	default:
		metrics.CacheLookups.WithLabelValues(entity, "miss").Inc()
	}

	var zero T
	return zero, false
}
