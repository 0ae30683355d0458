package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tarasovcad/matchme-platform/internal/infra/config"
)

// Provider represents a telemetry provider handle. HTTP request metrics are
// collected separately by the transport middleware; this provider covers the
// limiter and cache collectors.
type Provider struct {
	limiterDenials  *prometheus.CounterVec
	limiterFailOpen prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// Attach configures telemetry collectors and returns a provider handle.
// Registration is idempotent: collectors already present in the default
// registry are reused, so building more than one app per process does not
// panic.
func Attach(cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	reg := prometheus.DefaultRegisterer

	denials, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchme",
		Name:      "ratelimit_denials_total",
		Help:      "Rate limit denials by operation and scope",
	}, []string{"operation", "scope"}))
	if err != nil {
		return nil, fmt.Errorf("register denials collector: %w", err)
	}

	failOpen, err := registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "matchme",
		Name:      "ratelimit_fail_open_total",
		Help:      "Rate limit checks admitted because the store was unreachable",
	}))
	if err != nil {
		return nil, fmt.Errorf("register fail-open collector: %w", err)
	}

	hits, err := registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "matchme",
		Name:      "cache_hits_total",
		Help:      "Read-through cache hits",
	}))
	if err != nil {
		return nil, fmt.Errorf("register cache hits collector: %w", err)
	}

	misses, err := registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "matchme",
		Name:      "cache_misses_total",
		Help:      "Read-through cache misses",
	}))
	if err != nil {
		return nil, fmt.Errorf("register cache misses collector: %w", err)
	}

	return &Provider{
		limiterDenials:  denials,
		limiterFailOpen: failOpen,
		cacheHits:       hits,
		cacheMisses:     misses,
	}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
		var zero C
		return zero, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}

	var zero C
	return zero, err
}

// IncDenial records a rate limit denial for an operation/scope pair.
func (p *Provider) IncDenial(operation, scope string) {
	if p == nil {
		return
	}
	p.limiterDenials.WithLabelValues(operation, scope).Inc()
}

// IncFailOpen records a check admitted due to store unavailability.
func (p *Provider) IncFailOpen() {
	if p == nil {
		return
	}
	p.limiterFailOpen.Inc()
}

// IncCacheHit records a cache hit.
func (p *Provider) IncCacheHit() {
	if p == nil {
		return
	}
	p.cacheHits.Inc()
}

// IncCacheMiss records a cache miss.
func (p *Provider) IncCacheMiss() {
	if p == nil {
		return
	}
	p.cacheMisses.Inc()
}
