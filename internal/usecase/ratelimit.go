package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tarasovcad/matchme-platform/internal/core/port"
)

// ErrThrottled marks an action denied by the rate limiter.
var ErrThrottled = errors.New("rate limit exceeded")

// ThrottledError carries the denying decision so transport can surface the
// per-scope message and retry hint.
type ThrottledError struct {
	Decision Decision
}

func (e *ThrottledError) Error() string { return e.Decision.Message }

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

// SubjectScope enumerates which identity a rule throttles.
type SubjectScope string

const (
	ScopeUser SubjectScope = "user"
	ScopeIP   SubjectScope = "ip"
	ScopePair SubjectScope = "pair"
)

// Rule is one sliding-window quota attached to an operation.
type Rule struct {
	Scope  SubjectScope
	Quota  int
	Window time.Duration
}

// Subject carries the identities a request is throttled by. PairTarget is the
// id of the entity the request acts on; the pair key combines it with UserID
// so a single user cannot exhaust a shared quota against one target.
type Subject struct {
	UserID     string
	IP         string
	PairTarget string
}

// Decision is the limiter verdict returned to the action layer.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Scope      SubjectScope
	Message    string
	// Degraded is true when the store was unreachable and the check was
	// admitted under the fail-open policy.
	Degraded bool
}

// LimiterMetrics captures telemetry hooks for limiter decisions.
type LimiterMetrics interface {
	IncDenial(operation, scope string)
	IncFailOpen()
}

// Limiter enforces the enumerated per-operation quota table. Rules for one
// operation are checked in parallel and all must admit; when several deny,
// the declared order (user before ip before pair) picks the user-facing
// message so responses stay deterministic.
//
// Store failures never deny: availability outranks strict enforcement here,
// so every store error resolves to an admit-with-warning decision.
type Limiter struct {
	store   port.RateLimitStore
	rules   map[string][]Rule
	logger  *zap.Logger
	now     func() time.Time
	metrics LimiterMetrics
}

// NewLimiter constructs a limiter over the provided store and quota table.
func NewLimiter(store port.RateLimitStore, rules map[string][]Rule) *Limiter {
	return &Limiter{
		store:  store,
		rules:  rules,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// WithLogger attaches a structured logger to the limiter.
func (l *Limiter) WithLogger(logger *zap.Logger) *Limiter {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithClock overrides the clock, primarily for deterministic testing.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if now != nil {
		l.now = now
	}
	return l
}

// WithMetrics wires telemetry observers for limiter decisions.
func (l *Limiter) WithMetrics(metrics LimiterMetrics) *Limiter {
	if metrics != nil {
		l.metrics = metrics
	}
	return l
}

type ruleOutcome struct {
	checked  bool
	decision Decision
}

// Check evaluates every rule configured for the operation against the
// subject. Rules whose identity is absent (e.g. no pair target) are skipped.
func (l *Limiter) Check(ctx context.Context, operation string, subject Subject) Decision {
	rules, ok := l.rules[operation]
	if !ok || len(rules) == 0 {
		l.logger.Warn("no rate limit rules configured for operation", zap.String("operation", operation))
		return Decision{Allowed: true, Remaining: math.MaxInt32}
	}

	now := l.now()
	outcomes := make([]ruleOutcome, len(rules))

	g, gctx := errgroup.WithContext(ctx)
	for i, rule := range rules {
		i, rule := i, rule

		identifier, ok := l.identifier(operation, rule, subject)
		if !ok {
			continue
		}

		g.Go(func() error {
			outcomes[i] = ruleOutcome{checked: true, decision: l.evaluate(gctx, operation, rule, identifier, now)}
			return nil
		})
	}
	_ = g.Wait()

	// Declared rule order decides which denial message wins.
	var best *Decision
	for i := range outcomes {
		if !outcomes[i].checked {
			continue
		}
		d := outcomes[i].decision
		if !d.Allowed {
			return d
		}
		if best == nil || d.Remaining < best.Remaining {
			snapshot := d
			best = &snapshot
		}
	}

	if best == nil {
		// No rule had an identity to check against.
		return Decision{Allowed: true, Remaining: math.MaxInt32}
	}
	return *best
}

func (l *Limiter) identifier(operation string, rule Rule, subject Subject) (string, bool) {
	switch rule.Scope {
	case ScopeUser:
		if subject.UserID == "" {
			return "", false
		}
		return fmt.Sprintf("user:%s:%s", operation, subject.UserID), true
	case ScopeIP:
		if subject.IP == "" {
			return "", false
		}
		return fmt.Sprintf("ip:%s:%s", operation, subject.IP), true
	case ScopePair:
		if subject.UserID == "" || subject.PairTarget == "" {
			return "", false
		}
		return fmt.Sprintf("pair:%s:%s:%s", operation, subject.UserID, subject.PairTarget), true
	default:
		return "", false
	}
}

func (l *Limiter) evaluate(ctx context.Context, operation string, rule Rule, identifier string, now time.Time) Decision {
	state, err := l.store.Allow(ctx, identifier, rule.Quota, rule.Window, now)
	if err != nil {
		l.logger.Warn("rate limit store unreachable, admitting",
			zap.String("operation", operation),
			zap.String("scope", string(rule.Scope)),
			zap.Error(err),
		)
		if l.metrics != nil {
			l.metrics.IncFailOpen()
		}
		return Decision{
			Allowed:   true,
			Limit:     rule.Quota,
			Remaining: rule.Quota,
			ResetAt:   now.Add(rule.Window),
			Scope:     rule.Scope,
			Degraded:  true,
		}
	}

	reset := now.Add(rule.Window)
	if state.HasOldest {
		reset = state.Oldest.Add(rule.Window)
	}

	decision := Decision{
		Allowed: state.Admitted,
		Limit:   rule.Quota,
		Scope:   rule.Scope,
		ResetAt: reset,
	}

	if remaining := rule.Quota - state.Count; remaining > 0 {
		decision.Remaining = remaining
	}

	if !state.Admitted {
		decision.RetryAfter = reset.Sub(now)
		if decision.RetryAfter < 0 {
			decision.RetryAfter = 0
		}
		decision.Message = denialMessage(rule.Scope, decision.RetryAfter)
		if l.metrics != nil {
			l.metrics.IncDenial(operation, string(rule.Scope))
		}
	}

	return decision
}

func denialMessage(scope SubjectScope, retryAfter time.Duration) string {
	wait := retryAfterText(retryAfter)
	switch scope {
	case ScopeIP:
		return fmt.Sprintf("Too many requests from your network. Please try again in %s.", wait)
	case ScopePair:
		return fmt.Sprintf("You've reached the limit for this target. Please try again in %s.", wait)
	default:
		return fmt.Sprintf("You're doing that too often. Please try again in %s.", wait)
	}
}

func retryAfterText(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	if seconds < 60 {
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes := (seconds + 59) / 60
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
