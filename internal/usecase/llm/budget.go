package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the call through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the call with domain.ErrTokenBudgetExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// Budget periods, also used as the metrics label.
const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
)

// BudgetStore persists per-period counters so the budget survives restarts
// and is shared by every process using the same store.
type BudgetStore interface {
	Add(ctx context.Context, period, key string, tokens int64) error
	Load(ctx context.Context, key string) (int64, error)
}

// BudgetConfig configures token limits. A zero limit means unlimited.
type BudgetConfig struct {
	Scope        string
	DailyLimit   int64
	MonthlyLimit int64
	Action       BudgetAction
}

type period struct {
	name   string
	layout string
	limit  int64
	used   int64
	start  time.Time
	trunc  func(time.Time) time.Time
}

func (p *period) roll(now time.Time) {
	if start := p.trunc(now); start.After(p.start) {
		p.used = 0
		p.start = start
	}
}

func (p *period) exceeded() bool { return p.limit > 0 && p.used >= p.limit }

func (p *period) remaining() int64 {
	if p.limit == 0 {
		return -1
	}
	return max(p.limit-p.used, 0)
}

// Budget tracks provider tokens consumed by embedding and completion calls.
// Check reads in-memory counters only; Record writes behind to the store.
type Budget struct {
	mu      sync.Mutex
	periods [2]*period
	action  BudgetAction
	scope   string
	now     func() time.Time
	store   BudgetStore
	logger  *zap.Logger
}

// NewBudget creates a budget tracker.
func NewBudget(cfg BudgetConfig, logger *zap.Logger) *Budget {
	b := &Budget{
		action: cfg.Action,
		scope:  cfg.Scope,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
	now := b.now()
	b.periods = [2]*period{
		{name: PeriodDaily, layout: "2006-01-02", limit: cfg.DailyLimit, trunc: startOfDay},
		{name: PeriodMonthly, layout: "2006-01", limit: cfg.MonthlyLimit, trunc: startOfMonth},
	}
	for _, p := range b.periods {
		p.start = p.trunc(now)
	}
	return b
}

// WithStore attaches a persistence store and loads the current counters.
func (b *Budget) WithStore(ctx context.Context, store BudgetStore) *Budget {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	for _, p := range b.periods {
		val, err := store.Load(ctx, b.key(p, now))
		if err != nil {
			b.logger.Warn("Failed to load token budget", zap.String("period", p.name), zap.Error(err))
			continue
		}
		p.used = val
	}

	b.logger.Info("Token budget loaded",
		zap.String("scope", b.scope),
		zap.Int64("daily_used", b.periods[0].used),
		zap.Int64("monthly_used", b.periods[1].used),
	)
	return b
}

func (b *Budget) key(p *period, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, b.scope, p.name, t.Format(p.layout))
}

// Check verifies the budget allows another provider call.
func (b *Budget) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	var over []string
	for _, p := range b.periods {
		p.roll(now)
		if p.exceeded() {
			over = append(over, p.name)
		}
	}
	if len(over) == 0 {
		return nil
	}

	if b.action == BudgetActionReject {
		return fmt.Errorf("%s %v: %w", b.scope, over, domain.ErrTokenBudgetExceeded)
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("scope", b.scope),
		zap.Strings("periods", over),
		zap.Int64("daily_used", b.periods[0].used),
		zap.Int64("monthly_used", b.periods[1].used),
	)
	return nil
}

// Record adds consumed tokens and persists them when a store is attached.
func (b *Budget) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	b.mu.Lock()
	now := b.now()
	type write struct{ period, key string }
	writes := make([]write, 0, len(b.periods))
	for _, p := range b.periods {
		p.roll(now)
		p.used += tokens
		writes = append(writes, write{period: p.name, key: b.key(p, now)})
		metrics.TokenBudgetRemaining.WithLabelValues(p.name).Set(float64(p.remaining()))
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the caller: a canceled request still spent its tokens.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, w := range writes {
		if err := store.Add(ctx, w.period, w.key, tokens); err != nil {
			b.logger.Warn("Failed to persist token budget", zap.String("key", w.key), zap.Error(err))
		}
	}
}

// Used returns tokens consumed in the given period.
func (b *Budget) Used(name string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.period(name); p != nil {
		return p.used
	}
	return 0
}

// Remaining returns tokens left in the given period (-1 if unlimited).
func (b *Budget) Remaining(name string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.period(name); p != nil {
		return p.remaining()
	}
	return -1
}

func (b *Budget) period(name string) *period {
	now := b.now()
	for _, p := range b.periods {
		if p.name == name {
			p.roll(now)
			return p
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
