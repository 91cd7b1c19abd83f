// Package watchlist keeps the persisted ticker set and a per-ticker price cache.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/tradedesk/internal/asyncstate"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/models"
)

// StorageKey is the key the ordered ticker list is persisted under.
const StorageKey = "watchlist"

const (
	defaultConcurrency = 8
	defaultTimeout     = 30 * time.Second
)

// PriceLookup fetches one quote.
type PriceLookup interface {
	GetPrice(ctx context.Context, ticker string) (*models.Quote, error)
}

// Entry is one watchlist row. Quote and Err are both nil until the first refresh covers it.
type Entry struct {
	Ticker    string
	Quote     *models.Quote
	Err       error
	UpdatedAt time.Time
}

// Failed reports whether the last lookup for this ticker failed.
func (e Entry) Failed() bool { return e.Err != nil }

// Pending reports whether no refresh has covered this ticker yet.
func (e Entry) Pending() bool { return e.Quote == nil && e.Err == nil }

// Options configures a Manager.
type Options struct {
	// Concurrency bounds simultaneous price lookups during Refresh.
	Concurrency int
	// Defaults seed the list when nothing has ever been persisted.
	Defaults []string
	// Timeout bounds one shared refresh cycle. It is independent of any caller's context.
	Timeout time.Duration
	Logger  *common.Logger
}

// Manager owns the ticker set and the price cache. Safe for concurrent use.
type Manager struct {
	store       interfaces.KeyValueStorage
	prices      PriceLookup
	concurrency int
	defaults    []string
	timeout     time.Duration
	logger      *common.Logger

	// State exposes {loading, error} for Refresh.
	State *asyncstate.Tracker

	mu      sync.RWMutex
	tickers []string
	cache   map[string]Entry

	// persistMu serialises writes so the stored list never goes backwards.
	persistMu sync.Mutex
	group     singleflight.Group
}

// NewManager creates an empty Manager. Call Load to read the persisted set.
func NewManager(store interfaces.KeyValueStorage, prices PriceLookup, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Manager{
		store:       store,
		prices:      prices,
		concurrency: concurrency,
		defaults:    opts.Defaults,
		timeout:     timeout,
		logger:      logger,
		State:       asyncstate.New(nil),
		cache:       make(map[string]Entry),
	}
}

// Load reads the persisted ticker set. A missing value seeds the configured defaults;
// an unreadable or corrupt value yields an empty set and is not an error.
func (m *Manager) Load(ctx context.Context) {
	raw, err := m.store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		m.seedDefaults(ctx)
		return
	case err != nil:
		m.logger.Warn().Str("error", err.Error()).Msg("Failed to read watchlist, starting empty")
		m.replaceTickers(nil)
		return
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		m.logger.Warn().Str("error", err.Error()).Msg("Stored watchlist is corrupt, starting empty")
		m.replaceTickers(nil)
		return
	}
	m.replaceTickers(sanitize(stored))
	m.logger.Debug().Int("count", len(m.Tickers())).Msg("Watchlist loaded")
}

func (m *Manager) seedDefaults(ctx context.Context) {
	tickers := sanitize(m.defaults)
	m.replaceTickers(tickers)
	if len(tickers) == 0 {
		return
	}
	if err := m.persist(ctx); err != nil {
		m.logger.Warn().Str("error", err.Error()).Msg("Failed to persist default watchlist")
	}
}

// sanitize keeps valid symbols in first-seen order and drops duplicates.
func sanitize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t, err := models.ValidateTicker(r)
		if err != nil || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (m *Manager) replaceTickers(tickers []string) {
	m.mu.Lock()
	m.tickers = tickers
	m.mu.Unlock()
}

// Tickers returns a copy of the ordered ticker set.
func (m *Manager) Tickers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.tickers))
	copy(out, m.tickers)
	return out
}

func indexOf(tickers []string, t string) int {
	for i, existing := range tickers {
		if existing == t {
			return i
		}
	}
	return -1
}

// Add appends ticker and persists the set. It returns false without error when the
// ticker is already present, and an error wrapping models.ErrInvalidTicker for bad symbols.
func (m *Manager) Add(ctx context.Context, ticker string) (bool, error) {
	t, err := models.ValidateTicker(ticker)
	if err != nil {
		return false, fmt.Errorf("%q: %w", ticker, err)
	}

	m.mu.Lock()
	if indexOf(m.tickers, t) >= 0 {
		m.mu.Unlock()
		return false, nil
	}
	m.tickers = append(m.tickers, t)
	m.mu.Unlock()

	if err := m.persist(ctx); err != nil {
		m.mu.Lock()
		if i := indexOf(m.tickers, t); i >= 0 {
			m.tickers = append(m.tickers[:i:i], m.tickers[i+1:]...)
		}
		m.mu.Unlock()
		return false, fmt.Errorf("failed to save watchlist: %w", err)
	}

	m.logger.Info().Str("ticker", t).Msg("Added to watchlist")
	return true, nil
}

// Remove drops ticker and persists the set. Removing an absent ticker is a no-op.
func (m *Manager) Remove(ctx context.Context, ticker string) error {
	t := models.NormalizeTicker(ticker)

	m.mu.Lock()
	i := indexOf(m.tickers, t)
	if i < 0 {
		m.mu.Unlock()
		return nil
	}
	m.tickers = append(m.tickers[:i:i], m.tickers[i+1:]...)
	delete(m.cache, t)
	m.mu.Unlock()

	if err := m.persist(ctx); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}

	m.logger.Info().Str("ticker", t).Msg("Removed from watchlist")
	return nil
}

// persist writes the current set. The set is read under persistMu so concurrent
// writers always store the latest state.
func (m *Manager) persist(ctx context.Context) error {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	data, err := json.Marshal(m.Tickers())
	if err != nil {
		return err
	}
	return m.store.Set(ctx, StorageKey, string(data))
}

// Entries returns one row per current ticker, in watchlist order.
func (m *Manager) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.tickers))
	for i, t := range m.tickers {
		if e, ok := m.cache[t]; ok {
			out[i] = e
			continue
		}
		out[i] = Entry{Ticker: t}
	}
	return out
}

// Refresh looks up every current ticker concurrently and replaces the price cache once
// all lookups settle. A failed lookup marks only its own entry. Overlapping calls share
// one in-flight cycle. Results are keyed by ticker, so tickers removed mid-refresh are
// dropped and tickers added mid-refresh stay pending.
//
// The shared cycle is detached from the caller that started it and bounded by the
// configured timeout. A caller whose ctx ends stops waiting and gets ctx.Err(); the
// cycle still completes for everyone else.
func (m *Manager) Refresh(ctx context.Context) ([]Entry, error) {
	err := asyncstate.Do(ctx, m.State, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ch := m.group.DoChan("refresh", func() (interface{}, error) {
			cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
			defer cancel()
			return nil, m.refresh(cycleCtx)
		})
		select {
		case r := <-ch:
			if r.Shared {
				m.logger.Debug().Msg("Joined in-flight watchlist refresh")
			}
			return r.Err
		case <-ctx.Done():
			m.logger.Debug().Msg("Stopped waiting for watchlist refresh")
			return ctx.Err()
		}
	})
	if err != nil {
		return nil, err
	}
	return m.Entries(), nil
}

func (m *Manager) refresh(ctx context.Context) error {
	tickers := m.Tickers()
	results := make([]Entry, len(tickers))

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, t := range tickers {
		g.Go(func() error {
			q, err := m.prices.GetPrice(ctx, t)
			results[i] = Entry{Ticker: t, Quote: q, Err: err, UpdatedAt: time.Now()}
			if err != nil {
				results[i].Quote = nil
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	failed := 0
	m.mu.Lock()
	fresh := make(map[string]Entry, len(results))
	for _, r := range results {
		if indexOf(m.tickers, r.Ticker) < 0 {
			continue
		}
		if r.Err != nil {
			failed++
		}
		fresh[r.Ticker] = r
	}
	m.cache = fresh
	m.mu.Unlock()

	m.logger.Debug().Int("tickers", len(tickers)).Int("failed", failed).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("Watchlist refreshed")
	return nil
}
