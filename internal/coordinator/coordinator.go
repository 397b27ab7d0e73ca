package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"metalrates/internal/extract"
	"metalrates/internal/fetcher"
	"metalrates/internal/metrics"
	"metalrates/internal/publish"
)

const (
	// DefaultInterval is the poll interval when no schedule is given.
	DefaultInterval = 30 * time.Minute

	snippetLength   = 800
	snippetInterval = 10 * time.Minute

	// minDelay replaces a non-positive wait from the schedule.
	minDelay = time.Second
)

// Snapshot is the coordinator's view after the most recent cycle. Table
// holds the last successful extraction; a failed cycle only updates
// Diagnostic, OK and LastAttempt.
type Snapshot struct {
	Source      string        `json:"source"`
	Table       extract.Table `json:"table"`
	Strategies  []string      `json:"strategies,omitempty"`
	OK          bool          `json:"ok"`
	Diagnostic  string        `json:"diagnostic,omitempty"`
	LastAttempt time.Time     `json:"last_attempt,omitzero"`
	LastSuccess time.Time     `json:"last_success,omitzero"`
}

// HasData reports whether any cycle has ever succeeded.
func (s Snapshot) HasData() bool {
	return !s.LastSuccess.IsZero()
}

func (s Snapshot) clone() Snapshot {
	s.Table = s.Table.Clone()
	s.Strategies = append([]string(nil), s.Strategies...)
	return s
}

// Options configures a Coordinator.
type Options struct {
	Source   fetcher.Fetcher
	Chain    extract.Chain
	Schedule cron.Schedule
	Products []extract.ProductKey
	Unit     string
	Logger   *slog.Logger
}

// Coordinator runs fetch and extraction cycles, keeps the latest snapshot
// and hands readings to subscribers after every cycle.
type Coordinator struct {
	source   fetcher.Fetcher
	chain    extract.Chain
	schedule cron.Schedule
	products []extract.ProductKey
	unit     string
	logger   *slog.Logger

	group singleflight.Group

	mu   sync.RWMutex
	snap Snapshot

	subMu  sync.Mutex
	subs   map[int]publish.Publisher
	nextID int

	snippetLog rate.Sometimes

	ctx    context.Context
	cancel context.CancelFunc

	startMu   sync.Mutex
	runCancel context.CancelFunc
	loop      conc.WaitGroup
	triggered conc.WaitGroup
}

// New creates a Coordinator. Nothing runs until Start or Refresh.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schedule := opts.Schedule
	if schedule == nil {
		schedule = cron.Every(DefaultInterval)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		source:     opts.Source,
		chain:      opts.Chain,
		schedule:   schedule,
		products:   opts.Products,
		unit:       opts.Unit,
		logger:     logger.With("component", "coordinator"),
		snap:       Snapshot{Source: opts.Source.Source()},
		subs:       make(map[int]publish.Publisher),
		snippetLog: rate.Sometimes{Interval: snippetInterval},
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// Readings returns the readings for the current snapshot. Before the first
// successful cycle every leg is unknown.
func (c *Coordinator) Readings() []publish.Reading {
	return c.readings(c.Snapshot())
}

func (c *Coordinator) readings(s Snapshot) []publish.Reading {
	return publish.Readings(publish.Meta{
		Source:      s.Source,
		Unit:        c.unit,
		LastSuccess: s.OK,
		Diagnostic:  s.Diagnostic,
		UpdatedAt:   s.LastSuccess,
	}, s.Table, c.products)
}

// Refresh runs one cycle. Callers that arrive while a cycle is in flight
// wait for it and share its result instead of starting another.
// The returned error is a *fetcher.FetchError.
func (c *Coordinator) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, _ := c.group.Do(c.source.Source(), func() (any, error) {
		return c.cycle(ctx)
	})
	snap, _ := v.(Snapshot)
	return snap.clone(), err
}

func (c *Coordinator) cycle(ctx context.Context) (Snapshot, error) {
	started := time.Now()
	url := c.source.Source()

	var (
		doc   string
		table extract.Table
		used  []string
		err   error
	)

	var catcher panics.Catcher
	catcher.Try(func() {
		doc, err = c.source.Fetch(ctx)
		if err != nil {
			return
		}
		table, used = c.chain.Extract(doc)
	})
	if r := catcher.Recovered(); r != nil {
		c.logger.Error("refresh panicked", "url", url, "panic", r.String())
		err = fetcher.NewUnexpectedError(url, fmt.Errorf("panic: %v", r.Value))
	}

	// A cycle cut short by shutdown says nothing about the source.
	if err != nil && ctx.Err() != nil {
		c.logger.Debug("refresh abandoned", "url", url, "error", err)
		return c.Snapshot(), fetcher.AsFetchError(url, err)
	}

	var fe *fetcher.FetchError
	switch {
	case err != nil:
		fe = fetcher.AsFetchError(url, err)
	case len(table) == 0:
		fe = fetcher.NewParseFailedError(url)
		c.snippetLog.Do(func() {
			c.logger.Warn("no prices found in document",
				"url", url,
				"snippet", snippet(doc, snippetLength))
		})
	}

	finished := time.Now()

	c.mu.Lock()
	c.snap.LastAttempt = finished
	if fe != nil {
		c.snap.OK = false
		c.snap.Diagnostic = fe.Diagnostic()
	} else {
		c.snap.Table = table
		c.snap.Strategies = used
		c.snap.OK = true
		c.snap.Diagnostic = ""
		c.snap.LastSuccess = finished
	}
	snap := c.snap.clone()
	c.mu.Unlock()

	outcome := "ok"
	if fe != nil {
		outcome = string(fe.Type)
		c.logger.Warn("refresh failed",
			"url", url,
			"type", fe.Type,
			"error", fe.Error(),
			"duration", finished.Sub(started))
	} else {
		c.logger.Info("refresh complete",
			"url", url,
			"products", len(table),
			"strategies", used,
			"duration", finished.Sub(started))
	}
	metrics.ObserveRefresh(outcome, started, finished)

	c.notify(snap)

	if fe != nil {
		return snap, fe
	}
	return snap, nil
}

// Subscribe registers p, hands it the current readings and triggers a
// refresh in the background. The returned func unsubscribes p.
func (c *Coordinator) Subscribe(p publish.Publisher) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = p
	c.subMu.Unlock()

	p.Publish(c.Readings())

	c.subMu.Lock()
	if c.ctx.Err() == nil {
		c.triggered.Go(func() {
			if _, err := c.Refresh(c.ctx); err != nil {
				c.logger.Debug("subscribe refresh failed", "error", err)
			}
		})
	}
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Coordinator) notify(s Snapshot) {
	c.subMu.Lock()
	subs := make([]publish.Publisher, 0, len(c.subs))
	for _, p := range c.subs {
		subs = append(subs, p)
	}
	c.subMu.Unlock()

	if len(subs) == 0 {
		return
	}
	readings := c.readings(s)
	for _, p := range subs {
		p.Publish(readings)
	}
}

// Start begins the polling loop. The first cycle runs immediately.
func (c *Coordinator) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.runCancel != nil {
		return errors.New("coordinator already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.runCancel = cancel
	c.loop.Go(func() { c.run(runCtx) })

	c.logger.Info("rate poller started", "source", c.source.Source())
	return nil
}

// Stop cancels the loop and any triggered refreshes and waits for them.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.startMu.Lock()
	if c.runCancel != nil {
		c.runCancel()
	}
	c.startMu.Unlock()

	// Under subMu so no triggered refresh is added once Wait has begun.
	c.subMu.Lock()
	c.cancel()
	c.subMu.Unlock()

	done := make(chan struct{})
	go func() {
		c.loop.Wait()
		c.triggered.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("rate poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run(ctx context.Context) {
	c.Refresh(ctx)

	for {
		timer := time.NewTimer(c.nextDelay(time.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			c.Refresh(ctx)
		}
	}
}

// nextDelay is the wait before the cycle after now. A schedule with no
// next activation falls back to DefaultInterval.
func (c *Coordinator) nextDelay(now time.Time) time.Duration {
	next := c.schedule.Next(now)
	if next.IsZero() {
		c.logger.Error("poll schedule has no next activation, using default interval",
			"interval", DefaultInterval)
		return DefaultInterval
	}
	if d := next.Sub(now); d > 0 {
		return d
	}
	return minDelay
}

// snippet collapses whitespace in doc and cuts it to at most n runes.
func snippet(doc string, n int) string {
	s := strings.TrimSpace(extract.CollapseSpace(doc))
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
