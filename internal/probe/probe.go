// Package probe answers "is the remote AI service usable right now?"
// with a cached health check.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/log"
	"github.com/lexdesk/lexdesk/internal/status"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultCacheInterval = 30 * time.Second

	availabilityKey = "remote_available"
)

// Config configures a Prober.
type Config struct {
	BaseURL       string
	HealthPath    string        // Default: /health
	Timeout       time.Duration // Per probe
	CacheInterval time.Duration // How long a probe answer is reused
	Interval      time.Duration // Background loop period, 0 disables the loop
	Token         string        // Optional bearer token
}

// Prober checks remote availability and keeps the answer for CacheInterval.
// It never retries: one failed probe reports offline until the next probe.
type Prober struct {
	cfg    Config
	client *http.Client
	state  *status.State
	cache  *gocache.Cache
	group  singleflight.Group
	logger zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New creates a prober writing its results into state.
// A nil client gets a plain client; the probe timeout comes from the context.
func New(cfg Config, state *status.State, client *http.Client) *Prober {
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/health"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheInterval <= 0 {
		cfg.CacheInterval = defaultCacheInterval
	}
	if client == nil {
		client = &http.Client{}
	}

	return &Prober{
		cfg:    cfg,
		client: client,
		state:  state,
		// No janitor goroutine; expired entries are simply not returned.
		cache:  gocache.New(cfg.CacheInterval, 0),
		logger: log.Component("probe"),
	}
}

// CheckStatus returns the cached availability when it is still fresh and
// probes otherwise. Concurrent callers share a single probe.
func (p *Prober) CheckStatus(ctx context.Context) bool {
	if online, fresh := p.Cached(); fresh {
		return online
	}

	v, _, _ := p.group.Do(availabilityKey, func() (interface{}, error) {
		if online, fresh := p.Cached(); fresh {
			return online, nil
		}
		// One caller giving up must not fail the probe for the others.
		return p.probe(context.WithoutCancel(ctx)), nil
	})
	return v.(bool)
}

// ForceCheck always probes, bypassing the cache.
func (p *Prober) ForceCheck(ctx context.Context) bool {
	return p.probe(ctx)
}

// Cached returns the cached availability without any network access.
// fresh is false when no answer is cached or it has expired.
func (p *Prober) Cached() (online bool, fresh bool) {
	v, found := p.cache.Get(availabilityKey)
	if !found {
		return false, false
	}
	return v.(bool), true
}

// MarkOffline caches an offline answer after a failed remote call.
func (p *Prober) MarkOffline(err error) {
	p.cache.Set(availabilityKey, false, gocache.DefaultExpiration)
	p.logger.Debug().Err(err).Msg("Remote marked offline after request failure")
}

// Start probes once and then every Interval until ctx ends or Stop is called.
func (p *Prober) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(loopCtx)

	p.logger.Info().
		Str("url", p.healthURL()).
		Dur("interval", p.cfg.Interval).
		Dur("cache_interval", p.cfg.CacheInterval).
		Msg("Availability prober started")
}

// Stop ends the background loop and waits for it.
func (p *Prober) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	p.logger.Info().Msg("Availability prober stopped")
}

func (p *Prober) loop(ctx context.Context) {
	defer p.wg.Done()

	p.probe(ctx)
	if p.cfg.Interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

// probe issues one health request and records the answer.
func (p *Prober) probe(ctx context.Context) bool {
	if ctx.Err() != nil {
		online, _ := p.Cached()
		return online
	}

	before := p.state.Snapshot()
	start := time.Now()
	err := p.fetchHealth(ctx)
	if err != nil && ctx.Err() != nil {
		// An abandoned probe says nothing about the remote.
		online, _ := p.Cached()
		p.logger.Debug().Err(err).Msg("Health probe canceled")
		return online
	}
	online := err == nil

	p.cache.Set(availabilityKey, online, gocache.DefaultExpiration)
	p.state.RecordProbe(online, err)

	event := p.logger.Debug()
	switch {
	case online && !before.IsOnline:
		event = p.logger.Info()
	case !online && before.IsOnline:
		event = p.logger.Warn()
	}
	event.
		Bool("online", online).
		Dur("latency", time.Since(start)).
		Err(err).
		Msg("Health probe")

	return online
}

func (p *Prober) fetchHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL(), nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeRemoteNotConfigured, "invalid health url", apperrors.KindInvalidInput)
	}
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.FromTransport(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.FromStatus(resp.StatusCode, "")
	}
	return nil
}

func (p *Prober) healthURL() string {
	return fmt.Sprintf("%s%s", p.cfg.BaseURL, p.cfg.HealthPath)
}
