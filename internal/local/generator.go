// Package local produces structurally valid operation results without any
// network access. It backs the facade when the remote service is down and
// serves offline development.
package local

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
)

// Options configures a Generator.
type Options struct {
	// Rand drives template choice, reference subsets and score jitter.
	// Nil seeds from the clock.
	Rand *rand.Rand

	// MinLatency and MaxLatency bound the artificial delay of every call.
	MinLatency time.Duration
	MaxLatency time.Duration
}

// Generator is the local executor for all operation kinds.
type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	minL time.Duration
	maxL time.Duration
}

// New creates a generator.
func New(opts Options) *Generator {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.MaxLatency < opts.MinLatency {
		opts.MaxLatency = opts.MinLatency
	}
	return &Generator{
		rng:  rng,
		minL: opts.MinLatency,
		maxL: opts.MaxLatency,
	}
}

// Capabilities lists what the generator can produce offline.
func (g *Generator) Capabilities() []operation.Kind {
	return append([]operation.Kind(nil), operation.Kinds...)
}

// Execute runs one operation locally after the artificial latency.
// Cancellation during the delay returns the context error.
func (g *Generator) Execute(ctx context.Context, req operation.Request) (operation.Result, error) {
	if err := g.wait(ctx); err != nil {
		return operation.Result{}, err
	}

	switch req.Kind {
	case operation.GenerateText:
		return g.GenerateText(req.Text), nil
	case operation.AnalyzeDocument:
		return AnalyzeDocument(req.Text), nil
	case operation.SummarizeText:
		return g.Summarize(req.Text), nil
	case operation.AnalyzeContract:
		return g.AnalyzeContract(req.Text), nil
	default:
		return operation.Result{}, apperrors.LocalFailure(fmt.Sprintf("no local generator for operation %q", req.Kind), nil)
	}
}

func (g *Generator) wait(ctx context.Context) error {
	d := g.latency()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Generator) latency() time.Duration {
	if g.maxL <= g.minL {
		return g.minL
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minL + time.Duration(g.rng.Int63n(int64(g.maxL-g.minL)))
}

// intn and float are the only rng accessors; rand.Rand is not goroutine safe.
func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

func (g *Generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *Generator) perm(n int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Perm(n)
}
