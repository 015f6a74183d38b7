// Package facade is the single entry point the UI layers use for AI
// operations. It hides whether a result came from the remote service or
// from the local generator; callers read the mode from Status.
package facade

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexdesk/lexdesk/internal/config"
	"github.com/lexdesk/lexdesk/internal/dispatch"
	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/journal"
	"github.com/lexdesk/lexdesk/internal/local"
	"github.com/lexdesk/lexdesk/internal/log"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/internal/probe"
	"github.com/lexdesk/lexdesk/internal/remote"
	"github.com/lexdesk/lexdesk/internal/richtext"
	"github.com/lexdesk/lexdesk/internal/stats"
	"github.com/lexdesk/lexdesk/internal/status"
)

const journalTimeout = 2 * time.Second

// Options wires a Service. Every field is optional; without Remote the
// service runs fully offline.
type Options struct {
	Probe      probe.Config
	MaxErrors  int
	Remote     remote.Executor  // nil: local only
	Generator  *local.Generator // nil: default generator with no latency
	Journal    *journal.Journal // nil: no history
	Stats      *stats.Collector // nil: a fresh collector
	HTTPClient *http.Client     // used by the prober
}

// Service serves the four AI operations with transparent fallback.
type Service struct {
	state      *status.State
	prober     *probe.Prober
	dispatcher *dispatch.Dispatcher
	generator  *local.Generator
	remote     remote.Executor
	reporter   *status.Reporter
	stats      *stats.Collector
	journal    *journal.Journal
	logger     zerolog.Logger
}

// New wires a service from already built components.
func New(opts Options) *Service {
	state := status.NewState()

	if opts.Generator == nil {
		opts.Generator = local.New(local.Options{})
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewCollector()
	}

	s := &Service{
		state:     state,
		generator: opts.Generator,
		remote:    opts.Remote,
		reporter:  status.NewReporter(state),
		stats:     opts.Stats,
		journal:   opts.Journal,
		logger:    log.Component("facade"),
	}

	var avail dispatch.Availability
	if opts.Remote != nil && opts.Probe.BaseURL != "" {
		s.prober = probe.New(opts.Probe, state, opts.HTTPClient)
		avail = s.prober
	}
	s.dispatcher = dispatch.New(state, avail, dispatch.Options{
		MaxErrors: opts.MaxErrors,
		Stats:     opts.Stats,
	})

	return s
}

// NewFromConfig builds every component from cfg, including the journal
// when paths.journal_db is set. An empty remote base_url gives an offline
// service.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	var (
		rem remote.Executor
		err error
	)
	if cfg.Remote.BaseURL != "" {
		rem, err = remote.New(cfg.Remote, nil)
		if err != nil {
			return nil, err
		}
	}

	seed := cfg.Mock.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := local.New(local.Options{
		Rand:       rand.New(rand.NewSource(seed)),
		MinLatency: cfg.Mock.MinLatency.D(),
		MaxLatency: cfg.Mock.MaxLatency.D(),
	})

	var j *journal.Journal
	if cfg.Paths.JournalDB != "" {
		j, err = journal.Open(cfg.Paths.JournalDB)
		if err != nil {
			return nil, err
		}
	}

	return New(Options{
		Probe: probe.Config{
			BaseURL:       cfg.Remote.BaseURL,
			HealthPath:    cfg.HealthPath(),
			Timeout:       cfg.Probe.Timeout.D(),
			CacheInterval: cfg.Probe.CacheInterval.D(),
			Interval:      cfg.Probe.Interval.D(),
			Token:         cfg.Remote.APIKey,
		},
		MaxErrors: cfg.Dispatch.MaxErrors,
		Remote:    rem,
		Generator: gen,
		Journal:   j,
	}), nil
}

// ============================================================
// Operations
// ============================================================

// GenerateText drafts legal text from a prompt.
func (s *Service) GenerateText(ctx context.Context, prompt string, reqCtx map[string]any) (operation.Result, error) {
	return s.result(s.Run(ctx, operation.GenerateText, prompt, reqCtx))
}

// AnalyzeDocument scores a document and lists issues and suggestions.
func (s *Service) AnalyzeDocument(ctx context.Context, document string, reqCtx map[string]any) (operation.Result, error) {
	return s.result(s.Run(ctx, operation.AnalyzeDocument, document, reqCtx))
}

// SummarizeText extracts key points from a text.
func (s *Service) SummarizeText(ctx context.Context, text string, reqCtx map[string]any) (operation.Result, error) {
	return s.result(s.Run(ctx, operation.SummarizeText, text, reqCtx))
}

// AnalyzeContract finds risky clauses in a contract.
func (s *Service) AnalyzeContract(ctx context.Context, contract string, reqCtx map[string]any) (operation.Result, error) {
	return s.result(s.Run(ctx, operation.AnalyzeContract, contract, reqCtx))
}

func (s *Service) result(out dispatch.Outcome, err error) (operation.Result, error) {
	return out.Result, err
}

// Run executes any operation kind and returns the full outcome, including
// which path produced the result.
func (s *Service) Run(ctx context.Context, kind operation.Kind, input string, reqCtx map[string]any) (dispatch.Outcome, error) {
	if !kind.Valid() {
		return dispatch.Outcome{}, apperrors.InvalidInput("unknown operation " + string(kind))
	}
	if strings.TrimSpace(input) == "" {
		return dispatch.Outcome{}, apperrors.NewBuilder(apperrors.CodeInvalidInput, "text is required").
			Kind(apperrors.KindInvalidInput).
			WithContext("operation", string(kind)).
			Build()
	}

	req := s.request(kind, input, reqCtx)

	var remoteExec dispatch.Executor
	if s.remote != nil {
		remoteExec = s.remote.Execute
	}

	out, err := s.dispatcher.Dispatch(ctx, req, remoteExec, s.generator.Execute)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("kind", apperrors.Classify(err).String()).
			Str("operation", string(kind)).
			Time("timestamp", time.Now()).
			Msg("Operation failed")
		return out, err
	}

	s.record(ctx, kind, out)
	return out, nil
}

func (s *Service) request(kind operation.Kind, input string, reqCtx map[string]any) operation.Request {
	req := operation.Request{
		Kind:    kind,
		Text:    input,
		Source:  input,
		Context: reqCtx,
	}

	doc, err := richtext.Convert(input)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Rich text conversion failed, using raw input")
		return req
	}
	req.Text = doc.Text
	if doc.HTML {
		req.Markdown = doc.Markdown
	}
	return req
}

func (s *Service) record(ctx context.Context, kind operation.Kind, out dispatch.Outcome) {
	if s.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	if err := s.journal.Record(ctx, kind, out.Path, out.Result); err != nil {
		s.logger.Warn().Err(err).Str("operation", string(kind)).Msg("Failed to journal result")
	}
}

// ============================================================
// Status
// ============================================================

// Status returns the current service status and capabilities.
func (s *Service) Status() status.Report {
	return s.reporter.Report()
}

// CheckStatus returns the cached availability, probing if it expired.
func (s *Service) CheckStatus(ctx context.Context) bool {
	if s.prober == nil {
		return false
	}
	return s.prober.CheckStatus(ctx)
}

// ForceCheck probes the remote service now, ignoring the cache.
func (s *Service) ForceCheck(ctx context.Context) bool {
	if s.prober == nil {
		return false
	}
	return s.prober.ForceCheck(ctx)
}

// Subscribe delivers the status after every mode change.
func (s *Service) Subscribe() (<-chan status.ServiceStatus, func()) {
	return s.state.Subscribe()
}

// Stats returns dispatch statistics and, with a journal, its size.
func (s *Service) Stats(ctx context.Context) *stats.Stats {
	st := s.stats.Collect()
	if s.journal == nil {
		return st
	}

	n, err := s.journal.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count journal entries")
		return st
	}
	st.JournalEntries = n
	return st
}

// History lists journaled results, newest first. Without a journal the
// history is empty.
func (s *Service) History(ctx context.Context, kind operation.Kind, limit int) ([]journal.Entry, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.List(ctx, kind, limit)
}

// RemoteName names the configured remote provider, or "none".
func (s *Service) RemoteName() string {
	if s.remote == nil {
		return "none"
	}
	return s.remote.Name()
}

// ============================================================
// Lifecycle
// ============================================================

// Start runs the background availability probe until Stop or ctx ends.
func (s *Service) Start(ctx context.Context) {
	if s.prober != nil {
		s.prober.Start(ctx)
	}
}

// Stop stops the background probe and waits for it to exit.
func (s *Service) Stop() {
	if s.prober != nil {
		s.prober.Stop()
	}
}

// Close stops the service and closes the journal.
func (s *Service) Close() error {
	s.Stop()
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}
