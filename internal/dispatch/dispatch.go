// Package dispatch runs an operation on the remote executor and falls back
// to the local one when the remote cannot serve it.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/log"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/internal/status"
)

// DefaultMaxErrors is the failure streak after which a fresh offline probe
// answer skips the remote executor entirely.
const DefaultMaxErrors = 3

// Executor runs one operation.
type Executor func(ctx context.Context, req operation.Request) (operation.Result, error)

// Availability is the cached view of remote health.
type Availability interface {
	Cached() (online bool, fresh bool)
	MarkOffline(err error)
}

// Recorder receives dispatch metrics.
type Recorder interface {
	RecordSuccess(op operation.Kind, path operation.Path, latency time.Duration)
	RecordRemoteFailure(op operation.Kind, kind apperrors.Kind)
	RecordLocalFailure(op operation.Kind)
	RecordShortCircuit(op operation.Kind)
}

// Outcome is the result of one dispatch.
type Outcome struct {
	Result operation.Result
	Path   operation.Path

	// RemoteErr is the remote failure that caused a fallback, if any.
	RemoteErr error

	// Skipped is true when the remote executor was not called at all.
	Skipped bool
}

// FellBack reports whether the local executor produced the result.
func (o Outcome) FellBack() bool {
	return o.Path == operation.PathLocal
}

// Options configures a Dispatcher.
type Options struct {
	MaxErrors int
	Stats     Recorder
	Now       func() time.Time
}

// Dispatcher owns the fallback policy. It is safe for concurrent use.
type Dispatcher struct {
	state     *status.State
	avail     Availability
	maxErrors int
	stats     Recorder
	now       func() time.Time
	logger    zerolog.Logger
}

// New creates a dispatcher. avail may be nil, which disables short-circuiting.
func New(state *status.State, avail Availability, opts Options) *Dispatcher {
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		state:     state,
		avail:     avail,
		maxErrors: opts.MaxErrors,
		stats:     opts.Stats,
		now:       opts.Now,
		logger:    log.Component("dispatch"),
	}
}

// Dispatch tries remote first unless the remote is known to be down, then
// local. A nil remote always goes local. Any remote error falls back;
// only caller cancellation is returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, req operation.Request, remote, local Executor) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	switch {
	case remote == nil:
		out.Skipped = true
	case d.shouldSkip(d.state.Snapshot()):
		out.Skipped = true
		if d.stats != nil {
			d.stats.RecordShortCircuit(req.Kind)
		}
		d.logger.Debug().Str("operation", string(req.Kind)).Msg("Remote skipped")
	default:
		start := time.Now()
		result, err := d.runRemote(ctx, req, remote)
		if err == nil {
			d.state.RecordRemoteSuccess()
			if d.stats != nil {
				d.stats.RecordSuccess(req.Kind, operation.PathRemote, time.Since(start))
			}
			return Outcome{Result: result, Path: operation.PathRemote}, nil
		}
		if ctx.Err() != nil || !apperrors.IsFallbackable(err) {
			return Outcome{RemoteErr: err}, err
		}
		d.recordRemoteFailure(req, err)
		out.RemoteErr = err
	}

	start := time.Now()
	result, err := d.runLocal(ctx, req, local)
	if err != nil {
		if ctx.Err() == nil && d.stats != nil {
			d.stats.RecordLocalFailure(req.Kind)
		}
		return out, err
	}
	if d.stats != nil {
		d.stats.RecordSuccess(req.Kind, operation.PathLocal, time.Since(start))
	}

	out.Result = result
	out.Path = operation.PathLocal
	return out, nil
}

// shouldSkip is true only while a fresh probe answer says offline and the
// failure streak has reached the limit.
func (d *Dispatcher) shouldSkip(snap status.ServiceStatus) bool {
	if d.avail == nil || snap.ConsecutiveErrors < d.maxErrors {
		return false
	}
	online, fresh := d.avail.Cached()
	return fresh && !online
}

func (d *Dispatcher) runRemote(ctx context.Context, req operation.Request, remote Executor) (operation.Result, error) {
	result, err := remote(ctx, req)
	if err != nil {
		return operation.Result{}, err
	}
	normalized, err := operation.Normalize(result, d.now())
	if err != nil {
		return operation.Result{}, apperrors.NewBuilder(apperrors.CodeRemoteInvalidAnswer, "remote returned an unusable result").
			Kind(apperrors.KindInvalidResponse).
			Wrap(err).
			Build()
	}
	return normalized, nil
}

func (d *Dispatcher) runLocal(ctx context.Context, req operation.Request, local Executor) (operation.Result, error) {
	if local == nil {
		return operation.Result{}, apperrors.LocalFailure("no local executor configured", nil)
	}

	result, err := local(ctx, req)
	if err != nil {
		if ctx.Err() != nil || apperrors.IsKind(err, apperrors.KindCanceled) {
			return operation.Result{}, err
		}
		if apperrors.IsKind(err, apperrors.KindLocalGenerationFailure) {
			return operation.Result{}, err
		}
		return operation.Result{}, apperrors.LocalFailure("local generation failed", err)
	}

	normalized, err := operation.Normalize(result, d.now())
	if err != nil {
		return operation.Result{}, apperrors.LocalFailure("local generator produced an invalid result", err)
	}
	return normalized, nil
}

func (d *Dispatcher) recordRemoteFailure(req operation.Request, err error) {
	kind := apperrors.Classify(err)
	streak := d.state.RecordRemoteFailure(kind.String(), err)
	if d.avail != nil {
		d.avail.MarkOffline(err)
	}
	if d.stats != nil {
		d.stats.RecordRemoteFailure(req.Kind, kind)
	}

	d.logger.Warn().
		Err(err).
		Str("kind", kind.String()).
		Str("operation", string(req.Kind)).
		Time("timestamp", d.now()).
		Int("consecutive_errors", streak).
		Msg("Remote request failed, falling back to local")
}
