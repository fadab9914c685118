package ai

import (
	"context"
	"sync/atomic"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/errors"
)

// Result is the outcome of one background request.
type Result struct {
	Text         string
	Instructions string
	Err          error
}

// Custom reports whether the request carried user instructions.
func (r Result) Custom() bool {
	return r.Instructions != ""
}

// Runner runs one AI request at a time in the background. A request fired
// while another is in flight is rejected with BUSY.
type Runner struct {
	backend Backend
	rec     *activity.Recorder
	busy    atomic.Bool
}

// NewRunner creates a Runner over backend. rec may be nil.
func NewRunner(backend Backend, rec *activity.Recorder) *Runner {
	if rec == nil {
		rec = activity.Discard()
	}
	return &Runner{backend: backend, rec: rec}
}

// Busy reports whether a request is in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Analyze starts a free-text analysis. The result arrives on the returned
// channel, which is closed afterwards.
func (r *Runner) Analyze(ctx context.Context, png []byte, instructions string) (<-chan Result, error) {
	return r.start(ctx, "analyze", png, instructions, r.backend.Analyze)
}

// SmartFill starts a structured auto-fill request.
func (r *Runner) SmartFill(ctx context.Context, png []byte, instructions string) (<-chan Result, error) {
	return r.start(ctx, "smart_fill", png, instructions, r.backend.SmartFill)
}

type call func(ctx context.Context, png []byte, instructions string) (string, error)

func (r *Runner) start(ctx context.Context, op string, png []byte, instructions string, fn call) (<-chan Result, error) {
	if len(png) == 0 {
		return nil, errors.NewInvalidRequest("no image provided")
	}
	if !r.busy.CompareAndSwap(false, true) {
		return nil, errors.NewBusy("ai request")
	}

	r.rec.Event(ctx, activity.KindAI, "request started", "op", op, "custom", instructions != "")
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		text, err := fn(ctx, png, instructions)
		if err != nil {
			r.rec.Error("ai request failed", err, "op", op)
		}
		r.busy.Store(false)
		ch <- Result{Text: text, Instructions: instructions, Err: err}
	}()
	return ch, nil
}
