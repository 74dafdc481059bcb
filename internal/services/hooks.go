package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Hook is a unit of post-commit work. Its error is logged and dropped.
type Hook func(ctx context.Context) error

// HookRunner executes post-commit hooks outside the request's control flow.
type HookRunner interface {
	Run(ctx context.Context, name string, log *slog.Logger, hook Hook)
}

// DetachedRunner runs each hook in its own goroutine. The hook context keeps the
// request's values but not its cancellation, and gets its own timeout.
type DetachedRunner struct {
	Timeout time.Duration
	wg      sync.WaitGroup
}

func NewDetachedRunner(timeout time.Duration) *DetachedRunner {
	return &DetachedRunner{Timeout: timeout}
}

func (d *DetachedRunner) Run(ctx context.Context, name string, log *slog.Logger, hook Hook) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		runHook(hookCtx, name, log, hook)
	}()
}

// Wait blocks until all started hooks have returned. Called on shutdown.
func (d *DetachedRunner) Wait() {
	d.wg.Wait()
}

// InlineRunner runs hooks synchronously on the caller's goroutine.
type InlineRunner struct{}

func (InlineRunner) Run(ctx context.Context, name string, log *slog.Logger, hook Hook) {
	runHook(context.WithoutCancel(ctx), name, log, hook)
}

func runHook(ctx context.Context, name string, log *slog.Logger, hook Hook) {
	if log == nil {
		log = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("post-commit hook panicked", "hook", name, "panic", r)
		}
	}()
	if err := hook(ctx); err != nil {
		log.Warn("post-commit hook failed", "hook", name, "error", err)
	}
}
