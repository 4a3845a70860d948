// Package tooltest provides a recording tool.Runner for tests.
package tooltest

import (
	"context"
	"errors"
	"sync"

	"github.com/backmassage/rawreel/internal/tool"
)

// Runner records every command and delegates the outcome to Handle.
// A nil Handle makes every command succeed without side effects.
type Runner struct {
	mu     sync.Mutex
	calls  []tool.Command
	Handle func(ctx context.Context, c tool.Command) tool.Result
}

// Run implements tool.Runner.
func (r *Runner) Run(ctx context.Context, c tool.Command) tool.Result {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.Handle == nil {
		return tool.Result{}
	}
	return r.Handle(ctx, c)
}

// Calls returns a snapshot of recorded commands.
func (r *Runner) Calls() []tool.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tool.Command(nil), r.calls...)
}

// Count returns the number of recorded commands.
func (r *Runner) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Failure is a Result for a tool that exited non-zero with stderr.
func Failure(stderr string) tool.Result {
	return tool.Result{Stderr: stderr, Err: errors.New("exit status 1")}
}
