// Package convert runs the parallel RAW decode pass.
//
// The Driver fans frame plans across a bounded worker pool. It never fails
// fast: every frame is attempted, per-frame errors are kept in a slot keyed
// by the frame's index, and the Report restores discovery order regardless
// of completion order.
package convert

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/rawreel/internal/decode"
	"github.com/backmassage/rawreel/internal/logging"
	"github.com/backmassage/rawreel/internal/planner"
)

// FrameDecoder develops one frame. *decode.Decoder satisfies it.
type FrameDecoder interface {
	Decode(ctx context.Context, src, dst string, p decode.Profile) error
}

// Progress is one completed entry. Done increases by exactly one per send.
type Progress struct {
	Done    int
	Total   int
	Failed  int
	Skipped int
	Frame   string // source of the entry that just completed
}

// Driver runs FramePlans through a FrameDecoder.
type Driver struct {
	Decoder FrameDecoder
	Workers int // <= 0 means runtime.NumCPU()
	Log     *logging.Logger
}

// Run decodes every plan and returns once all have completed or ctx is
// cancelled. If progress is non-nil it receives one value per plan and is
// closed before Run returns; the caller must drain it.
func (d *Driver) Run(ctx context.Context, plans []planner.FramePlan, p decode.Profile, progress chan<- Progress) *Report {
	if progress != nil {
		defer close(progress)
	}
	log := d.Log
	if log == nil {
		log = logging.Discard()
	}

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r := &Report{
		plans: plans,
		errs:  make([]error, len(plans)),
	}

	var (
		mu      sync.Mutex
		done    int
		failed  int
		skipped int
	)
	record := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		r.errs[i] = err
		done++
		if err != nil {
			failed++
		} else if plans[i].Action == planner.ActionReuse {
			skipped++
		}
		if progress != nil {
			progress <- Progress{Done: done, Total: len(plans), Failed: failed, Skipped: skipped, Frame: plans[i].Source}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range plans {
		if gctx.Err() != nil {
			record(i, &decode.FrameError{Source: plans[i].Source, Err: gctx.Err()})
			continue
		}
		i := i
		plan := plans[i]
		if plan.Action == planner.ActionReuse {
			log.Debug("reuse %s", plan.Output)
			record(i, nil)
			continue
		}
		g.Go(func() error {
			err := d.Decoder.Decode(gctx, plan.Source, plan.Output, p)
			if err != nil {
				var fe *decode.FrameError
				if !errors.As(err, &fe) {
					err = &decode.FrameError{Source: plan.Source, Err: err}
				}
				log.Error("%v", err)
			} else {
				log.Debug("decoded %s -> %s", plan.Source, plan.Output)
			}
			record(i, err)
			return nil
		})
	}
	_ = g.Wait()
	return r
}

// Report is the outcome of one decode pass.
type Report struct {
	plans []planner.FramePlan
	errs  []error // slot i belongs to plans[i]
}

// Total is the number of planned frames.
func (r *Report) Total() int { return len(r.plans) }

// Failed returns how many frames failed.
func (r *Report) Failed() int {
	n := 0
	for _, err := range r.errs {
		if err != nil {
			n++
		}
	}
	return n
}

// Outputs returns successful intermediate paths in discovery order.
func (r *Report) Outputs() []string {
	out := make([]string, 0, len(r.plans))
	for i, p := range r.plans {
		if r.errs[i] == nil {
			out = append(out, p.Output)
		}
	}
	return out
}

// Err joins every per-frame error in discovery order; nil if all succeeded.
func (r *Report) Err() error {
	return errors.Join(r.errs...)
}

// AllFailed reports whether there were frames and none succeeded.
func (r *Report) AllFailed() bool {
	return len(r.plans) > 0 && r.Failed() == len(r.plans)
}
