package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/rawreel/internal/convert"
)

// FrameBar renders the decode driver's progress channel.
type FrameBar struct {
	bar  *progressbar.ProgressBar
	desc string
}

// NewFrameBar returns a bar of total frames writing to out.
func NewFrameBar(out io.Writer, total int, desc string) *FrameBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frame"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
	return &FrameBar{bar: bar, desc: desc}
}

// Update moves the bar to p.Done and notes failures in the description.
func (b *FrameBar) Update(p convert.Progress) {
	if p.Failed > 0 {
		b.bar.Describe(fmt.Sprintf("%s (%d failed)", b.desc, p.Failed))
	}
	_ = b.bar.Set(p.Done)
}

// Drain renders every update from ch until it is closed.
func (b *FrameBar) Drain(ch <-chan convert.Progress) {
	for p := range ch {
		b.Update(p)
	}
	_ = b.bar.Finish()
}

// Spinner animates an indeterminate bar while a subprocess runs.
type Spinner struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	wg   sync.WaitGroup
}

// StartSpinner starts a spinner described by desc on out.
func StartSpinner(out io.Writer, desc string) *Spinner {
	s := &Spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(desc),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionClearOnFinish(),
		),
		stop: make(chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-t.C:
				_ = s.bar.Add(1)
			}
		}
	}()
	return s
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	close(s.stop)
	s.wg.Wait()
	_ = s.bar.Finish()
}
