package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// progressObserver draws the strategy chain as a progress bar. The bar is
// created on the first attempt, once the chain length is known.
//
// It is also the console log writer: each log line clears the bar first and
// the bar is redrawn after it, so the two never share a terminal line.
type progressObserver struct {
	mu      sync.Mutex
	out     io.Writer
	visible bool
	bar     *progressbar.ProgressBar
}

func newProgress(out io.Writer, visible bool) *progressObserver {
	return &progressObserver{out: out, visible: visible}
}

func (p *progressObserver) OnAttempt(index, total int, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetVisibility(p.visible),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	p.bar.Describe(fmt.Sprintf("[cyan]%-18s[reset]", name))
}

func (p *progressObserver) OnResult(name string, rows int, found bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Write passes a log line through, clearing the bar around it
func (p *progressObserver) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	drawn := p.bar != nil && p.visible && !p.bar.IsFinished()
	if drawn {
		_ = p.bar.Clear()
	}
	n, err := p.out.Write(b)
	if drawn {
		_ = p.bar.Add(0)
	}
	return n, err
}

// Finish completes the bar and clears it from the terminal
func (p *progressObserver) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
