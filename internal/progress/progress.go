// Package progress renders download progress on a terminal.
//
// A Bar is fed through its Update method, which matches the fetcher's
// progress callback, so the fetcher itself never touches the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const (
	barWidth    = 40
	barThrottle = 65 * time.Millisecond
)

// Bar draws a byte progress bar that is created lazily on the first update,
// once the total size is known.
type Bar struct {
	out         io.Writer
	description string
	enabled     bool

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	current int64
}

// Option configures a Bar.
type Option func(*Bar)

// WithWriter sets the output the bar is drawn on.
func WithWriter(w io.Writer) Option {
	return func(b *Bar) {
		if w != nil {
			b.out = w
		}
	}
}

// WithEnabled forces rendering on or off regardless of the terminal check.
func WithEnabled(enabled bool) Option {
	return func(b *Bar) {
		b.enabled = enabled
	}
}

// New creates a Bar labelled with description. By default it draws on stderr
// and only when stderr is an interactive terminal.
func New(description string, opts ...Option) *Bar {
	b := &Bar{
		out:         os.Stderr,
		description: description,
		enabled:     IsInteractive(os.Stderr),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Update moves the bar to downloaded out of total bytes.
func (b *Bar) Update(downloaded, total int64) {
	if !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		b.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(b.out),
			progressbar.OptionSetDescription(b.description),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(barThrottle),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	if delta := downloaded - b.current; delta > 0 {
		_ = b.bar.Add64(delta)
		b.current = downloaded
	}
}

// Finish completes the bar and prints message on its own line.
func (b *Bar) Finish(message string) {
	if !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
	}

	_, _ = fmt.Fprintln(b.out)
	_, _ = fmt.Fprintln(b.out, message)
}

// Abort ends a drawn bar with a line break so error output starts on its own line.
// It does nothing when the bar was never drawn.
func (b *Bar) Abort() {
	if !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		return
	}

	_, _ = fmt.Fprintln(b.out)
	b.bar = nil
}

// IsInteractive reports whether f is a terminal worth drawing on.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}

	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
