// Package progress provides progress sinks for the texture pass.
package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/tragoedia0722/texopt/pkg/applier"
)

const (
	defaultWidth = 80
	barWidth     = 24
	stepCount    = 10
)

// Terminal draws progress on w. On a terminal it redraws one line with a
// bar; otherwise it prints a line per 10% step.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	tty      bool
	width    int
	lastStep int
	drawn    bool
}

var _ applier.ProgressSink = (*Terminal)(nil)

func NewTerminal(w io.Writer) *Terminal {
	t := &Terminal{w: w, width: defaultWidth, lastStep: -1}

	if f, ok := w.(interface{ Fd() uintptr }); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			t.tty = true
			if width, _, err := term.GetSize(fd); err == nil && width > 0 {
				t.width = width
			}
		}
	}
	return t
}

func (t *Terminal) Begin(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastStep = -1
	if !t.tty {
		fmt.Fprintln(t.w, title)
	}
}

func (t *Terminal) Update(title, message string, fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tty {
		fmt.Fprint(t.w, "\r"+renderBar(title, message, fraction, t.width))
		t.drawn = true
		return
	}

	step := int(math.Floor(fraction * stepCount))
	if step <= t.lastStep {
		return
	}
	t.lastStep = step
	fmt.Fprintln(t.w, fit(fmt.Sprintf("%s: %3d%% %s", title, percent(fraction), message), t.width))
}

func (t *Terminal) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tty && t.drawn {
		fmt.Fprintln(t.w)
	}
	t.drawn = false
}

// renderBar renders a full-width line, padded so it overwrites the last one.
func renderBar(title, message string, fraction float64, width int) string {
	filled := int(math.Round(clamp(fraction) * barWidth))
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %3d%% %s", title, bar, percent(fraction), message)
	return runewidth.FillRight(fit(line, width), width-1)
}

// fit truncates s to the display width of the terminal, keeping the last
// column free.
func fit(s string, width int) string {
	if width <= 1 {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}

func percent(fraction float64) int {
	return int(math.Round(clamp(fraction) * 100))
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
