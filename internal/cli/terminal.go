package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/vijay-prabhu/tripvault/internal/tracker"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorPurple = "\033[35m"
	ColorWhite  = "\033[37m"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal draws a single self-overwriting status line. It is only live
// when stderr is a terminal and stdout is not, so the status line never
// interleaves with the run log.
type Terminal struct {
	Live         bool
	out          io.Writer
	spinnerIndex int
}

// NewTerminal creates a Terminal on stderr
func NewTerminal() *Terminal {
	live := term.IsTerminal(int(os.Stderr.Fd())) && !term.IsTerminal(int(os.Stdout.Fd()))
	return &Terminal{Live: live, out: os.Stderr}
}

// ClearLine erases the status line
func (t *Terminal) ClearLine() {
	if t.Live {
		fmt.Fprint(t.out, "\r\033[K")
	}
}

// Spinner returns the next spinner frame
func (t *Terminal) Spinner() string {
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color wraps text in ANSI color codes when live
func (t *Terminal) Color(color, text string) string {
	if !t.Live {
		return text
	}
	return color + text + ColorReset
}

// Progress returns a callback that redraws the status line, or nil when
// the terminal is not live.
func (t *Terminal) Progress() tracker.ProgressCallback {
	if !t.Live {
		return nil
	}
	var (
		lastPhase tracker.ProgressPhase
		phaseAt   time.Time
	)
	return func(p tracker.Progress) {
		if p.Phase != lastPhase {
			phaseAt = time.Now()
			lastPhase = p.Phase
		}
		if p.StartedAt.IsZero() {
			p.StartedAt = phaseAt
		}
		t.ClearLine()
		fmt.Fprint(t.out, t.Color(PhaseColor(p.Phase), FormatProgress(p, t.Spinner())))
	}
}

// FormatProgress renders one status line
func FormatProgress(p tracker.Progress, spinner string) string {
	if p.Total == 0 {
		if p.Current > 0 {
			return fmt.Sprintf("%s %s: %d", spinner, p.Description, p.Current)
		}
		return fmt.Sprintf("%s %s...", spinner, p.Description)
	}
	msg := fmt.Sprintf("%s: %d/%d (%d%%)", p.Description, p.Current, p.Total, p.Percentage())
	if eta := FormatETA(p.ETA()); eta != "" {
		msg += " (ETA: " + eta + ")"
	}
	return msg
}

// FormatETA formats a duration as a human-readable ETA string
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// PhaseColor returns the color for a pipeline phase
func PhaseColor(phase tracker.ProgressPhase) string {
	switch phase {
	case tracker.PhaseSearching:
		return ColorCyan
	case tracker.PhaseExtracting:
		return ColorPurple
	case tracker.PhaseMatching:
		return ColorBlue
	case tracker.PhaseDownloading:
		return ColorGreen
	default:
		return ColorWhite
	}
}
