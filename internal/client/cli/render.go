package cli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
)

// Test seams for terminal detection.
var (
	isTerminal   = term.IsTerminal
	terminalSize = term.GetSize
)

const (
	defaultWidth = 80
	nameWidth    = 24
	minBar       = 10
	maxBar       = 40
)

type renderer struct {
	w     io.Writer
	tty   bool
	width int

	// tty mode: lines drawn by the previous frame.
	drawn int
	// line mode: last printed state per task.
	seen map[string]string
}

func newRenderer(w io.Writer) *renderer {
	r := &renderer{w: w, width: defaultWidth, seen: map[string]string{}}
	if f, ok := w.(interface{ Fd() uintptr }); ok && isTerminal(int(f.Fd())) {
		r.tty = true
		if width, _, err := terminalSize(int(f.Fd())); err == nil && width > 0 {
			r.width = width
		}
	}
	return r
}

func (r *renderer) draw(snap models.Snapshot) {
	if r.tty {
		if r.drawn > 0 {
			fmt.Fprintf(r.w, "\x1b[%dA", r.drawn)
		}
		for _, t := range snap.Tasks {
			fmt.Fprintf(r.w, "\x1b[2K%s\n", formatLine(t, r.width))
		}
		r.drawn = len(snap.Tasks)
		return
	}

	for _, t := range snap.Tasks {
		state := fmt.Sprintf("%s/%d", t.Status.Kind(), t.Progress/10)
		if r.seen[t.ID] == state {
			continue
		}
		r.seen[t.ID] = state
		fmt.Fprintln(r.w, formatLine(t, r.width))
	}
}

func formatLine(t models.TransferTask, width int) string {
	barWidth := min(max(width-nameWidth-20, minBar), maxBar)
	filled := t.Progress * barWidth / 100

	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	return fmt.Sprintf("%-*s [%s] %3d%% %s", nameWidth, truncate(t.File.Name, nameWidth), bar, t.Progress, label(t.Status))
}

func label(s models.Status) string {
	switch s.Kind() {
	case models.StatusPending:
		return "queued"
	case models.StatusUploading:
		return "uploading"
	case models.StatusSuccess:
		return "done"
	default:
		return "failed"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func writeSummary(w io.Writer, snap models.Snapshot, skipped int) {
	counts := snap.Counts()
	fmt.Fprintf(w, "\nUploaded %d of %d files.\n", counts[models.StatusSuccess], len(snap.Tasks))

	for _, t := range snap.Tasks {
		switch st := t.Status.(type) {
		case models.Succeeded:
			fmt.Fprintf(w, "  done    %s -> %s\n", t.File.Name, st.StorageKey)
		case models.Failed:
			fmt.Fprintf(w, "  failed  %s: %s\n", t.File.Name, st.Message)
		default:
			fmt.Fprintf(w, "  %-7s %s\n", label(t.Status), t.File.Name)
		}
	}

	if skipped > 0 {
		fmt.Fprintf(w, "Skipped %d file(s).\n", skipped)
	}
}
