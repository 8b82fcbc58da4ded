package display

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// ConsoleDisplay prints one status line per image.
type ConsoleDisplay struct {
	w  io.Writer
	mu sync.Mutex

	label lipgloss.Style
	path  lipgloss.Style
	size  lipgloss.Style
}

// NewConsoleDisplay creates a ConsoleDisplay writing to w. Color is used only
// when w is a terminal.
func NewConsoleDisplay(w io.Writer) *ConsoleDisplay {
	r := lipgloss.NewRenderer(w)

	return &ConsoleDisplay{
		w:     w,
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		path:  r.NewStyle().Foreground(lipgloss.Color("86")),
		size:  r.NewStyle().Faint(true),
	}
}

// Show prints the image path and size.
func (d *ConsoleDisplay) Show(_ context.Context, img Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := fmt.Fprintf(d.w, "%s %s %s\n",
		d.label.Render("Now showing"),
		d.path.Render(img.Path),
		d.size.Render("("+humanize.Bytes(uint64(len(img.Data)))+")"),
	)
	if err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}

	return nil
}

// Clear prints that the display was cleared.
func (d *ConsoleDisplay) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := fmt.Fprintln(d.w, d.label.Render("Display cleared")); err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}

	return nil
}
