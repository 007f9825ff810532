package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Binding represents a single key-label pair for the footer.
type Binding struct {
	Key   string
	Label string
}

// B is a shorthand constructor for Binding.
func B(key, label string) Binding {
	return Binding{Key: key, Label: label}
}

// FormatBindings renders a list of bindings with styled keys and muted labels,
// separated by double spaces. An empty label renders the key alone.
func FormatBindings(bindings []Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		if b.Label == "" {
			parts[i] = FooterKey.Render(b.Key)
			continue
		}
		parts[i] = FooterKey.Render(b.Key) + " " + FooterLabel.Render(b.Label)
	}
	return strings.Join(parts, "  ")
}

// StatusFooter renders indicators left-aligned with an optional status
// right-aligned. If width is 0, no right-alignment is applied.
func StatusFooter(indicators []Binding, status string, width int) string {
	left := FormatBindings(indicators)
	if status == "" || width == 0 {
		return left
	}
	right := FooterLabel.Render(status)
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 2 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// ActionFooter renders view actions followed by the global keys, truncated
// to width. "?" is left out when a view already binds it.
func ActionFooter(actions []Binding, width int) string {
	all := append([]Binding{}, actions...)
	if !hasKey(actions, "?") {
		all = append(all, B("?", "help"))
	}
	all = append(all, B("←", "back"), B("q", "quit"))
	line := FormatBindings(all)
	if width > 2 {
		line = ansi.Truncate(line, width-2, "…")
	}
	return lipgloss.NewStyle().MaxWidth(max(width, 0)).Render(line)
}

func hasKey(bindings []Binding, key string) bool {
	for _, b := range bindings {
		if b.Key == key {
			return true
		}
	}
	return false
}
