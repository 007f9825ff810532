package filterbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/dloss/kubecred/internal/ui/style"
)

// Setup hides the list's built-in filter bar and restyles the input so it
// can be drawn on the last line by Append.
func Setup(model *list.Model) {
	model.SetShowFilter(false)
	model.FilterInput.Prompt = "/ "
	model.FilterInput.Placeholder = "user name"
	model.FilterInput.PromptStyle = style.FilterPrompt
	model.FilterInput.TextStyle = lipgloss.NewStyle()
	model.Styles.FilterPrompt = style.FilterPrompt
}

// Append draws the filter input at the bottom of view while the user is
// typing a filter. A trailing blank line is reused so the height is stable.
func Append(view string, l list.Model) string {
	if !l.SettingFilter() {
		return view
	}
	bar := l.FilterInput.View()
	lines := strings.Split(view, "\n")
	last := len(lines) - 1
	if last >= 0 && strings.TrimSpace(lines[last]) == "" {
		lines[last] = bar
		return strings.Join(lines, "\n")
	}
	return view + "\n" + bar
}
