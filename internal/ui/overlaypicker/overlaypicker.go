package overlaypicker

import (
	"strings"
	"unicode"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dloss/kubecred/internal/ui/style"
	"github.com/dloss/kubecred/internal/ui/viewstate"
)

// SelectedMsg is emitted as a Cmd when the user confirms a selection.
type SelectedMsg struct {
	Title string
	Value string
}

// Picker is a filterable single-choice list rendered as a centered box.
type Picker struct {
	title  string
	items  []string
	filter string
	cursor int
	width  int
	height int
}

// New returns a picker over items with the cursor on current, if present.
func New(title string, items []string, current string) *Picker {
	p := &Picker{title: title, items: items}
	for idx, item := range items {
		if item == current {
			p.cursor = idx
			break
		}
	}
	return p
}

func (p *Picker) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *Picker) filtered() []string {
	if p.filter == "" {
		return p.items
	}
	lower := strings.ToLower(p.filter)
	var result []string
	for _, item := range p.items {
		if strings.Contains(strings.ToLower(item), lower) {
			result = append(result, item)
		}
	}
	return result
}

func (p *Picker) clampCursor(list []string) {
	if len(list) == 0 || p.cursor < 0 {
		p.cursor = 0
		return
	}
	if p.cursor >= len(list) {
		p.cursor = len(list) - 1
	}
}

func (p *Picker) Init() bubbletea.Cmd { return nil }

func (p *Picker) Update(msg bubbletea.Msg) viewstate.Update {
	key, ok := msg.(bubbletea.KeyMsg)
	if !ok {
		return viewstate.Update{Action: viewstate.None, Next: p}
	}

	filtered := p.filtered()

	switch key.String() {
	case "esc":
		return viewstate.Update{Action: viewstate.Pop}
	case "enter":
		if len(filtered) == 0 {
			return viewstate.Update{Action: viewstate.Pop}
		}
		p.clampCursor(filtered)
		selected := SelectedMsg{Title: p.title, Value: filtered[p.cursor]}
		return viewstate.Update{
			Action: viewstate.Pop,
			Cmd:    func() bubbletea.Msg { return selected },
		}
	case "up", "k":
		p.cursor--
		p.clampCursor(filtered)
	case "down", "j":
		p.cursor++
		p.clampCursor(filtered)
	case "backspace", "ctrl+h":
		runes := []rune(p.filter)
		if len(runes) > 0 {
			p.filter = string(runes[:len(runes)-1])
			p.cursor = 0
		}
	default:
		if key.Type == bubbletea.KeyRunes {
			for _, r := range key.Runes {
				if unicode.IsPrint(r) {
					p.filter += string(r)
					p.cursor = 0
				}
			}
		}
	}

	return viewstate.Update{Action: viewstate.None, Next: p}
}

func (p *Picker) View() string {
	filtered := p.filtered()
	p.clampCursor(filtered)

	boxWidth := min(max(p.width-4, 20), 42)
	innerWidth := boxWidth - 2

	maxItems := max(p.height-6, 1)
	if len(filtered) < maxItems {
		maxItems = len(filtered)
	}

	lines := []string{
		style.Header.Render("  " + p.title + "  "),
		"> " + p.filter,
		strings.Repeat("─", innerWidth),
	}

	start := 0
	if p.cursor >= maxItems {
		start = p.cursor - maxItems + 1
	}
	end := min(start+maxItems, len(filtered))

	for i := start; i < end; i++ {
		item := filtered[i]
		if runes := []rune(item); len(runes) > innerWidth-2 {
			item = string(runes[:innerWidth-3]) + "…"
		}
		if i == p.cursor {
			lines = append(lines, style.Selected.Render(" "+item+" "))
		} else {
			lines = append(lines, " "+item)
		}
	}

	if len(filtered) == 0 {
		lines = append(lines, style.Muted.Render("  no matches"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Width(innerWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}

func (p *Picker) Breadcrumb() string { return p.title }
func (p *Picker) Footer() string {
	return style.FormatBindings([]style.Binding{
		style.B("↑/↓", "move"),
		style.B("enter", "select"),
		style.B("esc", "cancel"),
	})
}

// SuppressGlobalKeys keeps typed filter characters away from app shortcuts.
func (p *Picker) SuppressGlobalKeys() bool { return true }
