package style

import "github.com/charmbracelet/lipgloss"

var (
	Header      = lipgloss.NewStyle().Bold(true)
	Footer      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ErrorBanner = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	Muted       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	Healthy     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	FooterKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	FooterLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	FilterPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 1)
	Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("250")).
		Bold(true)
	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
)
