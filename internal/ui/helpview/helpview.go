package helpview

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/dloss/kubecred/internal/ui/style"
	"github.com/dloss/kubecred/internal/ui/viewstate"
)

var helpText = strings.TrimSpace(`
USERS
  enter / right / l    Kubeconfig for selected user
  / (slash)            Filter users
  esc                  Clear filter

KUBECONFIG
  [ / ]                Previous / next namespace
  n                    Namespace picker
  enter / o            Show kubeconfig
  backspace / left / h Back to users

DIALOG
  c                    Copy to clipboard
  up / down / j / k    Scroll
  esc / x              Close

APP
  r                    Reload role bindings
  ?                    This help
  q / ctrl+c           Quit
`)

type View struct {
	viewport viewport.Model
}

func New() *View {
	vp := viewport.New(0, 0)
	vp.SetContent(helpText)
	return &View{viewport: vp}
}

func (v *View) Init() bubbletea.Cmd { return nil }

func (v *View) Update(msg bubbletea.Msg) viewstate.Update {
	if key, ok := msg.(bubbletea.KeyMsg); ok && (key.String() == "esc" || key.String() == "?") {
		return viewstate.Update{Action: viewstate.Pop}
	}
	updated, cmd := v.viewport.Update(msg)
	v.viewport = updated
	return viewstate.Update{Action: viewstate.None, Next: v, Cmd: cmd}
}

func (v *View) View() string {
	return v.viewport.View()
}

func (v *View) Breadcrumb() string {
	return "help"
}

func (v *View) Footer() string {
	return "\n" + style.ActionFooter([]style.Binding{style.B("?", "close")}, v.viewport.Width)
}

func (v *View) SetSize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	v.viewport.Width = width
	v.viewport.Height = height
}
