// Package kubeconfigview shows the namespace selector, the "show kubeconfig"
// button and the kubeconfig dialog for a single user.
package kubeconfigview

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dloss/kubecred/internal/clipboard"
	"github.com/dloss/kubecred/internal/credfetch"
	"github.com/dloss/kubecred/internal/issuer"
	"github.com/dloss/kubecred/internal/rbac"
	"github.com/dloss/kubecred/internal/ui/overlaypicker"
	"github.com/dloss/kubecred/internal/ui/style"
	"github.com/dloss/kubecred/internal/ui/viewstate"
)

const (
	loadingText = "...loading"
	pickerTitle = "namespace"
)

// Deps are the collaborators shared by every kubeconfig view.
type Deps struct {
	Issuer    issuer.Issuer
	Clipboard clipboard.Writer
	Logger    *slog.Logger
	// Label overrides the default button label.
	Label string
}

type fetchedMsg struct {
	user      string
	namespace string
	text      string
	err       error
}

type copyResultMsg struct {
	user string
	err  error
}

type View struct {
	user       string
	deps       Deps
	logger     *slog.Logger
	candidates []string
	fetch      credfetch.State
	copied     bool
	picker     *overlaypicker.Picker
	viewport   viewport.Model
	width      int
	height     int
}

func New(user string, snap rbac.Snapshot, deps Deps) *View {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	candidates := snap.Namespaces(user)
	return &View{
		user:       user,
		deps:       deps,
		logger:     logger.With("user", user),
		candidates: candidates,
		fetch:      credfetch.State{Selected: candidates[0]},
		viewport:   viewport.New(0, 0),
	}
}

func (v *View) Init() bubbletea.Cmd { return nil }

// SetSnapshot recomputes the candidate namespaces and resets the selection
// when it has disappeared.
func (v *View) SetSnapshot(snap rbac.Snapshot) bubbletea.Cmd {
	v.candidates = snap.Namespaces(v.user)
	before := v.fetch.Selected
	v.fetch = credfetch.Reconcile(v.fetch, v.candidates)
	if before != v.fetch.Selected {
		v.logger.Info("selected namespace no longer granted", "from", before, "to", v.fetch.Selected)
	}
	return v.step()
}

func (v *View) Update(msg bubbletea.Msg) viewstate.Update {
	switch msg := msg.(type) {
	case fetchedMsg:
		if msg.user != v.user {
			break
		}
		return v.update(v.applyFetch(msg))
	case copyResultMsg:
		if msg.user != v.user {
			break
		}
		if msg.err != nil {
			v.logger.Error("copy kubeconfig to clipboard", "err", msg.err)
		} else {
			v.copied = true
			v.logger.Info("copied kubeconfig to clipboard", "namespace", v.fetch.Selected)
		}
	case overlaypicker.SelectedMsg:
		if msg.Title == pickerTitle {
			return v.update(v.selectNamespace(msg.Value))
		}
	case bubbletea.KeyMsg:
		return v.update(v.handleKey(msg))
	}
	return v.update(nil)
}

// Background applies fetch and copy results that arrive while another view
// is on top of the stack. Other messages are ignored.
func (v *View) Background(msg bubbletea.Msg) bubbletea.Cmd {
	switch msg.(type) {
	case fetchedMsg, copyResultMsg:
		return v.Update(msg).Cmd
	}
	return nil
}

func (v *View) update(cmd bubbletea.Cmd) viewstate.Update {
	v.syncContent()
	return viewstate.Update{Action: viewstate.None, Next: v, Cmd: cmd}
}

func (v *View) handleKey(key bubbletea.KeyMsg) bubbletea.Cmd {
	if v.picker != nil {
		update := v.picker.Update(key)
		if update.Action == viewstate.Pop {
			v.picker = nil
		}
		return update.Cmd
	}

	if v.fetch.DialogOpen {
		switch key.String() {
		case "esc", "x":
			v.fetch = credfetch.Close(v.fetch)
			return nil
		case "c":
			return v.copy()
		case "up", "k":
			v.viewport.LineUp(1)
		case "down", "j":
			v.viewport.LineDown(1)
		default:
			updated, cmd := v.viewport.Update(key)
			v.viewport = updated
			return cmd
		}
		return nil
	}

	switch key.String() {
	case "enter", "o":
		v.fetch = credfetch.Open(v.fetch)
		v.viewport.GotoTop()
		return v.step()
	case "n":
		v.picker = overlaypicker.New(pickerTitle, v.candidates, v.fetch.Selected)
		v.picker.SetSize(v.width, v.height)
	case "]":
		return v.selectNamespace(v.candidateAt(1))
	case "[":
		return v.selectNamespace(v.candidateAt(-1))
	}
	return nil
}

// selectNamespace is a plain state change; any fetch comes from step.
func (v *View) selectNamespace(ns string) bubbletea.Cmd {
	if !v.isCandidate(ns) {
		return nil
	}
	v.fetch = credfetch.Select(v.fetch, ns)
	return v.step()
}

func (v *View) step() bubbletea.Cmd {
	var eff credfetch.Effect
	v.fetch, eff = credfetch.Next(v.fetch)
	if !eff.Fetch {
		return nil
	}

	v.logger.Info("requesting kubeconfig", "namespace", eff.Namespace)
	iss, user, ns := v.deps.Issuer, v.user, eff.Namespace
	return func() bubbletea.Msg {
		text, err := iss.CreateKubeconfig(context.Background(), user, ns)
		return fetchedMsg{user: user, namespace: ns, text: text, err: err}
	}
}

func (v *View) applyFetch(msg fetchedMsg) bubbletea.Cmd {
	if msg.err != nil {
		v.logger.Error("create kubeconfig", "namespace", msg.namespace, "err", msg.err)
		v.fetch = credfetch.Fail(v.fetch, msg.namespace)
		return v.step()
	}

	if embedded, err := issuer.BundleNamespace(msg.text); err != nil {
		v.logger.Warn("kubeconfig not parseable", "namespace", msg.namespace, "err", err)
	} else if embedded != msg.namespace {
		v.logger.Warn("kubeconfig namespace differs from request", "namespace", msg.namespace, "embedded", embedded)
	}

	var applied bool
	v.fetch, applied = credfetch.Resolve(v.fetch, msg.namespace, msg.text)
	if !applied {
		v.logger.Info("dropped stale kubeconfig", "namespace", msg.namespace, "selected", v.fetch.Selected)
	}
	return v.step()
}

// copy writes the bundle for the selected namespace. Nothing is written
// while the body is still the loading placeholder.
func (v *View) copy() bubbletea.Cmd {
	bundle, ok := v.fetch.Current()
	if !ok || v.deps.Clipboard == nil {
		return nil
	}
	writer, user, text := v.deps.Clipboard, v.user, bundle.Text
	return func() bubbletea.Msg {
		return copyResultMsg{user: user, err: writer.WriteAll(text)}
	}
}

func (v *View) candidateAt(offset int) string {
	for idx, ns := range v.candidates {
		if ns == v.fetch.Selected {
			n := len(v.candidates)
			return v.candidates[((idx+offset)%n+n)%n]
		}
	}
	return v.candidates[0]
}

func (v *View) isCandidate(ns string) bool {
	for _, c := range v.candidates {
		if c == ns {
			return true
		}
	}
	return false
}

func (v *View) syncContent() {
	v.viewport.SetContent(v.Content())
}

// Content is the dialog body: the kubeconfig for the selected namespace, or
// a loading placeholder while it is absent or stale.
func (v *View) Content() string {
	if bundle, ok := v.fetch.Current(); ok {
		return bundle.Text
	}
	return loadingText
}

// ButtonLabel is the text of the button that opens the dialog.
func (v *View) ButtonLabel() string {
	if v.deps.Label != "" {
		return v.deps.Label
	}
	return "show kubeconfig for " + v.user
}

// CopyLabel is the text of the dialog's copy action.
func (v *View) CopyLabel() string {
	if v.copied {
		return "Copied"
	}
	return "Copy"
}

// Selected returns the selected namespace.
func (v *View) Selected() string { return v.fetch.Selected }

// Candidates returns the namespaces offered in the selector.
func (v *View) Candidates() []string { return v.candidates }

// DialogOpen reports whether the kubeconfig dialog is shown.
func (v *View) DialogOpen() bool { return v.fetch.DialogOpen }

func (v *View) View() string {
	if v.picker != nil {
		return v.picker.View()
	}
	if v.fetch.DialogOpen {
		return v.dialogView()
	}

	position := ""
	for idx, ns := range v.candidates {
		if ns == v.fetch.Selected {
			position = strconv.Itoa(idx+1) + "/" + strconv.Itoa(len(v.candidates))
		}
	}
	selector := style.Muted.Render("namespace ") +
		style.Selected.Render(" ‹ "+v.fetch.Selected+" › ") + " " + style.Muted.Render(position)
	return "\n" + lipgloss.JoinHorizontal(lipgloss.Center, selector, "  ", style.Button.Render(v.ButtonLabel()))
}

func (v *View) dialogView() string {
	boxWidth := max(v.width-4, 30)
	innerWidth := boxWidth - 4

	title := style.Header.Render("kubeconfig for " + v.user)
	closeBtn := style.Muted.Render("[x]")
	gap := max(innerWidth-lipgloss.Width(title)-lipgloss.Width(closeBtn), 1)
	header := title + strings.Repeat(" ", gap) + closeBtn

	copyBtn := style.Button.Render(v.CopyLabel())
	copyRow := lipgloss.PlaceHorizontal(innerWidth, lipgloss.Right, copyBtn)

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Repeat("─", innerWidth),
		copyRow,
		v.viewport.View(),
	)
	return style.Dialog.Width(boxWidth - 2).Render(body)
}

func (v *View) Breadcrumb() string {
	return v.user
}

func (v *View) Footer() string {
	var indicators []style.Binding
	indicators = append(indicators, style.B("ns", v.fetch.Selected))
	if v.fetch.DialogOpen && v.fetch.Phase() == credfetch.Fetching {
		indicators = append(indicators, style.B("fetching", ""))
	}
	if v.copied {
		indicators = append(indicators, style.B("copied", ""))
	}
	line1 := style.StatusFooter(indicators, strconv.Itoa(len(v.candidates))+" namespaces", v.width)

	var actions []style.Binding
	switch {
	case v.fetch.DialogOpen:
		actions = []style.Binding{style.B("c", "copy"), style.B("↑/↓", "scroll"), style.B("esc", "close")}
	default:
		actions = []style.Binding{style.B("enter", "show kubeconfig"), style.B("[/]", "namespace"), style.B("n", "pick")}
	}
	return line1 + "\n" + style.ActionFooter(actions, v.width)
}

func (v *View) SetSize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	v.width = width
	v.height = height
	// border, padding, header, rule and copy row
	v.viewport.Width = max(width-8, 1)
	v.viewport.Height = max(height-7, 1)
	if v.picker != nil {
		v.picker.SetSize(width, height)
	}
}

// SuppressGlobalKeys lets the dialog and the picker own esc and letter keys.
func (v *View) SuppressGlobalKeys() bool {
	return v.picker != nil || v.fetch.DialogOpen
}
