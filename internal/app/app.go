package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/dloss/kubecred/internal/rbac"
	"github.com/dloss/kubecred/internal/ui/helpview"
	"github.com/dloss/kubecred/internal/ui/kubeconfigview"
	"github.com/dloss/kubecred/internal/ui/style"
	"github.com/dloss/kubecred/internal/ui/userview"
	"github.com/dloss/kubecred/internal/ui/viewstate"
)

// Options configure the root model.
type Options struct {
	Source  rbac.Source
	Deps    kubeconfigview.Deps
	Context string
	// User opens the kubeconfig view for this user directly.
	User string
	// Refresh reloads RBAC bindings at this interval. Zero disables it.
	Refresh time.Duration
	Logger  *slog.Logger
}

type Model struct {
	opts     Options
	logger   *slog.Logger
	stack    []viewstate.View
	loaded   bool
	errorMsg string
	width    int
	height   int
}

type snapshotMsg struct {
	snap rbac.Snapshot
	err  error
}

type refreshTickMsg struct{}

type globalKeySuppresser interface {
	SuppressGlobalKeys() bool
}

func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.Deps.Logger = logger
	if opts.Context == "" {
		opts.Context = "default"
	}

	var root viewstate.View = userview.New(rbac.Snapshot{}, opts.Deps)
	if opts.User != "" {
		root = kubeconfigview.New(opts.User, rbac.Snapshot{}, opts.Deps)
	}

	return Model{
		opts:   opts,
		logger: logger,
		stack:  []viewstate.View{root},
	}
}

func (m Model) Init() bubbletea.Cmd {
	return bubbletea.Batch(m.top().Init(), m.load())
}

func (m Model) load() bubbletea.Cmd {
	source := m.opts.Source
	if source == nil {
		return nil
	}
	return func() bubbletea.Msg {
		snap, err := source.Load(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) scheduleRefresh() bubbletea.Cmd {
	if m.opts.Refresh <= 0 {
		return nil
	}
	return bubbletea.Tick(m.opts.Refresh, func(time.Time) bubbletea.Msg {
		return refreshTickMsg{}
	})
}

func (m Model) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, view := range m.stack {
			view.SetSize(m.width, m.availableHeight())
		}
		return m, nil
	case snapshotMsg:
		return m.applySnapshot(msg)
	case refreshTickMsg:
		return m, m.load()
	case bubbletea.KeyMsg:
		if suppresser, ok := m.top().(globalKeySuppresser); ok && suppresser.SuppressGlobalKeys() && msg.String() != "ctrl+c" {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, bubbletea.Quit
		case "backspace", "h", "left", "esc":
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
				return m, nil
			}
			if msg.String() != "esc" {
				return m, nil
			}
		case "r":
			m.errorMsg = ""
			return m, m.load()
		case "?":
			if _, ok := m.top().(*helpview.View); !ok {
				help := helpview.New()
				help.SetSize(m.width, m.availableHeight())
				m.stack = append(m.stack, help)
				return m, nil
			}
		}
	default:
		return m.updateWithBackground(msg)
	}

	return m.updateTop(msg)
}

// updateWithBackground hands msg to the covered views before the top one so
// results of their requests are not lost.
func (m Model) updateWithBackground(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	var cmds []bubbletea.Cmd
	for _, view := range m.stack[:len(m.stack)-1] {
		if receiver, ok := view.(viewstate.BackgroundReceiver); ok {
			cmds = append(cmds, receiver.Background(msg))
		}
	}
	next, cmd := m.updateTop(msg)
	if len(cmds) == 0 {
		return next, cmd
	}
	return next, bubbletea.Batch(append(cmds, cmd)...)
}

func (m Model) updateTop(msg bubbletea.Msg) (Model, bubbletea.Cmd) {
	update := m.top().Update(msg)
	switch update.Action {
	case viewstate.Push:
		update.Next.SetSize(m.width, m.availableHeight())
		m.stack = append(m.stack, update.Next)
	case viewstate.Pop:
		if len(m.stack) > 1 {
			m.stack = m.stack[:len(m.stack)-1]
		}
	default:
		if update.Next != nil {
			m.stack[len(m.stack)-1] = update.Next
		}
	}

	return m, update.Cmd
}

func (m Model) applySnapshot(msg snapshotMsg) (bubbletea.Model, bubbletea.Cmd) {
	cmds := []bubbletea.Cmd{m.scheduleRefresh()}
	if msg.err != nil {
		m.logger.Error("load rbac bindings", "err", msg.err)
		m.errorMsg = "load rbac bindings: " + msg.err.Error()
		return m, bubbletea.Batch(cmds...)
	}

	m.errorMsg = ""
	m.loaded = true
	m.logger.Debug("rbac bindings loaded",
		"roleBindings", len(msg.snap.RoleBindings),
		"clusterRoleBindings", len(msg.snap.ClusterRoleBindings))

	for _, view := range m.stack {
		if receiver, ok := view.(viewstate.SnapshotReceiver); ok {
			cmds = append(cmds, receiver.SetSnapshot(msg.snap))
		}
	}
	return m, bubbletea.Batch(cmds...)
}

func (m Model) View() string {
	head := style.Header.Render(m.breadcrumb())
	body := m.top().View()
	footer := style.Footer.Render(strings.TrimSpace(m.top().Footer()))

	sections := []string{head, body, footer}
	if m.errorMsg != "" {
		sections = append([]string{style.ErrorBanner.Render(m.errorMsg)}, sections...)
	}

	return strings.Join(sections, "\n")
}

func (m Model) top() viewstate.View {
	return m.stack[len(m.stack)-1]
}

func (m Model) breadcrumb() string {
	parts := []string{"ctx:" + m.opts.Context}
	for _, view := range m.stack {
		if crumb := view.Breadcrumb(); crumb != "" {
			parts = append(parts, crumb)
		}
	}
	if !m.loaded {
		parts = append(parts, "loading…")
	}
	return strings.Join(parts, " > ")
}

func (m Model) availableHeight() int {
	if m.height == 0 {
		return 0
	}

	extra := 3
	if m.errorMsg != "" {
		extra = 4
	}

	height := m.height - extra
	if height < 1 {
		return 1
	}
	return height
}
