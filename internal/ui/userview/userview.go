package userview

import (
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/dloss/kubecred/internal/rbac"
	"github.com/dloss/kubecred/internal/ui/filterbar"
	"github.com/dloss/kubecred/internal/ui/kubeconfigview"
	"github.com/dloss/kubecred/internal/ui/style"
	"github.com/dloss/kubecred/internal/ui/viewstate"
)

type userItem struct {
	name       string
	namespaces []string
}

func (u userItem) Title() string { return u.name }
func (u userItem) Description() string {
	if len(u.namespaces) == 1 {
		return u.namespaces[0]
	}
	return u.namespaces[0] + " +" + strconv.Itoa(len(u.namespaces)-1)
}
func (u userItem) FilterValue() string { return u.name }

// View lists the users that hold RBAC grants.
type View struct {
	snap rbac.Snapshot
	deps kubeconfigview.Deps
	list list.Model
}

func New(snap rbac.Snapshot, deps kubeconfigview.Deps) *View {
	delegate := list.NewDefaultDelegate()
	model := list.New(itemsFor(snap), delegate, 0, 0)
	model.SetShowHelp(false)
	model.SetShowStatusBar(false)
	model.SetShowTitle(false)
	model.DisableQuitKeybindings()
	model.SetFilteringEnabled(true)
	filterbar.Setup(&model)
	model.Paginator.Type = paginator.Arabic
	return &View{snap: snap, deps: deps, list: model}
}

func itemsFor(snap rbac.Snapshot) []list.Item {
	users := snap.Users()
	items := make([]list.Item, 0, len(users))
	for _, name := range users {
		items = append(items, userItem{name: name, namespaces: snap.Namespaces(name)})
	}
	return items
}

func (v *View) Init() bubbletea.Cmd { return nil }

// SetSnapshot replaces the user list, keeping the active filter.
func (v *View) SetSnapshot(snap rbac.Snapshot) bubbletea.Cmd {
	v.snap = snap
	return v.list.SetItems(itemsFor(snap))
}

func (v *View) Update(msg bubbletea.Msg) viewstate.Update {
	if key, ok := msg.(bubbletea.KeyMsg); ok {
		if v.list.SettingFilter() && key.String() != "esc" {
			updated, cmd := v.list.Update(msg)
			v.list = updated
			return viewstate.Update{Action: viewstate.None, Next: v, Cmd: cmd}
		}

		switch key.String() {
		case "esc":
			if v.list.SettingFilter() || v.list.IsFiltered() {
				v.list.ResetFilter()
				return viewstate.Update{Action: viewstate.None, Next: v}
			}
		case "enter", "l", "right":
			if selected, ok := v.list.SelectedItem().(userItem); ok {
				next := kubeconfigview.New(selected.name, v.snap, v.deps)
				return viewstate.Update{Action: viewstate.Push, Next: next}
			}
			return viewstate.Update{Action: viewstate.None, Next: v}
		}
	}

	updated, cmd := v.list.Update(msg)
	v.list = updated
	return viewstate.Update{Action: viewstate.None, Next: v, Cmd: cmd}
}

func (v *View) View() string {
	if len(v.list.Items()) == 0 {
		return "\n" + style.Muted.Render("  no users with role bindings")
	}
	return filterbar.Append(v.list.View(), v.list)
}

func (v *View) Breadcrumb() string { return "users" }

func (v *View) Footer() string {
	var indicators []style.Binding
	if v.list.IsFiltered() {
		indicators = append(indicators, style.B("filter", v.list.FilterValue()))
	}
	status := strconv.Itoa(len(v.list.VisibleItems())) + " users"
	line1 := style.StatusFooter(indicators, status, v.list.Width())
	line2 := style.ActionFooter([]style.Binding{
		style.B("enter", "kubeconfig"),
		style.B("/", "filter"),
	}, v.list.Width())
	return line1 + "\n" + line2
}

func (v *View) SetSize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	v.list.SetSize(width, height)
}

// SuppressGlobalKeys hands typed characters to the filter input.
func (v *View) SuppressGlobalKeys() bool {
	return v.list.SettingFilter()
}

// SelectedUser returns the highlighted user name, if any.
func (v *View) SelectedUser() string {
	if selected, ok := v.list.SelectedItem().(userItem); ok {
		return selected.name
	}
	return ""
}
