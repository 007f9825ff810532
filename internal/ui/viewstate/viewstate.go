package viewstate

import (
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/dloss/kubecred/internal/rbac"
)

type Action int

const (
	None Action = iota
	Push
	Pop
)

type Update struct {
	Action Action
	Next   View
	Cmd    bubbletea.Cmd
}

type View interface {
	Init() bubbletea.Cmd
	Update(msg bubbletea.Msg) Update
	View() string
	Breadcrumb() string
	Footer() string
	SetSize(width, height int)
}

// SnapshotReceiver is implemented by views that derive their content from
// RBAC bindings and must follow reloads.
type SnapshotReceiver interface {
	SetSnapshot(snap rbac.Snapshot) bubbletea.Cmd
}

// BackgroundReceiver is implemented by views that own asynchronous results
// and must apply them while covered by another view.
type BackgroundReceiver interface {
	Background(msg bubbletea.Msg) bubbletea.Cmd
}
