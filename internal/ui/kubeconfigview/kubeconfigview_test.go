package kubeconfigview

import (
	"context"
	"errors"
	"strings"
	"testing"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dloss/kubecred/internal/clipboard"
	"github.com/dloss/kubecred/internal/issuer"
	"github.com/dloss/kubecred/internal/rbac"
	"github.com/dloss/kubecred/internal/ui/overlaypicker"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type recordingIssuer struct {
	calls []string
	err   error
}

func (r *recordingIssuer) CreateKubeconfig(ctx context.Context, user, namespace string) (string, error) {
	r.calls = append(r.calls, namespace)
	if r.err != nil {
		return "", r.err
	}
	return issuer.NewLocal(issuer.Cluster{Server: "https://127.0.0.1:6443"}).CreateKubeconfig(ctx, user, namespace)
}

func snapshotFor(user string, namespaces ...string) rbac.Snapshot {
	var snap rbac.Snapshot
	for _, ns := range namespaces {
		snap.RoleBindings = append(snap.RoleBindings, rbacv1.RoleBinding{
			ObjectMeta: metav1.ObjectMeta{Name: "developer", Namespace: ns},
			RoleRef:    rbacv1.RoleRef{Kind: "ClusterRole", Name: "developer"},
			Subjects:   []rbacv1.Subject{{Kind: rbacv1.UserKind, Name: user}},
		})
	}
	return snap
}

func key(s string) bubbletea.KeyMsg {
	switch s {
	case "enter":
		return bubbletea.KeyMsg{Type: bubbletea.KeyEnter}
	case "esc":
		return bubbletea.KeyMsg{Type: bubbletea.KeyEscape}
	}
	return bubbletea.KeyMsg{Type: bubbletea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into the view, as the
// program loop would.
func run(t *testing.T, v *View, cmd bubbletea.Cmd) bubbletea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return v.Update(cmd()).Cmd
}

func TestDefaultAndCustomButtonLabel(t *testing.T) {
	v := New("alice", rbac.Snapshot{}, Deps{})
	if got := v.ButtonLabel(); got != "show kubeconfig for alice" {
		t.Fatalf("unexpected default label %q", got)
	}

	v = New("alice", rbac.Snapshot{}, Deps{Label: "get config"})
	if got := v.ButtonLabel(); got != "get config" {
		t.Fatalf("unexpected custom label %q", got)
	}
}

func TestNoBindingsFallsBackToDefaultNamespace(t *testing.T) {
	v := New("alice", rbac.Snapshot{}, Deps{})
	if got := v.Candidates(); len(got) != 1 || got[0] != rbac.DefaultNamespace {
		t.Fatalf("expected [default], got %v", got)
	}
	if v.Selected() != rbac.DefaultNamespace {
		t.Fatalf("expected default selection, got %q", v.Selected())
	}
}

func TestOpeningDialogFetchesOnce(t *testing.T) {
	iss := &recordingIssuer{}
	v := New("alice", snapshotFor("alice", "dev", "prod"), Deps{Issuer: iss})

	update := v.Update(key("enter"))
	if !v.DialogOpen() {
		t.Fatal("expected dialog to be open")
	}
	if v.Content() != loadingText {
		t.Fatalf("expected loading placeholder, got %q", v.Content())
	}

	fetch := update.Cmd
	if again := v.Update(key("x")).Cmd; again != nil {
		t.Fatal("closing must not fetch")
	}
	v.Update(key("enter"))

	if next := run(t, v, fetch); next != nil {
		t.Fatal("expected no follow-up fetch once the bundle matches")
	}
	if len(iss.calls) != 1 || iss.calls[0] != "dev" {
		t.Fatalf("expected a single fetch for dev, got %v", iss.calls)
	}
	if !strings.Contains(v.Content(), "namespace: dev") {
		t.Fatalf("expected kubeconfig for dev, got %q", v.Content())
	}
}

func TestSelectionChangeRefetchesOnlyWhenStale(t *testing.T) {
	iss := &recordingIssuer{}
	v := New("alice", snapshotFor("alice", "dev", "prod"), Deps{Issuer: iss})

	run(t, v, v.Update(key("enter")).Cmd)
	v.Update(key("esc"))

	if cmd := v.Update(key("]")).Cmd; cmd != nil {
		t.Fatal("selection change with closed dialog must not fetch")
	}
	if v.Selected() != "prod" {
		t.Fatalf("expected prod selected, got %q", v.Selected())
	}

	run(t, v, v.Update(key("enter")).Cmd)
	v.Update(key("esc"))
	if !strings.Contains(v.Content(), "namespace: prod") {
		t.Fatalf("expected kubeconfig for prod, got %q", v.Content())
	}

	v.Update(key("["))
	cmd := v.Update(key("enter")).Cmd
	if cmd == nil {
		t.Fatal("expected a fetch for dev after switching back")
	}
	run(t, v, cmd)

	if cmd := v.Update(key("esc")).Cmd; cmd != nil {
		t.Fatal("unexpected fetch on close")
	}
	if cmd := v.Update(key("enter")).Cmd; cmd != nil {
		t.Fatal("bundle already matches the selection, expected no fetch")
	}
	if len(iss.calls) != 3 {
		t.Fatalf("expected 3 fetches, got %v", iss.calls)
	}
}

func TestPickerSelectionWhileOpenRefetches(t *testing.T) {
	iss := &recordingIssuer{}
	v := New("alice", snapshotFor("alice", "dev", "prod"), Deps{Issuer: iss})
	run(t, v, v.Update(key("enter")).Cmd)

	cmd := v.Update(overlaypicker.SelectedMsg{Title: pickerTitle, Value: "prod"}).Cmd
	if v.Content() != loadingText {
		t.Fatalf("expected loading while bundle is stale, got %q", v.Content())
	}
	run(t, v, cmd)

	if len(iss.calls) != 2 || iss.calls[1] != "prod" {
		t.Fatalf("expected second fetch for prod, got %v", iss.calls)
	}
}

func TestStaleResponseDoesNotOverwriteSelection(t *testing.T) {
	iss := &recordingIssuer{}
	v := New("alice", snapshotFor("alice", "dev", "prod"), Deps{Issuer: iss})

	slow := v.Update(key("enter")).Cmd
	fast := v.Update(overlaypicker.SelectedMsg{Title: pickerTitle, Value: "prod"}).Cmd

	run(t, v, fast)
	if next := run(t, v, slow); next != nil {
		t.Fatal("stale response must not trigger another fetch")
	}
	if !strings.Contains(v.Content(), "namespace: prod") {
		t.Fatalf("expected prod kubeconfig to survive the stale dev response, got %q", v.Content())
	}
}

func TestShrinkingCandidatesResetsSelectionAndFetches(t *testing.T) {
	iss := &recordingIssuer{}
	v := New("alice", snapshotFor("alice", "dev", "prod"), Deps{Issuer: iss})
	v.Update(key("]"))
	run(t, v, v.Update(key("enter")).Cmd)

	cmd := v.SetSnapshot(snapshotFor("alice", "qa", "dev"))
	if v.Selected() != "qa" {
		t.Fatalf("expected selection reset to qa, got %q", v.Selected())
	}
	run(t, v, cmd)
	if iss.calls[len(iss.calls)-1] != "qa" {
		t.Fatalf("expected fetch for qa, got %v", iss.calls)
	}

	if cmd := v.SetSnapshot(snapshotFor("alice", "dev", "qa")); cmd != nil {
		t.Fatal("selection still granted, expected no fetch")
	}
}

func TestFailedFetchKeepsLoading(t *testing.T) {
	iss := &recordingIssuer{err: errors.New("backend down")}
	v := New("alice", snapshotFor("alice", "dev"), Deps{Issuer: iss})

	if next := run(t, v, v.Update(key("enter")).Cmd); next != nil {
		t.Fatal("failed fetch must not be retried")
	}
	if v.Content() != loadingText {
		t.Fatalf("expected loading placeholder after failure, got %q", v.Content())
	}
}

func TestCopyLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", want: "Copied"},
		{name: "rejected", err: errors.New("no clipboard"), want: "Copy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var written string
			board := clipboard.Func(func(text string) error {
				written = text
				return tt.err
			})
			v := New("alice", snapshotFor("alice", "dev"), Deps{Issuer: &recordingIssuer{}, Clipboard: board})
			v.SetSize(100, 30)
			run(t, v, v.Update(key("enter")).Cmd)

			if v.CopyLabel() != "Copy" {
				t.Fatalf("expected Copy before copying, got %q", v.CopyLabel())
			}
			run(t, v, v.Update(key("c")).Cmd)

			if got := v.CopyLabel(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if written != v.Content() {
				t.Fatalf("expected kubeconfig to be written, got %q", written)
			}
			if rendered := ansi.Strip(v.View()); !strings.Contains(rendered, tt.want) {
				t.Fatalf("expected dialog to show %q, got %q", tt.want, rendered)
			}
		})
	}
}

func TestCopyWithoutBundleIsNoop(t *testing.T) {
	v := New("alice", snapshotFor("alice", "dev"), Deps{Issuer: &recordingIssuer{}, Clipboard: clipboard.Func(func(string) error { return nil })})
	v.Update(key("enter"))
	if cmd := v.Update(key("c")).Cmd; cmd != nil {
		t.Fatal("expected no copy while loading")
	}
	if v.CopyLabel() != "Copy" {
		t.Fatalf("expected Copy while loading, got %q", v.CopyLabel())
	}
}

func TestCopiedSurvivesReopen(t *testing.T) {
	board := clipboard.Func(func(string) error { return nil })
	v := New("alice", snapshotFor("alice", "dev"), Deps{Issuer: &recordingIssuer{}, Clipboard: board})
	run(t, v, v.Update(key("enter")).Cmd)
	run(t, v, v.Update(key("c")).Cmd)

	v.Update(key("esc"))
	v.Update(key("enter"))
	if v.CopyLabel() != "Copied" {
		t.Fatalf("expected Copied after reopening, got %q", v.CopyLabel())
	}
}

func TestBackgroundAppliesOnlyResults(t *testing.T) {
	v := New("alice", snapshotFor("alice", "dev"), Deps{Issuer: &recordingIssuer{}})
	fetch := v.Update(key("enter")).Cmd
	v.Update(key("esc"))

	if cmd := v.Background(key("enter")); cmd != nil || v.DialogOpen() {
		t.Fatal("expected keys to be ignored in the background")
	}
	v.Background(fetch())
	if !strings.Contains(v.Content(), "namespace: dev") {
		t.Fatalf("expected background fetch to be applied, got %q", v.Content())
	}
}

func TestDialogSuppressesGlobalKeys(t *testing.T) {
	v := New("alice", snapshotFor("alice", "dev"), Deps{Issuer: &recordingIssuer{}})
	if v.SuppressGlobalKeys() {
		t.Fatal("closed dialog should not suppress global keys")
	}
	v.Update(key("enter"))
	if !v.SuppressGlobalKeys() {
		t.Fatal("open dialog should suppress global keys")
	}
}

func TestViewShowsSelectorAndButton(t *testing.T) {
	v := New("alice", snapshotFor("alice", "dev", "prod"), Deps{})
	v.SetSize(100, 30)
	rendered := ansi.Strip(v.View())
	if !strings.Contains(rendered, "dev") || !strings.Contains(rendered, "1/2") {
		t.Fatalf("expected selector with position, got %q", rendered)
	}
	if !strings.Contains(rendered, "show kubeconfig for alice") {
		t.Fatalf("expected button label, got %q", rendered)
	}
}
