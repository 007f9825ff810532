package style

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestFormatBindingsOmitsEmptyLabel(t *testing.T) {
	got := ansi.Strip(FormatBindings([]Binding{B("c", "copy"), B("copied", "")}))
	if got != "c copy  copied" {
		t.Fatalf("unexpected bindings %q", got)
	}
}

func TestStatusFooterRightAligns(t *testing.T) {
	got := ansi.Strip(StatusFooter([]Binding{B("ns", "dev")}, "1/3", 20))
	if ansi.StringWidth(got) != 20 {
		t.Fatalf("expected width 20, got %d (%q)", ansi.StringWidth(got), got)
	}
	if !strings.HasSuffix(got, "1/3") {
		t.Fatalf("expected status at the right edge, got %q", got)
	}
}

func TestActionFooterTruncates(t *testing.T) {
	got := ansi.Strip(ActionFooter([]Binding{B("enter", "show kubeconfig"), B("c", "copy")}, 16))
	if ansi.StringWidth(got) > 16 {
		t.Fatalf("expected footer within 16 cells, got %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis on truncated footer, got %q", got)
	}
}

func TestActionFooterListsHelpOnce(t *testing.T) {
	got := ansi.Strip(ActionFooter([]Binding{B("c", "copy")}, 0))
	if !strings.Contains(got, "? help") {
		t.Fatalf("expected help binding, got %q", got)
	}

	got = ansi.Strip(ActionFooter([]Binding{B("?", "close")}, 0))
	if strings.Count(got, "?") != 1 || strings.Contains(got, "? help") {
		t.Fatalf("expected view binding for ? only, got %q", got)
	}
}
