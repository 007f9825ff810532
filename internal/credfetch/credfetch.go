// Package credfetch decides when a kubeconfig has to be (re)requested for the
// selected namespace. It is a pure transition function: callers feed it
// events and perform the Fetch effects it returns.
package credfetch

// Bundle is a fetched kubeconfig tagged with the namespace it was issued for.
type Bundle struct {
	Namespace string
	Text      string
}

// State is the controller input. The zero value is a closed dialog with
// nothing selected.
type State struct {
	DialogOpen bool
	Selected   string
	Held       *Bundle

	// InFlight is the namespace of the outstanding request, if any.
	InFlight string
	// Failed is the namespace whose last request failed. It is not retried
	// until the dialog is reopened.
	Failed string
}

// Effect is what the caller must do after a transition.
type Effect struct {
	Fetch     bool
	Namespace string
}

// Phase names the observable controller state.
type Phase int

const (
	Idle Phase = iota
	Fetching
)

func (p Phase) String() string {
	if p == Fetching {
		return "fetching"
	}
	return "idle"
}

// Phase reports Fetching while a request for the selection is outstanding.
func (s State) Phase() Phase {
	if s.InFlight != "" && s.InFlight == s.Selected {
		return Fetching
	}
	return Idle
}

// Current returns the held bundle when it matches the selection.
func (s State) Current() (Bundle, bool) {
	if s.Held == nil || s.Held.Namespace != s.Selected {
		return Bundle{}, false
	}
	return *s.Held, true
}

// Next dispatches a fetch when the dialog is open and the held bundle does not
// match the selection, unless one is already outstanding for it.
func Next(s State) (State, Effect) {
	if !s.DialogOpen || s.Selected == "" {
		return s, Effect{}
	}
	if _, ok := s.Current(); ok {
		return s, Effect{}
	}
	if s.InFlight == s.Selected || s.Failed == s.Selected {
		return s, Effect{}
	}
	s.InFlight = s.Selected
	return s, Effect{Fetch: true, Namespace: s.Selected}
}

// Open shows the dialog and forgets earlier failures.
func Open(s State) State {
	s.DialogOpen = true
	s.Failed = ""
	return s
}

// Close hides the dialog. A held bundle is kept.
func Close(s State) State {
	s.DialogOpen = false
	return s
}

// Select changes the selected namespace.
func Select(s State, namespace string) State {
	s.Selected = namespace
	return s
}

// Resolve applies a response for namespace. Responses that no longer match
// the selection are dropped; the second return value reports whether the
// response was applied.
func Resolve(s State, namespace, text string) (State, bool) {
	if s.InFlight == namespace {
		s.InFlight = ""
	}
	if namespace != s.Selected {
		return s, false
	}
	s.Held = &Bundle{Namespace: namespace, Text: text}
	s.Failed = ""
	return s, true
}

// Fail records a failed request for namespace. The held bundle is unchanged.
func Fail(s State, namespace string) State {
	if s.InFlight == namespace {
		s.InFlight = ""
	}
	if namespace == s.Selected {
		s.Failed = namespace
	}
	return s
}

// Reconcile resets the selection to the head of candidates when it is no
// longer one of them. candidates must not be empty.
func Reconcile(s State, candidates []string) State {
	for _, ns := range candidates {
		if ns == s.Selected {
			return s
		}
	}
	if len(candidates) > 0 {
		s.Selected = candidates[0]
	}
	return s
}
