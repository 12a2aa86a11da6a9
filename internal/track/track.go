// Package track owns the per-account last-known state and decides which
// status changes are worth an alert.
package track

import (
	"sort"
	"sync"

	"livewatch/internal/extract"
	"livewatch/internal/storage"
)

// State is the durable projection of the most recent observation.
type State struct {
	Live   bool
	RoomID string
}

// Transition classifies one observation against the previous state.
type Transition int

const (
	TransitionNone Transition = iota
	// TransitionLive is the OFF->ON edge: the account just went live.
	TransitionLive
	// TransitionEnded is the ON->OFF edge.
	TransitionEnded
)

func (t Transition) String() string {
	switch t {
	case TransitionLive:
		return "live"
	case TransitionEnded:
		return "ended"
	default:
		return "none"
	}
}

// Policy selects which edges produce a notification. ON->ON and OFF->OFF
// never notify regardless of policy; repeated live observations with a
// changed room, title, or viewer count are drift, not a new session.
type Policy struct {
	NotifyOnLive bool
	NotifyOnEnd  bool
}

// DefaultPolicy alerts on going live only; session-end alerts stay opt-in.
func DefaultPolicy() Policy {
	return Policy{NotifyOnLive: true, NotifyOnEnd: false}
}

// Decide computes the transition and the next state for one observation.
// Pure: the next state mirrors the observation unconditionally, so drift in
// room/title/viewers updates state without re-triggering.
func Decide(pol Policy, current State, status extract.LiveStatus) (Transition, bool, State) {
	next := State{Live: status.Live, RoomID: status.RoomID}

	var tr Transition
	switch {
	case status.Live && !current.Live:
		tr = TransitionLive
	case !status.Live && current.Live:
		tr = TransitionEnded
	default:
		tr = TransitionNone
	}

	notify := (tr == TransitionLive && pol.NotifyOnLive) ||
		(tr == TransitionEnded && pol.NotifyOnEnd)
	return tr, notify, next
}

// Tracker holds the in-memory state map. It is the map's only owner; storage
// is a pure serialization boundary underneath it.
type Tracker struct {
	pol Policy

	mu     sync.Mutex
	states map[string]State
}

func New(pol Policy) *Tracker {
	return &Tracker{pol: pol, states: map[string]State{}}
}

// Seed installs states loaded from storage. Accounts without a stored record
// default to the zero State, so an account found live on the very first poll
// after startup still alerts.
func (t *Tracker) Seed(states []storage.AccountState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, st := range states {
		t.states[st.Account] = State{Live: st.Live, RoomID: st.RoomID}
	}
}

// Current returns the last-known state for an account (zero if never seen).
func (t *Tracker) Current(account string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[account]
}

// Observe records one observation and returns its transition plus whether
// the policy wants a notification. The state is committed even when no
// transition occurred.
func (t *Tracker) Observe(account string, status extract.LiveStatus) (Transition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, notify, next := Decide(t.pol, t.states[account], status)
	t.states[account] = next
	return tr, notify
}

// Snapshot serializes the state map in stable account order for persistence.
func (t *Tracker) Snapshot() []storage.AccountState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]storage.AccountState, 0, len(t.states))
	for acct, st := range t.states {
		out = append(out, storage.AccountState{Account: acct, Live: st.Live, RoomID: st.RoomID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}
