package track

import (
	"testing"
	"time"

	"livewatch/internal/extract"
	"livewatch/internal/storage"
)

func liveStatus(roomID string) extract.LiveStatus {
	return extract.LiveStatus{Live: true, RoomID: roomID, ObservedAt: time.Now()}
}

func offlineStatus() extract.LiveStatus {
	return extract.LiveStatus{ObservedAt: time.Now()}
}

func TestDecideEdges(t *testing.T) {
	pol := DefaultPolicy()
	cases := []struct {
		name       string
		current    State
		status     extract.LiveStatus
		wantTr     Transition
		wantNotify bool
	}{
		{"off_to_on", State{}, liveStatus("12345678"), TransitionLive, true},
		{"off_to_on_badge_only", State{}, extract.LiveStatus{Live: true}, TransitionLive, true},
		{"on_to_on", State{Live: true, RoomID: "12345678"}, liveStatus("12345678"), TransitionNone, false},
		{"on_to_on_new_room", State{Live: true, RoomID: "12345678"}, liveStatus("87654321"), TransitionNone, false},
		{"on_to_off", State{Live: true, RoomID: "12345678"}, offlineStatus(), TransitionEnded, false},
		{"off_to_off", State{}, offlineStatus(), TransitionNone, false},
	}
	for _, tc := range cases {
		tr, notify, next := Decide(pol, tc.current, tc.status)
		if tr != tc.wantTr {
			t.Fatalf("%s: transition = %v, want %v", tc.name, tr, tc.wantTr)
		}
		if notify != tc.wantNotify {
			t.Fatalf("%s: notify = %v, want %v", tc.name, notify, tc.wantNotify)
		}
		if next.Live != tc.status.Live || next.RoomID != tc.status.RoomID {
			t.Fatalf("%s: next state must mirror observation, got %+v", tc.name, next)
		}
	}
}

func TestDecideEndPolicy(t *testing.T) {
	pol := Policy{NotifyOnLive: true, NotifyOnEnd: true}
	_, notify, _ := Decide(pol, State{Live: true}, offlineStatus())
	if !notify {
		t.Fatalf("NotifyOnEnd policy must notify on ON->OFF")
	}
}

func TestObserveColdStartAlerts(t *testing.T) {
	// No baseline suppression: a live account on the very first poll alerts.
	tr := New(DefaultPolicy())
	transition, notify := tr.Observe("alice", liveStatus("11112222"))
	if transition != TransitionLive || !notify {
		t.Fatalf("first observation live should alert: %v %v", transition, notify)
	}
}

func TestObserveRoomDriftUpdatesWithoutAlert(t *testing.T) {
	tr := New(DefaultPolicy())
	tr.Observe("alice", liveStatus("11112222"))

	transition, notify := tr.Observe("alice", liveStatus("33334444"))
	if transition != TransitionNone || notify {
		t.Fatalf("ON->ON must not re-alert: %v %v", transition, notify)
	}
	if got := tr.Current("alice"); got.RoomID != "33334444" {
		t.Fatalf("stored room id must follow the latest observation, got %q", got.RoomID)
	}
}

func TestObserveCommitsWithoutTransition(t *testing.T) {
	tr := New(DefaultPolicy())
	tr.Observe("bob", offlineStatus())
	if got := tr.Current("bob"); got.Live {
		t.Fatalf("state must be committed even without a transition: %+v", got)
	}
}

func TestSeedSuppressesKnownLive(t *testing.T) {
	tr := New(DefaultPolicy())
	tr.Seed([]storage.AccountState{{Account: "alice", Live: true, RoomID: "11112222"}})

	_, notify := tr.Observe("alice", liveStatus("11112222"))
	if notify {
		t.Fatalf("restart while still live must not re-alert")
	}
}

func TestSnapshotStableOrder(t *testing.T) {
	tr := New(DefaultPolicy())
	tr.Observe("charlie", offlineStatus())
	tr.Observe("alice", liveStatus("11112222"))
	tr.Observe("bob", offlineStatus())

	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap))
	}
	for i, want := range []string{"alice", "bob", "charlie"} {
		if snap[i].Account != want {
			t.Fatalf("snapshot[%d] = %q, want %q", i, snap[i].Account, want)
		}
	}
	if !snap[0].Live || snap[0].RoomID != "11112222" {
		t.Fatalf("alice state wrong in snapshot: %+v", snap[0])
	}
}
