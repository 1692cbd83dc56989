package session

import (
	"testing"

	"github.com/Resinat/launchview/internal/model"
)

func TestTracker_LoginLogout(t *testing.T) {
	tr := NewTracker()
	if tr.Current() != nil {
		t.Fatal("expected signed out")
	}

	ch, cancel := tr.Subscribe()
	defer cancel()

	tr.Login(model.Principal{UID: "u1", Email: "a@example.com"})
	ev := <-ch
	if ev.Principal == nil || ev.Principal.UID != "u1" {
		t.Fatalf("login event: got %+v", ev)
	}

	// Duplicate logins still notify.
	tr.Login(model.Principal{UID: "u1", Email: "a@example.com"})
	if ev := <-ch; ev.Principal == nil || ev.Principal.UID != "u1" {
		t.Fatalf("repeated login event: got %+v", ev)
	}

	cur := tr.Current()
	cur.UID = "mutated"
	if tr.Current().UID != "u1" {
		t.Fatal("Current must return a copy")
	}

	tr.Logout()
	if ev := <-ch; ev.Principal != nil {
		t.Fatalf("logout event: got %+v", ev)
	}
	if tr.Current() != nil {
		t.Fatal("expected signed out after Logout")
	}
}
