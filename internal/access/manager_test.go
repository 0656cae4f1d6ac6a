package access

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestGetCollaboratorsCollapsesDuplicates(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("umberto", "edit"),
		entry("umberto", "view"),
		entry("umberto", "manage"),
	))
	m := newTestManager(store, nil)

	collaborators := m.GetCollaborators(context.Background(), "P01")
	if len(collaborators) != 1 {
		t.Fatalf("expected 1 collaborator, got %d", len(collaborators))
	}
	if collaborators[0].Principal != "umberto" || collaborators[0].Level != LevelManage {
		t.Errorf("got (%s, %s), want (umberto, manage)", collaborators[0].Principal, collaborators[0].Level.Name)
	}
}

func TestGetCollaboratorsDropsMalformedEntries(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("", "edit"),
		entry("   ", "manage"),
		entry("bob", ""),
		entry("carol", "  "),
		entry("dave", "wizard"),
		entry("erin", "view"),
	))
	m := newTestManager(store, nil)

	collaborators := m.GetCollaborators(context.Background(), "P01")
	if len(collaborators) != 2 {
		t.Fatalf("expected 2 collaborators, got %d", len(collaborators))
	}

	// An unrecognized level name keeps the record, degraded to none.
	if collaborators[0].Principal != "dave" || collaborators[0].Level != LevelNone {
		t.Errorf("got (%s, %s), want (dave, none)", collaborators[0].Principal, collaborators[0].Level.Name)
	}
	if collaborators[1].Principal != "erin" || collaborators[1].Level != LevelView {
		t.Errorf("got (%s, %s), want (erin, view)", collaborators[1].Principal, collaborators[1].Level.Name)
	}
}

func TestGetCollaboratorsIdempotent(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "view"),
		entry("bob", "edit"),
		entry("grp-oncology", "manage"),
	))
	m := newTestManager(store, nil)

	first := m.GetCollaborators(context.Background(), "P01")
	second := m.GetCollaborators(context.Background(), "P01")
	if len(first) != len(second) {
		t.Fatalf("resolutions differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equals(second[i]) {
			t.Errorf("resolution not idempotent at %d: (%s,%s) vs (%s,%s)",
				i, first[i].Principal, first[i].Level.Name, second[i].Principal, second[i].Level.Name)
		}
	}
}

func TestGetCollaboratorsStorageFailureYieldsEmpty(t *testing.T) {
	store := newFakeStore()
	store.failLoad = true
	m := newTestManager(store, nil)

	collaborators := m.GetCollaborators(context.Background(), "P01")
	if collaborators == nil || len(collaborators) != 0 {
		t.Errorf("expected empty collection on storage failure, got %v", collaborators)
	}
}

func TestGetOwner(t *testing.T) {
	store := newFakeStore(
		record("P01", "alice", "private"),
		record("P02", "", "private"),
	)
	m := newTestManager(store, nil)
	ctx := context.Background()

	owner := m.GetOwner(ctx, "P01")
	if owner == nil || owner.Principal != "alice" || owner.IsGuest() {
		t.Errorf("unexpected owner for P01: %+v", owner)
	}

	// Blank owner is the guest owner, not a missing result.
	guestOwned := m.GetOwner(ctx, "P02")
	if guestOwned == nil {
		t.Fatal("guest-owned record must still resolve an owner")
	}
	if !guestOwned.IsGuest() {
		t.Error("empty owner reference must resolve as guest")
	}

	// Only an unresolvable record gives no owner at all.
	if m.GetOwner(ctx, "P99") != nil {
		t.Error("missing record must resolve to nil owner")
	}
	if m.GetOwner(ctx, "") != nil {
		t.Error("blank record id must resolve to nil owner")
	}
}

func TestSetOwnerRemovesNewOwnerFromCollaborators(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "edit"),
		entry("carol", "view"),
	))
	m := newTestManager(store, nil)
	ctx := context.Background()

	if !m.SetOwner(ctx, "P01", "bob") {
		t.Fatal("SetOwner failed")
	}

	owner := m.GetOwner(ctx, "P01")
	if owner == nil || owner.Principal != "bob" {
		t.Fatalf("owner not transferred: %+v", owner)
	}

	var principals []string
	for _, c := range m.GetCollaborators(ctx, "P01") {
		principals = append(principals, c.Principal)
	}
	if slices.Contains(principals, "bob") {
		t.Error("new owner must no longer be listed as collaborator")
	}
	if !slices.Contains(principals, "carol") {
		t.Error("unrelated collaborator lost during ownership transfer")
	}

	// The displaced owner is kept as a manage-level collaborator.
	level := m.GetAccessLevel(ctx, "P01", "alice")
	if level != LevelManage {
		t.Errorf("previous owner level = %s, want manage", level.Name)
	}

	if !slices.Contains(store.comments, "Set owner: bob") {
		t.Errorf("missing audit comment, got %v", store.comments)
	}
}

func TestSetOwnerFromGuestAddsNoCollaborator(t *testing.T) {
	store := newFakeStore(record("P01", "", "private"))
	m := newTestManager(store, nil)
	ctx := context.Background()

	if !m.SetOwner(ctx, "P01", "alice") {
		t.Fatal("SetOwner failed")
	}
	if len(m.GetCollaborators(ctx, "P01")) != 0 {
		t.Error("guest previous owner must not become a collaborator")
	}
}

func TestSetOwnerFailure(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private"))
	store.failSave = true
	m := newTestManager(store, nil)

	if m.SetOwner(context.Background(), "P01", "bob") {
		t.Error("SetOwner must return false on save failure")
	}
	if m.SetOwner(context.Background(), "P99", "bob") {
		t.Error("SetOwner must return false for a missing record")
	}
}

func TestSetCollaboratorsReplacesWholesale(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "edit"),
	))
	m := newTestManager(store, nil)
	ctx := context.Background()

	ok := m.SetCollaborators(ctx, "P01", []*Collaborator{
		{Principal: "carol", Level: LevelView},
		nil,
		{Principal: "", Level: LevelManage},
		{Principal: "dave", Level: LevelManage},
	})
	if !ok {
		t.Fatal("SetCollaborators failed")
	}

	collaborators := m.GetCollaborators(ctx, "P01")
	if len(collaborators) != 2 {
		t.Fatalf("expected 2 collaborators, got %d", len(collaborators))
	}
	if collaborators[0].Principal != "carol" || collaborators[1].Principal != "dave" {
		t.Errorf("unexpected collaborators: %s, %s", collaborators[0].Principal, collaborators[1].Principal)
	}
	if !slices.Contains(store.comments, "Updated collaborators") {
		t.Errorf("missing audit comment, got %v", store.comments)
	}
}

func TestAddCollaborator(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "view"),
	))
	m := newTestManager(store, nil)
	ctx := context.Background()

	if m.AddCollaborator(ctx, "P01", nil) {
		t.Error("nil collaborator must be rejected")
	}

	// Existing entry is reused, not duplicated.
	if !m.AddCollaborator(ctx, "P01", &Collaborator{Principal: "bob", Level: LevelManage}) {
		t.Fatal("AddCollaborator failed")
	}
	collaborators := m.GetCollaborators(ctx, "P01")
	if len(collaborators) != 1 || collaborators[0].Level != LevelManage {
		t.Errorf("expected single (bob, manage) entry, got %d entries", len(collaborators))
	}

	if !m.AddCollaborator(ctx, "P01", &Collaborator{Principal: "carol", Level: LevelView}) {
		t.Fatal("AddCollaborator failed for new principal")
	}
	if !slices.Contains(store.comments, "Added collaborator: carol") {
		t.Errorf("missing audit comment, got %v", store.comments)
	}
}

func TestRemoveCollaborator(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "edit"),
	))
	m := newTestManager(store, nil)
	ctx := context.Background()

	if m.RemoveCollaborator(ctx, "P01", "nobody") {
		t.Error("removing a non-collaborator must be a false no-op")
	}
	before := len(store.comments)

	if !m.RemoveCollaborator(ctx, "P01", "bob") {
		t.Fatal("RemoveCollaborator failed")
	}
	if len(m.GetCollaborators(ctx, "P01")) != 0 {
		t.Error("collaborator still present after removal")
	}
	if len(store.comments) != before+1 || store.comments[before] != "Removed collaborator: bob" {
		t.Errorf("unexpected audit comments: %v", store.comments)
	}
}

func TestGetAccessLevelDirectAndGroupMatches(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "view"),
		entry("grp-oncology", "edit"),
		entry("grp-surgery", "manage"),
	))
	groups := &fakeGroups{members: map[string][]string{
		"bob":   {"grp-oncology", "grp-surgery"},
		"carol": {"grp-oncology", "grp-surgery"},
		"dave":  {"grp-radiology"},
	}}
	m := newTestManager(store, groups)
	ctx := context.Background()

	testCases := []struct {
		name      string
		principal string
		want      *AccessLevel
	}{
		{"guest", "", LevelNone},
		{"owner", "alice", LevelOwner},
		{"direct match beats groups", "bob", LevelView},
		{"most permissive group wins", "carol", LevelManage},
		{"no matching group", "dave", LevelNone},
		{"stranger", "erin", LevelNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.GetAccessLevel(ctx, "P01", tc.principal); got != tc.want {
				t.Errorf("GetAccessLevel(%q) = %s, want %s", tc.principal, got.Name, tc.want.Name)
			}
		})
	}
}

func TestGetAccessLevelGroupServiceFailureFailsClosed(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("grp-oncology", "manage"),
	))
	groups := &fakeGroups{err: errors.New("directory down")}
	m := newTestManager(store, groups)

	if got := m.GetAccessLevel(context.Background(), "P01", "bob"); got != LevelNone {
		t.Errorf("expected none on group resolution failure, got %s", got.Name)
	}
}
