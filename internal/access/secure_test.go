package access

import (
	"context"
	"testing"
)

func newSecureFixture(store *fakeStore) *SecureAccessManager {
	manager := NewAccessManager(store, &fakePrincipals{}, &fakeGroups{})
	return NewSecureAccessManager(manager, NewVisibilityManager(&fakeConfig{}), &fakeRights{})
}

func TestSecureManagerRequiresManageForCollaboratorChanges(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "edit"),
		entry("mallory", "manage"),
	))
	s := newSecureFixture(store)
	ctx := context.Background()

	// edit is not enough to manage collaborators.
	if s.AddCollaborator(ctx, "P01", "bob", &Collaborator{Principal: "eve", Level: LevelView}) {
		t.Error("edit-level requester must not add collaborators")
	}
	if s.RemoveCollaborator(ctx, "P01", "bob", "mallory") {
		t.Error("edit-level requester must not remove collaborators")
	}
	if s.SetVisibility(ctx, "P01", "bob", "public") {
		t.Error("edit-level requester must not change visibility")
	}

	// manage is.
	if !s.AddCollaborator(ctx, "P01", "mallory", &Collaborator{Principal: "eve", Level: LevelView}) {
		t.Error("manage-level requester must be able to add collaborators")
	}
	if !s.SetVisibility(ctx, "P01", "mallory", "public") {
		t.Error("manage-level requester must be able to change visibility")
	}
	if !s.SetCollaborators(ctx, "P01", "mallory", []*Collaborator{
		{Principal: "mallory", Level: LevelManage},
	}) {
		t.Error("manage-level requester must be able to replace collaborators")
	}
}

func TestSecureManagerRequiresOwnerForOwnershipTransfer(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("mallory", "manage"),
	))
	s := newSecureFixture(store)
	ctx := context.Background()

	if s.SetOwner(ctx, "P01", "mallory", "mallory") {
		t.Error("manage-level requester must not transfer ownership")
	}
	if !s.SetOwner(ctx, "P01", "alice", "bob") {
		t.Error("owner must be able to transfer ownership")
	}
	if owner := s.GetOwner(ctx, "P01"); owner == nil || owner.Principal != "bob" {
		t.Errorf("ownership not transferred: %+v", owner)
	}
}

func TestSecureManagerReadsPassThrough(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "edit"),
	))
	s := newSecureFixture(store)
	ctx := context.Background()

	// Reads need no level at all, even for strangers or guests.
	if owner := s.GetOwner(ctx, "P01"); owner == nil || owner.Principal != "alice" {
		t.Errorf("GetOwner through decorator = %+v", owner)
	}
	if got := len(s.GetCollaborators(ctx, "P01")); got != 1 {
		t.Errorf("GetCollaborators through decorator returned %d entries", got)
	}
	if got := s.GetAccessLevel(ctx, "P01", "bob"); got != LevelEdit {
		t.Errorf("GetAccessLevel through decorator = %s", got.Name)
	}
}

func TestSecureManagerAdminActsAsOwner(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private"))
	manager := NewAccessManager(store, &fakePrincipals{}, &fakeGroups{})
	s := NewSecureAccessManager(manager, NewVisibilityManager(&fakeConfig{}),
		&fakeRights{admins: map[string]bool{"root": true}})
	ctx := context.Background()

	if !s.SetOwner(ctx, "P01", "root", "bob") {
		t.Error("administrator must be able to transfer ownership")
	}
}
