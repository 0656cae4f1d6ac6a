package access

import (
	"context"
	"testing"
)

type chainFixture struct {
	store  *fakeStore
	groups *fakeGroups
}

func (f *chainFixture) chain() *ModuleChain {
	if f.groups == nil {
		f.groups = &fakeGroups{}
	}
	manager := NewAccessManager(f.store, &fakePrincipals{}, f.groups)
	return NewDefaultModuleChain(manager, NewVisibilityManager(&fakeConfig{}), &fakeRights{})
}

func TestChainDispatchOrder(t *testing.T) {
	f := &chainFixture{store: newFakeStore()}
	modules := f.chain().Modules()

	wantPriorities := []int{400, 350, 200, 150}
	wantNames := []string{"owner-access", "collaborator-access", "visibility-access", "guest-owned-access"}
	if len(modules) != len(wantPriorities) {
		t.Fatalf("expected %d modules, got %d", len(wantPriorities), len(modules))
	}
	for i, m := range modules {
		if m.Priority() != wantPriorities[i] {
			t.Errorf("module %d priority = %d, want %d", i, m.Priority(), wantPriorities[i])
		}
		if m.Name() != wantNames[i] {
			t.Errorf("module %d name = %s, want %s", i, m.Name(), wantNames[i])
		}
	}
}

func TestModulesAbstainOnUntrackedRights(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "public", entry("bob", "edit")))
	manager := newTestManager(store, &fakeGroups{})
	visibilities := NewVisibilityManager(&fakeConfig{})

	modules := []AuthorizationModule{
		&OwnerAccessModule{manager: manager},
		&CollaboratorAccessModule{manager: manager},
		&VisibilityAccessModule{manager: manager, visibilities: visibilities},
		&GuestOwnedAccessModule{manager: manager},
	}
	ctx := context.Background()

	for _, m := range modules {
		t.Run(m.Name(), func(t *testing.T) {
			for _, right := range []Right{Right("script"), Right("admin"), RightNone} {
				if got := m.HasAccess(ctx, "alice", right, "P01"); got != DecisionAbstain {
					t.Errorf("%s must abstain for right %q, got %s", m.Name(), right, got)
				}
			}
			// Unresolvable record: abstain, never deny.
			if got := m.HasAccess(ctx, "alice", RightView, "P99"); got != DecisionAbstain {
				t.Errorf("%s must abstain for a missing record, got %s", m.Name(), got)
			}
			if got := m.HasAccess(ctx, "alice", RightView, ""); got != DecisionAbstain {
				t.Errorf("%s must abstain for a blank record id, got %s", m.Name(), got)
			}
		})
	}
}

func TestOwnerModule(t *testing.T) {
	store := newFakeStore(
		record("P01", "alice", "private"),
		record("P02", "", "private"),
	)
	m := &OwnerAccessModule{manager: newTestManager(store, nil)}
	ctx := context.Background()

	for _, right := range []Right{RightView, RightComment, RightEdit, RightDelete, RightManage} {
		if got := m.HasAccess(ctx, "alice", right, "P01"); got != DecisionGrant {
			t.Errorf("owner module must grant %s to the owner, got %s", right, got)
		}
	}
	if got := m.HasAccess(ctx, "bob", RightView, "P01"); got != DecisionAbstain {
		t.Errorf("owner module must abstain for non-owners, got %s", got)
	}
	if got := m.HasAccess(ctx, "", RightView, "P02"); got != DecisionAbstain {
		t.Errorf("owner module must abstain for guests, got %s", got)
	}
}

func TestOwnerModuleGrantsAdministrators(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private"))
	m := &OwnerAccessModule{
		manager: newTestManager(store, nil),
		rights:  &fakeRights{admins: map[string]bool{"root": true}},
	}
	ctx := context.Background()

	if got := m.HasAccess(ctx, "root", RightManage, "P01"); got != DecisionGrant {
		t.Errorf("owner module must grant administrators, got %s", got)
	}
	if got := m.HasAccess(ctx, "bob", RightManage, "P01"); got != DecisionAbstain {
		t.Errorf("owner module must abstain for non-admin strangers, got %s", got)
	}
}

func TestCollaboratorModule(t *testing.T) {
	store := newFakeStore(record("P01", "alice", "private",
		entry("bob", "edit"),
		entry("carol", "view"),
	))
	m := &CollaboratorAccessModule{manager: newTestManager(store, &fakeGroups{})}
	ctx := context.Background()

	testCases := []struct {
		name      string
		principal string
		right     Right
		want      Decision
	}{
		{"sufficient level grants", "bob", RightEdit, DecisionGrant},
		{"level covers weaker right", "bob", RightView, DecisionGrant},
		{"insufficient level denies", "bob", RightManage, DecisionDeny},
		{"view collaborator denied edit", "carol", RightEdit, DecisionDeny},
		{"no grant record abstains", "dave", RightView, DecisionAbstain},
		{"guest abstains", "", RightView, DecisionAbstain},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.HasAccess(ctx, tc.principal, tc.right, "P01"); got != tc.want {
				t.Errorf("HasAccess(%q, %s) = %s, want %s", tc.principal, tc.right, got, tc.want)
			}
		})
	}
}

func TestVisibilityModule(t *testing.T) {
	store := newFakeStore(
		record("P01", "alice", "public"),
		record("P02", "alice", "private"),
		record("P03", "alice", "open"),
	)
	m := &VisibilityAccessModule{
		manager:      newTestManager(store, nil),
		visibilities: NewVisibilityManager(&fakeConfig{}),
	}
	ctx := context.Background()

	testCases := []struct {
		name      string
		principal string
		right     Right
		recordID  string
		want      Decision
	}{
		{"public grants view", "bob", RightView, "P01", DecisionGrant},
		{"public abstains on edit", "bob", RightEdit, "P01", DecisionAbstain},
		{"private abstains on view", "bob", RightView, "P02", DecisionAbstain},
		{"open grants edit", "bob", RightEdit, "P03", DecisionGrant},
		{"open abstains on delete", "bob", RightDelete, "P03", DecisionAbstain},
		{"guest abstains", "", RightView, "P01", DecisionAbstain},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.HasAccess(ctx, tc.principal, tc.right, tc.recordID); got != tc.want {
				t.Errorf("HasAccess(%q, %s, %s) = %s, want %s", tc.principal, tc.right, tc.recordID, got, tc.want)
			}
		})
	}
}

func TestGuestOwnedModule(t *testing.T) {
	store := newFakeStore(
		record("P01", "", "private"),
		record("P02", "alice", "private"),
	)
	m := &GuestOwnedAccessModule{manager: newTestManager(store, nil)}
	ctx := context.Background()

	for _, principal := range []string{"", "bob", "grp-oncology"} {
		for _, right := range []Right{RightView, RightComment, RightEdit, RightDelete, RightManage} {
			if got := m.HasAccess(ctx, principal, right, "P01"); got != DecisionGrant {
				t.Errorf("guest-owned module must grant %s to %q, got %s", right, principal, got)
			}
		}
	}

	// A real owner makes it defer, not deny.
	if got := m.HasAccess(ctx, "bob", RightView, "P02"); got != DecisionAbstain {
		t.Errorf("guest-owned module must abstain for owned records, got %s", got)
	}
}

func TestChainFirstDefinitiveAnswerWins(t *testing.T) {
	f := &chainFixture{store: newFakeStore(
		record("P01", "alice", "private", entry("bob", "view")),
		record("P02", "", "private"),
	)}
	chain := f.chain()
	ctx := context.Background()

	testCases := []struct {
		name      string
		principal string
		right     Right
		recordID  string
		want      Decision
	}{
		{"owner granted by first module", "alice", RightManage, "P01", DecisionGrant},
		{"collaborator granted", "bob", RightView, "P01", DecisionGrant},
		{"collaborator denied above level", "bob", RightEdit, "P01", DecisionDeny},
		{"stranger on private falls through", "carol", RightView, "P01", DecisionAbstain},
		{"guest-owned grants stranger", "carol", RightManage, "P02", DecisionGrant},
		{"guest-owned grants guest", "", RightView, "P02", DecisionGrant},
		{"untracked right abstains end to end", "alice", Right("script"), "P01", DecisionAbstain},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := chain.HasAccess(ctx, tc.principal, tc.right, tc.recordID); got != tc.want {
				t.Errorf("HasAccess(%q, %s, %s) = %s, want %s", tc.principal, tc.right, tc.recordID, got, tc.want)
			}
		})
	}
}
