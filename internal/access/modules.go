package access

import (
	"context"
	"sort"

	"record_access_service/internal/metrics"
)

// Decision is a module's three-valued answer. Abstain means "not my call,
// ask the next module" and is distinct from an explicit deny.
type Decision int

const (
	DecisionAbstain Decision = iota
	DecisionDeny
	DecisionGrant
)

func (d Decision) String() string {
	switch d {
	case DecisionGrant:
		return "grant"
	case DecisionDeny:
		return "deny"
	default:
		return "abstain"
	}
}

// AuthorizationModule answers whether a principal holds a right on a record.
// Modules are consulted in descending priority order; the first non-abstain
// answer wins.
type AuthorizationModule interface {
	Name() string
	Priority() int
	HasAccess(ctx context.Context, principal string, right Right, recordID string) Decision
}

// ModuleChain dispatches an authorization question across the registered
// modules, highest priority first.
type ModuleChain struct {
	modules []AuthorizationModule
}

func NewModuleChain(modules ...AuthorizationModule) *ModuleChain {
	ordered := make([]AuthorizationModule, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})
	return &ModuleChain{modules: ordered}
}

// NewDefaultModuleChain builds the standard four-module chain.
func NewDefaultModuleChain(manager *AccessManager, visibilities *VisibilityManager, rights RightsChecker) *ModuleChain {
	return NewModuleChain(
		&OwnerAccessModule{manager: manager, rights: rights},
		&CollaboratorAccessModule{manager: manager},
		&VisibilityAccessModule{manager: manager, visibilities: visibilities},
		&GuestOwnedAccessModule{manager: manager},
	)
}

func (c *ModuleChain) HasAccess(ctx context.Context, principal string, right Right, recordID string) Decision {
	for _, module := range c.modules {
		decision := module.HasAccess(ctx, principal, right, recordID)
		metrics.AccessDecisions.WithLabelValues(module.Name(), decision.String()).Inc()
		if decision != DecisionAbstain {
			return decision
		}
	}
	return DecisionAbstain
}

// Modules returns the chain in dispatch order.
func (c *ModuleChain) Modules() []AuthorizationModule {
	out := make([]AuthorizationModule, len(c.modules))
	copy(out, c.modules)
	return out
}

// OwnerAccessModule grants every tracked right to the record's owner and to
// site administrators, who act as owner everywhere. Defers on everything else.
type OwnerAccessModule struct {
	manager *AccessManager
	rights  RightsChecker
}

func (m *OwnerAccessModule) Name() string  { return "owner-access" }
func (m *OwnerAccessModule) Priority() int { return 400 }

func (m *OwnerAccessModule) HasAccess(ctx context.Context, principal string, right Right, recordID string) Decision {
	if principal == "" || recordID == "" || !right.IsTracked() {
		return DecisionAbstain
	}
	owner := m.manager.GetOwner(ctx, recordID)
	if owner == nil {
		return DecisionAbstain
	}
	if !owner.IsGuest() && owner.Principal == principal {
		return DecisionGrant
	}
	if m.rights != nil && m.rights.IsAdministrator(ctx, principal, recordID) {
		return DecisionGrant
	}
	return DecisionAbstain
}

// CollaboratorAccessModule decides by comparing the principal's granted level
// against the level the right requires. Principals with no granted level
// abstain so that weaker sources further down the chain still get a say.
type CollaboratorAccessModule struct {
	manager *AccessManager
}

func (m *CollaboratorAccessModule) Name() string  { return "collaborator-access" }
func (m *CollaboratorAccessModule) Priority() int { return 350 }

func (m *CollaboratorAccessModule) HasAccess(ctx context.Context, principal string, right Right, recordID string) Decision {
	if principal == "" || recordID == "" || !right.IsTracked() {
		return DecisionAbstain
	}
	required := MinimumLevelFor(right)
	if required == nil {
		return DecisionAbstain
	}
	if m.manager.GetOwner(ctx, recordID) == nil {
		return DecisionAbstain
	}
	granted := m.manager.GetAccessLevel(ctx, recordID, principal)
	if granted.Compare(LevelNone) == 0 {
		return DecisionAbstain
	}
	if granted.Compare(required) >= 0 {
		return DecisionGrant
	}
	return DecisionDeny
}

// VisibilityAccessModule grants a right to any registered principal when the
// record's visibility default level covers it. It abstains, never denies, so
// the guest-owned override below it stays reachable.
type VisibilityAccessModule struct {
	manager      *AccessManager
	visibilities *VisibilityManager
}

func (m *VisibilityAccessModule) Name() string  { return "visibility-access" }
func (m *VisibilityAccessModule) Priority() int { return 200 }

func (m *VisibilityAccessModule) HasAccess(ctx context.Context, principal string, right Right, recordID string) Decision {
	if principal == "" || recordID == "" || !right.IsTracked() {
		return DecisionAbstain
	}
	if m.manager.GetOwner(ctx, recordID) == nil {
		return DecisionAbstain
	}
	visibility := m.visibilities.Resolve(m.manager.GetVisibilityName(ctx, recordID))
	if visibility.DefaultLevel.Grants(right) {
		return DecisionGrant
	}
	return DecisionAbstain
}

// GuestOwnedAccessModule grants every tracked right to everyone, guests
// included, on records without a real owner. Records with a real owner make it
// abstain rather than deny.
type GuestOwnedAccessModule struct {
	manager *AccessManager
}

func (m *GuestOwnedAccessModule) Name() string  { return "guest-owned-access" }
func (m *GuestOwnedAccessModule) Priority() int { return 150 }

func (m *GuestOwnedAccessModule) HasAccess(ctx context.Context, principal string, right Right, recordID string) Decision {
	if recordID == "" || !right.IsTracked() {
		return DecisionAbstain
	}
	owner := m.manager.GetOwner(ctx, recordID)
	if owner == nil {
		return DecisionAbstain
	}
	if owner.IsGuest() {
		return DecisionGrant
	}
	return DecisionAbstain
}
