package access

import "context"

// EntityAccess is a per-request view of one record's effective access. It is a
// stateless composition of the resolution layers: nothing is cached across
// queries, every call re-reads the record.
//
// The requester is the current principal; an empty reference is the
// unauthenticated guest.
type EntityAccess struct {
	recordID     string
	requester    string
	manager      *AccessManager
	visibilities *VisibilityManager
	rights       RightsChecker
}

func NewEntityAccess(recordID, requester string, manager *AccessManager, visibilities *VisibilityManager, rights RightsChecker) *EntityAccess {
	return &EntityAccess{
		recordID:     recordID,
		requester:    requester,
		manager:      manager,
		visibilities: visibilities,
		rights:       rights,
	}
}

// GetAccessLevel computes the requester's effective level on the record.
//
// Precedence: guest-owned records grant owner to every requester; then the
// owner itself; then site administrators; everyone else gets the better of
// their collaborator-derived level and the visibility default. Guests skip the
// collaborator lookup and can only receive the visibility default.
func (e *EntityAccess) GetAccessLevel(ctx context.Context) *AccessLevel {
	return e.GetAccessLevelFor(ctx, e.requester)
}

// GetAccessLevelFor evaluates the same algorithm for an arbitrary principal.
// Both the owner check and the administrator check apply to that principal,
// not to the requester.
func (e *EntityAccess) GetAccessLevelFor(ctx context.Context, principal string) *AccessLevel {
	owner := e.manager.GetOwner(ctx, e.recordID)
	if owner == nil {
		return LevelNone
	}
	if owner.IsGuest() {
		// Guest-owned records are wide open, to guests included.
		return LevelOwner
	}
	if principal != "" && principal == owner.Principal {
		return LevelOwner
	}
	if principal != "" && e.rights != nil && e.rights.IsAdministrator(ctx, principal, e.recordID) {
		return LevelOwner
	}

	visibilityLevel := e.GetVisibility(ctx).DefaultLevel
	if principal == "" {
		return visibilityLevel
	}

	collaboratorLevel := e.manager.GetAccessLevel(ctx, e.recordID, principal)
	if collaboratorLevel.Compare(visibilityLevel) >= 0 {
		return collaboratorLevel
	}
	return visibilityLevel
}

// HasAccessLevel reports whether the requester's effective level is at least
// the given one.
func (e *EntityAccess) HasAccessLevel(ctx context.Context, level *AccessLevel) bool {
	return e.GetAccessLevel(ctx).Compare(level) >= 0
}

func (e *EntityAccess) HasAccessLevelFor(ctx context.Context, principal string, level *AccessLevel) bool {
	return e.GetAccessLevelFor(ctx, principal).Compare(level) >= 0
}

// IsOwner reports whether the requester owns the record. A guest requester
// owns a guest-owned record: two empty references are the same guest.
func (e *EntityAccess) IsOwner(ctx context.Context) bool {
	return e.IsOwnerFor(ctx, e.requester)
}

func (e *EntityAccess) IsOwnerFor(ctx context.Context, principal string) bool {
	owner := e.manager.GetOwner(ctx, e.recordID)
	if owner == nil {
		return false
	}
	return owner.Principal == principal
}

// GetVisibility resolves the record's visibility, falling back to private for
// unresolvable records or unknown names.
func (e *EntityAccess) GetVisibility(ctx context.Context) *Visibility {
	return e.visibilities.Resolve(e.manager.GetVisibilityName(ctx, e.recordID))
}
