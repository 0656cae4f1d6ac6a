package access

import (
	"context"
	"log"
)

// SecureAccessManager re-checks the requester's effective level before every
// mutating operation and then delegates to the plain manager. Reads pass
// straight through. Ownership transfer needs owner level, everything else
// manage.
type SecureAccessManager struct {
	inner        *AccessManager
	visibilities *VisibilityManager
	rights       RightsChecker
}

func NewSecureAccessManager(inner *AccessManager, visibilities *VisibilityManager, rights RightsChecker) *SecureAccessManager {
	return &SecureAccessManager{
		inner:        inner,
		visibilities: visibilities,
		rights:       rights,
	}
}

func (s *SecureAccessManager) allowed(ctx context.Context, recordID, requester string, required *AccessLevel) bool {
	entity := NewEntityAccess(recordID, requester, s.inner, s.visibilities, s.rights)
	if entity.HasAccessLevel(ctx, required) {
		return true
	}
	log.Printf("Denied mutation on record %s: requester %q below %s", recordID, requester, required.Name)
	return false
}

func (s *SecureAccessManager) GetOwner(ctx context.Context, recordID string) *Owner {
	return s.inner.GetOwner(ctx, recordID)
}

func (s *SecureAccessManager) GetCollaborators(ctx context.Context, recordID string) []*Collaborator {
	return s.inner.GetCollaborators(ctx, recordID)
}

func (s *SecureAccessManager) GetAccessLevel(ctx context.Context, recordID, principal string) *AccessLevel {
	return s.inner.GetAccessLevel(ctx, recordID, principal)
}

func (s *SecureAccessManager) GetVisibilityName(ctx context.Context, recordID string) string {
	return s.inner.GetVisibilityName(ctx, recordID)
}

func (s *SecureAccessManager) SetOwner(ctx context.Context, recordID, requester, newOwner string) bool {
	if !s.allowed(ctx, recordID, requester, LevelOwner) {
		return false
	}
	return s.inner.SetOwner(ctx, recordID, newOwner)
}

func (s *SecureAccessManager) SetCollaborators(ctx context.Context, recordID, requester string, collaborators []*Collaborator) bool {
	if !s.allowed(ctx, recordID, requester, LevelManage) {
		return false
	}
	return s.inner.SetCollaborators(ctx, recordID, collaborators)
}

func (s *SecureAccessManager) AddCollaborator(ctx context.Context, recordID, requester string, collaborator *Collaborator) bool {
	if !s.allowed(ctx, recordID, requester, LevelManage) {
		return false
	}
	return s.inner.AddCollaborator(ctx, recordID, collaborator)
}

func (s *SecureAccessManager) RemoveCollaborator(ctx context.Context, recordID, requester, principal string) bool {
	if !s.allowed(ctx, recordID, requester, LevelManage) {
		return false
	}
	return s.inner.RemoveCollaborator(ctx, recordID, principal)
}

func (s *SecureAccessManager) SetVisibility(ctx context.Context, recordID, requester, visibility string) bool {
	if !s.allowed(ctx, recordID, requester, LevelManage) {
		return false
	}
	return s.inner.SetVisibility(ctx, recordID, visibility)
}
