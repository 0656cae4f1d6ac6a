package access

import (
	"context"
	"fmt"
	"log"
	"strings"

	"record_access_service/internal/models"
)

func collaboratorEntry(principal, level string) models.CollaboratorEntry {
	return models.CollaboratorEntry{Principal: principal, Level: level}
}

// AccessManager reads and writes the access metadata of a single record type.
// Every public method is total: failures come back as nil, false or an empty
// collection, never as a panic or a propagated error, so the decision path
// upstream always produces an answer.
type AccessManager struct {
	store      RecordStore
	principals PrincipalResolver
	groups     GroupResolver
}

func NewAccessManager(store RecordStore, principals PrincipalResolver, groups GroupResolver) *AccessManager {
	return &AccessManager{
		store:      store,
		principals: principals,
		groups:     groups,
	}
}

// GetOwner returns the record's owner, or nil when the record itself cannot be
// resolved. A loadable record always has an owner: an empty owner reference is
// the guest owner, not a missing one.
func (m *AccessManager) GetOwner(ctx context.Context, recordID string) *Owner {
	if recordID == "" {
		return nil
	}
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return nil
	}
	return NewOwner(strings.TrimSpace(doc.Owner), m.principals)
}

// SetOwner transfers ownership. The new owner's collaborator record, if any,
// is removed in the same save: an owner is never also listed as collaborator.
// A real previous owner is kept around as a manage-level collaborator so the
// transfer does not lock them out.
func (m *AccessManager) SetOwner(ctx context.Context, recordID, newOwner string) bool {
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return false
	}

	newOwner = strings.TrimSpace(newOwner)
	previous := strings.TrimSpace(doc.Owner)
	doc.Owner = newOwner

	kept := doc.Collaborators[:0]
	for _, entry := range doc.Collaborators {
		if entry.Principal == newOwner {
			continue
		}
		kept = append(kept, entry)
	}
	doc.Collaborators = kept

	if previous != "" && previous != newOwner {
		doc.Collaborators = append(doc.Collaborators, collaboratorEntry(previous, LevelManage.Name))
	}

	if err := m.store.Save(ctx, doc, fmt.Sprintf("Set owner: %s", newOwner)); err != nil {
		log.Printf("Error saving owner of record %s: %s", recordID, err)
		return false
	}
	return true
}

// GetCollaborators resolves the record's collaborator entries. Entries with a
// blank principal or a blank level are dropped; an unrecognized level name is
// kept and resolves to none. When the same principal appears more than once,
// only the most permissive level survives. Any storage failure yields an empty
// collection.
func (m *AccessManager) GetCollaborators(ctx context.Context, recordID string) []*Collaborator {
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		if err != nil {
			log.Printf("Error reading collaborators of record %s: %s", recordID, err)
		}
		return []*Collaborator{}
	}

	byPrincipal := make(map[string]*Collaborator)
	order := make([]string, 0, len(doc.Collaborators))
	for _, entry := range doc.Collaborators {
		principal := strings.TrimSpace(entry.Principal)
		if principal == "" {
			continue
		}
		if strings.TrimSpace(entry.Level) == "" {
			continue
		}
		level := ResolveAccessLevel(entry.Level)
		existing, seen := byPrincipal[principal]
		if !seen {
			byPrincipal[principal] = &Collaborator{
				Principal: principal,
				Level:     level,
				Type:      m.principalType(ctx, principal),
			}
			order = append(order, principal)
			continue
		}
		if level.Compare(existing.Level) > 0 {
			existing.Level = level
		}
	}

	collaborators := make([]*Collaborator, 0, len(order))
	for _, principal := range order {
		collaborators = append(collaborators, byPrincipal[principal])
	}
	return collaborators
}

// SetCollaborators replaces the whole collaborator list in a single save. Nil
// entries and entries without a principal are skipped silently.
func (m *AccessManager) SetCollaborators(ctx context.Context, recordID string, collaborators []*Collaborator) bool {
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return false
	}

	doc.Collaborators = doc.Collaborators[:0]
	for _, c := range collaborators {
		if c == nil || strings.TrimSpace(c.Principal) == "" {
			continue
		}
		level := c.Level
		if level == nil {
			level = LevelNone
		}
		doc.Collaborators = append(doc.Collaborators, collaboratorEntry(strings.TrimSpace(c.Principal), level.Name))
	}

	if err := m.store.Save(ctx, doc, "Updated collaborators"); err != nil {
		log.Printf("Error saving collaborators of record %s: %s", recordID, err)
		return false
	}
	return true
}

// AddCollaborator grants or updates a single collaborator, reusing the
// existing entry for that principal when present.
func (m *AccessManager) AddCollaborator(ctx context.Context, recordID string, collaborator *Collaborator) bool {
	if collaborator == nil || strings.TrimSpace(collaborator.Principal) == "" {
		return false
	}
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return false
	}

	principal := strings.TrimSpace(collaborator.Principal)
	level := collaborator.Level
	if level == nil {
		level = LevelNone
	}

	updated := false
	for i := range doc.Collaborators {
		if strings.TrimSpace(doc.Collaborators[i].Principal) == principal {
			doc.Collaborators[i].Level = level.Name
			updated = true
			break
		}
	}
	if !updated {
		doc.Collaborators = append(doc.Collaborators, collaboratorEntry(principal, level.Name))
	}

	if err := m.store.Save(ctx, doc, fmt.Sprintf("Added collaborator: %s", principal)); err != nil {
		log.Printf("Error adding collaborator to record %s: %s", recordID, err)
		return false
	}
	return true
}

// RemoveCollaborator drops the entry for the given principal. Returns false
// without saving when no such entry exists.
func (m *AccessManager) RemoveCollaborator(ctx context.Context, recordID, principal string) bool {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return false
	}
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return false
	}

	found := false
	kept := doc.Collaborators[:0]
	for _, entry := range doc.Collaborators {
		if strings.TrimSpace(entry.Principal) == principal {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return false
	}
	doc.Collaborators = kept

	if err := m.store.Save(ctx, doc, fmt.Sprintf("Removed collaborator: %s", principal)); err != nil {
		log.Printf("Error removing collaborator from record %s: %s", recordID, err)
		return false
	}
	return true
}

// GetAccessLevel computes the collaborator-derived level of a principal on a
// record: owner beats everything, a direct collaborator entry beats group
// grants, and a principal matching through several groups gets the most
// permissive of the matching levels. Guests and unresolvable records get none.
func (m *AccessManager) GetAccessLevel(ctx context.Context, recordID, principal string) *AccessLevel {
	principal = strings.TrimSpace(principal)
	if principal == "" || recordID == "" {
		return LevelNone
	}

	owner := m.GetOwner(ctx, recordID)
	if owner == nil {
		return LevelNone
	}
	if !owner.IsGuest() && owner.Principal == principal {
		return LevelOwner
	}

	collaborators := m.GetCollaborators(ctx, recordID)
	for _, c := range collaborators {
		if c.Principal == principal {
			return c.Level
		}
	}

	groups, err := m.groups.GroupsForMember(ctx, principal)
	if err != nil {
		log.Printf("Error resolving groups for %s on record %s: %s", principal, recordID, err)
		return LevelNone
	}
	membership := make(map[string]bool, len(groups))
	for _, g := range groups {
		membership[g] = true
	}

	best := LevelNone
	for _, c := range collaborators {
		if membership[c.Principal] && c.Level.Compare(best) > 0 {
			best = c.Level
		}
	}
	return best
}

// GetVisibilityName reads the stored visibility name; resolution to a catalog
// entry is the VisibilityManager's job.
func (m *AccessManager) GetVisibilityName(ctx context.Context, recordID string) string {
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return ""
	}
	return doc.Visibility
}

// SetVisibility stores a new visibility name for the record.
func (m *AccessManager) SetVisibility(ctx context.Context, recordID, visibility string) bool {
	doc, err := m.store.Load(ctx, recordID)
	if err != nil || doc == nil {
		return false
	}
	doc.Visibility = strings.TrimSpace(visibility)

	if err := m.store.Save(ctx, doc, fmt.Sprintf("Set visibility: %s", doc.Visibility)); err != nil {
		log.Printf("Error saving visibility of record %s: %s", recordID, err)
		return false
	}
	return true
}

func (m *AccessManager) principalType(ctx context.Context, principal string) PrincipalType {
	if m.principals == nil {
		return PrincipalUnknown
	}
	return m.principals.GetType(ctx, principal)
}
