package access

import (
	"context"
	"errors"

	"record_access_service/internal/models"
)

// In-memory stand-ins for the five external collaborators.

type fakeStore struct {
	docs     map[string]*models.RecordAccess
	failLoad bool
	failSave bool
	comments []string
}

func newFakeStore(docs ...*models.RecordAccess) *fakeStore {
	s := &fakeStore{docs: make(map[string]*models.RecordAccess)}
	for _, doc := range docs {
		s.docs[doc.RecordID] = doc
	}
	return s
}

func (s *fakeStore) Load(ctx context.Context, recordID string) (*models.RecordAccess, error) {
	if s.failLoad {
		return nil, errors.New("store unavailable")
	}
	doc, ok := s.docs[recordID]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *doc
	copied.Collaborators = append([]models.CollaboratorEntry(nil), doc.Collaborators...)
	return &copied, nil
}

func (s *fakeStore) Save(ctx context.Context, doc *models.RecordAccess, auditComment string) error {
	if s.failSave {
		return errors.New("save failed")
	}
	s.comments = append(s.comments, auditComment)
	s.docs[doc.RecordID] = doc
	return nil
}

type fakePrincipals struct {
	types map[string]PrincipalType
}

func (p *fakePrincipals) GetType(ctx context.Context, principal string) PrincipalType {
	if p.types == nil {
		return PrincipalUser
	}
	if t, ok := p.types[principal]; ok {
		return t
	}
	return PrincipalUnknown
}

type fakeGroups struct {
	members map[string][]string
	err     error
}

func (g *fakeGroups) GroupsForMember(ctx context.Context, principal string) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.members[principal], nil
}

type fakeRights struct {
	admins map[string]bool
}

func (r *fakeRights) IsAdministrator(ctx context.Context, principal, recordID string) bool {
	return r.admins[principal]
}

type fakeConfig struct {
	defaultVisibility string
	disabled          map[string]bool
}

func (c *fakeConfig) DefaultVisibility() string { return c.defaultVisibility }
func (c *fakeConfig) IsVisibilityDisabled(name string) bool {
	return c.disabled[name]
}

func record(id, owner, visibility string, collaborators ...models.CollaboratorEntry) *models.RecordAccess {
	return &models.RecordAccess{
		RecordID:      id,
		Owner:         owner,
		Visibility:    visibility,
		Collaborators: collaborators,
	}
}

func entry(principal, level string) models.CollaboratorEntry {
	return models.CollaboratorEntry{Principal: principal, Level: level}
}

func newTestManager(store *fakeStore, groups *fakeGroups) *AccessManager {
	if groups == nil {
		groups = &fakeGroups{}
	}
	return NewAccessManager(store, &fakePrincipals{}, groups)
}
