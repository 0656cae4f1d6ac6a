package service

import (
	"context"
	"log"

	"record_access_service/internal/access"
	"record_access_service/internal/events"
	"record_access_service/internal/metrics"
	"record_access_service/internal/models"
	"record_access_service/internal/repository"
)

// AccessService is the application facade over the access core: it wires the
// Mongo-backed collaborators into the manager, the evaluator and the module
// chain, enforces the secure decorator on every mutation, and publishes domain
// events after successful writes.
type AccessService struct {
	recordRepo   *repository.RecordAccessRepository
	settings     *repository.SettingsRepository
	principals   *PrincipalService
	manager      *access.AccessManager
	secure       *access.SecureAccessManager
	visibilities *access.VisibilityManager
	chain        *access.ModuleChain
	publisher    *events.EventPublisher
}

func NewAccessService(principals *PrincipalService, publisher *events.EventPublisher) *AccessService {
	recordRepo := repository.Repositories_instance.RecordAccessRepository
	groupRepo := repository.Repositories_instance.GroupRepository
	settings := repository.Repositories_instance.SettingsRepository

	manager := access.NewAccessManager(recordRepo, principals, groupRepo)
	visibilities := access.NewVisibilityManager(settings)

	return &AccessService{
		recordRepo:   recordRepo,
		settings:     settings,
		principals:   principals,
		manager:      manager,
		secure:       access.NewSecureAccessManager(manager, visibilities, principals),
		visibilities: visibilities,
		chain:        access.NewDefaultModuleChain(manager, visibilities, principals),
		publisher:    publisher,
	}
}

// Entity builds the per-request evaluator for one record and requester.
func (s *AccessService) Entity(recordID, requester string) *access.EntityAccess {
	return access.NewEntityAccess(recordID, requester, s.manager, s.visibilities, s.principals)
}

// EffectiveLevel resolves the requester's effective level on a record.
func (s *AccessService) EffectiveLevel(ctx context.Context, recordID, requester string) *access.AccessLevel {
	level := s.Entity(recordID, requester).GetAccessLevel(ctx)
	metrics.EffectiveLevels.WithLabelValues(level.Name).Inc()
	return level
}

// EffectiveLevelFor resolves the effective level of an arbitrary principal.
func (s *AccessService) EffectiveLevelFor(ctx context.Context, recordID, requester, principal string) *access.AccessLevel {
	level := s.Entity(recordID, requester).GetAccessLevelFor(ctx, principal)
	metrics.EffectiveLevels.WithLabelValues(level.Name).Inc()
	return level
}

// CheckAccess runs the module chain for an explicit (principal, right, record)
// question.
func (s *AccessService) CheckAccess(ctx context.Context, principal string, right access.Right, recordID string) access.Decision {
	return s.chain.HasAccess(ctx, principal, right, recordID)
}

func (s *AccessService) GetOwner(ctx context.Context, recordID string) *access.Owner {
	return s.manager.GetOwner(ctx, recordID)
}

func (s *AccessService) SetOwner(ctx context.Context, recordID, requester, newOwner string) bool {
	previous := s.manager.GetOwner(ctx, recordID)
	if !s.secure.SetOwner(ctx, recordID, requester, newOwner) {
		return false
	}
	previousRef := ""
	if previous != nil {
		previousRef = previous.Principal
	}
	if err := s.publisher.PublishOwnerChanged(ctx, recordID, previousRef, newOwner, requester); err != nil {
		log.Printf("Error publishing owner change for record %s: %s", recordID, err)
	}
	return true
}

func (s *AccessService) GetCollaborators(ctx context.Context, recordID string) []*access.Collaborator {
	return s.manager.GetCollaborators(ctx, recordID)
}

func (s *AccessService) SetCollaborators(ctx context.Context, recordID, requester string, collaborators []*access.Collaborator) bool {
	if !s.secure.SetCollaborators(ctx, recordID, requester, collaborators) {
		return false
	}
	if err := s.publisher.PublishCollaboratorsUpdated(ctx, recordID, requester); err != nil {
		log.Printf("Error publishing collaborator update for record %s: %s", recordID, err)
	}
	return true
}

func (s *AccessService) AddCollaborator(ctx context.Context, recordID, requester, principal, levelName string) bool {
	collaborator := &access.Collaborator{
		Principal: principal,
		Level:     access.ResolveAccessLevel(levelName),
		Type:      s.principals.GetType(ctx, principal),
	}
	if !s.secure.AddCollaborator(ctx, recordID, requester, collaborator) {
		return false
	}
	if err := s.publisher.PublishCollaboratorAdded(ctx, recordID, principal, collaborator.Level.Name, requester); err != nil {
		log.Printf("Error publishing collaborator addition for record %s: %s", recordID, err)
	}
	return true
}

func (s *AccessService) RemoveCollaborator(ctx context.Context, recordID, requester, principal string) bool {
	if !s.secure.RemoveCollaborator(ctx, recordID, requester, principal) {
		return false
	}
	if err := s.publisher.PublishCollaboratorRemoved(ctx, recordID, principal, requester); err != nil {
		log.Printf("Error publishing collaborator removal for record %s: %s", recordID, err)
	}
	return true
}

func (s *AccessService) GetVisibility(ctx context.Context, recordID string) *access.Visibility {
	return s.Entity(recordID, "").GetVisibility(ctx)
}

func (s *AccessService) SetVisibility(ctx context.Context, recordID, requester, visibility string) bool {
	if !s.secure.SetVisibility(ctx, recordID, requester, visibility) {
		return false
	}
	if err := s.publisher.PublishVisibilityChanged(ctx, recordID, visibility, requester); err != nil {
		log.Printf("Error publishing visibility change for record %s: %s", recordID, err)
	}
	return true
}

// ListVisibilities exposes the catalog; assignableOnly skips disabled tiers.
func (s *AccessService) ListVisibilities(assignableOnly bool) []*access.Visibility {
	if assignableOnly {
		return s.visibilities.ListAssignable()
	}
	return s.visibilities.ListAll()
}

// RecordsWithVisibility lazily filters the whole record set down to one tier
// and returns the matching record ids.
func (s *AccessService) RecordsWithVisibility(ctx context.Context, visibilityName string) []string {
	wanted := s.visibilities.Resolve(visibilityName)
	var ids []string
	for doc := range s.visibilities.FilterByVisibility(s.recordRepo.Stream(ctx), wanted) {
		ids = append(ids, doc.RecordID)
	}
	return ids
}

// GuestReachableRecords pages through the records whose visibility tier
// grants unauthenticated guests at least view access.
func (s *AccessService) GuestReachableRecords(ctx context.Context, page, limit int) ([]string, error) {
	var names []string
	for _, v := range s.visibilities.ListAll() {
		if v.DefaultLevel.Grants(access.RightView) {
			names = append(names, v.Name)
		}
	}

	docs, err := s.recordRepo.FindByVisibility(ctx, names, page, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.RecordID)
	}
	return ids, nil
}

// InitializeRecord seeds the access document for a newly created record with
// the creating user as owner and the site default visibility.
func (s *AccessService) InitializeRecord(ctx context.Context, recordID, creator string) error {
	visibility := s.visibilities.Default()
	_, err := s.recordRepo.Create(ctx, recordID, creator, visibility.Name)
	return err
}

// AuditTrail exposes the record's audit entries, manage level required.
func (s *AccessService) AuditTrail(ctx context.Context, recordID, requester string, page, limit int) ([]*models.AuditLog, bool) {
	if !s.Entity(recordID, requester).HasAccessLevel(ctx, access.LevelManage) {
		return nil, false
	}
	entries, err := s.recordRepo.AuditTrail(ctx, recordID, page, limit)
	if err != nil {
		log.Printf("Error reading audit trail of record %s: %s", recordID, err)
		return nil, false
	}
	return entries, true
}
