package access

import (
	"context"

	"record_access_service/internal/models"
)

// The five external collaborators the access core depends on. Everything else
// in this package is pure; production wiring lives in the repository and
// service layers, tests supply in-memory fakes.

// RecordStore loads and saves the per-record access document. Save carries the
// audit comment describing the mutation.
type RecordStore interface {
	Load(ctx context.Context, recordID string) (*models.RecordAccess, error)
	Save(ctx context.Context, doc *models.RecordAccess, auditComment string) error
}

// PrincipalResolver classifies a principal reference as a user or a group.
type PrincipalResolver interface {
	GetType(ctx context.Context, principal string) PrincipalType
}

// GroupResolver expands a principal to the groups it belongs to, transitively.
type GroupResolver interface {
	GroupsForMember(ctx context.Context, principal string) ([]string, error)
}

// RightsChecker answers the site-administrator question for a principal and a
// record. Administrators receive owner-level access on every record.
type RightsChecker interface {
	IsAdministrator(ctx context.Context, principal, recordID string) bool
}

// SiteConfig exposes the site-wide visibility configuration.
type SiteConfig interface {
	DefaultVisibility() string
	IsVisibilityDisabled(name string) bool
}
