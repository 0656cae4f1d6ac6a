package access

import "context"

// PrincipalType classifies a principal reference.
type PrincipalType string

const (
	PrincipalUser    PrincipalType = "user"
	PrincipalGroup   PrincipalType = "group"
	PrincipalUnknown PrincipalType = "unknown"
)

// Owner is a record's owner. An empty principal reference means the record is
// guest-owned, which is a real state, not a missing one. The classification is
// resolved lazily so that loading an access document never touches the
// principal store.
type Owner struct {
	Principal string
	resolver  PrincipalResolver
	typ       PrincipalType
	typKnown  bool
}

func NewOwner(principal string, resolver PrincipalResolver) *Owner {
	return &Owner{Principal: principal, resolver: resolver}
}

// IsGuest reports whether the record has no real owner.
func (o *Owner) IsGuest() bool {
	return o.Principal == ""
}

// Type resolves the owner's principal classification on first use.
func (o *Owner) Type(ctx context.Context) PrincipalType {
	if o.typKnown {
		return o.typ
	}
	o.typ = PrincipalUnknown
	if o.Principal != "" && o.resolver != nil {
		o.typ = o.resolver.GetType(ctx, o.Principal)
	}
	o.typKnown = true
	return o.typ
}

// Equals compares owners by principal reference only. Two guest owners are the
// same guest.
func (o *Owner) Equals(other *Owner) bool {
	if other == nil {
		return false
	}
	return o.Principal == other.Principal
}

// Collaborator is an explicit (principal, level) grant on a record. Two
// grants for the same principal at different levels are distinct values;
// resolution guarantees at most one survives per principal.
type Collaborator struct {
	Principal string
	Level     *AccessLevel
	Type      PrincipalType
}

// Equals compares by (principal, level) pair.
func (c *Collaborator) Equals(other *Collaborator) bool {
	if other == nil {
		return false
	}
	return c.Principal == other.Principal && c.Level.Compare(other.Level) == 0
}
