package access

import (
	"sort"
	"strings"
)

// Visibility is a named default-access tier applied to every authenticated
// principal that has no more specific grant on a record. Priority only orders
// listings, it never affects access decisions. The disabled flag is site
// configuration, checked at resolution time through SiteConfig.
type Visibility struct {
	Name         string
	Label        string
	Priority     int
	DefaultLevel *AccessLevel
}

var (
	VisibilityPrivate = &Visibility{Name: "private", Label: "Private", Priority: 1, DefaultLevel: LevelNone}
	VisibilityPublic  = &Visibility{Name: "public", Label: "Public", Priority: 2, DefaultLevel: LevelView}
	VisibilityOpen    = &Visibility{Name: "open", Label: "Open", Priority: 3, DefaultLevel: LevelEdit}
)

var allVisibilities = []*Visibility{VisibilityPrivate, VisibilityPublic, VisibilityOpen}

var visibilitiesByName = map[string]*Visibility{
	"private": VisibilityPrivate,
	"public":  VisibilityPublic,
	"open":    VisibilityOpen,
}

// VisibilityManager resolves visibility names against the catalog and the site
// configuration. Resolution always fails closed to private.
type VisibilityManager struct {
	config SiteConfig
}

func NewVisibilityManager(config SiteConfig) *VisibilityManager {
	return &VisibilityManager{config: config}
}

// Resolve returns the visibility for a stored name. Blank or unknown names
// resolve to private.
func (m *VisibilityManager) Resolve(name string) *Visibility {
	if strings.TrimSpace(name) == "" {
		return VisibilityPrivate
	}
	if v, ok := visibilitiesByName[name]; ok {
		return v
	}
	return VisibilityPrivate
}

// Default returns the site-configured default visibility, falling back to
// private when the configuration is unset or names an unknown tier.
func (m *VisibilityManager) Default() *Visibility {
	if m.config == nil {
		return VisibilityPrivate
	}
	return m.Resolve(m.config.DefaultVisibility())
}

// ListAll returns every visibility, disabled ones included, ordered by
// priority ascending.
func (m *VisibilityManager) ListAll() []*Visibility {
	out := make([]*Visibility, len(allVisibilities))
	copy(out, allVisibilities)
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// ListAssignable returns the visibilities a user may set on a record, skipping
// tiers the site has disabled. Ordered by priority ascending.
func (m *VisibilityManager) ListAssignable() []*Visibility {
	all := m.ListAll()
	out := make([]*Visibility, 0, len(all))
	for _, v := range all {
		if m.config != nil && m.config.IsVisibilityDisabled(v.Name) {
			continue
		}
		out = append(out, v)
	}
	return out
}
