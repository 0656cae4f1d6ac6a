package access

import "strings"

// AccessLevel is one of the fixed named permission tiers a principal can hold
// on a patient record. Levels form a total order: none < view < edit < manage
// < owner. Instances are process-wide singletons; compare by rank, never by
// pointer from outside this package.
type AccessLevel struct {
	Name  string
	Label string
	rank  int
	right Right
}

var (
	LevelNone   = &AccessLevel{Name: "none", Label: "No Access", rank: 0, right: RightNone}
	LevelView   = &AccessLevel{Name: "view", Label: "Can View", rank: 1, right: RightView}
	LevelEdit   = &AccessLevel{Name: "edit", Label: "Can Edit", rank: 2, right: RightEdit}
	LevelManage = &AccessLevel{Name: "manage", Label: "Can Manage", rank: 3, right: RightManage}
	LevelOwner  = &AccessLevel{Name: "owner", Label: "Owner", rank: 4, right: RightManage}
)

var allLevels = []*AccessLevel{LevelNone, LevelView, LevelEdit, LevelManage, LevelOwner}

var levelsByName = map[string]*AccessLevel{
	"none":   LevelNone,
	"view":   LevelView,
	"edit":   LevelEdit,
	"manage": LevelManage,
	"owner":  LevelOwner,
}

// Compare orders two levels by rank. A nil level counts as none.
func (l *AccessLevel) Compare(other *AccessLevel) int {
	lr, or := 0, 0
	if l != nil {
		lr = l.rank
	}
	if other != nil {
		or = other.rank
	}
	switch {
	case lr < or:
		return -1
	case lr > or:
		return 1
	default:
		return 0
	}
}

// GrantedRight is the strongest platform right this level carries.
func (l *AccessLevel) GrantedRight() Right {
	if l == nil {
		return RightNone
	}
	return l.right
}

// Grants reports whether this level is sufficient for the given right.
func (l *AccessLevel) Grants(r Right) bool {
	required := MinimumLevelFor(r)
	if required == nil {
		return false
	}
	return l.Compare(required) >= 0
}

// ResolveAccessLevel looks a level up by name, case-sensitive. Blank or
// unrecognized names resolve to none so that stale metadata can never widen
// access.
func ResolveAccessLevel(name string) *AccessLevel {
	if strings.TrimSpace(name) == "" {
		return LevelNone
	}
	if level, ok := levelsByName[name]; ok {
		return level
	}
	return LevelNone
}

// AllAccessLevels returns every level ordered by rank ascending.
func AllAccessLevels() []*AccessLevel {
	out := make([]*AccessLevel, len(allLevels))
	copy(out, allLevels)
	return out
}

// AssignableAccessLevels returns the levels that may be granted to a
// collaborator. Excludes none (not a collaborator) and owner (only granted
// through ownership transfer).
func AssignableAccessLevels() []*AccessLevel {
	return []*AccessLevel{LevelView, LevelEdit, LevelManage}
}
