package access

// Right is one of the platform document rights the authorization modules rule
// on. Anything outside this set is not this subsystem's business and makes
// every module abstain.
type Right string

const (
	RightNone    Right = ""
	RightView    Right = "view"
	RightComment Right = "comment"
	RightEdit    Right = "edit"
	RightDelete  Right = "delete"
	RightManage  Right = "manage"
)

var trackedRights = map[Right]bool{
	RightView:    true,
	RightComment: true,
	RightEdit:    true,
	RightDelete:  true,
	RightManage:  true,
}

// IsTracked reports whether r is one of the five record rights this subsystem
// decides on.
func (r Right) IsTracked() bool {
	return trackedRights[r]
}

// MinimumLevelFor maps a right to the weakest access level that grants it.
// Returns nil for rights outside the tracked set.
func MinimumLevelFor(r Right) *AccessLevel {
	switch r {
	case RightView:
		return LevelView
	case RightComment, RightEdit:
		return LevelEdit
	case RightDelete, RightManage:
		return LevelManage
	default:
		return nil
	}
}
