package access

import (
	"iter"

	"record_access_service/internal/models"
)

// FilterByVisibility lazily filters a record stream down to the records whose
// stored visibility resolves to the wanted tier. The result is single-consumer
// and only restartable if the source sequence is.
func (m *VisibilityManager) FilterByVisibility(records iter.Seq[*models.RecordAccess], wanted *Visibility) iter.Seq[*models.RecordAccess] {
	return func(yield func(*models.RecordAccess) bool) {
		if wanted == nil {
			return
		}
		for doc := range records {
			if doc == nil {
				continue
			}
			if m.Resolve(doc.Visibility).Name != wanted.Name {
				continue
			}
			if !yield(doc) {
				return
			}
		}
	}
}
