package access

import (
	"slices"
	"testing"

	"record_access_service/internal/models"
)

func TestResolveVisibilityFailsClosed(t *testing.T) {
	m := NewVisibilityManager(&fakeConfig{})

	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  "},
		{"unknown", "hidden"},
		{"wrong case", "Public"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Resolve(tc.input); got != VisibilityPrivate {
				t.Errorf("Resolve(%q) = %s, want private", tc.input, got.Name)
			}
		})
	}

	if got := m.Resolve("public"); got != VisibilityPublic {
		t.Errorf("Resolve(public) = %s, want public", got.Name)
	}
}

func TestDefaultVisibility(t *testing.T) {
	testCases := []struct {
		name       string
		configured string
		want       *Visibility
	}{
		{"unset", "", VisibilityPrivate},
		{"invalid", "nonsense", VisibilityPrivate},
		{"valid", "public", VisibilityPublic},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewVisibilityManager(&fakeConfig{defaultVisibility: tc.configured})
			if got := m.Default(); got != tc.want {
				t.Errorf("Default() = %s, want %s", got.Name, tc.want.Name)
			}
		})
	}
}

func TestListVisibilitiesOrderedByPriority(t *testing.T) {
	m := NewVisibilityManager(&fakeConfig{})

	all := m.ListAll()
	for i := 1; i < len(all); i++ {
		if all[i-1].Priority >= all[i].Priority {
			t.Errorf("visibilities out of order: %s before %s", all[i-1].Name, all[i].Name)
		}
	}
}

func TestListAssignableSkipsDisabled(t *testing.T) {
	m := NewVisibilityManager(&fakeConfig{disabled: map[string]bool{"open": true}})

	for _, v := range m.ListAssignable() {
		if v.Name == "open" {
			t.Error("disabled visibility listed as assignable")
		}
	}

	names := make([]string, 0)
	for _, v := range m.ListAll() {
		names = append(names, v.Name)
	}
	if !slices.Contains(names, "open") {
		t.Error("ListAll must include disabled visibilities")
	}
}

func TestFilterByVisibility(t *testing.T) {
	m := NewVisibilityManager(&fakeConfig{})

	docs := []*models.RecordAccess{
		record("P01", "alice", "public"),
		record("P02", "bob", "private"),
		record("P03", "carol", ""),          // blank resolves to private
		record("P04", "dave", "mislabeled"), // unknown resolves to private
		nil,
		record("P05", "erin", "public"),
	}
	source := slices.Values(docs)

	var got []string
	for doc := range m.FilterByVisibility(source, VisibilityPrivate) {
		got = append(got, doc.RecordID)
	}
	want := []string{"P02", "P03", "P04"}
	if !slices.Equal(got, want) {
		t.Errorf("FilterByVisibility(private) = %v, want %v", got, want)
	}

	// Early termination must not panic or over-consume.
	count := 0
	for range m.FilterByVisibility(slices.Values(docs), VisibilityPublic) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected a single yielded record, got %d", count)
	}
}
