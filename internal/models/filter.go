package models

// FilterAll is the sentinel meaning "do not filter on this field".
// The empty string is treated the same way.
const FilterAll = "all"

// FilterOptions narrows the review queue. Search is a case-insensitive
// substring match over title, original id, and refined content; the
// categorical fields match exactly unless set to FilterAll or empty.
type FilterOptions struct {
	Search  string
	Module  string
	Feature string
	Status  string
}

// Active reports whether any field differs from its match-all default.
func (f FilterOptions) Active() bool {
	return f.Search != "" || categorical(f.Module) || categorical(f.Feature) || categorical(f.Status)
}

func categorical(v string) bool {
	return v != "" && v != FilterAll
}
