package shared

// Filter carries common list-query options. Repositories whitelist OrderBy
// against their own sortable columns; an unrecognized value falls back to
// the repository default rather than erroring.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// IsPaginated reports whether the filter asks for a bounded page. A zero
// PageSize means the caller wants the full result set.
func (f Filter) IsPaginated() bool {
	return f.PageSize > 0
}
