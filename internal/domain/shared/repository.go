package shared

// Filter carries the list options repositories accept: pagination,
// ordering, and a free-text search term. Zero values mean no limit and
// the repository's default ordering.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}
