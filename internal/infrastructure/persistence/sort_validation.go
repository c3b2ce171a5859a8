package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC, with
// ASC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField returns sortField when the whitelist allows it and
// defaultField otherwise. Sort fields end up interpolated into ORDER BY
// clauses, so everything not explicitly whitelisted is rejected.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if field := strings.TrimSpace(sortField); allowedFields[field] {
		return field
	}
	return defaultField
}

// BranchSortFields contains allowed sort fields for branches
var BranchSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"short_name": true,
	"slug":       true,
}
