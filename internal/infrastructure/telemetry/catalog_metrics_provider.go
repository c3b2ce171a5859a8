// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormCatalogMetricsProvider implements CatalogMetricsProvider using GORM.
// It queries the catalog tables directly for aggregated counts.
type GormCatalogMetricsProvider struct {
	db *gorm.DB
}

// NewGormCatalogMetricsProvider creates a new GormCatalogMetricsProvider.
func NewGormCatalogMetricsProvider(db *gorm.DB) *GormCatalogMetricsProvider {
	return &GormCatalogMetricsProvider{db: db}
}

// CountActiveFilesByBranch returns the number of active files per branch slug.
// Files on global subjects have no branch membership and are not counted here.
func (p *GormCatalogMetricsProvider) CountActiveFilesByBranch(ctx context.Context) (map[string]int64, error) {
	type result struct {
		BranchSlug string `gorm:"column:branch_slug"`
		FileCount  int64  `gorm:"column:file_count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("files").
		Select("branches.slug AS branch_slug, COUNT(DISTINCT files.id) AS file_count").
		Joins("JOIN subject_branches ON subject_branches.subject_id = files.subject_id").
		Joins("JOIN branches ON branches.id = subject_branches.branch_id").
		Where("files.status = ?", "active").
		Group("branches.slug").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.BranchSlug] = r.FileCount
	}
	return counts, nil
}

// CountBookmarks returns the total number of bookmarks across all users.
func (p *GormCatalogMetricsProvider) CountBookmarks(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("bookmarks").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
