// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ContentMetrics provides business metrics for the study portal.
// It tracks sign-ins, file likes, upload activity, and catalog size.
type ContentMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	signInTotal   *Counter
	fileLikeTotal *Counter
	uploadTotal   *Counter

	// Gauge metrics (point-in-time values)
	catalogFiles   *Gauge
	bookmarksTotal *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	catalogProvider CatalogMetricsProvider
}

// CatalogMetricsProvider provides catalog data for periodic metrics
// collection. The interface keeps the telemetry layer from depending on
// the catalog domain directly.
type CatalogMetricsProvider interface {
	// CountActiveFilesByBranch returns the number of active files per branch slug
	CountActiveFilesByBranch(ctx context.Context) (map[string]int64, error)

	// CountBookmarks returns the total number of bookmarks across all users
	CountBookmarks(ctx context.Context) (int64, error)
}

// ContentMetricsConfig holds configuration for content metrics.
type ContentMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	CatalogProvider CatalogMetricsProvider
}

// NewContentMetrics creates a new ContentMetrics instance.
func NewContentMetrics(cfg ContentMetricsConfig) (*ContentMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &ContentMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		catalogProvider: cfg.CatalogProvider,
	}

	var err error

	cm.signInTotal, err = NewCounter(
		cfg.Meter,
		"studyhub_signin_total",
		"Total number of Google sign-ins",
		"{signins}",
	)
	if err != nil {
		return nil, err
	}

	cm.fileLikeTotal, err = NewCounter(
		cfg.Meter,
		"studyhub_file_like_total",
		"Total number of file like and unlike events",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	cm.uploadTotal, err = NewCounter(
		cfg.Meter,
		"studyhub_upload_total",
		"Total number of admin file uploads",
		"{uploads}",
	)
	if err != nil {
		return nil, err
	}

	cm.catalogFiles, err = NewGauge(
		cfg.Meter,
		"studyhub_catalog_files",
		"Current number of active files per branch",
		"{files}",
	)
	if err != nil {
		return nil, err
	}

	cm.bookmarksTotal, err = NewGauge(
		cfg.Meter,
		"studyhub_bookmarks_total",
		"Current number of bookmarks across all users",
		"{bookmarks}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// =============================================================================
// Sign-in Metrics
// =============================================================================

// SignInStatus represents the outcome of a sign-in for metrics labeling.
type SignInStatus string

const (
	SignInStatusSuccess SignInStatus = "success"
	SignInStatusFailed  SignInStatus = "failed"
)

// RecordSignIn records a Google sign-in attempt.
// This should be called when the OAuth code exchange completes.
func (cm *ContentMetrics) RecordSignIn(ctx context.Context, status SignInStatus) {
	cm.signInTotal.Inc(ctx,
		AttrSignInStatus.String(string(status)),
	)
}

// =============================================================================
// Like Metrics
// =============================================================================

// LikeAction distinguishes like from unlike events.
type LikeAction string

const (
	LikeActionLike   LikeAction = "like"
	LikeActionUnlike LikeAction = "unlike"
)

// RecordFileLike records a like or unlike event on a file.
func (cm *ContentMetrics) RecordFileLike(ctx context.Context, action LikeAction) {
	cm.fileLikeTotal.Inc(ctx,
		AttrLikeAction.String(string(action)),
	)
}

// =============================================================================
// Upload Metrics
// =============================================================================

// UploadStage marks the point in the presigned-upload flow being counted.
type UploadStage string

const (
	UploadStageInitiated UploadStage = "initiated"
	UploadStageConfirmed UploadStage = "confirmed"
)

// RecordUpload records an admin upload event. Initiated uploads that are
// never confirmed show up as a gap between the two stage counts.
func (cm *ContentMetrics) RecordUpload(ctx context.Context, stage UploadStage, fileType string) {
	cm.uploadTotal.Inc(ctx,
		AttrUploadStage.String(string(stage)),
		AttrFileType.String(fileType),
	)
}

// =============================================================================
// Catalog Gauges
// =============================================================================

// RecordCatalogFiles records the current active file count for a branch.
// This is a gauge metric that should be updated periodically.
func (cm *ContentMetrics) RecordCatalogFiles(ctx context.Context, branchSlug string, count int64) {
	cm.catalogFiles.Record(ctx, count,
		AttrBranchSlug.String(branchSlug),
	)
}

// RecordBookmarksTotal records the current total bookmark count.
func (cm *ContentMetrics) RecordBookmarksTotal(ctx context.Context, count int64) {
	cm.bookmarksTotal.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects catalog metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (cm *ContentMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go cm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (cm *ContentMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	cm.collectCatalogMetrics(ctx)

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("Stopping periodic content metrics collection")
			return
		case <-ctx.Done():
			cm.logger.Info("Context cancelled, stopping periodic content metrics collection")
			return
		case <-ticker.C:
			cm.collectCatalogMetrics(ctx)
		}
	}
}

// collectCatalogMetrics collects catalog gauge metrics.
func (cm *ContentMetrics) collectCatalogMetrics(ctx context.Context) {
	if cm.catalogProvider == nil {
		cm.logger.Debug("No catalog provider configured, skipping catalog metrics collection")
		return
	}

	filesByBranch, err := cm.catalogProvider.CountActiveFilesByBranch(ctx)
	if err != nil {
		cm.logger.Warn("Failed to count files by branch", zap.Error(err))
	} else {
		for branchSlug, count := range filesByBranch {
			cm.RecordCatalogFiles(ctx, branchSlug, count)
		}
	}

	bookmarks, err := cm.catalogProvider.CountBookmarks(ctx)
	if err != nil {
		cm.logger.Warn("Failed to count bookmarks", zap.Error(err))
	} else {
		cm.RecordBookmarksTotal(ctx, bookmarks)
	}
}

// Stop stops the periodic collection.
func (cm *ContentMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewContentMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
