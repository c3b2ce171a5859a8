package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
	"github.com/studyhub/backend/internal/infrastructure/telemetry"
)

// StaticIndex resolves pre-generated question-paper records for a subject
// slug. A nil index or an unknown slug yields zero records.
type StaticIndex interface {
	Lookup(subjectSlug string) []catalog.FileRecord
}

// FileServiceConfig holds configuration for the file service
type FileServiceConfig struct {
	// UploadURLExpiry is the duration for which presigned upload URLs are valid
	UploadURLExpiry time.Duration
	// PublicBaseURL is the base URL files are served from after upload
	PublicBaseURL string
}

// DefaultFileServiceConfig returns the default configuration
func DefaultFileServiceConfig() FileServiceConfig {
	return FileServiceConfig{
		UploadURLExpiry: 15 * time.Minute,
	}
}

// FileService handles file-related business operations
type FileService struct {
	fileRepo    catalog.FileRepository
	subjectRepo catalog.SubjectRepository
	branchRepo  catalog.BranchRepository
	storage     ObjectStorageService
	static      StaticIndex
	config      FileServiceConfig
	metrics     *telemetry.ContentMetrics
}

// NewFileService creates a new FileService. static may be nil when no
// question-paper index artifact is configured.
func NewFileService(
	fileRepo catalog.FileRepository,
	subjectRepo catalog.SubjectRepository,
	branchRepo catalog.BranchRepository,
	storage ObjectStorageService,
	static StaticIndex,
) *FileService {
	return &FileService{
		fileRepo:    fileRepo,
		subjectRepo: subjectRepo,
		branchRepo:  branchRepo,
		storage:     storage,
		static:      static,
		config:      DefaultFileServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *FileService) SetConfig(config FileServiceConfig) {
	s.config = config
}

// SetContentMetrics sets the content metrics collector
func (s *FileService) SetContentMetrics(cm *telemetry.ContentMetrics) {
	s.metrics = cm
}

// Create registers a file that already lives at an external URL
func (s *FileService) Create(ctx context.Context, req CreateFileRequest) (*FileResponse, error) {
	if _, err := s.subjectRepo.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject not found")
		}
		return nil, err
	}

	file, err := catalog.NewFile(catalog.NewFileInput{
		SubjectID:    req.SubjectID,
		FileName:     req.FileName,
		DriveFileID:  req.DriveFileID,
		FileURL:      req.FileURL,
		RelativePath: req.RelativePath,
		FileType:     req.FileType,
		FileSize:     req.FileSize,
		Description:  req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.fileRepo.Save(ctx, file); err != nil {
		return nil, err
	}

	resp := ToFileResponse(file)
	return &resp, nil
}

// GetBySlug retrieves a file by its slug
func (s *FileService) GetBySlug(ctx context.Context, slug string) (*FileResponse, error) {
	file, err := s.fileRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	resp := ToFileResponse(file)
	return &resp, nil
}

// GetSubjectFiles returns the subject plus its files, with static
// question-paper records merged in. The flat form is sorted by relative
// path; with grouped set the same records come back bucketed by
// sub-folder instead.
func (s *FileService) GetSubjectFiles(ctx context.Context, slugOrID string, grouped bool) (*SubjectFilesResponse, error) {
	subject, err := s.resolveSubject(ctx, slugOrID)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.FindBySubjectID(ctx, subject.ID)
	if err != nil {
		return nil, err
	}

	records := make([]catalog.FileRecord, 0, len(files))
	for i := range files {
		records = append(records, files[i].ToRecord())
	}

	if s.static != nil {
		records = append(records, s.static.Lookup(subject.Slug)...)
	}

	resp := &SubjectFilesResponse{Subject: ToSubjectResponse(subject)}
	if grouped {
		resp.Groups = catalog.GroupFiles(records)
		return resp, nil
	}

	// Live rows arrive sorted from the repository, but static records are
	// appended afterwards and need folding back into order.
	slices.SortStableFunc(records, func(a, b catalog.FileRecord) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	resp.Files = records
	return resp, nil
}

// Update updates a file's metadata; the slug is regenerated only on rename
func (s *FileService) Update(ctx context.Context, id uuid.UUID, req UpdateFileRequest) (*FileResponse, error) {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fileName := file.FileName
	if req.FileName != nil {
		fileName = *req.FileName
	}
	relativePath := file.RelativePath
	if req.RelativePath != nil {
		relativePath = *req.RelativePath
	}
	fileType := file.FileType
	if req.FileType != nil {
		fileType = *req.FileType
	}
	description := file.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := file.Update(fileName, relativePath, fileType, description); err != nil {
		return nil, err
	}

	if err := s.fileRepo.Save(ctx, file); err != nil {
		return nil, err
	}

	resp := ToFileResponse(file)
	return &resp, nil
}

// Delete removes a file record and, for uploaded files, its storage object
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if file.StorageKey != "" && s.storage != nil {
		// The record is the source of truth; a failed object delete is not fatal
		_ = s.storage.DeleteObject(ctx, file.StorageKey)
	}

	return s.fileRepo.Delete(ctx, id)
}

// Like atomically increments a file's like counter
func (s *FileService) Like(ctx context.Context, id uuid.UUID) error {
	if err := s.fileRepo.Like(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordFileLike(ctx, telemetry.LikeActionLike)
	}
	return nil
}

// Unlike atomically decrements a file's like counter, clamped at zero
func (s *FileService) Unlike(ctx context.Context, id uuid.UUID) error {
	if err := s.fileRepo.Unlike(ctx, id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordFileLike(ctx, telemetry.LikeActionUnlike)
	}
	return nil
}

// Search finds files by name substring, enriching each hit with its subject
// and the branch names the subject belongs to
func (s *FileService) Search(ctx context.Context, filter catalog.SearchFilter) ([]SearchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "file", "search",
		telemetry.WithAttribute(telemetry.SpanAttrQuery, filter.Query),
		telemetry.WithAttribute(telemetry.SpanAttrBranchSlug, filter.BranchSlug),
		telemetry.WithAttribute(telemetry.SpanAttrSubjectSlug, filter.SubjectSlug),
	)
	defer span.End()

	if strings.TrimSpace(filter.Query) == "" {
		return []SearchResult{}, nil
	}

	files, err := s.fileRepo.Search(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(files) == 0 {
		return []SearchResult{}, nil
	}

	subjects, err := s.loadSubjectsFor(ctx, files)
	if err != nil {
		return nil, err
	}

	branchNames, err := s.branchNameIndex(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(files))
	for i := range files {
		result := SearchResult{FileResponse: ToFileResponse(&files[i])}
		if subject, ok := subjects[files[i].SubjectID]; ok {
			result.SubjectName = subject.Name
			result.SubjectSlug = subject.Slug
			for _, branchID := range subject.BranchIDs {
				if name, ok := branchNames[branchID]; ok {
					result.BranchNames = append(result.BranchNames, name)
				}
			}
		}
		results[i] = result
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrResultCount, len(results))
	return results, nil
}

// InitiateUpload creates a pending file record and mints a presigned PUT URL
func (s *FileService) InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "file", "initiate_upload",
		telemetry.WithAttribute(telemetry.SpanAttrContentType, req.ContentType),
	)
	defer span.End()

	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Object storage is not configured")
	}

	if _, err := s.subjectRepo.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject not found")
		}
		return nil, err
	}

	if !isAllowedContentType(req.ContentType) {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed for study material", req.ContentType))
	}

	storageKey := s.generateStorageKey(req.SubjectID, req.FileName)

	file, err := catalog.NewPendingFile(catalog.NewFileInput{
		SubjectID:    req.SubjectID,
		FileName:     req.FileName,
		StorageKey:   storageKey,
		FileURL:      s.publicURL(storageKey),
		RelativePath: req.RelativePath,
		FileType:     strings.TrimPrefix(filepath.Ext(req.FileName), "."),
		FileSize:     req.FileSize,
		Description:  req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.fileRepo.Save(ctx, file); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		telemetry.RecordError(span, err)
		// Drop the pending record when no URL could be handed out
		_ = s.fileRepo.Delete(ctx, file.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrStorageKey, storageKey)

	if s.metrics != nil {
		s.metrics.RecordUpload(ctx, telemetry.UploadStageInitiated, file.FileType)
	}

	return &InitiateUploadResponse{
		FileID:    file.ID,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and activates the file
func (s *FileService) ConfirmUpload(ctx context.Context, fileID uuid.UUID) (*FileResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "file", "confirm_upload",
		telemetry.WithAttribute(telemetry.SpanAttrFileID, fileID.String()),
	)
	defer span.End()

	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Object storage is not configured")
	}

	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, file.StorageKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Upload the file first.")
	}

	if err := file.Confirm(); err != nil {
		return nil, err
	}

	if err := s.fileRepo.Save(ctx, file); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(ctx, telemetry.UploadStageConfirmed, file.FileType)
	}
	telemetry.AddEvent(span, "upload_confirmed",
		telemetry.SpanAttrStorageKey, file.StorageKey,
		telemetry.SpanAttrFileSlug, file.Slug,
	)
	telemetry.SetOK(span)

	resp := ToFileResponse(file)
	return &resp, nil
}

// generateStorageKey builds a collision-free object key for a subject file
func (s *FileService) generateStorageKey(subjectID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("subjects/%s/files/%s%s", subjectID, uuid.New(), ext)
}

// publicURL derives the post-upload serving URL for a storage key
func (s *FileService) publicURL(storageKey string) string {
	base := strings.TrimSuffix(s.config.PublicBaseURL, "/")
	if base == "" {
		return "/" + storageKey
	}
	return base + "/" + storageKey
}

// loadSubjectsFor batch-loads the subjects referenced by a slice of files,
// with branch membership populated
func (s *FileService) loadSubjectsFor(ctx context.Context, files []catalog.File) (map[uuid.UUID]*catalog.Subject, error) {
	seen := make(map[uuid.UUID]struct{}, len(files))
	ids := make([]uuid.UUID, 0, len(files))
	for i := range files {
		if _, ok := seen[files[i].SubjectID]; ok {
			continue
		}
		seen[files[i].SubjectID] = struct{}{}
		ids = append(ids, files[i].SubjectID)
	}

	subjects, err := s.subjectRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]*catalog.Subject, len(subjects))
	for i := range subjects {
		if err := s.subjectRepo.LoadBranches(ctx, &subjects[i]); err != nil {
			return nil, err
		}
		index[subjects[i].ID] = &subjects[i]
	}
	return index, nil
}

// branchNameIndex maps branch IDs to display names
func (s *FileService) branchNameIndex(ctx context.Context) (map[uuid.UUID]string, error) {
	branches, err := s.branchRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]string, len(branches))
	for i := range branches {
		index[branches[i].ID] = branches[i].Name
	}
	return index, nil
}

// resolveSubject looks a subject up by slug, falling back to UUID
func (s *FileService) resolveSubject(ctx context.Context, slugOrID string) (*catalog.Subject, error) {
	subject, err := s.subjectRepo.FindBySlug(ctx, slugOrID)
	if err == nil {
		return subject, nil
	}
	if id, parseErr := uuid.Parse(slugOrID); parseErr == nil {
		return s.subjectRepo.FindByID(ctx, id)
	}
	return nil, err
}
