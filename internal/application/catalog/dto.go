package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/catalog"
)

// CreateBranchRequest represents a request to create a branch
type CreateBranchRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=150"`
	ShortName string `json:"short_name" binding:"required,min=1,max=30"`
}

// UpdateBranchRequest represents a request to update a branch
type UpdateBranchRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=150"`
	ShortName *string `json:"short_name" binding:"omitempty,min=1,max=30"`
}

// BranchResponse represents a branch in API responses
type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToBranchResponse converts a domain Branch to BranchResponse
func ToBranchResponse(b *catalog.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		ShortName: b.ShortName,
		Slug:      b.Slug,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// CreateSubjectRequest represents a request to create a subject
type CreateSubjectRequest struct {
	Name       string      `json:"name" binding:"required,min=1,max=200"`
	CourseCode string      `json:"course_code" binding:"required,min=1,max=50"`
	BranchIDs  []uuid.UUID `json:"branch_ids"`
	IsGlobal   bool        `json:"is_global"`
}

// UpdateSubjectRequest represents a request to update a subject
type UpdateSubjectRequest struct {
	Name       *string      `json:"name" binding:"omitempty,min=1,max=200"`
	CourseCode *string      `json:"course_code" binding:"omitempty,min=1,max=50"`
	BranchIDs  *[]uuid.UUID `json:"branch_ids"`
	IsGlobal   *bool        `json:"is_global"`
}

// SubjectResponse represents a subject in API responses
type SubjectResponse struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	CourseCode string      `json:"course_code"`
	Slug       string      `json:"slug"`
	IsGlobal   bool        `json:"is_global"`
	BranchIDs  []uuid.UUID `json:"branch_ids"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ToSubjectResponse converts a domain Subject to SubjectResponse
func ToSubjectResponse(s *catalog.Subject) SubjectResponse {
	branchIDs := s.BranchIDs
	if branchIDs == nil {
		branchIDs = []uuid.UUID{}
	}
	return SubjectResponse{
		ID:         s.ID,
		Name:       s.Name,
		CourseCode: s.CourseCode,
		Slug:       s.Slug,
		IsGlobal:   s.IsGlobal,
		BranchIDs:  branchIDs,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// CreateFileRequest represents a request to register a file directly
type CreateFileRequest struct {
	SubjectID    uuid.UUID `json:"subject_id" binding:"required"`
	FileName     string    `json:"file_name" binding:"required,min=1,max=255"`
	DriveFileID  string    `json:"drive_file_id" binding:"max=128"`
	FileURL      string    `json:"file_url" binding:"required,url"`
	RelativePath string    `json:"relative_path" binding:"max=500"`
	FileType     string    `json:"file_type" binding:"max=30"`
	FileSize     string    `json:"file_size" binding:"max=30"`
	Description  string    `json:"description" binding:"max=2000"`
}

// UpdateFileRequest represents a request to update a file's metadata
type UpdateFileRequest struct {
	FileName     *string `json:"file_name" binding:"omitempty,min=1,max=255"`
	RelativePath *string `json:"relative_path" binding:"omitempty,max=500"`
	FileType     *string `json:"file_type" binding:"omitempty,max=30"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
}

// FileResponse represents a file in API responses
type FileResponse struct {
	ID           uuid.UUID `json:"id"`
	SubjectID    uuid.UUID `json:"subject_id"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	RelativePath string    `json:"relative_path"`
	FileType     string    `json:"file_type"`
	FileSize     string    `json:"file_size"`
	UploadDate   time.Time `json:"upload_date"`
	Description  string    `json:"description"`
	Likes        int       `json:"likes"`
	Status       string    `json:"status"`
	Slug         string    `json:"slug"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToFileResponse converts a domain File to FileResponse
func ToFileResponse(f *catalog.File) FileResponse {
	return FileResponse{
		ID:           f.ID,
		SubjectID:    f.SubjectID,
		FileName:     f.FileName,
		FileURL:      f.FileURL,
		RelativePath: f.RelativePath,
		FileType:     f.FileType,
		FileSize:     f.FileSize,
		UploadDate:   f.UploadDate,
		Description:  f.Description,
		Likes:        f.Likes,
		Status:       string(f.Status),
		Slug:         f.Slug,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// SubjectFilesResponse is the subject detail payload: the subject plus its
// files, static question papers merged in. Exactly one of Files (flat,
// sorted by relative path) or Groups (bucketed by sub-folder) is set.
type SubjectFilesResponse struct {
	Subject SubjectResponse      `json:"subject"`
	Files   []catalog.FileRecord `json:"files,omitempty"`
	Groups  []catalog.FileGroup  `json:"groups,omitempty"`
}

// InitiateUploadRequest represents a request to start an admin file upload
type InitiateUploadRequest struct {
	SubjectID    uuid.UUID `json:"subject_id" binding:"required"`
	FileName     string    `json:"file_name" binding:"required,min=1,max=255"`
	ContentType  string    `json:"content_type" binding:"required"`
	FileSize     string    `json:"file_size" binding:"max=30"`
	RelativePath string    `json:"relative_path" binding:"max=500"`
	Description  string    `json:"description" binding:"max=2000"`
}

// InitiateUploadResponse carries the presigned URL the admin client PUTs to
type InitiateUploadResponse struct {
	FileID    uuid.UUID `json:"file_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SearchResult is a file search hit enriched with its subject and branches
type SearchResult struct {
	FileResponse
	SubjectName string   `json:"subject_name"`
	SubjectSlug string   `json:"subject_slug"`
	BranchNames []string `json:"branch_names"`
}
