package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/shared"
)

// FileStatus represents the lifecycle state of a file record
type FileStatus string

const (
	// FileStatusPending marks a record whose object upload has not been confirmed yet
	FileStatusPending FileStatus = "pending"
	// FileStatusActive marks a confirmed, listable file
	FileStatusActive FileStatus = "active"
)

// File represents a single study-material artifact attached to a subject.
// RelativePath encodes the folder structure, e.g. "Chemistry/Unit 1/notes.pdf";
// the first segment is the subject folder and the last is the file name.
type File struct {
	shared.BaseEntity
	SubjectID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	FileName     string     `gorm:"type:varchar(255);not null"`
	DriveFileID  string     `gorm:"type:varchar(128)"`
	StorageKey   string     `gorm:"type:varchar(300)"`
	FileURL      string     `gorm:"type:text;not null"`
	RelativePath string     `gorm:"type:varchar(500);not null;index"`
	FileType     string     `gorm:"type:varchar(30)"`
	FileSize     string     `gorm:"type:varchar(30)"`
	UploadDate   time.Time  `gorm:"not null"`
	Description  string     `gorm:"type:text"`
	Likes        int        `gorm:"not null;default:0"`
	Status       FileStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Slug         string     `gorm:"type:varchar(300);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (File) TableName() string {
	return "files"
}

// NewFileInput carries the attributes needed to register a file
type NewFileInput struct {
	SubjectID    uuid.UUID
	FileName     string
	DriveFileID  string
	StorageKey   string
	FileURL      string
	RelativePath string
	FileType     string
	FileSize     string
	Description  string
}

// NewFile creates a new file record. The slug is derived from the file name
// plus the creation timestamp in milliseconds; uniqueness is probabilistic,
// which is acceptable because file slugs are auxiliary, not primary keys.
func NewFile(input NewFileInput) (*File, error) {
	if err := validateFileName(input.FileName); err != nil {
		return nil, err
	}
	if input.SubjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "File must reference a subject")
	}
	if strings.TrimSpace(input.FileURL) == "" {
		return nil, shared.NewDomainError("INVALID_URL", "File URL cannot be empty")
	}

	now := time.Now()
	fileName := strings.TrimSpace(input.FileName)

	relativePath := strings.TrimSpace(input.RelativePath)
	if relativePath == "" {
		relativePath = fileName
	}

	return &File{
		BaseEntity:   shared.NewBaseEntity(),
		SubjectID:    input.SubjectID,
		FileName:     fileName,
		DriveFileID:  input.DriveFileID,
		StorageKey:   input.StorageKey,
		FileURL:      input.FileURL,
		RelativePath: relativePath,
		FileType:     input.FileType,
		FileSize:     input.FileSize,
		UploadDate:   now,
		Description:  input.Description,
		Status:       FileStatusActive,
		Slug:         Slugify(fileName, strconv.FormatInt(now.UnixMilli(), 10)),
	}, nil
}

// NewPendingFile creates a file record awaiting upload confirmation.
// Pending files are excluded from listings and search until confirmed.
func NewPendingFile(input NewFileInput) (*File, error) {
	file, err := NewFile(input)
	if err != nil {
		return nil, err
	}
	file.Status = FileStatusPending
	return file, nil
}

// Confirm activates a pending file once its object is verified in storage
func (f *File) Confirm() error {
	if f.Status == FileStatusActive {
		return shared.NewDomainError("INVALID_STATE", "File is already confirmed")
	}
	f.Status = FileStatusActive
	f.UploadDate = time.Now()
	f.Touch()
	return nil
}

// IsActive reports whether the file is confirmed and listable
func (f *File) IsActive() bool {
	return f.Status == FileStatusActive
}

// Update updates the file's mutable attributes. The slug is regenerated only
// when the file name changes.
func (f *File) Update(fileName, relativePath, fileType, description string) error {
	if err := validateFileName(fileName); err != nil {
		return err
	}

	fileName = strings.TrimSpace(fileName)
	if fileName != f.FileName {
		f.FileName = fileName
		f.Slug = Slugify(fileName, strconv.FormatInt(time.Now().UnixMilli(), 10))
	}
	if relativePath = strings.TrimSpace(relativePath); relativePath != "" {
		f.RelativePath = relativePath
	}
	f.FileType = fileType
	f.Description = description
	f.Touch()

	return nil
}

// GroupLabel returns the sub-folder bucket this file displays under
func (f *File) GroupLabel() string {
	return groupLabel(f.RelativePath)
}

func validateFileName(fileName string) error {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	return nil
}
