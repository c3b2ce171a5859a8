package catalog

import (
	"strings"
	"time"
)

// RootGroup is the bucket for files that sit directly under the subject folder
const RootGroup = "Root"

// FileRecord is the origin-agnostic view of a file used for display grouping.
// Both live database files and statically generated index entries are
// flattened into this shape before grouping, so downstream code never needs
// to distinguish the two.
type FileRecord struct {
	ID           string
	FileName     string
	FileURL      string
	RelativePath string
	FileType     string
	FileSize     string
	UploadDate   time.Time
	Description  string
	Likes        int
	Slug         string
	IsStatic     bool

	// Year and ExamType are only populated for static question-paper
	// entries, e.g. "2021" and "Mid Sem".
	Year     string
	ExamType string
}

// ToRecord converts a persisted file into its display record
func (f *File) ToRecord() FileRecord {
	return FileRecord{
		ID:           f.ID.String(),
		FileName:     f.FileName,
		FileURL:      f.FileURL,
		RelativePath: f.RelativePath,
		FileType:     f.FileType,
		FileSize:     f.FileSize,
		UploadDate:   f.UploadDate,
		Description:  f.Description,
		Likes:        f.Likes,
		Slug:         f.Slug,
	}
}

// FileGroup is one display bucket of files sharing a sub-folder label
type FileGroup struct {
	Label string
	Files []FileRecord
}

// GroupFiles buckets files by the sub-path between the subject folder and the
// file name. Input order is preserved both across groups (first-seen label
// first) and within a group, so callers that pass files sorted by
// relativePath get deterministic output.
func GroupFiles(records []FileRecord) []FileGroup {
	groups := make([]FileGroup, 0)
	index := make(map[string]int)

	for _, record := range records {
		label := groupLabel(record.RelativePath)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, FileGroup{Label: label})
		}
		groups[i].Files = append(groups[i].Files, record)
	}

	return groups
}

// groupLabel derives the display bucket from a relative path. Dropping the
// first and last segments of a path with two or fewer segments leaves
// nothing, so bare file names and direct children both land in Root.
func groupLabel(relativePath string) string {
	segments := strings.Split(relativePath, "/")
	if len(segments) <= 2 {
		return RootGroup
	}
	return strings.Join(segments[1:len(segments)-1], "/")
}
