package pyq

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/studyhub/backend/internal/domain/catalog"
)

// Index is the loaded question-paper index. It is read-only after Load and
// safe for concurrent use.
type Index struct {
	bySlug map[string][]Record
}

// Load reads a generated index file from disk
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	bySlug := make(map[string][]Record)
	if err := json.Unmarshal(data, &bySlug); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}

	return &Index{bySlug: bySlug}, nil
}

// NewIndex builds an index directly from generated records, used by tests
// and by callers that generate and serve in one process
func NewIndex(bySlug map[string][]Record) *Index {
	if bySlug == nil {
		bySlug = make(map[string][]Record)
	}
	return &Index{bySlug: bySlug}
}

// Lookup returns the static records for a subject slug as display records.
// An unknown slug yields an empty slice.
func (i *Index) Lookup(subjectSlug string) []catalog.FileRecord {
	records := i.bySlug[subjectSlug]
	if len(records) == 0 {
		return nil
	}

	out := make([]catalog.FileRecord, len(records))
	for j, r := range records {
		out[j] = catalog.FileRecord{
			ID:           r.ID,
			FileName:     r.FileName,
			FileURL:      r.FileURL,
			RelativePath: r.RelativePath,
			FileType:     r.FileType,
			FileSize:     r.FileSize,
			Likes:        r.Likes,
			IsStatic:     true,
			Year:         r.Year,
			ExamType:     r.ExamType,
		}
	}
	return out
}

// SubjectCount returns how many subjects carry static papers
func (i *Index) SubjectCount() int {
	return len(i.bySlug)
}
