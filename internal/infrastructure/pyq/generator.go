// Package pyq builds and serves the static question-paper index. The index
// is generated offline by cmd/pyqindex from a directory of scanned papers
// and loaded read-only by the server, so question papers need no database
// rows at all.
package pyq

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/studyhub/backend/internal/domain/catalog"
)

// Record is one static question-paper entry in the generated index. The
// JSON shape mirrors the live file listing so the frontend renders both
// interchangeably.
type Record struct {
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	FileURL      string `json:"fileUrl"`
	FileType     string `json:"fileType"`
	FileSize     string `json:"fileSize"`
	Likes        int    `json:"likes"`
	IsStatic     bool   `json:"isStatic"`
	SubjectName  string `json:"subjectName"`
	Year         string `json:"year"`
	ExamType     string `json:"type"`
	RelativePath string `json:"relativePath"`
}

// subjectDirPattern matches directory names shaped like "Name (Code)",
// e.g. "Engineering Chemistry (CH 1101 N)"
var subjectDirPattern = regexp.MustCompile(`(.*)\s\((.*)\)$`)

// Generator scans a question-paper directory tree and produces the index.
// The tree's top-level entries are one directory per subject; each holds
// flat PDF files named like "2021_Mid_Sem_Basic_Electrical_Engineering.pdf".
type Generator struct {
	sourceDir string
	baseURL   string
}

// NewGenerator creates a generator reading from sourceDir. baseURL prefixes
// the generated file URLs and may be empty for site-relative links.
func NewGenerator(sourceDir, baseURL string) *Generator {
	return &Generator{
		sourceDir: sourceDir,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// Generate builds the subject-slug → records mapping. Subjects with no PDF
// files are omitted. A missing source directory yields an empty index, not
// an error, so builds without papers stay green.
func (g *Generator) Generate() (map[string][]Record, error) {
	index := make(map[string][]Record)

	entries, err := os.ReadDir(g.sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return index, nil
		}
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		records, err := g.scanSubjectDir(entry.Name())
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			index[subjectSlug(entry.Name())] = records
		}
	}

	return index, nil
}

// WriteIndex generates the index and writes it as JSON to outputPath
func (g *Generator) WriteIndex(outputPath string) (int, error) {
	index, err := g.Generate()
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode index: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write index: %w", err)
	}
	return len(index), nil
}

func (g *Generator) scanSubjectDir(dirName string) ([]Record, error) {
	slug := subjectSlug(dirName)
	dirPath := filepath.Join(g.sourceDir, dirName)

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject directory %q: %w", dirName, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", entry.Name(), err)
		}

		year, examType := parseExamFileName(entry.Name())
		records = append(records, Record{
			ID:           "static-" + slug + "-" + entry.Name(),
			FileName:     entry.Name(),
			FileURL:      g.fileURL(dirName, entry.Name()),
			FileType:     "PDF",
			FileSize:     formatSizeMB(info.Size()),
			IsStatic:     true,
			SubjectName:  dirName,
			Year:         year,
			ExamType:     examType,
			RelativePath: relativePathFor(examType, entry.Name()),
		})
	}

	return records, nil
}

func (g *Generator) fileURL(dirName, fileName string) string {
	return g.baseURL + "/question-papers/" + dirName + "/" + fileName
}

// subjectSlug derives the index key from a subject directory name. A
// "Name (Code)" directory slugs to the same value as the live Subject with
// that name and course code, which is what aligns static and dynamic files.
func subjectSlug(dirName string) string {
	if match := subjectDirPattern.FindStringSubmatch(dirName); match != nil {
		return catalog.Slugify(match[1], match[2])
	}
	return catalog.Slugify(dirName)
}

// parseExamFileName extracts year and exam type from file names shaped like
// "2021_Mid_Sem_Basic_Electrical_Engineering.pdf". Files that do not follow
// the convention keep empty metadata.
func parseExamFileName(fileName string) (year, examType string) {
	parts := strings.Split(strings.TrimSuffix(fileName, filepath.Ext(fileName)), "_")
	if len(parts) < 3 {
		return "", ""
	}

	year = parts[0]
	switch {
	case parts[1] == "Mid" && parts[2] == "Sem":
		examType = "Mid Sem"
	case parts[1] == "End" && parts[2] == "Sem":
		examType = "End Sem"
	}
	return year, examType
}

// relativePathFor shapes the grouping path so static papers land in a
// "Question Papers/<type>" bucket next to live files
func relativePathFor(examType, fileName string) string {
	bucket := examType
	if bucket == "" {
		bucket = "General"
	}
	return "/Question Papers/" + bucket + "/" + fileName
}

func formatSizeMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}
