package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	subjectID := uuid.New()

	t.Run("creates file with timestamped slug", func(t *testing.T) {
		file, err := NewFile(NewFileInput{
			SubjectID:    subjectID,
			FileName:     "Unit 1 Notes.pdf",
			FileURL:      "https://example.com/unit1.pdf",
			RelativePath: "Chemistry/Unit 1/Unit 1 Notes.pdf",
			FileType:     "pdf",
			FileSize:     "1.20 MB",
		})
		require.NoError(t, err)
		require.NotNil(t, file)

		assert.Equal(t, subjectID, file.SubjectID)
		assert.Equal(t, 0, file.Likes)
		assert.Regexp(t, `^unit-1-notespdf-\d+$`, file.Slug)
		assert.WithinDuration(t, time.Now(), file.UploadDate, time.Minute)
	})

	t.Run("defaults relative path to the file name", func(t *testing.T) {
		file, err := NewFile(NewFileInput{
			SubjectID: subjectID,
			FileName:  "stray.pdf",
			FileURL:   "https://example.com/stray.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "stray.pdf", file.RelativePath)
		assert.Equal(t, RootGroup, file.GroupLabel())
	})

	t.Run("fails without a subject", func(t *testing.T) {
		_, err := NewFile(NewFileInput{FileName: "a.pdf", FileURL: "https://example.com/a.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must reference a subject")
	})

	t.Run("fails with empty file name", func(t *testing.T) {
		_, err := NewFile(NewFileInput{SubjectID: subjectID, FileURL: "https://example.com/a.pdf"})
		require.Error(t, err)
	})

	t.Run("fails with empty URL", func(t *testing.T) {
		_, err := NewFile(NewFileInput{SubjectID: subjectID, FileName: "a.pdf"})
		require.Error(t, err)
	})
}

func TestFileUpdate(t *testing.T) {
	subjectID := uuid.New()

	newTestFile := func(t *testing.T) *File {
		t.Helper()
		file, err := NewFile(NewFileInput{
			SubjectID:    subjectID,
			FileName:     "notes.pdf",
			FileURL:      "https://example.com/notes.pdf",
			RelativePath: "Chemistry/Unit 1/notes.pdf",
		})
		require.NoError(t, err)
		return file
	}

	t.Run("regenerates slug when file name changes", func(t *testing.T) {
		file := newTestFile(t)
		original := file.Slug

		err := file.Update("renamed.pdf", "", "pdf", "")
		require.NoError(t, err)
		assert.NotEqual(t, original, file.Slug)
		assert.Regexp(t, `^renamedpdf-\d+$`, file.Slug)
	})

	t.Run("keeps slug when name is unchanged", func(t *testing.T) {
		file := newTestFile(t)
		original := file.Slug

		err := file.Update("notes.pdf", "Chemistry/Unit 2/notes.pdf", "pdf", "updated")
		require.NoError(t, err)
		assert.Equal(t, original, file.Slug)
		assert.Equal(t, "Chemistry/Unit 2/notes.pdf", file.RelativePath)
		assert.Equal(t, "updated", file.Description)
	})

	t.Run("blank relative path leaves the existing one", func(t *testing.T) {
		file := newTestFile(t)

		err := file.Update("notes.pdf", "  ", "pdf", "")
		require.NoError(t, err)
		assert.Equal(t, "Chemistry/Unit 1/notes.pdf", file.RelativePath)
	})
}

func TestFileGroupLabel(t *testing.T) {
	cases := []struct {
		relativePath string
		want         string
	}{
		{"Chemistry/Unit 1/Notes/notes.pdf", "Unit 1/Notes"},
		{"Chemistry/Unit 1/notes.pdf", "Unit 1"},
		{"Chemistry/notes.pdf", RootGroup},
		{"notes.pdf", RootGroup},
	}

	for _, tc := range cases {
		file := &File{RelativePath: tc.relativePath}
		assert.Equal(t, tc.want, file.GroupLabel(), "relativePath %q", tc.relativePath)
	}
}
