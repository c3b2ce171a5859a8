package migration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

// One template covers both directions; Rollback flips the header and hint.
var stubTemplate = template.Must(template.New("stub").Parse(
	`-- Migration: {{.Name}}{{if .Rollback}} (Rollback){{end}}
-- Created: {{.Timestamp}}
-- Description: {{if .Rollback}}Rollback for {{end}}{{.Description}}

-- Write your {{if .Rollback}}DOWN{{else}}UP{{end}} migration SQL here

`))

type stubData struct {
	Name        string
	Description string
	Timestamp   string
	Rollback    bool
}

// MigrationFile describes a generated up/down migration pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration scaffolds an up/down migration pair in migrationsDir.
// The version prefix is the creation time, so lexicographic order is
// application order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := filepath.Join(migrationsDir, version+"_"+sanitizeName(name))

	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := writeStub(mf.UpPath, mf, false); err != nil {
		return nil, fmt.Errorf("create up migration: %w", err)
	}
	if err := writeStub(mf.DownPath, mf, true); err != nil {
		// Do not leave a half-created pair behind
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("create down migration: %w", err)
	}

	return mf, nil
}

func writeStub(path string, mf *MigrationFile, rollback bool) error {
	var buf bytes.Buffer
	err := stubTemplate.Execute(&buf, stubData{
		Name:        mf.Name,
		Description: mf.Description,
		Timestamp:   mf.Timestamp,
		Rollback:    rollback,
	})
	if err != nil {
		return fmt.Errorf("render migration stub: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// sanitizeName lowercases the name and collapses everything that is not
// alphanumeric into single underscores. Other punctuation is dropped so
// "add branches!" and "add branches" produce the same file name.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, c := range []byte(strings.ToLower(name)) {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteByte(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of all migrations in a directory,
// sorted in application order.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	seen := make(map[string]bool)
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if !ok || entry.IsDir() || seen[base] {
			continue
		}
		seen[base] = true
		names = append(names, base)
	}
	sort.Strings(names)

	return names, nil
}
