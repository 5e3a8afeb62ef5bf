package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const versionLayout = "20060102150405"

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

type migrationFile struct {
	version string
	name    string
}

// scanDir lists the goose SQL files in dir ordered by version. Files that do
// not end in .sql are ignored.
func scanDir(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		if prev, ok := seen[m[1]]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, e.Name())
		}
		seen[m[1]] = e.Name()
		files = append(files, migrationFile{version: m[1], name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// ValidateDir checks filenames, version uniqueness and that every file has
// both goose sections.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	files, err := scanDir(dir)
	if err != nil {
		return err
	}

	for _, f := range files {
		full := filepath.Join(dir, f.name)
		b, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		txt := string(b)
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(txt, marker) {
				return fmt.Errorf("migration %q missing %q", f.name, marker)
			}
		}
		if strings.Index(txt, "-- +goose Down") < strings.Index(txt, "-- +goose Up") {
			return fmt.Errorf("migration %q declares Down before Up", f.name)
		}
	}
	return nil
}
