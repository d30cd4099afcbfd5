// Package migrations applies the embedded schema for the event log
// (PostgreSQL) and the holder activity analytics (ClickHouse).
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

// Set is the ordered migration files for one database.
type Set struct {
	Name string
	fsys fs.FS
}

// Postgres creates the events table.
var Postgres = Set{Name: "postgres", fsys: postgresFS}

// Clickhouse creates the holder_activity table.
var Clickhouse = Set{Name: "clickhouse", fsys: clickhouseFS}

// Migration is one SQL file of a Set.
type Migration struct {
	File string
	SQL  string
}

// Load returns the set's non-empty migrations in lexical file order.
func (s Set) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, s.Name)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", s.Name, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	out := make([]Migration, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(s.fsys, path.Join(s.Name, file))
		if err != nil {
			return nil, fmt.Errorf("read %s migration %s: %w", s.Name, file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{File: file, SQL: string(data)})
	}
	return out, nil
}
