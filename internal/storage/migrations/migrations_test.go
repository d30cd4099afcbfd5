package migrations

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	tests := []struct {
		set   Set
		table string
	}{
		{Postgres, "events"},
		{Clickhouse, "holder_activity"},
	}
	for _, tt := range tests {
		t.Run(tt.set.Name, func(t *testing.T) {
			migs, err := tt.set.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(migs) == 0 {
				t.Fatal("no migrations embedded")
			}
			if !strings.Contains(migs[0].SQL, tt.table) {
				t.Errorf("%s does not create %s", migs[0].File, tt.table)
			}
		})
	}
}

func TestSetLoad_OrdersAndSkipsEmpty(t *testing.T) {
	set := Set{Name: "pg", fsys: fstest.MapFS{
		"pg/002_b.sql": {Data: []byte("CREATE TABLE b (x int);")},
		"pg/001_a.sql": {Data: []byte("CREATE TABLE a (x int);")},
		"pg/003_c.sql": {Data: []byte("  \n")},
		"pg/README.md": {Data: []byte("notes")},
	}}

	migs, err := set.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(migs) != 2 || migs[0].File != "001_a.sql" || migs[1].File != "002_b.sql" {
		t.Fatalf("Load() = %+v", migs)
	}

	_, err = Set{Name: "missing", fsys: fstest.MapFS{}}.Load()
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("Load of absent set: %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y UInt8) ENGINE = Memory;
`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[1] != "CREATE TABLE b (y UInt8) ENGINE = Memory" {
		t.Errorf("unexpected statement: %q", stmts[1])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings(`SELECT 'a;b'`); err == nil {
		t.Error("expected error for semicolon inside string literal")
	}
	if err := validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1;`); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/governance")
	if err != nil {
		t.Fatalf("databaseFromDSN failed: %v", err)
	}
	if db != "governance" {
		t.Errorf("databaseFromDSN() = %q, want governance", db)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for DSN without database")
	}
}
