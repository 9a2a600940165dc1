package schema

import (
	"strings"
	"testing"
)

func TestSplitStatementsDropsCommentsAndBlankLines(t *testing.T) {
	ddl := "-- header\nCREATE TABLE a (\n  id INTEGER\n);\n\n-- second\nCREATE TABLE b (id INTEGER);\nSELECT 1"
	stmts := SplitStatements(ddl)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE a") || !strings.HasSuffix(stmts[0], ");") {
		t.Fatalf("unexpected first statement %q", stmts[0])
	}
	if stmts[2] != "SELECT 1" {
		t.Fatalf("expected trailing statement without semicolon, got %q", stmts[2])
	}
}

func TestSourceCoversEveryCollection(t *testing.T) {
	for _, dialect := range []string{DialectSQLite, DialectPostgres} {
		src, err := Source(dialect)
		if err != nil {
			t.Fatalf("%s: %v", dialect, err)
		}
		if len(src.Migrations) != 1 {
			t.Fatalf("%s: expected a single migration", dialect)
		}
		up := strings.Join(src.Migrations[0].Up, "\n")
		for _, table := range []string{"members", "providers", "provider_directory", "consultations"} {
			if !strings.Contains(up, "CREATE TABLE IF NOT EXISTS "+table+" ") {
				t.Fatalf("%s: missing table %s", dialect, table)
			}
		}
		if len(src.Migrations[0].Up) != 4 {
			t.Fatalf("%s: expected 4 statements, got %d", dialect, len(src.Migrations[0].Up))
		}
		if !strings.Contains(up, "(comments) < 100") {
			t.Fatalf("%s: comment ceiling must be exclusive", dialect)
		}
	}
	if _, err := Source("mysql"); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
}
