package sqlstore

import "testing"

func TestDollarRebind(t *testing.T) {
	got := DollarRebind(`UPDATE members SET is_active = ? WHERE id = ?`)
	want := `UPDATE members SET is_active = $1 WHERE id = $2`
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if DollarRebind("SELECT 1") != "SELECT 1" {
		t.Fatalf("query without placeholders changed")
	}
}

func TestNewFillsDialectDefaults(t *testing.T) {
	s := New(nil, Dialect{Name: "test"})
	if s.q("a = ?") != "a = ?" {
		t.Fatalf("default rebind should be identity")
	}
	if s.dialect.IsConstraint(nil) {
		t.Fatalf("default classifier should report false")
	}
}
