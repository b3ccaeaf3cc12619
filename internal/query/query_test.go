package query

import "testing"

func TestIsAllowedSQL(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  select * from film;", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"SELECT ';' AS sep", true},
		{"SELECT 1; DROP TABLE film", false},
		{"DELETE FROM film", false},
		{"INSERT INTO film VALUES (1)", false},
		{"", false},
		{";;", false},
	}
	for _, tt := range tests {
		if got := IsAllowedSQL(tt.sql); got != tt.want {
			t.Fatalf("IsAllowedSQL(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

func TestStripTrailingSemicolons(t *testing.T) {
	if got := StripTrailingSemicolons(" SELECT 1 ; ;\n"); got != "SELECT 1" {
		t.Fatalf("StripTrailingSemicolons() = %q", got)
	}
}
