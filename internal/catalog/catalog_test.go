package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeArtifact creates a SQL file in dir
func writeArtifact(t *testing.T, dir, name, sqlText string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sqlText), 0o644); err != nil {
		t.Fatalf("Failed to write artifact %s: %v", name, err)
	}
}

func TestDiscover_NumericPrefixOrdering(t *testing.T) {
	dir := t.TempDir()
	// Written out of order on purpose; 10 must not sort before 2
	writeArtifact(t, dir, "10_c.sql", "CREATE TABLE c (id INTEGER);")
	writeArtifact(t, dir, "01_a.sql", "CREATE TABLE a (id INTEGER);")
	writeArtifact(t, dir, "02_b.sql", "CREATE TABLE b (id INTEGER);")

	artifacts, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	got := make([]string, len(artifacts))
	for i, a := range artifacts {
		got[i] = a.Name
	}
	want := []string{"01_a", "02_b", "10_c"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d artifacts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestDiscover_MixedPrefixedAndPlainNames(t *testing.T) {
	dir := t.TempDir()
	// A plain name that sorts between "10_" and "2_" lexicographically must
	// not destabilize the ordinal order of the prefixed names
	writeArtifact(t, dir, "2_data.sql", "INSERT INTO x VALUES (1);")
	writeArtifact(t, dir, "10_views.sql", "CREATE VIEW v AS SELECT * FROM x;")
	writeArtifact(t, dir, "1x.sql", "CREATE TABLE y (id INTEGER);")
	writeArtifact(t, dir, "seed.sql", "INSERT INTO y VALUES (1);")

	artifacts, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	got := make([]string, len(artifacts))
	for i, a := range artifacts {
		got[i] = a.Name
	}
	want := []string{"2_data", "10_views", "1x", "seed"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d artifacts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestDiscover_LexicographicWithoutOrdinals(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "tables.sql", "CREATE TABLE t (id INTEGER);")
	writeArtifact(t, dir, "indexes.sql", "CREATE INDEX i ON t(id);")

	artifacts, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if artifacts[0].Name != "indexes" || artifacts[1].Name != "tables" {
		t.Errorf("Expected lexicographic order [indexes tables], got [%s %s]",
			artifacts[0].Name, artifacts[1].Name)
	}
}

func TestDiscover_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "01_schema.sql", "CREATE TABLE s (id INTEGER);")
	writeArtifact(t, dir, "02_data.sql", "INSERT INTO s VALUES (1);")

	first, err := Discover(dir)
	if err != nil {
		t.Fatalf("First discovery failed: %v", err)
	}
	second, err := Discover(dir)
	if err != nil {
		t.Fatalf("Second discovery failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Discovery not deterministic: %d vs %d artifacts", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Artifact %d differs across discoveries: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDiscover_SkipsNonSQLAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "01_a.sql", "CREATE TABLE a (id INTEGER);")
	writeArtifact(t, dir, "README.md", "# not sql")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	writeArtifact(t, dir, filepath.Join("nested", "02_b.sql"), "CREATE TABLE b (id INTEGER);")

	artifacts, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Name != "01_a" {
		t.Errorf("Expected single artifact 01_a, got %+v", artifacts)
	}
}

func TestDiscover_DuplicateIdentity(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "01_a.sql", "CREATE TABLE a (id INTEGER);")
	writeArtifact(t, dir, "01_a.SQL", "CREATE TABLE a2 (id INTEGER);")

	_, err := Discover(dir)
	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("Expected *Error for duplicate identity, got %v", err)
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("Expected *Error for missing directory, got %v", err)
	}
}

func TestChecksum_StableAndContentSensitive(t *testing.T) {
	a := Checksum("CREATE TABLE t (id INTEGER);")
	b := Checksum("CREATE TABLE t (id INTEGER);")
	c := Checksum("CREATE TABLE t (id BIGINT);")

	if a != b {
		t.Errorf("Checksum not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("Different content produced the same checksum")
	}
	if len(a) != 64 {
		t.Errorf("Expected sha256 hex digest of length 64, got %d", len(a))
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"01_schema", 1},
		{"02-roles", 2},
		{"10_data", 10},
		{"0100_big", 100},
		{"schema", -1},
		{"a01_schema", -1},
	}

	for _, tt := range tests {
		if got := parseOrdinal(tt.name); got != tt.want {
			t.Errorf("parseOrdinal(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
