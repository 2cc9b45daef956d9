package sqlvalidation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateSQL_ValidArtifact(t *testing.T) {
	issues := ValidateSQL("01_schema", `
CREATE TABLE business_type (
    id SERIAL PRIMARY KEY,
    description TEXT NOT NULL
);

CREATE TABLE applicant (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    zip_code CHAR(5) NOT NULL,
    business_type_id INTEGER REFERENCES business_type(id)
);
`)
	if len(issues) != 0 {
		t.Errorf("Expected no issues, got %+v", issues)
	}
}

func TestValidateSQL_SyntaxError(t *testing.T) {
	issues := ValidateSQL("01_schema", "CREATE TABEL people (id INTEGER);")
	if len(issues) == 0 {
		t.Fatal("Expected a syntax error")
	}
	if issues[0].Severity != "error" {
		t.Errorf("Expected error severity, got %s", issues[0].Severity)
	}
	if issues[0].Artifact != "01_schema" {
		t.Errorf("Expected artifact 01_schema, got %s", issues[0].Artifact)
	}
}

func TestValidateSQL_ReportsEveryBrokenStatement(t *testing.T) {
	sqlText := `CREATE TABLE a (id INTEGER);
CREATE TABEL b (id INTEGER);
CREATE TABLE c (id INTEGER);
SELCT * FROM c;`

	issues := ValidateSQL("02_broken", sqlText)
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d: %+v", len(issues), issues)
	}
	if issues[0].Line != 2 {
		t.Errorf("Expected first issue on line 2, got %d", issues[0].Line)
	}
	if issues[1].Line != 4 {
		t.Errorf("Expected second issue on line 4, got %d", issues[1].Line)
	}
}

func TestValidateSQL_TransactionControlWarning(t *testing.T) {
	issues := ValidateSQL("03_tx", "BEGIN; CREATE TABLE t (id INTEGER); COMMIT;")
	if len(issues) == 0 {
		t.Fatal("Expected a warning for explicit transaction control")
	}
	if issues[0].Severity != "warning" {
		t.Errorf("Expected warning severity, got %s", issues[0].Severity)
	}
}

func TestValidateSQL_SemicolonInString(t *testing.T) {
	issues := ValidateSQL("04_data", "INSERT INTO notes (body) VALUES ('one; two; three');")
	if len(issues) != 0 {
		t.Errorf("Semicolons inside strings must not split statements: %+v", issues)
	}
}

func TestValidateArtifacts(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"01_good.sql": "CREATE TABLE a (id INTEGER);",
		"02_bad.sql":  "CREATE TABEL b (id INTEGER);",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	result, err := ValidateArtifacts(dir)
	if err != nil {
		t.Fatalf("ValidateArtifacts failed: %v", err)
	}
	if result.Valid {
		t.Error("Expected invalid result")
	}
	if len(result.Issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(result.Issues))
	}
	if result.Issues[0].Artifact != "02_bad" {
		t.Errorf("Expected issue on 02_bad, got %s", result.Issues[0].Artifact)
	}
}

func TestValidateArtifacts_MissingDir(t *testing.T) {
	if _, err := ValidateArtifacts(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestSplitStatements_LineTracking(t *testing.T) {
	sqlText := "CREATE TABLE a (id INTEGER);\n\n-- comment\nCREATE TABLE b (id INTEGER);"
	statements := splitStatements(sqlText)
	if len(statements) != 2 {
		t.Fatalf("Expected 2 statements, got %d", len(statements))
	}
	if statements[0].startLine != 1 {
		t.Errorf("Expected first statement on line 1, got %d", statements[0].startLine)
	}
	if statements[1].startLine != 3 {
		t.Errorf("Expected second statement chunk starting at line 3, got %d", statements[1].startLine)
	}
}
