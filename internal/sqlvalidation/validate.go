package sqlvalidation

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/sqlload/sqlload/internal/catalog"
)

// Issue is one validation finding in an artifact
type Issue struct {
	Artifact string `json:"artifact"`
	Line     int    `json:"line"`
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
}

// Result contains all findings for an artifact directory
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// ValidateArtifacts parses every artifact in a directory with the
// PostgreSQL parser, before anything touches a database. Artifacts are
// checked in application order so the first finding points at the first
// artifact a run would trip on.
func ValidateArtifacts(dir string) (*Result, error) {
	artifacts, err := catalog.Discover(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{Valid: true, Issues: []Issue{}}
	for _, artifact := range artifacts {
		issues := ValidateSQL(artifact.Name, artifact.SQL)
		result.Issues = append(result.Issues, issues...)
	}

	for _, issue := range result.Issues {
		if issue.Severity == "error" {
			result.Valid = false
			break
		}
	}
	return result, nil
}

// ValidateSQL checks one artifact's text. The whole text is parsed first;
// when that fails, it reparses statement by statement so a single pass
// reports every broken statement with its line number.
func ValidateSQL(artifactName, sqlText string) []Issue {
	if _, err := pg_query.Parse(sqlText); err == nil {
		return warningsFor(artifactName, sqlText)
	}

	var issues []Issue
	for _, stmt := range splitStatements(sqlText) {
		if isCommentOnly(stmt.sql) {
			continue
		}
		if _, err := pg_query.Parse(stmt.sql); err != nil {
			issues = append(issues, Issue{
				Artifact: artifactName,
				Line:     stmt.startLine,
				Severity: "error",
				Message:  cleanParseError(err),
			})
		}
	}

	if len(issues) == 0 {
		// The full parse failed but no single statement did; report once
		issues = append(issues, Issue{
			Artifact: artifactName,
			Line:     1,
			Severity: "error",
			Message:  "failed to parse artifact",
		})
	}
	return issues
}

// warningsFor flags patterns that parse fine but usually signal an
// authoring mistake in course artifacts.
func warningsFor(artifactName, sqlText string) []Issue {
	var issues []Issue
	upper := strings.ToUpper(sqlText)

	if strings.Contains(upper, "DROP TABLE") || strings.Contains(upper, "DROP SCHEMA") {
		issues = append(issues, Issue{
			Artifact: artifactName,
			Line:     1,
			Severity: "warning",
			Message:  "artifact drops objects; reruns depend on the ledger, not on DROP statements",
		})
	}
	for _, kw := range []string{"BEGIN", "COMMIT", "ROLLBACK"} {
		if containsWord(upper, kw) {
			issues = append(issues, Issue{
				Artifact: artifactName,
				Line:     1,
				Severity: "warning",
				Message:  fmt.Sprintf("artifact contains %s; the loader manages transactions", kw),
			})
			break
		}
	}
	return issues
}

func containsWord(upper, word string) bool {
	idx := 0
	for {
		i := strings.Index(upper[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(upper[start-1])
		afterOK := end == len(upper) || !isWordChar(upper[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// cleanParseError strips the parser's noisy prefix from error text
func cleanParseError(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, "syntax error: ")
	return msg
}

type statement struct {
	sql       string
	startLine int
}

// splitStatements splits SQL on semicolons while tracking line numbers,
// ignoring semicolons inside strings, quoted identifiers, and comments.
func splitStatements(sqlText string) []statement {
	var statements []statement
	var current strings.Builder
	currentLine := 1
	startLine := 1
	seenContent := false

	inSingle := false
	inDouble := false
	inLineComment := false
	inBlockComment := false

	runes := []rune(sqlText)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\n' {
			currentLine++
			inLineComment = false
		}

		if !inSingle && !inDouble {
			if !inBlockComment && !inLineComment && ch == '-' && i+1 < len(runes) && runes[i+1] == '-' {
				inLineComment = true
			}
			if !inLineComment && ch == '/' && i+1 < len(runes) && runes[i+1] == '*' {
				inBlockComment = true
			}
			if inBlockComment && ch == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				inBlockComment = false
				current.WriteRune(ch)
				current.WriteRune(runes[i+1])
				i++
				continue
			}
		}

		if !inLineComment && !inBlockComment {
			switch ch {
			case '\'':
				if !inDouble {
					inSingle = !inSingle
				}
			case '"':
				if !inSingle {
					inDouble = !inDouble
				}
			}
		}

		if ch == ';' && !inSingle && !inDouble && !inLineComment && !inBlockComment {
			current.WriteRune(ch)
			statements = append(statements, statement{sql: current.String(), startLine: startLine})
			current.Reset()
			seenContent = false
			startLine = currentLine
			continue
		}

		if !seenContent && !isSpace(ch) {
			seenContent = true
			startLine = currentLine
		}
		current.WriteRune(ch)
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, statement{sql: current.String(), startLine: startLine})
	}
	return statements
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// isCommentOnly reports whether every non-empty line is a -- comment
func isCommentOnly(sqlText string) bool {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" || trimmed == ";" {
		return true
	}
	for _, line := range strings.Split(trimmed, "\n") {
		lineTrimmed := strings.TrimSpace(line)
		if lineTrimmed != "" && lineTrimmed != ";" && !strings.HasPrefix(lineTrimmed, "--") {
			return false
		}
	}
	return true
}
