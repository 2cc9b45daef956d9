package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Artifact is one named, ordered unit of SQL text. Immutable once
// discovered.
type Artifact struct {
	// Name is the stable identity: the file name without the .sql extension
	Name string

	// Ordinal is the numeric prefix (e.g. 2 for "02_roles"), or -1 when the
	// name has no ordinal prefix
	Ordinal int

	// SQL is the raw artifact text
	SQL string

	// Checksum is the sha256 hex digest of the artifact text
	Checksum string
}

// Error reports an ambiguous or unreadable artifact source. It is always
// returned before any database mutation occurs.
type Error struct {
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog: %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog: %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ordinalPattern matches an explicit ordering prefix like "02_" or "10-"
var ordinalPattern = regexp.MustCompile(`^(\d+)[_-]`)

// Discover reads a directory of SQL artifacts and returns them in
// application order. Only top-level regular files with a .sql extension are
// considered; subdirectories and other files are skipped.
//
// Ordering is deterministic and total: names with a numeric ordinal prefix
// come first, in ordinal order (so "02_x" sorts before "10_x"), followed by
// the remaining names lexicographically. Two artifacts resolving to the same
// identity is an error.
func Discover(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{Path: dir, Message: "failed to read artifact directory", Err: err}
	}

	var artifacts []Artifact
	seen := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		if prev, ok := seen[strings.ToLower(name)]; ok {
			return nil, &Error{
				Path:    path,
				Message: fmt.Sprintf("artifact identity %q conflicts with %q: ordering is ambiguous", name, prev),
			}
		}
		seen[strings.ToLower(name)] = entry.Name()

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Path: path, Message: "failed to read artifact", Err: err}
		}

		artifacts = append(artifacts, Artifact{
			Name:     name,
			Ordinal:  parseOrdinal(name),
			SQL:      string(content),
			Checksum: Checksum(string(content)),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return less(artifacts[i], artifacts[j])
	})

	return artifacts, nil
}

// less is the application order: ordinal-prefixed artifacts first, by
// ordinal, then everything else by name. Treating "no ordinal" as greater
// than every ordinal keeps the order total when prefixed and plain names
// mix in one directory.
func less(a, b Artifact) bool {
	ao, bo := a.Ordinal, b.Ordinal
	if ao != bo {
		if ao < 0 {
			return false
		}
		if bo < 0 {
			return true
		}
		return ao < bo
	}
	return a.Name < b.Name
}

// Checksum returns the sha256 hex digest of the artifact text
func Checksum(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}

// parseOrdinal extracts the numeric ordering prefix from an artifact name,
// returning -1 when the name has none.
func parseOrdinal(name string) int {
	match := ordinalPattern.FindStringSubmatch(name)
	if match == nil {
		return -1
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		// Digits too large for int still order somewhere stable
		return -1
	}
	return n
}
