// Package ingest turns retrieval tables into validated publication records.
package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"scholarmap/bibnet/internal/corpus"
)

var yearPattern = regexp.MustCompile(`[1-3][0-9]{3}`)

// ParseYear reads a publication year from a table cell. Plain integers are
// taken as is; otherwise the first four-digit year in the text is used.
// Anything else is 0 (unknown).
func ParseYear(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if y, err := strconv.Atoi(s); err == nil && y >= 0 {
		return y
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int(f)) {
		return int(f)
	}
	if m := yearPattern.FindString(s); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}

// ParseKind maps the retrieval labels onto a publication kind. Only the root
// spellings are recognized; everything else is a citing publication.
func ParseKind(raw string) corpus.Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "root publication", "root", "main_pub", "main pub":
		return corpus.KindRoot
	default:
		return corpus.KindCiting
	}
}

// ParseCount reads a non-negative integer count. Empty cells are 0.
func ParseCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// SplitCitingIDs splits a ";"-separated citing set.
func SplitCitingIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeIDs(strings.Split(raw, ";"))
}

// NormalizeIDs trims identifiers and drops empty and repeated entries,
// keeping the first occurrence.
func NormalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// SplitAuthors splits an author cell on ";" when present, otherwise on ",".
func SplitAuthors(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	var out []string
	for _, a := range strings.Split(s, sep) {
		a = strings.Trim(strings.TrimSpace(a), `'"`)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
