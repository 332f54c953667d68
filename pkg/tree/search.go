package tree

import (
	"strings"
	"unicode/utf8"
)

// Match reports whether query is a case-insensitive subsequence of name.
// The empty query matches everything.
func Match(name, query string) bool {
	name, query = strings.ToLower(name), strings.ToLower(query)
	for _, q := range query {
		i := strings.IndexRune(name, q)
		if i < 0 {
			return false
		}
		name = name[i+utf8.RuneLen(q):]
	}
	return true
}

// Search returns the indexes of rows whose package name matches query.
func Search(t *Tree, rows []Row, query string) []int {
	if query == "" {
		return nil
	}
	var hits []int
	for i, r := range rows {
		if Match(t.g.Name(r.Node.Package), query) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Filter returns the rows whose package name matches query.
func Filter(t *Tree, rows []Row, query string) []Row {
	if query == "" {
		return rows
	}
	var out []Row
	for _, i := range Search(t, rows, query) {
		out = append(out, rows[i])
	}
	return out
}
