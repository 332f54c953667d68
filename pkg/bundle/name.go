package bundle

import "strings"

const nodeModules = "node_modules/"

// PackageName returns the package that owns a bundled module path.
//
// Loader prefixes ("babel-loader!./node_modules/x/y.js") and Windows
// separators are stripped first. The owner is the first segment after the
// last "node_modules/" marker, or the first two when the first starts with
// "@". Paths without a marker, or with an empty segment after it, have no
// owner.
func PackageName(path string) (string, bool) {
	p := strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(p, "!"); i >= 0 {
		p = p[i+1:]
	}
	i := strings.LastIndex(p, nodeModules)
	if i < 0 {
		return "", false
	}
	rest := p[i+len(nodeModules):]
	first, after, _ := strings.Cut(rest, "/")
	first = trimModuleSuffix(first)
	if first == "" {
		return "", false
	}
	if !strings.HasPrefix(first, "@") {
		return first, true
	}
	second, _, _ := strings.Cut(after, "/")
	second = trimModuleSuffix(second)
	if first == "@" || second == "" {
		return "", false
	}
	return first + "/" + second, true
}

// trimModuleSuffix drops webpack's " + N modules" concatenation marker
// when it trails a bare segment.
func trimModuleSuffix(seg string) string {
	if i := strings.IndexByte(seg, ' '); i >= 0 {
		return seg[:i]
	}
	return seg
}
