package usage

import "strings"

// PackageFromSpecifier maps a module specifier to the package it imports
// from: "lodash/fp" is "lodash", "@babel/core/lib/x" is "@babel/core".
//
// Relative and absolute paths, "node:" builtins, URL imports and
// path-alias specifiers ("@/components", "~/utils", "#internal") do not
// name a package and are reported as not ok.
func PackageFromSpecifier(spec string) (string, bool) {
	s := strings.TrimSpace(spec)
	switch {
	case s == "",
		strings.HasPrefix(s, "."),
		strings.HasPrefix(s, "/"),
		strings.HasPrefix(s, "~/"),
		strings.HasPrefix(s, "#"),
		strings.HasPrefix(s, "@/"),
		strings.Contains(s, ":"):
		return "", false
	}

	first, rest, _ := strings.Cut(s, "/")
	if !strings.HasPrefix(first, "@") {
		return first, true
	}
	second, _, _ := strings.Cut(rest, "/")
	if first == "@" || second == "" {
		return "", false
	}
	return first + "/" + second, true
}
