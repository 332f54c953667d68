package errors

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// maxNpmNameLength is the registry limit for package names.
const maxNpmNameLength = 214

// npmPackageNameRegex matches valid npm package names. Upper case letters
// are accepted because legacy registry packages (JSONStream, Base64) still
// appear in lockfiles.
var npmPackageNameRegex = regexp.MustCompile(`^(@[a-zA-Z0-9~-][a-zA-Z0-9._~-]*/)?[a-zA-Z0-9~-][a-zA-Z0-9._~-]*$`)

// npmNameRules are checked in order; the first one that fails names the
// problem. Names end up in node_modules paths and cache keys, so traversal
// sequences are rejected before the grammar check.
var npmNameRules = []struct {
	reason string
	bad    func(string) bool
}{
	{"cannot be empty", func(s string) bool { return s == "" }},
	{fmt.Sprintf("too long (max %d characters)", maxNpmNameLength), func(s string) bool { return len(s) > maxNpmNameLength }},
	{"contains control characters", func(s string) bool { return strings.IndexFunc(s, unicode.IsControl) >= 0 }},
	{"contains a path traversal sequence", func(s string) bool {
		return strings.Contains(s, "..") || strings.Contains(s, "//") || strings.ContainsRune(s, '\\')
	}},
	{"is not a valid npm name", func(s string) bool { return !npmPackageNameRegex.MatchString(s) }},
}

// ValidateNpmPackageName validates an npm package name: an optional
// "@scope/" prefix, no whitespace, no leading dot or underscore, at most
// 214 characters.
func ValidateNpmPackageName(name string) error {
	for _, rule := range npmNameRules {
		if rule.bad(name) {
			return New(ErrCodeInvalidPackage, "package name %q %s", name, rule.reason)
		}
	}
	return nil
}
