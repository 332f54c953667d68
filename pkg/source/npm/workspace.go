package npm

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
)

// Project is one loaded workspace member.
type Project struct {
	Dir      string
	Manifest *graph.Manifest
	Err      error
}

// Workspaces returns the member directories named by the "workspaces"
// globs of dir/package.json, sorted. Patterns starting with "!" exclude
// matches. Only directories holding a package.json count as members.
// Patterns use filepath.Match syntax; "**" is not supported.
func Workspaces(dir string) ([]string, error) {
	pkg, err := readPackageFile(filepath.Join(dir, PackageJSONFile))
	if err != nil {
		return nil, err
	}
	var include, exclude []string
	for _, pattern := range pkg.Workspaces {
		if rest, ok := strings.CutPrefix(pattern, "!"); ok {
			exclude = append(exclude, filepath.Join(dir, rest))
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "workspace pattern %q", pattern)
		}
		include = append(include, matches...)
	}

	var members []string
	for _, m := range include {
		if excluded(m, exclude) || !hasPackageJSON(m) {
			continue
		}
		members = append(members, m)
	}
	slices.Sort(members)
	return slices.Compact(members), nil
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, path); ok {
			return true
		}
	}
	return false
}

func hasPackageJSON(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, PackageJSONFile))
	return err == nil && !info.IsDir()
}

// LoadWorkspace loads every workspace member of dir against the root
// lockfile. A project without workspaces loads as a single member.
// Per-member failures are reported in Project.Err.
func LoadWorkspace(dir string) ([]Project, error) {
	members, err := Workspaces(dir)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		m, err := Load(dir)
		if err != nil {
			return nil, err
		}
		return []Project{{Dir: dir, Manifest: m}}, nil
	}

	var packages map[string]*graph.Manifest
	if path := FindLockfile(dir); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		lock, err := ParseLockfile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		packages = lock.Manifests()
	}

	projects := make([]Project, len(members))
	for i, member := range members {
		projects[i].Dir = member
		m, err := ReadPackageJSON(filepath.Join(member, PackageJSONFile))
		if err != nil {
			projects[i].Err = err
			continue
		}
		m.Packages = packages
		projects[i].Manifest = m
	}
	return projects, nil
}
