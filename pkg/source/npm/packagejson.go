// Package npm reads npm projects into normalized manifests.
//
// [Load] reads a project's package.json and, when present, its
// package-lock.json (lockfile versions 2 and 3). The lockfile supplies the
// manifests of transitive packages so that the graph builder can walk past
// the direct dependencies; without one, direct dependencies are leaves.
//
// [LoadWorkspace] expands the root package.json's "workspaces" globs and
// loads every member against the root lockfile. A member that fails to
// load carries its error and does not affect the others.
package npm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
)

// File names read from a project directory.
const (
	PackageJSONFile = "package.json"
	LockfileFile    = "package-lock.json"
	ShrinkwrapFile  = "npm-shrinkwrap.json"
)

// PackageJSON is the subset of package.json that describes dependencies.
type PackageJSON struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Workspaces           workspaceGlobs    `json:"workspaces"`
}

// workspaceGlobs holds the member globs. package.json allows either a plain
// array or an object with a "packages" array.
type workspaceGlobs []string

// UnmarshalJSON accepts both workspace forms.
func (w *workspaceGlobs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Packages []string `json:"packages"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*w = obj.Packages
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*w = list
	return nil
}

// ParsePackageJSON decodes package.json content.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse package.json")
	}
	return &pkg, nil
}

// Manifest converts the package into a graph manifest. An unnamed package
// takes fallbackName.
func (p *PackageJSON) Manifest(fallbackName string) *graph.Manifest {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = fallbackName
	}
	m := &graph.Manifest{Root: graph.PackageID{Name: name, Version: p.Version}}
	declare(m, graph.RelationProduction, p.Dependencies)
	declare(m, graph.RelationPeer, p.PeerDependencies)
	declare(m, graph.RelationDev, p.DevDependencies)
	declare(m, graph.RelationOptional, p.OptionalDependencies)
	return m
}

// declare appends deps in map order; the graph builder sorts them.
func declare(m *graph.Manifest, r graph.Relation, deps map[string]string) {
	for name, version := range deps {
		m.Declare(r, name, version)
	}
}

// ReadPackageJSON reads the package.json at path into a manifest. The
// directory name stands in for a missing package name.
func ReadPackageJSON(path string) (*graph.Manifest, error) {
	pkg, err := readPackageFile(path)
	if err != nil {
		return nil, err
	}
	return pkg.Manifest(filepath.Base(filepath.Dir(path))), nil
}

func readPackageFile(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, err
	}
	pkg, err := ParsePackageJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pkg, nil
}

// Load reads the project in dir: package.json plus the lockfile, if any.
func Load(dir string) (*graph.Manifest, error) {
	m, err := ReadPackageJSON(filepath.Join(dir, PackageJSONFile))
	if err != nil {
		return nil, err
	}
	if lock := FindLockfile(dir); lock != "" {
		if err := ReadLockfile(lock, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FindLockfile returns the lockfile in dir, preferring
// npm-shrinkwrap.json as npm does, or "" if there is none.
func FindLockfile(dir string) string {
	for _, name := range []string{ShrinkwrapFile, LockfileFile} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
