package npm

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
)

// Lockfile is the subset of package-lock.json read by codescope.
type Lockfile struct {
	Name            string                 `json:"name"`
	Version         string                 `json:"version"`
	LockfileVersion int                    `json:"lockfileVersion"`
	Packages        map[string]LockPackage `json:"packages"`
}

// LockPackage is one entry of the "packages" map, keyed by install path
// ("node_modules/a/node_modules/b").
type LockPackage struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Resolved             string            `json:"resolved"`
	Integrity            string            `json:"integrity"`
	Link                 bool              `json:"link"`
	Dev                  bool              `json:"dev"`
	Optional             bool              `json:"optional"`
	Peer                 bool              `json:"peer"`
	Dependencies         map[string]string `json:"dependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ParseLockfile decodes package-lock.json content. Version 1 lockfiles
// have no "packages" map and are rejected.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var lock Lockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse lockfile")
	}
	if lock.LockfileVersion < 2 || lock.Packages == nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"unsupported lockfile version %d (need 2 or 3)", lock.LockfileVersion)
	}
	return &lock, nil
}

// ReadLockfile reads the lockfile at path and fills m.Packages.
func ReadLockfile(path string, m *graph.Manifest) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lock, err := ParseLockfile(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	m.Packages = lock.Manifests()
	return nil
}

// Manifests returns one manifest per installed package name. When a name
// is installed at several paths the hoisted copy wins: the path with the
// fewest node_modules segments, then the shortest, then the smallest.
// Workspace links are followed to their target entry.
func (l *Lockfile) Manifests() map[string]*graph.Manifest {
	type pick struct {
		key string
		pkg LockPackage
	}
	best := make(map[string]pick)
	for key, pkg := range l.Packages {
		if key == "" {
			continue
		}
		name, ok := bundle.PackageName(key)
		if !ok {
			continue
		}
		if pkg.Link {
			target, ok := l.Packages[pkg.Resolved]
			if !ok {
				continue
			}
			pkg = target
		}
		if cur, ok := best[name]; ok && !hoistedBefore(key, cur.key) {
			continue
		}
		best[name] = pick{key: key, pkg: pkg}
	}

	out := make(map[string]*graph.Manifest, len(best))
	for name, p := range best {
		m := &graph.Manifest{Root: graph.PackageID{Name: name, Version: p.pkg.Version}}
		declare(m, graph.RelationProduction, p.pkg.Dependencies)
		declare(m, graph.RelationPeer, p.pkg.PeerDependencies)
		declare(m, graph.RelationOptional, p.pkg.OptionalDependencies)
		out[name] = m
	}
	return out
}

func hoistedBefore(a, b string) bool {
	return cmp.Or(
		cmp.Compare(strings.Count(a, "node_modules/"), strings.Count(b, "node_modules/")),
		cmp.Compare(len(a), len(b)),
		cmp.Compare(a, b),
	) < 0
}
