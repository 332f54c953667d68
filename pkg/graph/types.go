package graph

import (
	"fmt"
	"strings"
)

// PackageID identifies a package by name and declared version range.
type PackageID struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String returns "name@version".
func (p PackageID) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// NodeID is a stable index into a Graph's node arena.
type NodeID int

// Relation is the kind of a dependency declaration. The numeric order is
// the strength order: Optional < Dev < Peer < Production.
type Relation uint8

const (
	// RelationNone marks the root node, which is not declared by anyone.
	RelationNone Relation = iota
	RelationOptional
	RelationDev
	RelationPeer
	RelationProduction
)

// Relations lists the declarable relations from strongest to weakest.
var Relations = []Relation{RelationProduction, RelationPeer, RelationDev, RelationOptional}

// Stronger reports whether r ranks above other.
func (r Relation) Stronger(other Relation) bool { return r > other }

// String returns the lower-case relation name.
func (r Relation) String() string {
	switch r {
	case RelationProduction:
		return "production"
	case RelationPeer:
		return "peer"
	case RelationDev:
		return "dev"
	case RelationOptional:
		return "optional"
	default:
		return "root"
	}
}

// ParseRelation parses a relation name as produced by [Relation.String].
// "prod" and "dependencies"-style aliases are accepted.
func ParseRelation(s string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod", "dependencies":
		return RelationProduction, nil
	case "peer", "peerdependencies":
		return RelationPeer, nil
	case "dev", "devdependencies":
		return RelationDev, nil
	case "optional", "optionaldependencies":
		return RelationOptional, nil
	}
	return RelationNone, fmt.Errorf("unknown relation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Relation) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. "root" decodes to
// RelationNone.
func (r *Relation) UnmarshalText(text []byte) error {
	if string(text) == "root" {
		*r = RelationNone
		return nil
	}
	v, err := ParseRelation(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Category is the savings classification of a node.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryUnused
	CategoryHasAlternative
	CategoryUnderutilized
	CategoryTreeShaking
)

// Categories lists the savings categories in rule priority order.
var Categories = []Category{CategoryUnused, CategoryHasAlternative, CategoryUnderutilized, CategoryTreeShaking}

// String returns the category's report label.
func (c Category) String() string {
	switch c {
	case CategoryUnused:
		return "unused"
	case CategoryHasAlternative:
		return "has-alternative"
	case CategoryUnderutilized:
		return "underutilized"
	case CategoryTreeShaking:
		return "tree-shaking"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	if string(text) == "none" {
		*c = CategoryNone
		return nil
	}
	for _, cat := range Categories {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// UsageFacts is the per-package import summary merged into a node by the
// usage pass.
type UsageFacts struct {
	Files      int  `json:"files"`
	Named      int  `json:"named"`
	Default    bool `json:"default,omitempty"`
	Namespace  bool `json:"namespace,omitempty"`
	Require    bool `json:"require,omitempty"`
	SideEffect bool `json:"side_effect,omitempty"`
}

// SideEffectOnly reports whether every import of the package is a bare
// side-effect import.
func (u UsageFacts) SideEffectOnly() bool {
	return u.SideEffect && u.Named == 0 && !u.Default && !u.Namespace && !u.Require
}

// NamedOnly reports whether the package is consumed exclusively through
// named imports, the precondition for tree shaking.
func (u UsageFacts) NamedOnly() bool {
	return u.Named > 0 && !u.Default && !u.Namespace && !u.Require
}

// Node is a package in the graph. Identity and relation are fixed at build
// time; the remaining fields are annotations.
type Node struct {
	ID       PackageID
	Relation Relation
	Depth    int // -1 until ComputeDepths runs

	Size        int64
	HasSize     bool
	ModuleCount int

	Usage          *UsageFacts
	Utilization    float64
	HasUtilization bool
	PossiblyUnused bool

	Category Category
	Savings  int64
}

// Edge is a dependency from one node to another.
type Edge struct {
	From     NodeID
	To       NodeID
	Relation Relation
}

// Declaration is a single manifest entry: a package name and version range.
type Declaration struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Manifest is the normalized, package-manager independent input to [Build].
type Manifest struct {
	Root       PackageID     `json:"root"`
	Production []Declaration `json:"production,omitempty"`
	Peer       []Declaration `json:"peer,omitempty"`
	Dev        []Declaration `json:"dev,omitempty"`
	Optional   []Declaration `json:"optional,omitempty"`

	// Packages optionally holds the manifests of transitive packages keyed
	// by name. A package without an entry is treated as a leaf.
	Packages map[string]*Manifest `json:"packages,omitempty"`
}

// Declarations returns the manifest's entries for relation r.
func (m *Manifest) Declarations(r Relation) []Declaration {
	switch r {
	case RelationProduction:
		return m.Production
	case RelationPeer:
		return m.Peer
	case RelationDev:
		return m.Dev
	case RelationOptional:
		return m.Optional
	}
	return nil
}

// Declare appends an entry under relation r.
func (m *Manifest) Declare(r Relation, name, version string) {
	d := Declaration{Name: name, Version: version}
	switch r {
	case RelationProduction:
		m.Production = append(m.Production, d)
	case RelationPeer:
		m.Peer = append(m.Peer, d)
	case RelationDev:
		m.Dev = append(m.Dev, d)
	case RelationOptional:
		m.Optional = append(m.Optional, d)
	}
}
