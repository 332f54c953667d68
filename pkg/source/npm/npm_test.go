package npm

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
)

const appPackageJSON = `{
  "name": "my-app",
  "version": "1.0.0",
  "dependencies": {"react": "^18.0.0", "lodash": "^4.17.21"},
  "devDependencies": {"jest": "^29.0.0"},
  "peerDependencies": {"react-dom": "^18.0.0"},
  "optionalDependencies": {"fsevents": "^2.3.0"}
}`

const appLockfile = `{
  "name": "my-app",
  "version": "1.0.0",
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "my-app", "version": "1.0.0"},
    "node_modules/react": {"version": "18.2.0", "dependencies": {"loose-envify": "^1.1.0"}},
    "node_modules/loose-envify": {"version": "1.4.0", "dependencies": {"js-tokens": "^3.0.0 || ^4.0.0"}},
    "node_modules/js-tokens": {"version": "4.0.0"},
    "node_modules/jest/node_modules/js-tokens": {"version": "3.0.2"},
    "node_modules/lodash": {"version": "4.17.21"},
    "node_modules/@babel/core": {"version": "7.23.0", "peerDependencies": {"react": "*"}}
  }
}`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadPackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PackageJSONFile), appPackageJSON)

	m, err := ReadPackageJSON(filepath.Join(dir, PackageJSONFile))
	if err != nil {
		t.Fatalf("ReadPackageJSON: %v", err)
	}
	if m.Root.Name != "my-app" || m.Root.Version != "1.0.0" {
		t.Errorf("Root = %+v", m.Root)
	}
	counts := map[graph.Relation]int{
		graph.RelationProduction: 2,
		graph.RelationDev:        1,
		graph.RelationPeer:       1,
		graph.RelationOptional:   1,
	}
	for rel, want := range counts {
		if got := len(m.Declarations(rel)); got != want {
			t.Errorf("%s declarations = %d, want %d", rel, got, want)
		}
	}
}

func TestReadPackageJSONErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadPackageJSON(filepath.Join(dir, PackageJSONFile)); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
	writeFile(t, filepath.Join(dir, PackageJSONFile), `{"name": `)
	if _, err := ReadPackageJSON(filepath.Join(dir, PackageJSONFile)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad json: err = %v", err)
	}
}

func TestUnnamedPackageUsesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tooling")
	writeFile(t, filepath.Join(dir, PackageJSONFile), `{"private": true}`)
	m, err := ReadPackageJSON(filepath.Join(dir, PackageJSONFile))
	if err != nil {
		t.Fatal(err)
	}
	if m.Root.Name != "tooling" {
		t.Errorf("Root.Name = %q", m.Root.Name)
	}
}

func TestLoadWithLockfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PackageJSONFile), appPackageJSON)
	writeFile(t, filepath.Join(dir, LockfileFile), appLockfile)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.Packages["js-tokens"].Root.Version; got != "4.0.0" {
		t.Errorf("js-tokens version = %q, want the hoisted 4.0.0", got)
	}
	if got := m.Packages["@babel/core"].Peer; len(got) != 1 {
		t.Errorf("@babel/core peers = %v", got)
	}

	g, err := graph.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, name := range []string{"react", "loose-envify", "js-tokens"} {
		id, ok := g.Lookup(name)
		if !ok {
			t.Errorf("%s missing from graph", name)
			continue
		}
		if g.Node(id).Relation != graph.RelationProduction {
			t.Errorf("%s relation = %s", name, g.Node(id).Relation)
		}
	}
	if id, _ := g.Lookup("react"); g.Node(id).ID.Version != "18.2.0" {
		t.Errorf("react version = %q, want the locked version", g.Node(id).ID.Version)
	}
	if _, ok := g.Lookup("@babel/core"); ok {
		t.Error("packages not reachable from the root must not be in the graph")
	}
}

func TestParseLockfileVersion(t *testing.T) {
	_, err := ParseLockfile([]byte(`{"lockfileVersion": 1, "dependencies": {}}`))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("v1 lockfile: err = %v", err)
	}
	if _, err := ParseLockfile([]byte(`{"lockfileVersion": 2, "packages": {}}`)); err != nil {
		t.Errorf("v2 lockfile: %v", err)
	}
}

func TestParseWorkspaceForms(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    []string
		wantErr bool
	}{
		{"array", `{"workspaces": ["packages/*", "apps/web"]}`, []string{"packages/*", "apps/web"}, false},
		{"object", `{"workspaces": {"packages": ["packages/*"], "nohoist": ["**/react"]}}`, []string{"packages/*"}, false},
		{"absent", `{"name": "solo"}`, nil, false},
		{"wrong type", `{"workspaces": "packages/*"}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := ParsePackageJSON([]byte(tt.json))
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("err = %v, want INVALID_FORMAT", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal([]string(pkg.Workspaces), tt.want) {
				t.Errorf("workspaces = %q, want %q", pkg.Workspaces, tt.want)
			}
		})
	}
}

func TestWorkspaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PackageJSONFile), `{
  "name": "monorepo",
  "private": true,
  "workspaces": ["packages/*", "!packages/legacy"]
}`)
	writeFile(t, filepath.Join(dir, "packages", "web", PackageJSONFile),
		`{"name": "web", "dependencies": {"shared": "*", "react": "^18.0.0"}}`)
	writeFile(t, filepath.Join(dir, "packages", "shared", PackageJSONFile),
		`{"name": "shared", "dependencies": {"lodash": "^4.0.0"}}`)
	writeFile(t, filepath.Join(dir, "packages", "legacy", PackageJSONFile), `{"name": "legacy"}`)
	writeFile(t, filepath.Join(dir, "packages", "broken", PackageJSONFile), `{`)
	writeFile(t, filepath.Join(dir, "packages", "docs", "README.md"), "no manifest")
	writeFile(t, filepath.Join(dir, LockfileFile), `{
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "monorepo"},
    "packages/shared": {"name": "shared", "version": "0.1.0", "dependencies": {"lodash": "^4.0.0"}},
    "node_modules/shared": {"resolved": "packages/shared", "link": true},
    "node_modules/lodash": {"version": "4.17.21"},
    "node_modules/react": {"version": "18.2.0"}
  }
}`)

	members, err := Workspaces(dir)
	if err != nil {
		t.Fatalf("Workspaces: %v", err)
	}
	want := []string{"broken", "shared", "web"}
	if len(members) != len(want) {
		t.Fatalf("members = %v", members)
	}
	for i, m := range members {
		if filepath.Base(m) != want[i] {
			t.Errorf("members[%d] = %s, want %s", i, m, want[i])
		}
	}

	projects, err := LoadWorkspace(dir)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if projects[0].Err == nil {
		t.Error("broken member should carry an error")
	}
	web := projects[2]
	if web.Err != nil {
		t.Fatalf("web: %v", web.Err)
	}
	g, err := graph.Build(web.Manifest)
	if err != nil {
		t.Fatalf("Build(web): %v", err)
	}
	shared, ok := g.Lookup("shared")
	if !ok {
		t.Fatal("linked workspace package missing")
	}
	if lodash, ok := g.Lookup("lodash"); !ok || !g.HasEdge(shared, lodash) {
		t.Error("link target's dependencies were not followed")
	}
}

func TestLoadWorkspaceSingleProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PackageJSONFile), appPackageJSON)
	projects, err := LoadWorkspace(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].Manifest.Root.Name != "my-app" {
		t.Errorf("projects = %+v", projects)
	}
}
