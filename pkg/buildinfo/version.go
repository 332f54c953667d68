// Package buildinfo reports the version stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/codescope/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/codescope/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/codescope/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Version also feeds the report cache key, so a new build never serves
// reports computed by an older one.
package buildinfo

import "fmt"

// Set by -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the JSON form served at /version and embedded in reports.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped build information.
func Get() Info { return Info{Version: Version, Commit: Commit, Date: Date} }

// Template is the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", i.Version, i.Commit, i.Date)
}
