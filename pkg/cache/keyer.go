package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey identifies an analysis report by a hash of its inputs.
	ReportKey(inputHash string, opts ReportKeyOpts) string

	// ExportKey identifies a rendered report (SVG, DOT, CSV...) by the hash
	// of the report it was rendered from.
	ExportKey(reportHash string, opts ExportKeyOpts) string
}

// ReportKeyOpts holds the non-input parameters that change a report.
type ReportKeyOpts struct {
	ConfigHash string `json:"config"`
	Version    string `json:"version"`
}

// ExportKeyOpts holds the parameters of a rendered export.
type ExportKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer keys entries as "<kind>:<sha256 of the JSON-encoded parts>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ReportKey(inputHash string, opts ReportKeyOpts) string {
	return kindKey("report", inputHash, opts)
}

func (DefaultKeyer) ExportKey(reportHash string, opts ExportKeyOpts) string {
	return kindKey("export", reportHash, opts)
}

// kindKey never fails: the parts are strings and flat option structs.
func kindKey(kind string, parts ...any) string {
	sum, _ := HashJSON(parts)
	return kind + ":" + sum
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. encoding/json sorts map keys, so
// equal maps hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
