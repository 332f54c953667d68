package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type webpackStats struct {
	Modules  []webpackModule `json:"modules"`
	Chunks   []webpackChunk  `json:"chunks"`
	Children []webpackStats  `json:"children"`
}

type webpackChunk struct {
	ID      json.RawMessage `json:"id"`
	Modules []webpackModule `json:"modules"`
}

type webpackModule struct {
	Name    string            `json:"name"`
	Size    float64           `json:"size"`
	Chunks  []json.RawMessage `json:"chunks"`
	Modules []webpackModule   `json:"modules"`
}

// ReadWebpackStats reads a webpack stats.json document (`webpack --json`)
// into a size table.
//
// Concatenated modules are replaced by their nested modules so that their
// bytes are not counted twice. Modules listed only under chunks are used
// when the top-level module list is empty. Child compilations are included.
func ReadWebpackStats(r io.Reader) (SizeTable, error) {
	var stats webpackStats
	if err := json.NewDecoder(r).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode webpack stats: %w", err)
	}
	var table SizeTable
	collectStats(&table, stats)
	return table, nil
}

func collectStats(table *SizeTable, s webpackStats) {
	if len(s.Modules) > 0 {
		for _, m := range s.Modules {
			collectModule(table, m, nil)
		}
	} else {
		for _, c := range s.Chunks {
			id := []string{chunkID(c.ID)}
			for _, m := range c.Modules {
				collectModule(table, m, id)
			}
		}
	}
	for _, child := range s.Children {
		collectStats(table, child)
	}
}

func collectModule(table *SizeTable, m webpackModule, inherited []string) {
	chunks := inherited
	if len(m.Chunks) > 0 {
		chunks = make([]string, len(m.Chunks))
		for i, raw := range m.Chunks {
			chunks[i] = chunkID(raw)
		}
	}
	if len(m.Modules) > 0 {
		for _, nested := range m.Modules {
			collectModule(table, nested, chunks)
		}
		return
	}
	if m.Name == "" {
		return
	}
	*table = append(*table, Module{Path: m.Name, Size: int64(m.Size), Chunks: chunks})
}

// chunkID renders a chunk id, which webpack emits as a number or a string.
func chunkID(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

// ReadSizeTable reads a plain JSON size table: an array of
// {"path", "size", "chunks"} objects.
func ReadSizeTable(r io.Reader) (SizeTable, error) {
	var table SizeTable
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode size table: %w", err)
	}
	return table, nil
}
