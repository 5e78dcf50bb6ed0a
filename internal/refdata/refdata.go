// Package refdata loads the optional known-reference table: facts about
// specific shipments (expected container count, discharge port) supplied by
// the operator rather than read off the document. The extraction pipeline
// consults it to reconcile ambiguous results; it never feeds patterns into
// the strategies themselves.
package refdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is what the operator knows about one document identity.
type Entry struct {
	ContainerCount  int    `yaml:"container_count"`
	PortOfDischarge string `yaml:"port_of_discharge"`
}

type file struct {
	Documents map[string]Entry `yaml:"documents"`
}

// Table maps normalized document identities to their reference entries.
// A nil *Table is a valid empty table.
type Table struct {
	entries map[string]Entry
}

// Load reads a YAML reference table from path.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: read %s: %w", path, err)
	}
	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("refdata: %s: %w", path, err)
	}
	return t, nil
}

// Parse builds a Table from raw YAML.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	entries := make(map[string]Entry, len(f.Documents))
	for k, v := range f.Documents {
		entries[normalize(k)] = v
	}
	return &Table{entries: entries}, nil
}

// Lookup returns the entry for the first key that is present. Keys are
// matched case-insensitively; blank keys are skipped. The caller passes
// identities in preference order, typically the resolved BOL number first
// and the source filename stem second.
func (t *Table) Lookup(keys ...string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	for _, k := range keys {
		k = normalize(k)
		if k == "" {
			continue
		}
		if e, ok := t.entries[k]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Len reports how many identities the table holds.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func normalize(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}
