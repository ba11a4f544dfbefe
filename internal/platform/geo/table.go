// Package geo holds the static country-code to coordinate table used to place
// aggregated members on the map.
package geo

import (
	_ "embed"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/chingu-voyages/demographics-api/internal/domain"
)

// Coordinates is a country centroid.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Table is a read-only, concurrency-safe lookup from country code to coordinates.
type Table struct {
	byCode map[string]Coordinates
}

//go:embed countries.json
var bundled []byte

// Bundled returns the table shipped with the binary.
func Bundled() (*Table, error) {
	return parse(bundled)
}

// Load reads a table in the bundled JSON shape: {"US": {"lat": 37, "lng": -95}, ...}.
func Load(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read coordinate table: %w", err)
	}
	return parse(b)
}

// NewTable builds a table from an in-memory map. Keys are normalized.
func NewTable(m map[string]Coordinates) *Table {
	t := &Table{byCode: make(map[string]Coordinates, len(m))}
	for code, c := range m {
		t.byCode[domain.NormalizeCountryCode(code)] = c
	}
	return t
}

func parse(b []byte) (*Table, error) {
	var raw map[string]Coordinates
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode coordinate table: %w", err)
	}
	return NewTable(raw), nil
}

// Lookup returns the coordinates for code, ignoring case and surrounding whitespace.
func (t *Table) Lookup(code string) (Coordinates, bool) {
	if t == nil {
		return Coordinates{}, false
	}
	c, ok := t.byCode[domain.NormalizeCountryCode(code)]
	return c, ok
}

// Len returns the number of countries in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byCode)
}
