package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

// Loader reads one file format into a schema input.
type Loader interface {
	Name() string
	CanLoad(path string) bool
	Load(path string, opt Options) (*Input, error)
}

// Options tune how tabular sources are read. Zero values mean auto/defaults.
type Options struct {
	Delimiter  rune   // CSV delimiter; 0 sniffs from the file name
	Encoding   string // CSV text encoding: utf-8 (default), latin1, windows-1252
	SheetName  string // XLSX sheet by name
	SheetIndex int    // XLSX sheet by 1-based index when SheetName is empty
	Table      string // SQLite table; empty picks the first user table
	MaxRows    int    // cap on data rows read; 0 = unlimited
	MaxDepth   int    // container nesting limit for nested formats; 0 = schema.DefaultMaxDepth
}

func (o Options) depthLimit() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return schema.DefaultMaxDepth
}

// Input is a loaded file: a table for tabular formats, a node tree for nested ones.
type Input struct {
	Kind   schema.Kind
	Table  schema.Table
	Root   *schema.Node
	Format string
}

// Value returns what schema.Build expects for this input.
func (in *Input) Value() any {
	if in.Kind == schema.KindNested {
		return in.Root
	}
	return in.Table
}

// ErrUnsupported indicates no registered loader handles the file extension.
var ErrUnsupported = errors.New("unsupported file format")

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// For returns the loader for path, or ErrUnsupported.
func For(path string) (Loader, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// LoadFile selects a loader by extension and reads path.
func LoadFile(path string, opt Options) (*Input, error) {
	l, err := For(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	in, err := l.Load(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.Name(), err)
	}
	in.Format = l.Name()
	return in, nil
}

// Extensions lists every extension some loader accepts, in registration order.
func Extensions() []string {
	var out []string
	for _, l := range registry {
		if e, ok := l.(interface{ Extensions() []string }); ok {
			out = append(out, e.Extensions()...)
		}
	}
	return out
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
	Register(ndjsonLoader{})
	Register(xmlLoader{})
	Register(yamlLoader{})
	Register(sqliteLoader{})
	Register(htmlLoader{})
}

// childPath and itemPath name positions in a nested document the way report paths do.
func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func itemPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// hasExt reports whether path ends with one of exts (case-insensitive).
func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// tableFromRows builds a raw-text table from a header and data rows. Empty cells
// become nulls; short rows are padded with nulls and extra cells dropped. Blank
// header names get pandas-style "Unnamed: i" names and repeats are suffixed.
func tableFromRows(header []string, rows [][]string) schema.Table {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		if names[i] == "" {
			names[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}
	names = dedupeHeader(names)
	t := schema.Table{Columns: make([]schema.Column, len(header))}
	for i, name := range names {
		t.Columns[i] = schema.Column{Name: name, Values: make([]any, 0, len(rows))}
	}
	for _, row := range rows {
		for i := range t.Columns {
			var v any
			if i < len(row) && row[i] != "" {
				v = row[i]
			}
			t.Columns[i].Values = append(t.Columns[i].Values, v)
		}
	}
	return t
}

// dedupeHeader renames repeated column names "x", "x" to "x", "x.1" the way pandas does.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	taken := map[string]bool{}
	for _, h := range header {
		taken[h] = true
	}
	for i, name := range header {
		if n, ok := seen[name]; ok {
			for {
				n++
				cand := fmt.Sprintf("%s.%d", name, n)
				if !taken[cand] {
					seen[name] = n
					name = cand
					taken[cand] = true
					break
				}
			}
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func tabular(t schema.Table) *Input {
	return &Input{Kind: schema.KindTabular, Table: t}
}

func nested(root *schema.Node) *Input {
	return &Input{Kind: schema.KindNested, Root: root}
}
