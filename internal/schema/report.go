package schema

import (
	"fmt"
	"strings"
)

// Delimiter separates the three segments of a report line.
const Delimiter = ";"

// Kind tells which inference path produced a report.
type Kind string

const (
	KindTabular Kind = "tabular"
	KindNested  Kind = "nested"
)

// Report is the ordered field list inferred from one input.
type Report struct {
	Kind    Kind
	Records []FieldRecord
}

// Build infers the schema of one input: a Table, *Table or []Column goes through the
// column classifier, a *Node or Node through the flattener. Anything else is
// rejected with ErrMalformedInput. On error no partial report is returned.
func Build(input any, opt Options) (*Report, error) {
	switch in := input.(type) {
	case Table:
		return buildTabular(in, opt)
	case *Table:
		if in == nil {
			return nil, malformed("nil table")
		}
		return buildTabular(*in, opt)
	case []Column:
		return buildTabular(Table{Columns: in}, opt)
	case *Node:
		return buildNested(in, opt)
	case Node:
		return buildNested(&in, opt)
	case nil:
		return nil, malformed("no input")
	default:
		return nil, malformed("unsupported input type %T", input)
	}
}

func buildTabular(t Table, opt Options) (*Report, error) {
	recs, err := ClassifyTable(t, opt)
	if err != nil {
		return nil, fmt.Errorf("classify table: %w", err)
	}
	return &Report{Kind: KindTabular, Records: recs}, nil
}

func buildNested(root *Node, opt Options) (*Report, error) {
	recs, err := FlattenRecords(root, opt)
	if err != nil {
		return nil, fmt.Errorf("flatten document: %w", err)
	}
	return &Report{Kind: KindNested, Records: recs}, nil
}

// Lines renders every record as "path;type;example".
func (r *Report) Lines() []string {
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = FormatLine(rec)
	}
	return out
}

// String joins the rendered lines, each newline-terminated.
func (r *Report) String() string {
	var b strings.Builder
	for _, l := range r.Lines() {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatLine renders one record. The example is written verbatim and may itself
// contain the delimiter.
func FormatLine(rec FieldRecord) string {
	return rec.Path + Delimiter + rec.Type.String() + Delimiter + rec.ExampleText()
}

// ParseLine splits a report line from the left into at most three segments, so an
// example containing the delimiter is preserved intact.
func ParseLine(line string) (path, label, example string, err error) {
	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), Delimiter, 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("parse report line %q: expected 3 segments, got %d", line, len(parts))
	}
	return parts[0], parts[1], parts[2], nil
}
