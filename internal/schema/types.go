package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is the example placeholder used when a field has no non-null value.
const NotAvailable = "N/A"

// SemanticType is the inferred logical category of a field.
type SemanticType int

const (
	TypeUnknown SemanticType = iota
	TypeBoolean
	TypeNumeric
	TypeInteger
	TypeFloat
	TypeDateTime
	TypeString
	TypeArray
	TypeObject
	// TypeDualCompanion marks the textual half of a dual column. It renders as String.
	TypeDualCompanion
)

var typeLabels = [...]string{
	TypeUnknown:       "Unknown",
	TypeBoolean:       "Boolean",
	TypeNumeric:       "Numeric",
	TypeInteger:       "Integer",
	TypeFloat:         "Float",
	TypeDateTime:      "Date/Time",
	TypeString:        "String",
	TypeArray:         "Array",
	TypeObject:        "Object",
	TypeDualCompanion: "String",
}

// String returns the report label of the type.
func (t SemanticType) String() string {
	if t < 0 || int(t) >= len(typeLabels) {
		return typeLabels[TypeUnknown]
	}
	return typeLabels[t]
}

// ParseType maps a report label back to a type. "String" always maps to TypeString.
func ParseType(label string) (SemanticType, bool) {
	for i, l := range typeLabels {
		if l == label {
			return SemanticType(i), true
		}
	}
	return TypeUnknown, false
}

// FieldRecord is one line of the schema report.
type FieldRecord struct {
	Path    string
	Type    SemanticType
	Example any
}

// ExampleText renders the example with FormatValue.
func (r FieldRecord) ExampleText() string { return FormatValue(r.Example) }

// Column is a named, ordered sequence of optional scalars. nil marks a null.
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered sequence of uniquely named columns; column order is report order.
type Table struct {
	Columns []Column
}

// ColumnNames lists the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// FormatValue is the default textual rendering of a scalar used in report lines.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NotAvailable
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat renders the shortest round-trip form, with an exponent from 1e16 up
// and below 1e-4. Integral values keep a trailing ".0".
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// isNull reports whether v counts as a missing value.
func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}
