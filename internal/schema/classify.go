package schema

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DualSuffix is appended to a dual column's name to form its textual companion path.
const DualSuffix = "_DualText"

type valueKind int

const (
	kindNull valueKind = iota
	kindText
	kindBool
	kindNumber
	kindTime
	kindInvalid
)

func kindOf(v any) valueKind {
	if isNull(v) {
		return kindNull
	}
	switch v.(type) {
	case string, []byte:
		return kindText
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return kindNumber
	case time.Time:
		return kindTime
	}
	return kindInvalid
}

// columnKind returns the shared kind of a typed column, or kindText when the column
// still holds raw text, mixes kinds, or has no non-null value.
func columnKind(col Column) (valueKind, error) {
	shared := kindNull
	mixed := false
	for i, v := range col.Values {
		k := kindOf(v)
		switch {
		case k == kindInvalid:
			return kindInvalid, malformed("column %q row %d: unsupported value type %T", col.Name, i, v)
		case k == kindNull:
			continue
		case shared == kindNull:
			shared = k
		case k != shared:
			mixed = true
		}
	}
	if mixed || shared == kindNull {
		return kindText, nil
	}
	return shared, nil
}

// ClassifyColumn returns the records of one column: one record, or two for a dual
// column (numeric record first, then the <name>_DualText companion).
func ClassifyColumn(col Column, opt Options) ([]FieldRecord, error) {
	kind, err := columnKind(col)
	if err != nil {
		return nil, err
	}
	pick := opt.sampler()
	switch kind {
	case kindBool:
		return single(col.Name, TypeBoolean, Example(col.Values, pick)), nil
	case kindNumber:
		return single(col.Name, numericType(opt.Granularity, allIntegral(col.Values)), Example(col.Values, pick)), nil
	case kindTime:
		return single(col.Name, TypeDateTime, Example(col.Values, pick)), nil
	}
	return classifyText(col, opt, pick), nil
}

func single(path string, t SemanticType, example any) []FieldRecord {
	return []FieldRecord{{Path: path, Type: t, Example: example}}
}

// classifyText applies the ordered heuristics to a column of raw values:
// Boolean, Numeric (with Dual), Date/Time, then String.
func classifyText(col Column, opt Options, pick Sampler) []FieldRecord {
	idx := nonNullIndexes(col.Values)
	texts := make([]string, len(col.Values))
	for _, i := range idx {
		texts[i] = FormatValue(col.Values[i])
	}

	if vals, ok := parseBooleans(texts, idx, col.Values, opt.booleanTokens()); ok {
		return single(col.Name, TypeBoolean, Example(vals, pick))
	}

	if nums, integral, ok := parseNumbers(texts, idx, col.Values); ok {
		t := numericType(opt.Granularity, integral)
		if len(idx) == 0 {
			return single(col.Name, t, NotAvailable)
		}
		j := idx[pickIndex(pick, len(idx))]
		out := single(col.Name, t, nums[j])
		if opt.DualDetection {
			if _, isDate := parseDates(texts, idx, col.Values, opt.DateLayouts); isDate {
				out = append(out, FieldRecord{Path: col.Name + DualSuffix, Type: TypeDualCompanion, Example: texts[j]})
			}
		}
		return out
	}

	if dates, ok := parseDates(texts, idx, col.Values, opt.DateLayouts); ok {
		return single(col.Name, TypeDateTime, Example(dates, pick))
	}

	return single(col.Name, TypeString, Example(col.Values, pick))
}

// parseBooleans succeeds iff every non-null value is a boolean token after trim and lowercase.
func parseBooleans(texts []string, idx []int, raw []any, tokens map[string]bool) ([]any, bool) {
	out := make([]any, len(raw))
	for _, i := range idx {
		b, ok := tokens[normalizeToken(texts[i])]
		if !ok {
			return nil, false
		}
		out[i] = b
	}
	return out, true
}

// parseNumbers succeeds iff every non-null value parses as a float. A column whose
// values all parse as integers yields int64 values and reports integral.
func parseNumbers(texts []string, idx []int, raw []any) ([]any, bool, bool) {
	floats := make([]any, len(raw))
	integral := true
	for _, i := range idx {
		s := strings.TrimSpace(texts[i])
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, false
		}
		floats[i] = f
		if integral {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				integral = false
			}
		}
	}
	if !integral {
		return floats, false, true
	}
	ints := make([]any, len(raw))
	for _, i := range idx {
		n, _ := strconv.ParseInt(strings.TrimSpace(texts[i]), 10, 64)
		ints[i] = n
	}
	return ints, true, true
}

// parseDates succeeds iff every non-null value, trimmed, parses with at least one layout.
func parseDates(texts []string, idx []int, raw []any, layouts []string) ([]any, bool) {
	out := make([]any, len(raw))
	for _, i := range idx {
		t, ok := parseDate(strings.TrimSpace(texts[i]), layouts)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func allIntegral(values []any) bool {
	for _, v := range values {
		switch x := v.(type) {
		case nil, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		case json.Number:
			if _, err := x.Int64(); err != nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ClassifyTable classifies every column in order. Column names must be unique and a
// dual companion path must not collide with another column.
func ClassifyTable(t Table, opt Options) ([]FieldRecord, error) {
	names := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := names[c.Name]; dup {
			return nil, malformed("duplicate column name %q", c.Name)
		}
		names[c.Name] = struct{}{}
	}
	out := make([]FieldRecord, 0, len(t.Columns))
	for _, c := range t.Columns {
		recs, err := ClassifyColumn(c, opt)
		if err != nil {
			return nil, err
		}
		for _, r := range recs[1:] {
			if _, clash := names[r.Path]; clash {
				return nil, malformed("dual companion %q collides with an existing column", r.Path)
			}
		}
		out = append(out, recs...)
	}
	return out, nil
}
