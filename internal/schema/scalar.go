package schema

import (
	"encoding/json"
	"reflect"
)

// InferScalar classifies one already-decoded value by its own representation.
// Precedence: Boolean, Integer/Float (Numeric when coarse), String, Array, Object, Unknown.
// No parsing is attempted: the string "1" is a String.
//
// Array and Object only result from a leaf holding an unexpanded container, which the
// flattener never produces; they are kept so such a value has a defined type.
func InferScalar(v any, g Granularity) SemanticType {
	switch x := v.(type) {
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return numericType(g, true)
	case float32, float64:
		return numericType(g, false)
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return numericType(g, true)
		}
		if _, err := x.Float64(); err == nil {
			return numericType(g, false)
		}
		return TypeUnknown
	case string, []byte:
		return TypeString
	case nil:
		return TypeUnknown
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map:
		return TypeObject
	}
	return TypeUnknown
}

func numericType(g Granularity, integral bool) SemanticType {
	if g == Coarse {
		return TypeNumeric
	}
	if integral {
		return TypeInteger
	}
	return TypeFloat
}
