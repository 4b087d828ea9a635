package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind identifies the variant held by a Value.
type ValueKind string

const (
	ValueKindNull   ValueKind = "null"
	ValueKindString ValueKind = "string"
	ValueKindNumber ValueKind = "number"
	ValueKindBool   ValueKind = "bool"
	ValueKindArray  ValueKind = "array"
	ValueKindObject ValueKind = "object"
)

// Value is a tagged union over the shapes a knowledge fact can take.
// Exactly one variant is meaningful for a given Kind; the zero Value is null.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Arr  []Value
	Obj  map[string]Value
}

// NullValue returns the null variant.
func NullValue() Value {
	return Value{Kind: ValueKindNull}
}

// StringValue returns a string variant.
func StringValue(s string) Value {
	return Value{Kind: ValueKindString, Str: s}
}

// NumberValue returns a number variant.
func NumberValue(n float64) Value {
	return Value{Kind: ValueKindNumber, Num: n}
}

// BoolValue returns a bool variant.
func BoolValue(b bool) Value {
	return Value{Kind: ValueKindBool, Bool: b}
}

// ArrayValue returns an array variant.
func ArrayValue(elems ...Value) Value {
	return Value{Kind: ValueKindArray, Arr: elems}
}

// ObjectValue returns an object variant.
func ObjectValue(fields map[string]Value) Value {
	return Value{Kind: ValueKindObject, Obj: fields}
}

// IsNull reports whether the value is the null variant. The zero Value
// (empty Kind) also counts as null so uninitialized facts compare sanely.
func (v Value) IsNull() bool {
	return v.Kind == ValueKindNull || v.Kind == ""
}

// Equal reports structural equality between two values. Objects compare
// independently of key order; arrays are order sensitive.
func (v Value) Equal(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueKindString:
		return v.Str == other.Str
	case ValueKindNumber:
		return v.Num == other.Num
	case ValueKindBool:
		return v.Bool == other.Bool
	case ValueKindArray:
		if len(v.Arr) != len(other.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(other.Arr[i]) {
				return false
			}
		}
		return true
	case ValueKindObject:
		if len(v.Obj) != len(other.Obj) {
			return false
		}
		for key, val := range v.Obj {
			otherVal, ok := other.Obj[key]
			if !ok || !val.Equal(otherVal) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value for conflict descriptions and logs.
func (v Value) String() string {
	switch v.Kind {
	case ValueKindNull, "":
		return "null"
	case ValueKindString:
		return v.Str
	case ValueKindNumber:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1e15 {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueKindBool:
		return strconv.FormatBool(v.Bool)
	case ValueKindArray:
		parts := make([]string, len(v.Arr))
		for i, elem := range v.Arr {
			parts[i] = elem.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ValueKindObject:
		keys := make([]string, 0, len(v.Obj))
		for key := range v.Obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = key + ": " + v.Obj[key].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

// MarshalJSON encodes the value as plain JSON (no kind wrapper) so stored
// facts stay readable in the database and in API responses.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueKindNull, "":
		return []byte("null"), nil
	case ValueKindString:
		return json.Marshal(v.Str)
	case ValueKindNumber:
		return json.Marshal(v.Num)
	case ValueKindBool:
		return json.Marshal(v.Bool)
	case ValueKindArray:
		if v.Arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Arr)
	case ValueKindObject:
		if v.Obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Obj)
	}
	return nil, fmt.Errorf("unknown value kind: %s", v.Kind)
}

// UnmarshalJSON decodes plain JSON into the matching variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("empty value payload")
	}
	if trimmed == "null" {
		*v = NullValue()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '[':
		var elems []Value
		if err := json.Unmarshal(data, &elems); err != nil {
			return err
		}
		*v = Value{Kind: ValueKindArray, Arr: elems}
	case '{':
		var fields map[string]Value
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*v = Value{Kind: ValueKindObject, Obj: fields}
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
	}
	return nil
}
