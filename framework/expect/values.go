package expect

import (
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

type holeValue struct{}

func (holeValue) String() string { return "<hole>" }

type anyObject struct{}

func (anyObject) String() string { return "Object" }

type anyFunction struct{}

func (anyFunction) String() string { return "Function" }

var (
	// Undefined stands for a value that is absent. A map entry whose value is Undefined is
	// ignored by ToEqual and counts as present for ToStrictEqual.
	Undefined interface{} = undefinedValue{}

	// Hole stands for a missing element of a sparse array. ToEqual treats it the same as
	// Undefined; ToStrictEqual does not.
	Hole interface{} = holeValue{}

	// Object can be passed to ToBeInstanceOf to accept any non-nil map, slice, array, struct,
	// pointer or function.
	Object interface{} = anyObject{}

	// Function can be passed to ToBeInstanceOf to accept any non-nil function.
	Function interface{} = anyFunction{}
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// isNull is true for nil and for typed nil pointers, maps, slices, functions, channels and
// interfaces.
func isNull(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isUndefined(v interface{}) bool {
	return v == Undefined
}

// toNumber converts any Go integer or floating-point value to float64.
func toNumber(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// sameNumber has the semantics of Object.is for numbers: NaN is the same as NaN, and
// positive zero is not the same as negative zero.
func sameNumber(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if a == 0 && b == 0 {
		return math.Signbit(a) == math.Signbit(b)
	}
	return a == b
}

// typeOf returns the JavaScript typeof name that best describes a Go value.
func typeOf(v interface{}) string {
	switch {
	case isUndefined(v) || v == Hole:
		return "undefined"
	case v == nil:
		return "object"
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == bigIntType {
		return "bigint"
	}
	switch rv.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Func:
		return "function"
	}
	if _, ok := toNumber(v); ok {
		return "number"
	}
	return "object"
}

// truthy converts a value to a boolean the way JavaScript does: false, zero, NaN, the empty
// string, nil and Undefined are falsy, and everything else is truthy.
func truthy(v interface{}) bool {
	if isUndefined(v) || v == Hole || isNull(v) {
		return false
	}
	if n, ok := toNumber(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() != 0
	}
	return true
}

// entries returns the own enumerable properties of a map with string keys, or of a struct
// (its exported fields, named by their JSON tags if present). The third result is false
// for anything else.
func entries(rv reflect.Value) ([]string, map[string]interface{}, bool) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil, false
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		return keys, values, true
	case reflect.Struct:
		t := rv.Type()
		var keys []string
		values := make(map[string]interface{})
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name := fieldName(f)
			if name == "" {
				continue
			}
			keys = append(keys, name)
			values[name] = rv.Field(i).Interface()
		}
		if len(keys) == 0 && t.NumField() > 0 {
			return nil, nil, false // opaque struct, such as big.Float
		}
		return keys, values, true
	}
	return nil, nil, false
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name := strings.Split(tag, ",")[0]; name != "" {
		return name
	}
	return f.Name
}

// lengthOf returns the length of a string (in characters), slice, array or map.
func lengthOf(v interface{}) (int, bool) {
	if v == nil || isUndefined(v) {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), true
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), true
	}
	return 0, false
}

// propertyPath splits "a.b[0].c" into ["a", "b", "0", "c"]. A []string or []interface{}
// is used as the path as-is.
func propertyPath(path interface{}) ([]string, bool) {
	switch p := path.(type) {
	case string:
		p = strings.ReplaceAll(p, "[", ".")
		p = strings.ReplaceAll(p, "]", "")
		return strings.Split(p, "."), true
	case []string:
		return p, true
	case []interface{}:
		ret := make([]string, 0, len(p))
		for _, e := range p {
			switch k := e.(type) {
			case string:
				ret = append(ret, k)
			case int:
				ret = append(ret, strconv.Itoa(k))
			default:
				return nil, false
			}
		}
		return ret, true
	}
	return nil, false
}

// property looks up a property path. Pointers and interfaces are followed transparently.
func property(v interface{}, path []string) (interface{}, bool) {
	current := v
	for _, key := range path {
		if current == nil || isUndefined(current) {
			return nil, false
		}
		rv := reflect.ValueOf(current)
		for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil, false
			}
			rv = rv.Elem()
		}
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.String:
			if key == "length" {
				n, _ := lengthOf(rv.Interface())
				current = n
				continue
			}
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= rv.Len() {
				return nil, false
			}
			if rv.Kind() == reflect.String {
				current = string(rv.String()[i])
			} else {
				current = rv.Index(i).Interface()
			}
		default:
			_, values, ok := entries(rv)
			if !ok {
				return nil, false
			}
			value, found := values[key]
			if !found {
				return nil, false
			}
			current = value
		}
	}
	return current, true
}
