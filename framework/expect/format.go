package expect

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                10,
}

// describe formats a value for a one-line failure message. A container that is reached
// again while it is still being printed is shown as [Circular].
func describe(v interface{}) string {
	return describeValue(reflect.ValueOf(v), map[describeRef]bool{})
}

type describeRef struct {
	ptr uintptr
	typ reflect.Type
}

func describeScalar(v interface{}) (string, bool) {
	switch {
	case isUndefined(v):
		return "undefined", true
	case v == Hole:
		return "<hole>", true
	case v == nil:
		return "null", true
	}
	switch x := v.(type) {
	case string:
		return strconv.Quote(x), true
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	case error:
		return fmt.Sprintf("[%T: %s]", x, x.Error()), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

func describeValue(rv reflect.Value, seen map[describeRef]bool) string {
	if !rv.IsValid() {
		return "null"
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "null"
		}
		return describeValue(rv.Elem(), seen)
	}
	if rv.CanInterface() {
		if s, ok := describeScalar(rv.Interface()); ok {
			return s
		}
	}
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return "null"
		}
		return fmt.Sprintf("[Function %s]", rv.Type())
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
		return enter(rv, seen, func() string { return "&" + describeValue(rv.Elem(), seen) })
	case reflect.Map:
		return enter(rv, seen, func() string {
			parts := make([]string, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				parts = append(parts, describeValue(iter.Key(), seen)+":"+describeValue(iter.Value(), seen))
			}
			sort.Strings(parts)
			return "map[" + strings.Join(parts, " ") + "]"
		})
	case reflect.Slice:
		if rv.Len() == 0 {
			return "[]"
		}
		return enter(rv, seen, func() string { return describeElements(rv, seen) })
	case reflect.Array:
		return describeElements(rv, seen)
	case reflect.Struct:
		parts := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			parts = append(parts, rv.Type().Field(i).Name+":"+describeValue(rv.Field(i), seen))
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	return fmt.Sprintf("%v", rv)
}

func describeElements(rv reflect.Value, seen map[describeRef]bool) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = describeValue(rv.Index(i), seen)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// enter renders a reference value unless it is already on the current path.
func enter(rv reflect.Value, seen map[describeRef]bool, render func() string) string {
	key := describeRef{ptr: rv.Pointer(), typ: rv.Type()}
	if seen[key] {
		return "[Circular]"
	}
	seen[key] = true
	defer delete(seen, key)
	return render()
}

// diff returns a unified diff between the dumps of expected and actual, or an empty string
// if the values are not containers or the dumps are the same.
func diff(expected, actual interface{}) string {
	if !isContainer(expected) || !isContainer(actual) {
		return ""
	}
	e, a := spewConfig.Sdump(expected), spewConfig.Sdump(actual)
	if e == a {
		return ""
	}
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(e),
		B:        difflib.SplitLines(a),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	return text
}

func isContainer(v interface{}) bool {
	if v == nil {
		return false
	}
	k := deref(reflect.ValueOf(v)).Kind()
	return k == reflect.Map || k == reflect.Slice || k == reflect.Array || k == reflect.Struct
}

func withDiff(message string, expected, actual interface{}) string {
	if d := diff(expected, actual); d != "" {
		return message + "\n\n" + strings.TrimRight(d, "\n")
	}
	return message
}
