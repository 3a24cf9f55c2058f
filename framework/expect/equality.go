package expect

import (
	"reflect"
	"time"
)

// Equal reports whether two values have the same structure, with the semantics of ToEqual:
// only own enumerable properties are compared, Undefined properties are ignored, holes are
// the same as Undefined, and numbers of different Go types compare by value. Structs and
// maps with the same properties are equal.
func Equal(a, b interface{}) bool {
	return newComparer(false).equal(a, b)
}

// StrictEqual is like Equal, but also requires the same Go type at every level, treats
// Undefined properties as present, and tells holes apart from Undefined.
func StrictEqual(a, b interface{}) bool {
	return newComparer(true).equal(a, b)
}

// Is reports whether two values are the same, in the sense of Object.is: numbers and
// strings compare by value (with NaN equal to itself and the two zeroes distinct), while
// maps, slices, pointers and functions must be the same reference.
func Is(a, b interface{}) bool {
	if isUndefined(a) || isUndefined(b) || a == Hole || b == Hole {
		return a == b
	}
	if isNull(a) || isNull(b) {
		return isNull(a) && isNull(b)
	}
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && sameNumber(na, nb)
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.String:
		return vb.Kind() == reflect.String && va.String() == vb.String()
	case reflect.Bool:
		return vb.Kind() == reflect.Bool && va.Bool() == vb.Bool()
	case reflect.Map, reflect.Ptr, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Type() == vb.Type() && va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Type().Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

type visit struct {
	a, b uintptr
	n    int
	typ  reflect.Type
}

type comparer struct {
	strict  bool
	visited map[visit]bool
}

func newComparer(strict bool) *comparer {
	return &comparer{strict: strict, visited: make(map[visit]bool)}
}

// seen records a pair of references, and is true if the pair was already being compared
// further up the stack. Assuming equality for such a pair is what makes cyclic structures
// terminate.
func (c *comparer) seen(a, b reflect.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if a.IsNil() || b.IsNil() {
			return false
		}
	default:
		return false
	}
	key := visit{a: a.Pointer(), b: b.Pointer(), typ: a.Type()}
	if a.Kind() == reflect.Slice {
		key.n = a.Len()<<16 ^ b.Len()
	}
	if c.visited[key] {
		return true
	}
	c.visited[key] = true
	return false
}

func (c *comparer) equal(a, b interface{}) bool {
	if !c.strict {
		if a == Hole {
			a = Undefined
		}
		if b == Hole {
			b = Undefined
		}
	}
	if isUndefined(a) || isUndefined(b) || a == Hole || b == Hole {
		return a == b
	}
	if isNull(a) || isNull(b) {
		if c.strict {
			return isNull(a) && isNull(b) && reflect.TypeOf(a) == reflect.TypeOf(b)
		}
		return isNull(a) && isNull(b)
	}
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		if !ok || (c.strict && reflect.TypeOf(a) != reflect.TypeOf(b)) {
			return false
		}
		return sameNumber(na, nb)
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if ea, ok := a.(error); ok {
		if eb, ok := b.(error); ok && !hasProperties(a) && !hasProperties(b) {
			if c.strict && reflect.TypeOf(a) != reflect.TypeOf(b) {
				return false
			}
			return ea.Error() == eb.Error()
		}
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if c.strict && va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Ptr || vb.Kind() == reflect.Ptr {
		if va.Kind() == vb.Kind() && va.Pointer() == vb.Pointer() && va.Type() == vb.Type() {
			return true
		}
		if c.seen(va, vb) {
			return true
		}
		if c.strict {
			return c.equal(va.Elem().Interface(), vb.Elem().Interface())
		}
		return c.equal(deref(va).Interface(), deref(vb).Interface())
	}
	if c.seen(va, vb) {
		return true
	}

	switch va.Kind() {
	case reflect.String:
		return vb.Kind() == reflect.String && va.String() == vb.String()
	case reflect.Bool:
		return vb.Kind() == reflect.Bool && va.Bool() == vb.Bool()
	case reflect.Func:
		return vb.Kind() == reflect.Func && va.Pointer() == vb.Pointer()
	case reflect.Slice, reflect.Array:
		if vb.Kind() != reflect.Slice && vb.Kind() != reflect.Array {
			return false
		}
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !c.equal(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	keysA, valuesA, okA := entries(va)
	keysB, valuesB, okB := entries(vb)
	if okA && okB {
		return c.equalObjects(keysA, valuesA, keysB, valuesB)
	}
	if okA != okB {
		return false
	}
	if va.Kind() == reflect.Map && vb.Kind() == reflect.Map {
		return c.equalMaps(va, vb)
	}
	if va.Type() != vb.Type() {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func (c *comparer) equalObjects(keysA []string, valuesA map[string]interface{},
	keysB []string, valuesB map[string]interface{}) bool {
	if c.strict {
		if len(keysA) != len(keysB) {
			return false
		}
		for _, k := range keysA {
			vb, ok := valuesB[k]
			if !ok || !c.equal(valuesA[k], vb) {
				return false
			}
		}
		return true
	}
	count := 0
	for _, k := range keysA {
		va := valuesA[k]
		if isUndefined(va) {
			continue
		}
		count++
		vb, ok := valuesB[k]
		if !ok || !c.equal(va, vb) {
			return false
		}
	}
	for _, k := range keysB {
		if !isUndefined(valuesB[k]) {
			count--
		}
	}
	return count == 0
}

// equalMaps compares maps whose keys are not strings. Keys must match exactly.
func (c *comparer) equalMaps(va, vb reflect.Value) bool {
	if va.Type().Key() != vb.Type().Key() || va.Len() != vb.Len() {
		return false
	}
	iter := va.MapRange()
	for iter.Next() {
		other := vb.MapIndex(iter.Key())
		if !other.IsValid() || !c.equal(iter.Value().Interface(), other.Interface()) {
			return false
		}
	}
	return true
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

// hasProperties is true for values whose own properties would be compared, such as
// errors defined as structs with exported fields.
func hasProperties(v interface{}) bool {
	keys, _, ok := entries(deref(reflect.ValueOf(v)))
	return ok && len(keys) > 0
}
