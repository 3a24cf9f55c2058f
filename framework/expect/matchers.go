package expect

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/launchdarkly/spec-runner/framework/mock"
)

const defaultCloseToDigits = 2

// check is what a matcher function computes, before negation is applied.
type check struct {
	pass     bool
	phrase   string // completes "expected <subject> to ..."
	subject  string // defaults to a description of the actual value
	expected interface{}
	diff     bool

	// usage is set when the matcher cannot be applied to the arguments at all. Such a
	// match fails whether or not it was negated.
	usage string
}

type matcherDef struct {
	minArgs, maxArgs int // maxArgs < 0 means no limit
	fn               func(actual interface{}, args []interface{}) check
}

var matchers map[string]matcherDef

func init() {
	matchers = map[string]matcherDef{
		"toBe":                     {1, 1, matchToBe},
		"toEqual":                  {1, 1, matchToEqual},
		"toStrictEqual":            {1, 1, matchToStrictEqual},
		"toBeCloseTo":              {1, 2, matchToBeCloseTo},
		"toBeDefined":              {0, 0, matchToBeDefined},
		"toBeUndefined":            {0, 0, matchToBeUndefined},
		"toBeNull":                 {0, 0, matchToBeNull},
		"toBeNaN":                  {0, 0, matchToBeNaN},
		"toBeTruthy":               {0, 0, matchToBeTruthy},
		"toBeFalsy":                {0, 0, matchToBeFalsy},
		"toBeTypeOf":               {1, 1, matchToBeTypeOf},
		"toBeInstanceOf":           {1, 1, matchToBeInstanceOf},
		"toBeGreaterThan":          {1, 1, compareWith("be greater than", func(a, b float64) bool { return a > b })},
		"toBeGreaterThanOrEqual":   {1, 1, compareWith("be greater than or equal to", func(a, b float64) bool { return a >= b })},
		"toBeLessThan":             {1, 1, compareWith("be less than", func(a, b float64) bool { return a < b })},
		"toBeLessThanOrEqual":      {1, 1, compareWith("be less than or equal to", func(a, b float64) bool { return a <= b })},
		"toContain":                {1, 1, matchToContain},
		"toContainEqual":           {1, 1, matchToContainEqual},
		"toHaveLength":             {1, 1, matchToHaveLength},
		"toHaveProperty":           {1, 2, matchToHaveProperty},
		"toMatch":                  {1, 1, matchToMatch},
		"toThrow":                  {0, 1, matchToThrow},
		"toHaveBeenCalled":         {0, 0, spyMatcher(matchCalled)},
		"toHaveBeenCalledTimes":    {1, 1, spyMatcher(matchCalledTimes)},
		"toHaveBeenCalledWith":     {0, -1, spyMatcher(matchCalledWith)},
		"toHaveBeenLastCalledWith": {0, -1, spyMatcher(matchLastCalledWith)},
		"toHaveReturned":           {0, 0, spyMatcher(matchReturned)},
		"toHaveReturnedWith":       {1, 1, spyMatcher(matchReturnedWith)},
	}
}

// Match evaluates a matcher by name, such as "toEqual", against a value.
func Match(actual interface{}, matcher string, args ...interface{}) MatchResult {
	return evaluate(actual, matcher, false, args)
}

// MatchNot is Match with the outcome inverted.
func MatchNot(actual interface{}, matcher string, args ...interface{}) MatchResult {
	return evaluate(actual, matcher, true, args)
}

// Matchers returns the names of all known matchers.
func Matchers() []string {
	ret := make([]string, 0, len(matchers))
	for name := range matchers {
		ret = append(ret, name)
	}
	return ret
}

func evaluate(actual interface{}, name string, negated bool, args []interface{}) MatchResult {
	r := MatchResult{Matcher: name, Negated: negated, Actual: actual}
	def, ok := matchers[name]
	if !ok {
		r.Message = fmt.Sprintf("unknown matcher %q", name)
		return r
	}
	if len(args) < def.minArgs || (def.maxArgs >= 0 && len(args) > def.maxArgs) {
		r.Message = fmt.Sprintf("%s: wrong number of arguments (%d)", name, len(args))
		return r
	}
	c := def.fn(actual, args)
	r.Expected = c.expected
	if c.usage != "" {
		r.Message = fmt.Sprintf("%s: %s", name, c.usage)
		return r
	}
	r.Pass = c.pass != negated
	subject := c.subject
	if subject == "" {
		subject = describe(actual)
	}
	to := "to"
	if negated {
		to = "not to"
	}
	r.Message = fmt.Sprintf("expected %s %s %s", subject, to, c.phrase)
	if c.diff && !negated && !r.Pass {
		r.Message = withDiff(r.Message, c.expected, actual)
	}
	return r
}

func matchToBe(actual interface{}, args []interface{}) check {
	e := args[0]
	c := check{pass: Is(actual, e), phrase: "be " + describe(e), expected: e}
	if !c.pass && Equal(actual, e) {
		c.phrase += " (the values are equal but not the same reference; use ToEqual)"
	}
	return c
}

func matchToEqual(actual interface{}, args []interface{}) check {
	e := args[0]
	return check{pass: Equal(actual, e), phrase: "deeply equal " + describe(e), expected: e, diff: true}
}

func matchToStrictEqual(actual interface{}, args []interface{}) check {
	e := args[0]
	return check{pass: StrictEqual(actual, e), phrase: "strictly equal " + describe(e), expected: e, diff: true}
}

func matchToBeCloseTo(actual interface{}, args []interface{}) check {
	e := args[0]
	digits := defaultCloseToDigits
	if len(args) > 1 {
		d, ok := args[1].(int)
		if !ok {
			return check{usage: fmt.Sprintf("number of digits must be an int, got %T", args[1])}
		}
		digits = d
	}
	a, okA := toNumber(actual)
	b, okB := toNumber(e)
	if !okA || !okB {
		return check{usage: fmt.Sprintf("expected numbers, got %T and %T", actual, e)}
	}
	var pass bool
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		pass = a == b
	} else {
		pass = math.Abs(a-b) < math.Pow10(-digits)/2
	}
	return check{
		pass:     pass,
		phrase:   fmt.Sprintf("be close to %v (%d digits, difference %v)", e, digits, math.Abs(a-b)),
		expected: e,
	}
}

func matchToBeDefined(actual interface{}, _ []interface{}) check {
	return check{pass: !isUndefined(actual), phrase: "be defined"}
}

func matchToBeUndefined(actual interface{}, _ []interface{}) check {
	return check{pass: isUndefined(actual), phrase: "be undefined", expected: Undefined}
}

func matchToBeNull(actual interface{}, _ []interface{}) check {
	return check{pass: !isUndefined(actual) && isNull(actual), phrase: "be null"}
}

func matchToBeNaN(actual interface{}, _ []interface{}) check {
	n, ok := toNumber(actual)
	return check{pass: ok && math.IsNaN(n), phrase: "be NaN"}
}

func matchToBeTruthy(actual interface{}, _ []interface{}) check {
	return check{pass: truthy(actual), phrase: "be truthy"}
}

func matchToBeFalsy(actual interface{}, _ []interface{}) check {
	return check{pass: !truthy(actual), phrase: "be falsy"}
}

var typeNames = map[string]bool{
	"number": true, "string": true, "boolean": true, "function": true,
	"object": true, "undefined": true, "bigint": true, "symbol": true,
}

func matchToBeTypeOf(actual interface{}, args []interface{}) check {
	name, ok := args[0].(string)
	if !ok || !typeNames[name] {
		return check{usage: fmt.Sprintf("%s is not a valid type name", describe(args[0]))}
	}
	return check{pass: typeOf(actual) == name, phrase: "be type of " + name, expected: name}
}

func matchToBeInstanceOf(actual interface{}, args []interface{}) check {
	e := args[0]
	c := check{expected: e}
	switch {
	case e == Object:
		c.phrase = "be an instance of Object"
		if !isNull(actual) && !isUndefined(actual) {
			switch reflect.ValueOf(actual).Kind() {
			case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr, reflect.Func, reflect.Chan:
				c.pass = true
			}
		}
		return c
	case e == Function:
		c.phrase = "be an instance of Function"
		c.pass = !isNull(actual) && typeOf(actual) == "function"
		return c
	case isNull(e) || isUndefined(e):
		return check{usage: "expected a type or a value of the type to check for"}
	}
	t, ok := e.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(e)
	}
	c.phrase = "be an instance of " + t.String()
	if isNull(actual) || isUndefined(actual) {
		return c
	}
	at := reflect.TypeOf(actual)
	switch {
	case t.Kind() == reflect.Interface:
		c.pass = at.Implements(t)
	case at == t:
		c.pass = true
	case at.Kind() == reflect.Ptr && at.Elem() == t:
		c.pass = true
	case t.Kind() == reflect.Ptr && t.Elem() == at:
		c.pass = true
	}
	return c
}

func compareWith(phrase string, op func(a, b float64) bool) func(interface{}, []interface{}) check {
	return func(actual interface{}, args []interface{}) check {
		a, okA := toNumber(actual)
		b, okB := toNumber(args[0])
		if !okA || !okB {
			return check{usage: fmt.Sprintf("expected numbers, got %T and %T", actual, args[0])}
		}
		return check{pass: op(a, b), phrase: phrase + " " + describe(args[0]), expected: args[0]}
	}
}

func matchToContain(actual interface{}, args []interface{}) check {
	item := args[0]
	c := check{phrase: "contain " + describe(item), expected: item}
	if s, ok := actual.(string); ok {
		sub, ok := item.(string)
		if !ok {
			return check{usage: fmt.Sprintf("cannot look for %T in a string", item)}
		}
		c.pass = strings.Contains(s, sub)
		return c
	}
	elems, ok := elements(actual)
	if !ok {
		return check{usage: fmt.Sprintf("expected a string or a slice, got %T", actual)}
	}
	for _, e := range elems {
		if Is(e, item) {
			c.pass = true
			break
		}
	}
	return c
}

func matchToContainEqual(actual interface{}, args []interface{}) check {
	item := args[0]
	elems, ok := elements(actual)
	if !ok {
		return check{usage: fmt.Sprintf("expected a slice, got %T", actual)}
	}
	c := check{phrase: "contain an element equal to " + describe(item), expected: item}
	for _, e := range elems {
		if Equal(e, item) {
			c.pass = true
			break
		}
	}
	return c
}

func elements(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	ret := make([]interface{}, rv.Len())
	for i := range ret {
		ret[i] = rv.Index(i).Interface()
	}
	return ret, true
}

func matchToHaveLength(actual interface{}, args []interface{}) check {
	n, ok := args[0].(int)
	if !ok {
		return check{usage: fmt.Sprintf("expected length must be an int, got %T", args[0])}
	}
	length, ok := lengthOf(actual)
	if !ok {
		return check{usage: fmt.Sprintf("%s does not have a length", describe(actual))}
	}
	return check{
		pass:     length == n,
		phrase:   fmt.Sprintf("have length %d, but its length is %d", n, length),
		expected: n,
	}
}

func matchToHaveProperty(actual interface{}, args []interface{}) check {
	path, ok := propertyPath(args[0])
	if !ok {
		return check{usage: fmt.Sprintf("invalid property path %s", describe(args[0]))}
	}
	value, found := property(actual, path)
	c := check{phrase: "have property " + strings.Join(path, "."), pass: found}
	if len(args) > 1 {
		c.expected = args[1]
		c.phrase += " with value " + describe(args[1])
		c.pass = found && Equal(value, args[1])
		if found {
			c.phrase += ", but it was " + describe(value)
		}
	}
	return c
}

func matchToMatch(actual interface{}, args []interface{}) check {
	s, ok := actual.(string)
	if !ok {
		return check{usage: fmt.Sprintf("expected a string, got %T", actual)}
	}
	switch p := args[0].(type) {
	case string:
		return check{pass: strings.Contains(s, p), phrase: "match " + describe(p), expected: p}
	case *regexp.Regexp:
		return check{pass: p.MatchString(s), phrase: "match /" + p.String() + "/", expected: p}
	}
	return check{usage: fmt.Sprintf("expected a string or *regexp.Regexp, got %T", args[0])}
}

// thrown runs a function and returns whatever it panicked with or returned as an error. An
// error value is treated as already thrown, which is what Rejects passes on.
func thrown(actual interface{}) (value interface{}, didThrow bool, ok bool) {
	switch f := actual.(type) {
	case error:
		return f, true, true
	case func():
		v, did := catch(func() { f() })
		return v, did, true
	case func() error:
		var err error
		v, did := catch(func() { err = f() })
		if did {
			return v, true, true
		}
		return err, err != nil, true
	case func() (interface{}, error):
		var err error
		v, did := catch(func() { _, err = f() })
		if did {
			return v, true, true
		}
		return err, err != nil, true
	}
	return nil, false, false
}

func catch(f func()) (value interface{}, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			value, panicked = r, true
		}
	}()
	f()
	return nil, false
}

func thrownMessage(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(v)
}

func matchToThrow(actual interface{}, args []interface{}) check {
	value, didThrow, ok := thrown(actual)
	if !ok {
		return check{usage: fmt.Sprintf("expected a function or an error, got %T", actual)}
	}
	c := check{subject: "function", phrase: "throw an error", pass: didThrow}
	if didThrow {
		c.phrase += fmt.Sprintf(" (it threw %q)", thrownMessage(value))
	}
	if len(args) == 0 {
		return c
	}
	c.expected = args[0]
	message := thrownMessage(value)
	switch e := args[0].(type) {
	case string:
		c.phrase = "throw an error containing " + describe(e)
		c.pass = didThrow && strings.Contains(message, e)
	case *regexp.Regexp:
		c.phrase = "throw an error matching /" + e.String() + "/"
		c.pass = didThrow && e.MatchString(message)
	case error:
		c.phrase = "throw " + describe(e)
		thrownErr, _ := value.(error)
		c.pass = didThrow && (errors.Is(thrownErr, e) || message == e.Error())
	case reflect.Type:
		c.phrase = "throw an error of type " + e.String()
		c.pass = didThrow && reflect.TypeOf(value) == e
	default:
		return check{usage: fmt.Sprintf("cannot compare a thrown error with %T", args[0])}
	}
	if didThrow {
		c.phrase += fmt.Sprintf(", but it threw %q", message)
	}
	return c
}

func spyMatcher(fn func(s *mock.Spy, args []interface{}) check) func(interface{}, []interface{}) check {
	return func(actual interface{}, args []interface{}) check {
		s, ok := actual.(*mock.Spy)
		if !ok || s == nil {
			return check{usage: fmt.Sprintf("%s is not a spy", describe(actual))}
		}
		c := fn(s, args)
		c.subject = fmt.Sprintf("%q", s.Name())
		return c
	}
}

func matchCalled(s *mock.Spy, _ []interface{}) check {
	return check{pass: s.CallCount() > 0, phrase: "be called at least once"}
}

func matchCalledTimes(s *mock.Spy, args []interface{}) check {
	n, ok := args[0].(int)
	if !ok {
		return check{usage: fmt.Sprintf("expected count must be an int, got %T", args[0])}
	}
	count := s.CallCount()
	return check{
		pass:     count == n,
		phrase:   fmt.Sprintf("be called %d times, but it was called %d times", n, count),
		expected: n,
	}
}

func argsEqual(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func matchCalledWith(s *mock.Spy, args []interface{}) check {
	c := check{phrase: "be called with arguments " + describe(args), expected: args}
	for _, call := range s.Calls() {
		if argsEqual(call.Args, args) {
			c.pass = true
			break
		}
	}
	return c
}

func matchLastCalledWith(s *mock.Spy, args []interface{}) check {
	c := check{phrase: "be last called with arguments " + describe(args), expected: args}
	if last, ok := s.LastCall(); ok {
		c.pass = argsEqual(last.Args, args)
		c.phrase += ", but it was called with " + describe(last.Args)
	}
	return c
}

func matchReturned(s *mock.Spy, _ []interface{}) check {
	c := check{phrase: "have returned successfully at least once"}
	for _, call := range s.Calls() {
		if call.Returned() {
			c.pass = true
			break
		}
	}
	return c
}

func matchReturnedWith(s *mock.Spy, args []interface{}) check {
	c := check{phrase: "have returned " + describe(args[0]), expected: args[0]}
	for _, call := range s.Calls() {
		if call.Returned() && Equal(call.Result, args[0]) {
			c.pass = true
			break
		}
	}
	return c
}
