package expect

import (
	"context"
	"fmt"
)

// TestingT is the part of a test context that expectations need. *testing.T satisfies it,
// and so does *ldtest.T.
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

// The optional interfaces below let a test context receive more than a formatted message.
type (
	errorReporter interface {
		ReportError(err error)
	}
	assertionCounter interface {
		CountAssertion()
	}
	contextProvider interface {
		Context() context.Context
	}
	helper interface {
		Helper()
	}
)

// Awaitable is a deferred computation that settles with a value or an error. Resolves and
// Rejects wait for it. ldtest.Future implements it.
type Awaitable interface {
	Await(ctx context.Context) (interface{}, error)
}

type settleMode int

const (
	settleNone settleMode = iota
	settleResolves
	settleRejects
)

// Expectation applies matchers to one actual value. A failed matcher is reported to the
// test, which then stops, unless the expectation was created with Soft.
type Expectation struct {
	t       TestingT
	actual  interface{}
	negated bool
	settle  settleMode
	soft    bool
}

// That starts an expectation about a value.
func That(t TestingT, actual interface{}) *Expectation {
	return &Expectation{t: t, actual: actual}
}

// Soft starts an expectation whose failures are recorded without stopping the test.
func Soft(t TestingT, actual interface{}) *Expectation {
	return &Expectation{t: t, actual: actual, soft: true}
}

// Not inverts the matcher that follows.
func (e *Expectation) Not() *Expectation {
	ret := *e
	ret.negated = !e.negated
	return &ret
}

// Resolves waits for the actual value, which must be an Awaitable or a
// func() (interface{}, error), and applies the matcher that follows to the value it
// resolves with. The match fails if the computation produces an error instead.
func (e *Expectation) Resolves() *Expectation {
	ret := *e
	ret.settle = settleResolves
	return &ret
}

// Rejects is the opposite of Resolves: the matcher that follows is applied to the error.
func (e *Expectation) Rejects() *Expectation {
	ret := *e
	ret.settle = settleRejects
	return &ret
}

func (e *Expectation) ToBe(expected interface{}) bool { return e.run("toBe", expected) }

func (e *Expectation) ToEqual(expected interface{}) bool { return e.run("toEqual", expected) }

func (e *Expectation) ToStrictEqual(expected interface{}) bool {
	return e.run("toStrictEqual", expected)
}

// ToBeCloseTo checks that two numbers are equal to the given number of decimal digits,
// which defaults to 2.
func (e *Expectation) ToBeCloseTo(expected interface{}, digits ...int) bool {
	args := []interface{}{expected}
	for _, d := range digits {
		args = append(args, d)
	}
	return e.run("toBeCloseTo", args...)
}

func (e *Expectation) ToBeDefined() bool   { return e.run("toBeDefined") }
func (e *Expectation) ToBeUndefined() bool { return e.run("toBeUndefined") }
func (e *Expectation) ToBeNull() bool      { return e.run("toBeNull") }
func (e *Expectation) ToBeNaN() bool       { return e.run("toBeNaN") }
func (e *Expectation) ToBeTruthy() bool    { return e.run("toBeTruthy") }
func (e *Expectation) ToBeFalsy() bool     { return e.run("toBeFalsy") }

// ToBeTypeOf checks the JavaScript typeof name of the value: "number" for any Go number,
// "function" for funcs, "bigint" for *big.Int, "object" for everything else that is not
// a string, a bool or Undefined.
func (e *Expectation) ToBeTypeOf(typeName string) bool { return e.run("toBeTypeOf", typeName) }

// ToBeInstanceOf checks the value's type. The argument can be a reflect.Type (an interface
// type matches any implementation), a value of the desired type, or one of Object and
// Function.
func (e *Expectation) ToBeInstanceOf(expected interface{}) bool {
	return e.run("toBeInstanceOf", expected)
}

func (e *Expectation) ToBeGreaterThan(n interface{}) bool {
	return e.run("toBeGreaterThan", n)
}

func (e *Expectation) ToBeGreaterThanOrEqual(n interface{}) bool {
	return e.run("toBeGreaterThanOrEqual", n)
}

func (e *Expectation) ToBeLessThan(n interface{}) bool {
	return e.run("toBeLessThan", n)
}

func (e *Expectation) ToBeLessThanOrEqual(n interface{}) bool {
	return e.run("toBeLessThanOrEqual", n)
}

// ToContain checks for a substring, or for an element that is the same (as in ToBe) as item.
func (e *Expectation) ToContain(item interface{}) bool { return e.run("toContain", item) }

func (e *Expectation) ToContainEqual(item interface{}) bool {
	return e.run("toContainEqual", item)
}

func (e *Expectation) ToHaveLength(n int) bool { return e.run("toHaveLength", n) }

// ToHaveProperty checks that a property path such as "a.b[0]" exists and, if a value is
// given, that it is equal to the value.
func (e *Expectation) ToHaveProperty(path interface{}, value ...interface{}) bool {
	return e.run("toHaveProperty", append([]interface{}{path}, value...)...)
}

// ToMatch checks a string against a substring or a *regexp.Regexp.
func (e *Expectation) ToMatch(pattern interface{}) bool { return e.run("toMatch", pattern) }

// ToThrow calls the value, which must be a function, and checks that it panicked or
// returned an error. The optional argument narrows this down by message substring,
// *regexp.Regexp, error (errors.Is) or reflect.Type.
func (e *Expectation) ToThrow(expected ...interface{}) bool { return e.run("toThrow", expected...) }

func (e *Expectation) ToHaveBeenCalled() bool { return e.run("toHaveBeenCalled") }

func (e *Expectation) ToHaveBeenCalledTimes(n int) bool {
	return e.run("toHaveBeenCalledTimes", n)
}

func (e *Expectation) ToHaveBeenCalledWith(args ...interface{}) bool {
	return e.run("toHaveBeenCalledWith", args...)
}

func (e *Expectation) ToHaveBeenLastCalledWith(args ...interface{}) bool {
	return e.run("toHaveBeenLastCalledWith", args...)
}

func (e *Expectation) ToHaveReturned() bool { return e.run("toHaveReturned") }

func (e *Expectation) ToHaveReturnedWith(value interface{}) bool {
	return e.run("toHaveReturnedWith", value)
}

func (e *Expectation) run(matcher string, args ...interface{}) bool {
	if h, ok := e.t.(helper); ok {
		h.Helper()
	}
	if c, ok := e.t.(assertionCounter); ok {
		c.CountAssertion()
	}
	actual := e.actual
	if e.settle != settleNone {
		value, failure := e.await(matcher)
		if failure != nil {
			e.fail(*failure)
			return false
		}
		actual = value
	}
	r := evaluate(actual, matcher, e.negated, args)
	if !r.Pass {
		e.fail(r)
	}
	return r.Pass
}

func (e *Expectation) await(matcher string) (interface{}, *MatchResult) {
	ctx := context.Background()
	if p, ok := e.t.(contextProvider); ok {
		ctx = p.Context()
	}
	var (
		value interface{}
		err   error
	)
	switch a := e.actual.(type) {
	case Awaitable:
		value, err = a.Await(ctx)
	case func() (interface{}, error):
		value, err = a()
	default:
		return nil, &MatchResult{
			Matcher: matcher,
			Negated: e.negated,
			Actual:  e.actual,
			Message: fmt.Sprintf("%s: %s is not an Awaitable", matcher, describe(e.actual)),
		}
	}
	switch {
	case e.settle == settleResolves && err != nil:
		return nil, &MatchResult{
			Matcher: matcher,
			Negated: e.negated,
			Actual:  err,
			Message: fmt.Sprintf("promise rejected %q instead of resolving", err.Error()),
		}
	case e.settle == settleRejects && err == nil:
		return nil, &MatchResult{
			Matcher: matcher,
			Negated: e.negated,
			Actual:  value,
			Message: fmt.Sprintf("promise resolved %s instead of rejecting", describe(value)),
		}
	case e.settle == settleRejects:
		return err, nil
	}
	return value, nil
}

func (e *Expectation) fail(r MatchResult) {
	if reporter, ok := e.t.(errorReporter); ok {
		reporter.ReportError(r.Failure())
	} else {
		e.t.Errorf("%s", r.Message)
	}
	if !e.soft {
		e.t.FailNow()
	}
}
