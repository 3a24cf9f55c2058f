// Package expect is the matcher engine: it compares an actual value against an expectation
// and reports failures to the test.
//
// Go has no undefined, no sparse arrays and no prototypes, so the engine maps those ideas
// onto Go values. nil is null; Undefined and Hole are sentinels; the own enumerable
// properties of a value are the entries of a map with string keys or the exported fields
// of a struct (named by their JSON tags). Numbers of different Go types are compared by
// value, except by ToStrictEqual, which also requires the same type.
//
// Match and MatchNot evaluate a matcher by name and return a MatchResult. That and Soft
// provide the fluent form used in test bodies:
//
//	expect.That(t, total).ToBe(3)
//	expect.That(t, got).Not().ToStrictEqual(want)
//	expect.That(t, future).Resolves().ToEqual(map[string]interface{}{"ok": true})
package expect
