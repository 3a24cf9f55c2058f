package vitests

import (
	"math"
	"math/big"
	"strconv"

	"github.com/launchdarkly/spec-runner/framework/expect"
	"github.com/launchdarkly/spec-runner/framework/ldtest"
)

type emptyClass struct{}

type classWithField struct {
	A int `json:"a"`
}

// parseNumber converts a string to a number the way a lenient parser would, giving NaN for
// anything that is not a number.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// ExpectSpec exercises each of the matchers, including negated and expected-to-fail uses.
func ExpectSpec() *ldtest.Tree {
	return ldtest.MustCollect(modulePrefix+"expect.spec", func(c *ldtest.Collector) {
		c.Describe("toBe", func() {
			stock := map[string]interface{}{
				"type":  "apples",
				"count": 13,
			}

			c.Test("toBe can be used to assert if primitives are equal or that objects share the same reference", func(t *ldtest.T) {
				expect.That(t, 1).ToBe(1)
				expect.That(t, "abc").ToBe("abc")
				expect.That(t, false).ToBe(false)
				expect.That(t, math.NaN()).ToBe(math.NaN())
				expect.That(t, stock["type"]).ToBe("apples")
				expect.That(t, stock["count"]).ToBe(13)
				refStock := stock
				expect.That(t, stock).ToBe(refStock)
			})

			c.Test("not toBe situation", func(t *ldtest.T) {
				expect.That(t, true).ToBe(false)
				expect.That(t, "abc").ToBe("abcd")
				expect.That(t, []interface{}{}).ToBe([]interface{}{})
				expect.That(t, map[string]interface{}{}).ToBe(map[string]interface{}{})
				refStock := map[string]interface{}{
					"type":  "apples",
					"count": 13,
				}
				expect.That(t, stock).ToBe(refStock)
			}, ldtest.Fails)
		})

		c.Describe("toBeCloseTo", func() {
			a, b := 0.2, 0.1

			c.Test("decimals are not equal in floating point", func(t *ldtest.T) {
				expect.That(t, a+b).ToBe(0.3)
			}, ldtest.Fails)

			c.Test("Use toBeCloseTo to compare floating-point numbers. The optional numDigits argument limits the number of digits to check after the decimal point", func(t *ldtest.T) {
				expect.That(t, a+b).ToBeCloseTo(0.3, 5)
				expect.That(t, a+b).Not().ToBeCloseTo(0.3, 50)
			})
		})

		c.Describe("toBeDefined", func() {
			c.Test("toBeDefined asserts that the value is not equal to undefined", func(t *ldtest.T) {
				getApples := func() int { return 3 }
				expect.That(t, getApples()).ToBeDefined()
				expect.That(t, "").ToBeDefined()
				expect.That(t, false).ToBeDefined()
				expect.That(t, nil).ToBeDefined()
			})

			c.Test("not toBeDefined situation", func(t *ldtest.T) {
				voidFn := func() interface{} { return expect.Undefined }
				expect.That(t, voidFn()).ToBeDefined()
				expect.That(t, expect.Undefined).ToBeDefined()
			}, ldtest.Fails)
		})

		c.Describe("toBeUndefined", func() {
			c.Test("Opposite of toBeDefined, toBeUndefined asserts that the value is equal to undefined", func(t *ldtest.T) {
				voidFn := func() interface{} { return expect.Undefined }
				expect.That(t, voidFn()).ToBeUndefined()
				expect.That(t, expect.Undefined).ToBeUndefined()
			})
		})

		c.Describe("toBeTruthy", func() {
			c.Test("assert the value is true, when converted to Boolean", func(t *ldtest.T) {
				expect.That(t, true).ToBeTruthy()
				expect.That(t, "123").ToBeTruthy()
				expect.That(t, 123).ToBeTruthy()
				expect.That(t, map[string]interface{}{}).ToBeTruthy()
			})

			c.Test("false situation", func(t *ldtest.T) {
				expect.That(t, false).ToBeTruthy()
				expect.That(t, "").ToBeTruthy()
				expect.That(t, nil).ToBeTruthy()
				expect.That(t, expect.Undefined).ToBeTruthy()
			}, ldtest.Fails)
		})

		c.Describe("toBeFalsy", func() {
			c.Test("asserts that the value is false, when converted to boolean", func(t *ldtest.T) {
				expect.That(t, false).ToBeFalsy()
				expect.That(t, "").ToBeFalsy()
				expect.That(t, nil).ToBeFalsy()
				expect.That(t, expect.Undefined).ToBeFalsy()
			})
		})

		c.Describe("toBeNull", func() {
			c.Test("toBeNull simply asserts if something is null", func(t *ldtest.T) {
				expect.That(t, nil).ToBeNull()

				apples := func() *classWithField { return nil }
				expect.That(t, apples()).ToBeNull()
			})
		})

		c.Describe("toBeNaN", func() {
			c.Test("toBeNaN simply asserts if something is NaN", func(t *ldtest.T) {
				expect.That(t, math.NaN()).ToBeNaN()
				expect.That(t, parseNumber("abc")).ToBeNaN()
			})
		})

		c.Describe("toBeTypeOf", func() {
			c.Test("toBeTypeOf asserts if an actual value is of type of received type", func(t *ldtest.T) {
				expect.That(t, 1).ToBeTypeOf("number")
				expect.That(t, "a").ToBeTypeOf("string")
				expect.That(t, false).ToBeTypeOf("boolean")
				expect.That(t, big.NewInt(10)).ToBeTypeOf("bigint")
				expect.That(t, expect.Undefined).ToBeTypeOf("undefined")
				expect.That(t, func() {}).ToBeTypeOf("function")
				expect.That(t, map[string]interface{}{}).ToBeTypeOf("object")
				expect.That(t, []interface{}{}).ToBeTypeOf("object")
			})
		})

		c.Describe("toBeInstanceOf", func() {
			c.Test("toBeInstanceOf asserts if an actual value is instance of received class", func(t *ldtest.T) {
				expect.That(t, map[string]interface{}{}).ToBeInstanceOf(expect.Object)
				expect.That(t, func() {}).ToBeInstanceOf(expect.Object)
				expect.That(t, func() {}).ToBeInstanceOf(expect.Function)

				expect.That(t, &emptyClass{}).ToBeInstanceOf(emptyClass{})
			})
		})

		c.Describe("toBeGreaterThan", func() {
			c.Test("toBeGreaterThan asserts if an actual value is greater than received one", func(t *ldtest.T) {
				expect.That(t, 4).ToBeGreaterThan(3)
			})

			c.Test("fail situation", func(t *ldtest.T) {
				expect.That(t, 3).ToBeGreaterThan(3)
				expect.That(t, 2).ToBeGreaterThan(3)
			}, ldtest.Fails)
		})

		c.Describe("toBeGreaterThanOrEqual", func() {
			c.Test("toBeGreaterThanOrEqual asserts if an actual value is greater than or equal to received one", func(t *ldtest.T) {
				expect.That(t, 4).ToBeGreaterThanOrEqual(3)
				expect.That(t, 3).ToBeGreaterThanOrEqual(3)
			})
		})

		c.Describe("toBeLessThan", func() {
			c.Test("toBeLessThan asserts if actual value is less than received one", func(t *ldtest.T) {
				expect.That(t, 2).ToBeLessThan(3)
			})

			c.Test("fail situation", func(t *ldtest.T) {
				expect.That(t, 3).ToBeLessThan(3)
				expect.That(t, 4).ToBeLessThan(3)
			}, ldtest.Fails)
		})

		c.Describe("toBeLessThanOrEqual", func() {
			c.Test("toBeLessThanOrEqual asserts if actual value is less than received one or equal to it", func(t *ldtest.T) {
				expect.That(t, 2).ToBeLessThanOrEqual(3)
				expect.That(t, 3).ToBeLessThanOrEqual(3)
			})
		})

		c.Describe("toEqual", func() {
			c.Test("toEqual asserts if actual value is equal to received one or has the same structure, if it is an object", func(t *ldtest.T) {
				expect.That(t, map[string]interface{}{}).ToEqual(map[string]interface{}{})
				expect.That(t, []interface{}{}).ToEqual([]interface{}{})
				expect.That(t, map[string]interface{}{"a": 1}).ToEqual(map[string]interface{}{"a": 1})
			})

			c.Test("it will pass undefined option", func(t *ldtest.T) {
				expect.That(t, map[string]interface{}{"a": expect.Undefined, "b": 1}).ToEqual(map[string]interface{}{"b": 1})
				expect.That(t, []interface{}{expect.Undefined, 1}).ToEqual([]interface{}{expect.Hole, 1})
			})

			c.Test("it will pass check object type to be equal", func(t *ldtest.T) {
				expect.That(t, classWithField{A: 1}).ToEqual(map[string]interface{}{"a": 1})
			})
		})

		c.Describe("toStrictEqual", func() {
			c.Test("toStrictEqual is same of toEqual basically, but is stricter than toEqual", func(t *ldtest.T) {
				expect.That(t, map[string]interface{}{}).ToStrictEqual(map[string]interface{}{})
				expect.That(t, []interface{}{}).ToStrictEqual([]interface{}{})
				expect.That(t, map[string]interface{}{"a": 1}).ToStrictEqual(map[string]interface{}{"a": 1})
			})

			c.Test("different from toEqual", func(t *ldtest.T) {
				expect.That(t, map[string]interface{}{"a": expect.Undefined, "b": 1}).Not().ToStrictEqual(map[string]interface{}{"b": 1})
				expect.That(t, []interface{}{expect.Undefined, 1}).Not().ToStrictEqual([]interface{}{expect.Hole, 1})
				expect.That(t, classWithField{A: 1}).Not().ToStrictEqual(map[string]interface{}{"a": 1})
			})
		})

		c.Describe("toContain", func() {
			c.Test("toContain asserts if actual value is in an array", func(t *ldtest.T) {
				expect.That(t, []string{"a", "b", "c"}).ToContain("a")
				expect.That(t, []int{1, 2, 3, 4}).ToContain(2)

				obj := map[string]interface{}{"a": 1}
				expect.That(t, []interface{}{obj}).ToContain(obj)
			})

			c.Test("toContain can also check whether a string is a substring of another string", func(t *ldtest.T) {
				expect.That(t, "abcdefg").ToContain("a")
			})
		})
	})
}
