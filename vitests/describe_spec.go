package vitests

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/launchdarkly/spec-runner/framework/expect"
	"github.com/launchdarkly/spec-runner/framework/ldtest"
)

type person struct {
	IsActive bool `json:"isActive"`
	Age      int  `json:"age"`
}

func numberToCurrency(value interface{}) (string, error) {
	var n float64
	switch v := value.(type) {
	case int:
		n = float64(v)
	case float64:
		n = v
	default:
		return "", errors.New("Value must be a number")
	}
	s := strconv.FormatFloat(n, 'f', 2, 64)
	whole, fraction := s[:len(s)-3], s[len(s)-3:]
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	var b strings.Builder
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return sign + b.String() + fraction, nil
}

// DescribeSpec declares suites with the various suite modes.
func DescribeSpec() *ldtest.Tree {
	return ldtest.MustCollect(modulePrefix+"describe.spec", func(c *ldtest.Collector) {
		p := person{IsActive: true, Age: 32}

		c.Describe("person", func() {
			c.Test("person is defined", func(t *ldtest.T) {
				expect.That(t, p).ToBeDefined()
			})

			c.Test("is active", func(t *ldtest.T) {
				expect.That(t, p.IsActive).ToBeTruthy()
			})

			c.Test("age limit", func(t *ldtest.T) {
				expect.That(t, p.Age).ToBeLessThanOrEqual(32)
			})
		})

		c.Describe("numberToCurrency", func() {
			c.Describe("given an invalid number", func() {
				c.Test("composed of non-numbers to throw error", func(t *ldtest.T) {
					expect.That(t, func() (interface{}, error) { return numberToCurrency("abc") }).ToThrow()
				})
			})

			c.Describe("given a valid number", func() {
				c.Test("returns the correct currency format", func(t *ldtest.T) {
					s, err := numberToCurrency(10000)
					expect.That(t, err).ToBeNull()
					expect.That(t, s).ToBe("10,000.00")
				})
			})
		})

		c.Describe("skipped suite", func() {
			c.Test("sqrt", func(t *ldtest.T) {
				expect.That(t, math.Sqrt(4)).ToBe(3)
			})
		}, ldtest.Skip)

		c.Describe("suite", func() {
			sqrt := func() interface{} { return math.Sqrt(4) }
			c.Test("concurrent test 1", func(t *ldtest.T) {
				expect.That(t, afterTimeout(t, sqrt)).ToBe(2)
			})
			c.Test("concurrent test 2", func(t *ldtest.T) {
				expect.That(t, afterTimeout(t, sqrt)).ToBe(2)
			})
			c.Test("concurrent test 3", func(t *ldtest.T) {
				expect.That(t, afterTimeout(t, sqrt)).ToBe(2)
			}, ldtest.Concurrent)
		}, ldtest.Concurrent)

		c.Describe("unimplemented suite", nil)
	})
}
