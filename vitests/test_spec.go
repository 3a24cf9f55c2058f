package vitests

import (
	"math"

	"github.com/launchdarkly/spec-runner/framework/expect"
	"github.com/launchdarkly/spec-runner/framework/ldtest"
)

// TestSpec declares tests with the various test modes.
func TestSpec() *ldtest.Tree {
	return ldtest.MustCollect(modulePrefix+"test.spec", func(c *ldtest.Collector) {
		c.Test("should work as expected", func(t *ldtest.T) {
			expect.That(t, math.Sqrt(4)).ToBe(2)
		})

		c.Test("skipped test", func(t *ldtest.T) {
			expect.That(t, math.Sqrt(4)).ToBe(3)
		}, ldtest.Skip)

		c.Describe("suite", func() {
			c.Test("serial test", func(t *ldtest.T) {
				expect.That(t, math.Sqrt(4)).ToBe(2)
			})

			c.Test("concurrent test 1", func(t *ldtest.T) { expect.That(t, math.Sqrt(4)).ToBe(2) }, ldtest.Concurrent)
			c.Test("concurrent test 2", func(t *ldtest.T) { expect.That(t, math.Sqrt(4)).ToBe(2) }, ldtest.Concurrent)
		})
	})
}
