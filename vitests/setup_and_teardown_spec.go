package vitests

import (
	"github.com/launchdarkly/spec-runner/framework/expect"
	"github.com/launchdarkly/spec-runner/framework/ldtest"
)

// SetupAndTeardownSpec declares hooks at the root and in a suite. Hooks run at their place
// in the lifecycle regardless of where they are declared relative to the tests.
func SetupAndTeardownSpec() *ldtest.Tree {
	return ldtest.MustCollect(modulePrefix+"setup-and-teardown.spec", func(c *ldtest.Collector) {
		c.AfterAll(func(t *ldtest.T) {
			t.Debug("afterAll Api")
		})

		c.Describe("beforeEach + afterEach", func() {
			counter := 0

			c.AfterEach(func(t *ldtest.T) {
				t.Debug("afterEach Api")
				counter = 0
			})

			c.It("happy test", func(t *ldtest.T) {
				t.Debug("happy test")
				expect.That(t, counter).ToBe(2)
			})

			c.BeforeEach(func(t *ldtest.T) {
				t.Debug("beforeEach Api")
				counter = 2
			})
		})

		c.BeforeAll(func(t *ldtest.T) {
			t.Debug("beforeAll Api")
		})
	})
}
