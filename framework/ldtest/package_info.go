// Package ldtest declares and runs trees of suites and tests.
//
// A root module is a function that declares its suites, tests and hooks on a Collector:
//
//	tree := ldtest.MustCollect("math.spec", func(c *ldtest.Collector) {
//		c.Describe("add", func() {
//			c.BeforeEach(func(t *ldtest.T) { t.Vi().UseFakeTimers() })
//			c.Test("1 + 1", func(t *ldtest.T) {
//				expect.That(t, 1+1).ToBe(2)
//			})
//		})
//	})
//
// Collection runs synchronously and produces a frozen Tree. A Runner then works out which
// nodes run (skip, todo, only and the configured filters), runs the hooks and bodies with
// their time limits, and returns a framework.RunReport. Declarations made once collection
// is over fail with *framework.DeclarationOutOfPhaseError.
package ldtest
