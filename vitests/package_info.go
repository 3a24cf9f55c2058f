// Package vitests contains the demonstration modules: Go renditions of the example spec files
// that show how suites, hooks, matchers and the mocking context are used. They double as an
// end-to-end test of the engine; every test in them is expected to pass, be skipped, or be
// a todo.
package vitests
