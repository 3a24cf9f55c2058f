package ldtest

import (
	"fmt"

	"github.com/launchdarkly/spec-runner/framework"
)

// Collector receives the declarations of one root module. It keeps a cursor pointing at the
// suite that new declarations are added to; Describe moves the cursor into the new suite
// for the duration of its body.
//
// A Collector can only be used while Collect is running. Any declaration made after that,
// for instance from inside a test body, panics with *framework.DeclarationOutOfPhaseError.
type Collector struct {
	tree   *Tree
	cursor NodeID
}

// Table is a parameterization table for DescribeEach and TestEach.
type Table []Row

// Row is one row of a Table. A row that consists of a single map[string]interface{} can be
// referred to by key in a name template, as in "$a + $b".
type Row []interface{}

// Collect runs the declaration body of a root module and returns the resulting tree. The
// root suite is named by moduleID. If the body panics, Collect returns an error and no tree.
func Collect(moduleID string, body func(c *Collector)) (tree *Tree, err error) {
	tree = newTree(moduleID)
	c := &Collector{tree: tree, cursor: RootID}
	defer func() {
		tree.frozen.Store(true)
		if r := recover(); r != nil {
			tree = nil
			if e, ok := r.(error); ok {
				err = fmt.Errorf("error while collecting %s: %w", moduleID, e)
			} else {
				err = fmt.Errorf("error while collecting %s: %v", moduleID, r)
			}
		}
	}()
	body(c)
	return tree, nil
}

// MustCollect is like Collect, but panics on error. It is meant for package-level
// declarations of test modules.
func MustCollect(moduleID string, body func(c *Collector)) *Tree {
	tree, err := Collect(moduleID, body)
	if err != nil {
		panic(err)
	}
	return tree
}

func (c *Collector) checkPhase(call, name string) {
	if c.tree.frozen.Load() {
		panic(&framework.DeclarationOutOfPhaseError{Call: call, Name: name})
	}
}

// Describe declares a suite. The body runs immediately, and declarations made by it are
// added to the new suite. A nil body declares a todo suite.
func (c *Collector) Describe(name string, body func(), options ...Option) {
	c.checkPhase("Describe", name)
	o := resolveOptions(options)
	if o.mode == Fails {
		panic(fmt.Errorf("Describe(%q): the %s mode can only be used on a test", name, Fails))
	}
	if body == nil {
		o.mode = Todo
	}
	id := c.tree.add(c.cursor, node{kind: suiteNode, name: name, mode: o.mode, timeout: o.timeout})
	if body == nil {
		return
	}
	saved := c.cursor
	c.cursor = id
	defer func() { c.cursor = saved }()
	body()
}

// DescribeEach declares one suite per row of the table, named by interpolating the row
// into the template (see FormatName). Every expansion gets the same options.
func (c *Collector) DescribeEach(table Table, template string, body func(row Row), options ...Option) {
	c.checkPhase("DescribeEach", template)
	for i, row := range table {
		row := row
		c.Describe(FormatName(template, row, i), func() { body(row) }, options...)
	}
}

// Test declares a test. A nil body declares a todo test.
func (c *Collector) Test(name string, body func(t *T), options ...Option) {
	c.checkPhase("Test", name)
	o := resolveOptions(options)
	if body == nil {
		o.mode = Todo
	}
	c.tree.add(c.cursor, node{kind: testNode, name: name, mode: o.mode, timeout: o.timeout, body: body})
}

// It is the same as Test.
func (c *Collector) It(name string, body func(t *T), options ...Option) {
	c.Test(name, body, options...)
}

// TestEach declares one test per row of the table, named by interpolating the row into
// the template (see FormatName).
func (c *Collector) TestEach(table Table, template string, body func(t *T, row Row), options ...Option) {
	c.checkPhase("TestEach", template)
	for i, row := range table {
		row := row
		c.Test(FormatName(template, row, i), func(t *T) { body(t, row) }, options...)
	}
}

// BeforeAll registers a hook that runs once before the tests of the current suite.
func (c *Collector) BeforeAll(body func(t *T)) {
	c.addHook(framework.BeforeAll, body)
}

// AfterAll registers a hook that runs once after all the tests of the current suite, even
// if some of them failed.
func (c *Collector) AfterAll(body func(t *T)) {
	c.addHook(framework.AfterAll, body)
}

// BeforeEach registers a hook that runs before every test in the current suite and its
// descendants.
func (c *Collector) BeforeEach(body func(t *T)) {
	c.addHook(framework.BeforeEach, body)
}

// AfterEach registers a hook that runs after every test in the current suite and its
// descendants, even if the test failed.
func (c *Collector) AfterEach(body func(t *T)) {
	c.addHook(framework.AfterEach, body)
}

func (c *Collector) addHook(phase framework.HookPhase, body func(t *T)) {
	c.checkPhase(string(phase), "")
	if body == nil {
		return
	}
	n := &c.tree.nodes[c.cursor]
	slot := hookSlot(phase)
	n.hooks[slot] = append(n.hooks[slot], body)
}
