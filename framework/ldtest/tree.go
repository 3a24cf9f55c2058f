package ldtest

import (
	"sync/atomic"
	"time"

	"github.com/launchdarkly/spec-runner/framework"
)

// NodeID is the index of a node in its Tree.
type NodeID int

// RootID is the ID of the root suite of every tree.
const RootID NodeID = 0

const noParent NodeID = -1

type nodeKind int

const (
	suiteNode nodeKind = iota
	testNode
)

type hookFunc func(t *T)

type node struct {
	kind     nodeKind
	name     string
	parent   NodeID
	children []NodeID
	mode     Mode
	timeout  time.Duration
	body     func(t *T)    // tests only
	hooks    [4][]hookFunc // suites only, indexed by hookSlot
	counter  int           // tests only: 1-based position in declaration order
}

func hookSlot(phase framework.HookPhase) int {
	switch phase {
	case framework.BeforeAll:
		return 0
	case framework.AfterAll:
		return 1
	case framework.BeforeEach:
		return 2
	default:
		return 3
	}
}

// Tree is the suite tree declared by one root module. Nodes are kept in an arena in
// declaration order, so a parent always has a lower ID than its children; parents are
// referenced by index rather than by pointer.
//
// A Tree is built by Collect and cannot be changed once Collect has returned.
type Tree struct {
	moduleID  string
	nodes     []node
	testCount int
	frozen    atomic.Bool
}

func newTree(moduleID string) *Tree {
	t := &Tree{moduleID: moduleID}
	t.nodes = append(t.nodes, node{kind: suiteNode, name: moduleID, parent: noParent})
	return t
}

func (t *Tree) add(parent NodeID, n node) NodeID {
	n.parent = parent
	if n.kind == testNode {
		t.testCount++
		n.counter = t.testCount
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// ModuleID returns the identifier of the module that declared the tree.
func (t *Tree) ModuleID() string {
	return t.moduleID
}

// TestCount returns the number of tests declared in the tree.
func (t *Tree) TestCount() int {
	return t.testCount
}

// Size returns the number of nodes, including the root suite.
func (t *Tree) Size() int {
	return len(t.nodes)
}

func (t *Tree) Name(id NodeID) string {
	return t.nodes[id].name
}

func (t *Tree) IsTest(id NodeID) bool {
	return t.nodes[id].kind == testNode
}

func (t *Tree) Mode(id NodeID) Mode {
	return t.nodes[id].mode
}

// Parent returns the parent of a node, or false for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p := t.nodes[id].parent
	return p, p != noParent
}

// Children returns a copy of the node's children in declaration order.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].children...)
}

// HookCount returns the number of hooks of the given phase registered on a suite.
func (t *Tree) HookCount(id NodeID, phase framework.HookPhase) int {
	return len(t.nodes[id].hooks[hookSlot(phase)])
}

// TestID returns the full identifier of a node: the module ID followed by the names of
// the suites that enclose it and its own name.
func (t *Tree) TestID(id NodeID) framework.TestID {
	var reversed []string
	for n := id; n != noParent; n = t.nodes[n].parent {
		reversed = append(reversed, t.nodes[n].name)
	}
	path := make([]string, len(reversed))
	for i, name := range reversed {
		path[len(reversed)-1-i] = name
	}
	return framework.TestID{Path: path}
}

// Walk visits every node depth-first in declaration order.
func (t *Tree) Walk(visit func(id NodeID, depth int)) {
	t.walk(RootID, 0, visit)
}

func (t *Tree) walk(id NodeID, depth int, visit func(NodeID, int)) {
	visit(id, depth)
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, visit)
	}
}

// ancestors returns the suites enclosing a node, outermost first, not including the node.
func (t *Tree) ancestors(id NodeID) []NodeID {
	var ret []NodeID
	for n := t.nodes[id].parent; n != noParent; n = t.nodes[n].parent {
		ret = append([]NodeID{n}, ret...)
	}
	return ret
}
