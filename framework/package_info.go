// Package framework contains the infrastructure shared by the parts of the test engine.
//
// The general model is:
//
// 1. Test modules declare a tree of suites, tests and lifecycle hooks during a collection
// phase (see the ldtest subpackage). Nothing runs until the tree is complete.
//
// 2. A runner walks each tree, running hooks and test bodies, and records a RunReport whose
// shape mirrors the declared tree.
//
// 3. Test bodies make assertions with the expect subpackage and control time and test
// doubles with the mock subpackage.
//
// This package defines what those pieces have in common: test identifiers, the report
// model, the error taxonomy, run configuration, filters, and the TestLogger interface that
// a reporter implements to receive progress events as the run proceeds.
package framework
