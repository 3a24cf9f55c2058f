package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestIDPlusDoesNotShareStorage(t *testing.T) {
	parent := TestID{Path: make([]string, 1, 10)}
	parent.Path[0] = "suite"
	a := parent.Plus("a")
	b := parent.Plus("b")
	assert.Equal(t, "suite/a", a.String())
	assert.Equal(t, "suite/b", b.String())
}

func TestRunReportCounts(t *testing.T) {
	r := RunReport{
		Tests: []TestResult{
			{Status: StatusPassed},
			{Status: StatusPassed},
			{Status: StatusFailed},
			{Status: StatusSkipped},
			{Status: StatusTodo},
		},
	}
	c := r.Counts()
	assert.Equal(t, Counts{Passed: 2, Failed: 1, Skipped: 1, Todo: 1}, c)
	assert.Equal(t, 5, c.Total())
	assert.Equal(t, "2 passed, 1 failed, 1 skipped, 1 todo (5 total)", c.String())
}

func TestRunReportOK(t *testing.T) {
	assert.True(t, RunReport{}.OK())
	assert.False(t, RunReport{Failures: []TestResult{{Status: StatusFailed}}}.OK())
	assert.False(t, RunReport{Errors: []error{errors.New("afterAll failed")}}.OK())
}

func TestRunReportFindAndWalk(t *testing.T) {
	leaf := &ReportNode{ID: NewTestID("m", "suite", "test"), Kind: KindTest, Status: StatusPassed}
	suite := &ReportNode{ID: NewTestID("m", "suite"), Kind: KindSuite, Children: []*ReportNode{leaf}}
	root := &ReportNode{ID: NewTestID("m"), Kind: KindSuite, Children: []*ReportNode{suite}}
	r := RunReport{Modules: []*ReportNode{root}}

	assert.Same(t, leaf, r.Find(NewTestID("m", "suite", "test")))
	assert.Nil(t, r.Find(NewTestID("m", "nope")))

	var visited []string
	var depths []int
	root.Walk(func(n *ReportNode, depth int) {
		visited = append(visited, n.ID.String())
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"m", "m/suite", "m/suite/test"}, visited)
	assert.Equal(t, []int{0, 1, 2}, depths)
}
