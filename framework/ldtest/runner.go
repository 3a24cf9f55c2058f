package ldtest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldtime"

	"github.com/launchdarkly/spec-runner/framework"
	"github.com/launchdarkly/spec-runner/framework/mock"
)

// Runner executes the trees of one or more root modules.
type Runner struct {
	config     framework.RunConfig
	filter     framework.Filter
	testLogger framework.TestLogger
	loggers    ldlog.Loggers
	roots      []*Tree
}

// NewRunner creates a Runner. The TestLogger may be nil, in which case progress events are
// discarded.
func NewRunner(config framework.RunConfig, testLogger framework.TestLogger, loggers ldlog.Loggers) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if testLogger == nil {
		testLogger = framework.NullTestLogger()
	}
	return &Runner{
		config:     config,
		filter:     config.TestFilter(),
		testLogger: testLogger,
		loggers:    loggers,
	}, nil
}

// Run executes a single tree with a null TestLogger and no engine logging.
func Run(ctx context.Context, tree *Tree, config framework.RunConfig) (framework.RunReport, error) {
	r, err := NewRunner(config, nil, ldlog.NewDisabledLoggers())
	if err != nil {
		return framework.RunReport{}, err
	}
	r.RegisterRoot(tree)
	return r.Run(ctx), nil
}

// RegisterRoot adds a root module to the run. Modules that are not selected by the
// configured module patterns are ignored.
func (r *Runner) RegisterRoot(tree *Tree) {
	if tree == nil {
		return
	}
	if !r.config.Modules.Match(tree.ModuleID()) {
		r.loggers.Debugf("Module %s is not selected by %s", tree.ModuleID(), r.config.Modules)
		return
	}
	r.roots = append(r.roots, tree)
}

// Run executes every registered root module, in registration order, and returns the
// report. Failures of any kind are recorded in the report; Run itself does not fail.
func (r *Runner) Run(ctx context.Context) framework.RunReport {
	started := time.Now()
	report := framework.RunReport{
		RunID:     uuid.NewString(),
		StartTime: ldtime.UnixMillisNow(),
	}
	total := 0
	for _, tree := range r.roots {
		total += tree.TestCount()
	}
	queue := framework.NewResultSortingQueue(total + 1)
	pumped := queue.Pump(r.testLogger)

	r.loggers.Infof("Starting run %s: %d modules, %d tests", report.RunID, len(r.roots), total)
	base := 0
	for _, tree := range r.roots {
		m := r.newModuleRun(tree, base, queue, &report)
		report.Modules = append(report.Modules, m.nodes[RootID])
		m.run(ctx)
		base += tree.TestCount()
	}
	queue.Close()
	<-pumped

	report.Duration = time.Since(started)
	r.loggers.Infof("Finished run %s in %s: %s", report.RunID, report.Duration, report.Counts())
	return report
}

type nodeState int

const (
	stateRun nodeState = iota
	stateSkip
	stateTodo
	statePruned
	stateFiltered
)

func (s nodeState) skipReason() string {
	switch s {
	case stateSkip:
		return "skipped"
	case stateTodo:
		return "todo"
	case statePruned:
		return "not selected by only"
	case stateFiltered:
		return "excluded by filter parameters"
	}
	return ""
}

// plan is the result of the pre-pass over a frozen tree.
type plan struct {
	state      []nodeState
	concurrent []bool
	timeout    []time.Duration
	runnable   []int // number of runnable tests in each subtree
}

func (r *Runner) resolve(tree *Tree) *plan {
	n := len(tree.nodes)
	p := &plan{
		state:      make([]nodeState, n),
		concurrent: make([]bool, n),
		timeout:    make([]time.Duration, n),
		runnable:   make([]int, n),
	}

	// Parents always precede their children in the arena, so a reverse scan is bottom-up.
	hasOnly := make([]bool, n)
	childHasOnly := make([]bool, n)
	for id := n - 1; id >= 0; id-- {
		nd := &tree.nodes[id]
		for _, c := range nd.children {
			if hasOnly[c] {
				childHasOnly[id] = true
			}
		}
		hasOnly[id] = nd.mode == Only || childHasOnly[id]
	}

	for id := 0; id < n; id++ {
		nd := &tree.nodes[id]
		var parentState nodeState
		var parentTimeout time.Duration
		var parentConcurrent bool
		if nd.parent == noParent {
			parentState = stateRun
			parentTimeout = r.config.TestTimeout()
			if r.config.OnlyMode && !hasOnly[id] {
				parentState = statePruned
			}
		} else {
			parentState = p.state[nd.parent]
			parentTimeout = p.timeout[nd.parent]
			parentConcurrent = p.concurrent[nd.parent]
		}

		switch {
		case parentState != stateRun:
			p.state[id] = parentState
		case nd.parent != noParent && childHasOnly[nd.parent] && !hasOnly[id]:
			p.state[id] = statePruned
		case nd.mode == Skip:
			p.state[id] = stateSkip
		case nd.mode == Todo:
			p.state[id] = stateTodo
		case nd.kind == testNode && r.filter != nil && !r.filter(tree.TestID(NodeID(id))):
			p.state[id] = stateFiltered
		default:
			p.state[id] = stateRun
		}

		p.concurrent[id] = parentConcurrent || nd.mode == Concurrent
		p.timeout[id] = parentTimeout
		if nd.timeout > 0 {
			p.timeout[id] = nd.timeout
		}
	}

	for id := n - 1; id >= 0; id-- {
		nd := &tree.nodes[id]
		if nd.kind == testNode && p.state[id] == stateRun {
			p.runnable[id] = 1
		}
		if nd.parent != noParent {
			p.runnable[nd.parent] += p.runnable[id]
		}
	}
	return p
}

// moduleRun is the state of the run of one root module.
type moduleRun struct {
	runner *Runner
	tree   *Tree
	plan   *plan
	vi     *mock.Vi
	base   int
	queue  *framework.ResultSortingQueue
	nodes  []*framework.ReportNode

	lock   sync.Mutex
	report *framework.RunReport
}

func (r *Runner) newModuleRun(tree *Tree, base int, queue *framework.ResultSortingQueue, report *framework.RunReport) *moduleRun {
	m := &moduleRun{
		runner: r,
		tree:   tree,
		plan:   r.resolve(tree),
		base:   base,
		queue:  queue,
		nodes:  make([]*framework.ReportNode, tree.Size()),
		report: report,
	}
	for id := range tree.nodes {
		nd := &tree.nodes[id]
		rn := &framework.ReportNode{ID: tree.TestID(NodeID(id)), Kind: framework.KindSuite}
		if nd.kind == testNode {
			rn.Kind = framework.KindTest
		}
		m.nodes[id] = rn
		if nd.parent != noParent {
			parent := m.nodes[nd.parent]
			parent.Children = append(parent.Children, rn)
		}
	}
	return m
}

func (m *moduleRun) run(ctx context.Context) {
	m.vi = mock.NewVi(m.runner.loggers)
	m.vi.SetErrorHandler(m.addRunError)
	if m.runner.config.FakeTimers {
		m.vi.UseFakeTimers()
	}
	defer m.vi.Dispose()

	m.runner.loggers.Debugf("Running module %s (%d tests, %d selected)",
		m.tree.ModuleID(), m.tree.TestCount(), m.plan.runnable[RootID])
	defer func() {
		if r := recover(); r != nil {
			m.addRunError(&framework.UncaughtBodyError{Value: r, Stack: string(debug.Stack())})
		}
	}()
	m.runSuite(ctx, RootID)
}

func (m *moduleRun) addRunError(err error) {
	m.runner.loggers.Errorf("Error in %s: %s", m.tree.ModuleID(), err)
	m.lock.Lock()
	m.report.Errors = append(m.report.Errors, err)
	m.lock.Unlock()
}

func (m *moduleRun) runNode(ctx context.Context, id NodeID) {
	if m.tree.nodes[id].kind == testNode {
		m.runTest(ctx, id)
	} else {
		m.runSuite(ctx, id)
	}
}

func (m *moduleRun) runSuite(ctx context.Context, id NodeID) {
	started := time.Now()
	defer func() { m.finishSuite(id, time.Since(started)) }()

	if m.plan.state[id] != stateRun {
		m.skipAll(id)
		return
	}

	suiteID := m.tree.TestID(id)
	debugLogger := &framework.CapturingLogger{}
	if errs := m.runHooks(ctx, id, framework.BeforeAll, suiteID, debugLogger); len(errs) != 0 {
		m.addSuiteErrors(id, errs)
		m.blockAll(id, errs)
	} else {
		m.runChildren(ctx, id)
	}
	if errs := m.runHooks(ctx, id, framework.AfterAll, suiteID, debugLogger); len(errs) != 0 {
		m.addSuiteErrors(id, errs)
		for _, err := range errs {
			m.addRunError(err)
		}
	}
}

// runChildren runs the children of a suite in declaration order. Consecutive concurrent
// children are started together and awaited as a group.
func (m *moduleRun) runChildren(ctx context.Context, id NodeID) {
	children := m.tree.nodes[id].children
	for i := 0; i < len(children); {
		if !m.plan.concurrent[children[i]] {
			m.runNode(ctx, children[i])
			i++
			continue
		}
		var group errgroup.Group
		group.SetLimit(m.runner.config.Concurrency())
		for ; i < len(children) && m.plan.concurrent[children[i]]; i++ {
			child := children[i]
			group.Go(func() error {
				m.runNode(ctx, child)
				return nil
			})
		}
		_ = group.Wait()
	}
}

func (m *moduleRun) runTest(ctx context.Context, id NodeID) {
	if m.plan.state[id] != stateRun {
		m.recordNotRun(id, m.plan.state[id])
		return
	}
	started := time.Now()
	testID := m.tree.TestID(id)
	debugLogger := &framework.CapturingLogger{}
	ancestors := m.tree.ancestors(id)
	m.runner.loggers.Debugf("Starting test %s", testID)

	var hookErrs []error
	for _, s := range ancestors {
		hookErrs = append(hookErrs, m.runHooks(ctx, s, framework.BeforeEach, testID, debugLogger)...)
	}

	var (
		failed, skipped bool
		skipReason      string
		errs            []error
	)
	if len(hookErrs) == 0 {
		bodyCtx, cancel := context.WithCancel(ctx)
		t := newT(bodyCtx, testID, m.vi, debugLogger)
		m.settle(ctx, t, m.tree.nodes[id].body, m.plan.timeout[id], "test")
		cancel()
		t.checkAssertions()
		if m.tree.nodes[id].mode == Fails {
			t.invert()
		}
		failed, skipped, skipReason, errs = t.snapshot()
	}

	for i := len(ancestors) - 1; i >= 0; i-- {
		hookErrs = append(hookErrs, m.runHooks(ctx, ancestors[i], framework.AfterEach, testID, debugLogger)...)
	}

	result := framework.TestResult{
		TestID:      testID,
		Duration:    time.Since(started),
		DebugOutput: debugLogger.Output(),
	}
	switch {
	case failed || len(hookErrs) != 0:
		result.Status = framework.StatusFailed
		result.Errors = append(errs, hookErrs...)
	case skipped:
		result.Status = framework.StatusSkipped
		result.SkipReason = skipReason
	default:
		result.Status = framework.StatusPassed
	}
	m.record(id, result)
}

// settle runs fn on its own goroutine and waits until it returns or the timeout expires.
// In the second case the goroutine is abandoned; whatever it reports later is ignored.
func (m *moduleRun) settle(ctx context.Context, t *T, fn func(*T), timeout time.Duration, what string) {
	f := Async(func() (interface{}, error) {
		t.execute(fn)
		return nil, nil
	})
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-f.Done():
	case <-timer.C:
		t.abandon(&framework.TimeoutError{What: what, Timeout: timeout})
	case <-ctx.Done():
		t.abandon(fmt.Errorf("%s was cancelled: %w", what, ctx.Err()))
	}
}

// runHooks runs the hooks of one phase registered on a suite. Every hook runs even if an
// earlier one failed; each failure is returned as a *framework.HookFailure.
func (m *moduleRun) runHooks(ctx context.Context, suite NodeID, phase framework.HookPhase,
	id framework.TestID, debugLogger *framework.CapturingLogger) []error {
	hooks := m.tree.nodes[suite].hooks[hookSlot(phase)]
	if len(hooks) == 0 {
		return nil
	}
	reverse := (phase == framework.AfterAll || phase == framework.AfterEach) &&
		m.runner.config.AfterHookSequence() == framework.HookSequenceStack

	var errs []error
	for i := range hooks {
		index := i
		if reverse {
			index = len(hooks) - 1 - i
		}
		if err := m.runHook(ctx, hooks[index], id, debugLogger); err != nil {
			errs = append(errs, &framework.HookFailure{
				Phase: phase,
				Suite: m.tree.TestID(suite),
				Index: index,
				Err:   err,
			})
		}
	}
	return errs
}

func (m *moduleRun) runHook(ctx context.Context, hook hookFunc, id framework.TestID,
	debugLogger *framework.CapturingLogger) error {
	hookCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	t := newT(hookCtx, id, m.vi, debugLogger)
	m.settle(ctx, t, hook, m.runner.config.HookTimeout(), "hook")
	failed, _, _, errs := t.snapshot()
	if !failed {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// skipAll records a result for every test under a suite that is not run.
func (m *moduleRun) skipAll(id NodeID) {
	for _, c := range m.tree.nodes[id].children {
		if m.tree.nodes[c].kind == testNode {
			m.recordNotRun(c, m.plan.state[c])
			continue
		}
		m.skipAll(c)
		m.finishSuite(c, 0)
	}
}

// blockAll fails every runnable test under a suite whose beforeAll hooks failed.
func (m *moduleRun) blockAll(id NodeID, errs []error) {
	for _, c := range m.tree.nodes[id].children {
		switch {
		case m.tree.nodes[c].kind != testNode:
			m.blockAll(c, errs)
			m.finishSuite(c, 0)
		case m.plan.state[c] == stateRun:
			m.record(c, framework.TestResult{
				TestID: m.tree.TestID(c),
				Status: framework.StatusFailed,
				Errors: append([]error(nil), errs...),
			})
		default:
			m.recordNotRun(c, m.plan.state[c])
		}
	}
}

func (m *moduleRun) recordNotRun(id NodeID, state nodeState) {
	result := framework.TestResult{
		TestID:     m.tree.TestID(id),
		Status:     framework.StatusSkipped,
		SkipReason: state.skipReason(),
	}
	if state == stateTodo {
		result.Status = framework.StatusTodo
	}
	m.record(id, result)
}

func (m *moduleRun) record(id NodeID, result framework.TestResult) {
	m.lock.Lock()
	rn := m.nodes[id]
	rn.Status = result.Status
	rn.Duration = result.Duration
	rn.Errors = result.Errors
	m.report.Tests = append(m.report.Tests, result)
	if result.Failed() {
		m.report.Failures = append(m.report.Failures, result)
	}
	m.lock.Unlock()

	if result.Failed() {
		m.runner.loggers.Debugf("Test %s failed", result.TestID)
	}
	m.queue.Accept(m.base+m.tree.nodes[id].counter, result)
}

func (m *moduleRun) addSuiteErrors(id NodeID, errs []error) {
	m.lock.Lock()
	m.nodes[id].Errors = append(m.nodes[id].Errors, errs...)
	m.lock.Unlock()
}

// finishSuite derives a suite's status from its own errors and its children.
func (m *moduleRun) finishSuite(id NodeID, duration time.Duration) {
	m.lock.Lock()
	defer m.lock.Unlock()
	rn := m.nodes[id]
	rn.Duration = duration
	var failed, passed, todo, other bool
	for _, c := range rn.Children {
		switch c.Status {
		case framework.StatusFailed:
			failed = true
		case framework.StatusPassed:
			passed = true
		case framework.StatusTodo:
			todo = true
		default:
			other = true
		}
	}
	switch {
	case len(rn.Errors) != 0 || failed:
		rn.Status = framework.StatusFailed
	case passed:
		rn.Status = framework.StatusPassed
	case m.plan.state[id] == stateTodo || (todo && !other):
		rn.Status = framework.StatusTodo
	default:
		rn.Status = framework.StatusSkipped
	}
}
