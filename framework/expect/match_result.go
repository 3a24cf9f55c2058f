package expect

import (
	"github.com/launchdarkly/spec-runner/framework"
)

// MatchResult is the outcome of evaluating one matcher against one value.
type MatchResult struct {
	Matcher string

	// Pass is the final outcome, after negation has been applied.
	Pass bool

	Negated bool

	// Message describes the comparison with its polarity, for example "expected 1 not to
	// be 1". It is set whether or not the match passed.
	Message string

	Actual   interface{}
	Expected interface{}
}

// Failure converts a failed result into the error that is recorded for the test. It
// returns nil if the match passed.
func (r MatchResult) Failure() *framework.MatcherFailure {
	if r.Pass {
		return nil
	}
	return &framework.MatcherFailure{
		Matcher:  r.Matcher,
		Negated:  r.Negated,
		Message:  r.Message,
		Actual:   r.Actual,
		Expected: r.Expected,
	}
}
