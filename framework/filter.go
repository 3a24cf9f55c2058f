package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)) &&
		!r.MustNotMatch.AnyMatch(name)
}

// IsDefined is true if either list has at least one pattern.
func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

// Type is called by the command line parser to describe the flag's value in usage text.
func (r *RegexList) Type() string {
	return "regex"
}

// Append adds the patterns of another list.
func (r *RegexList) Append(other RegexList) {
	r.patterns = append(r.patterns, other.patterns...)
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// GlobList is a set of doublestar patterns that select root modules by ID, such as
// "vitests/**" or "**/expect.spec".
type GlobList struct {
	patterns []string
}

// Set is called by the command line parser
func (g *GlobList) Set(value string) error {
	if !doublestar.ValidatePattern(value) {
		return fmt.Errorf("invalid glob pattern %q", value)
	}
	g.patterns = append(g.patterns, value)
	return nil
}

func (g *GlobList) Type() string {
	return "glob"
}

func (g GlobList) String() string {
	return strings.Join(g.patterns, ", ")
}

// Append adds the patterns of another list.
func (g *GlobList) Append(other GlobList) {
	g.patterns = append(g.patterns, other.patterns...)
}

func (g GlobList) IsDefined() bool {
	return len(g.patterns) != 0
}

// Patterns returns a copy of the patterns.
func (g GlobList) Patterns() []string {
	return append([]string(nil), g.patterns...)
}

// Match is true if no patterns are defined, or if any pattern matches the module ID.
func (g GlobList) Match(moduleID string) bool {
	if !g.IsDefined() {
		return true
	}
	for _, p := range g.patterns {
		if ok, err := doublestar.Match(p, moduleID); err == nil && ok {
			return true
		}
	}
	return false
}

// PrintFilterDescription describes the test and module selection of a run configuration.
func PrintFilterDescription(out io.Writer, config RunConfig) {
	filters := config.Filters
	if config.TestNamePattern != "" || filters.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if config.TestNamePattern != "" {
			fmt.Fprintf(out, "  skip any not matching testNamePattern \"%s\"\n", config.TestNamePattern)
		}
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
	if config.Modules.IsDefined() {
		fmt.Fprintln(out, "Only modules matching these patterns will be run:")
		fmt.Fprintf(out, "  %s\n", config.Modules)
		fmt.Fprintln(out)
	}
}
