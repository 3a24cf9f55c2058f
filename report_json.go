package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/launchdarkly/spec-runner/framework"
)

type jsonReport struct {
	RunID      string      `json:"runId"`
	StartTime  uint64      `json:"startTime"`
	DurationMS int64       `json:"durationMs"`
	Counts     jsonCounts  `json:"counts"`
	Modules    []jsonNode  `json:"modules"`
	Errors     []jsonError `json:"errors,omitempty"`
}

type jsonCounts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Todo    int `json:"todo"`
	Total   int `json:"total"`
}

type jsonNode struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Kind       string      `json:"kind"`
	Status     string      `json:"status"`
	DurationMS int64       `json:"durationMs"`
	Errors     []jsonError `json:"errors,omitempty"`
	Children   []jsonNode  `json:"children,omitempty"`
}

type jsonError struct {
	Kind    framework.ErrorKind `json:"kind"`
	Message string              `json:"message"`
}

func newJSONReport(report framework.RunReport) jsonReport {
	counts := report.Counts()
	ret := jsonReport{
		RunID:      report.RunID,
		StartTime:  uint64(report.StartTime),
		DurationMS: millis(report.Duration),
		Counts: jsonCounts{
			Passed:  counts.Passed,
			Failed:  counts.Failed,
			Skipped: counts.Skipped,
			Todo:    counts.Todo,
			Total:   counts.Total(),
		},
		Modules: []jsonNode{},
		Errors:  newJSONErrors(report.Errors),
	}
	for _, m := range report.Modules {
		ret.Modules = append(ret.Modules, newJSONNode(m))
	}
	return ret
}

func newJSONNode(n *framework.ReportNode) jsonNode {
	ret := jsonNode{
		ID:         n.ID.String(),
		Kind:       string(n.Kind),
		Status:     string(n.Status),
		DurationMS: millis(n.Duration),
		Errors:     newJSONErrors(n.Errors),
	}
	if len(n.ID.Path) > 0 {
		ret.Name = n.ID.Path[len(n.ID.Path)-1]
	}
	for _, c := range n.Children {
		ret.Children = append(ret.Children, newJSONNode(c))
	}
	return ret
}

func newJSONErrors(errs []error) []jsonError {
	var ret []jsonError
	for _, err := range errs {
		ret = append(ret, jsonError{Kind: framework.KindOf(err), Message: err.Error()})
	}
	return ret
}

func millis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}

// writeJSONReport writes the report tree as indented JSON.
func writeJSONReport(w io.Writer, report framework.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newJSONReport(report))
}
