package check

import (
	"cmp"
	"slices"

	"github.com/jward/checkwalk/tree"
)

// Violation is one reported problem.
type Violation struct {
	Path      string
	Line      int
	Column    int
	Kind      tree.Kind // Invalid when not anchored on a node
	CheckName string
	ModuleID  string
	Key       string
	Message   string
	Severity  Severity

	order int
}

// Order returns the registration index of the check that emitted v.
func (v Violation) Order() int { return v.order }

// Accumulator collects one file's violations. It never merges or drops
// anything.
type Accumulator struct {
	items []Violation
}

// Record appends v.
func (a *Accumulator) Record(v Violation) { a.items = append(a.items, v) }

// Len returns the number of recorded violations.
func (a *Accumulator) Len() int { return len(a.items) }

// Drain returns the violations sorted by line, column and check
// registration order, keeping emission order for equal keys, and resets
// the accumulator.
func (a *Accumulator) Drain() []Violation {
	out := a.items
	a.items = nil
	slices.SortStableFunc(out, compareViolations)
	return out
}

func compareViolations(x, y Violation) int {
	if c := cmp.Compare(x.Line, y.Line); c != 0 {
		return c
	}
	if c := cmp.Compare(x.Column, y.Column); c != 0 {
		return c
	}
	return cmp.Compare(x.order, y.order)
}
