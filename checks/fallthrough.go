package checks

import (
	"fmt"
	"sort"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/pattern"
	"github.com/jward/checkwalk/tree"
)

// FallThrough reports switch case groups that can complete normally into
// the next group. A comment matching ReliefPattern right before the next
// group marks the fall-through as intended.
type FallThrough struct {
	check.Base
	CheckLastCaseGroup bool   `mapstructure:"checkLastCaseGroup"`
	ReliefPattern      string `mapstructure:"reliefPattern"`

	relief *pattern.Pattern
}

func NewFallThrough() *FallThrough {
	return &FallThrough{ReliefPattern: `falls?[ -]?thr(u|ough)`}
}

func (c *FallThrough) Init() error {
	re, err := pattern.Compile(c.ReliefPattern)
	if err != nil {
		return fmt.Errorf("reliefPattern: %w", err)
	}
	c.relief = re
	return nil
}

func (c *FallThrough) DefaultTokens() []tree.Kind  { return []tree.Kind{tree.CaseGroup} }
func (c *FallThrough) RequiredTokens() []tree.Kind { return []tree.Kind{tree.CaseGroup} }

func (c *FallThrough) Messages() map[string]string {
	return map[string]string{
		"fall.through":      "Fall through from previous branch of the switch statement.",
		"fall.through.last": "Fall through from the last branch of the switch statement.",
	}
}

func (c *FallThrough) Visit(ctx *check.Context, group tree.Node) {
	next := nextNonComment(group)
	last := next.Kind() != tree.CaseGroup
	if last && !c.CheckLastCaseGroup {
		return
	}
	body := group.FindFirst(tree.SList)
	if body.IsNil() || isTerminated(body, true, true, map[string]bool{}) {
		return
	}
	if c.hasReliefComment(next) {
		return
	}
	if last {
		ctx.Report(group, "fall.through.last")
	} else {
		ctx.Report(next, "fall.through")
	}
}

// hasReliefComment looks at the comments directly before next, the next
// group or the closing brace. Only comments on the line of the nearest one
// count.
func (c *FallThrough) hasReliefComment(next tree.Node) bool {
	first, ok := next.FirstToken()
	if !ok {
		return false
	}
	toks := next.Tree().Tokens()
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Start >= first.Start })

	line := -1
	for i--; i >= 0 && toks[i].Hidden(); i-- {
		tok := toks[i]
		if tok.Channel != tree.ChannelComment {
			continue
		}
		if line < 0 {
			line = tok.Line
		} else if tok.Line != line {
			break
		}
		if c.relief.MatchString(commentBody(tok)) {
			return true
		}
	}
	return false
}

// isTerminated reports whether control can never complete normally past
// n. Breaks and continues count as terminating when useBreak/useContinue
// is set or when they jump to a label outside the current switch.
func isTerminated(n tree.Node, useBreak, useContinue bool, labels map[string]bool) bool {
	switch n.Kind() {
	case tree.LiteralReturn, tree.LiteralYield, tree.LiteralThrow:
		return true
	case tree.LiteralBreak:
		return useBreak || jumpsOut(n, labels)
	case tree.LiteralContinue:
		return useContinue || jumpsOut(n, labels)
	case tree.SList:
		return slistTerminated(n, useBreak, useContinue, labels)
	case tree.LiteralIf:
		return ifTerminated(n, useBreak, useContinue, labels)
	case tree.LiteralFor, tree.LiteralWhile, tree.LiteralDo:
		return loopTerminated(n, labels)
	case tree.LiteralTry:
		return tryTerminated(n, useBreak, useContinue, labels)
	case tree.LiteralSwitch:
		return switchTerminated(n, useContinue, labels)
	case tree.LiteralSynchronized:
		return isTerminated(n.FindFirst(tree.SList), useBreak, useContinue, labels)
	case tree.LabeledStat:
		labels[n.FirstChild().Text()] = true
		return isTerminated(n.LastChild(), useBreak, useContinue, labels)
	default:
		return false
	}
}

// jumpsOut reports whether a break or continue names a label declared
// outside the current switch.
func jumpsOut(n tree.Node, labels map[string]bool) bool {
	ident := n.FirstChild()
	return ident.Kind() == tree.Ident && !labels[ident.Text()]
}

func slistTerminated(n tree.Node, useBreak, useContinue bool, labels map[string]bool) bool {
	last := n.LastChild()
	if last.Kind() == tree.RCurly {
		last = last.PreviousSibling()
	}
	for !last.IsNil() && last.Kind().IsComment() {
		last = last.PreviousSibling()
	}
	return !last.IsNil() && isTerminated(last, useBreak, useContinue, labels)
}

func ifTerminated(n tree.Node, useBreak, useContinue bool, labels map[string]bool) bool {
	rparen := n.FindFirst(tree.RParen)
	if rparen.IsNil() {
		return false
	}
	then := nextNonComment(rparen)
	els := nextNonComment(then)
	return !els.IsNil() &&
		isTerminated(then, useBreak, useContinue, labels) &&
		isTerminated(els.LastChild(), useBreak, useContinue, labels)
}

// loopTerminated checks the loop body. An unlabelled break or continue
// inside it only leaves the loop, so neither counts.
func loopTerminated(n tree.Node, labels map[string]bool) bool {
	var body tree.Node
	if n.Kind() == tree.LiteralDo {
		body = prevNonComment(n.FindFirst(tree.DoWhile))
	} else {
		body = nextNonComment(n.FindFirst(tree.RParen))
	}
	return isTerminated(body, false, false, labels)
}

func tryTerminated(n tree.Node, useBreak, useContinue bool, labels map[string]bool) bool {
	if fin := n.LastChild(); fin.Kind() == tree.LiteralFinally &&
		isTerminated(fin.FindFirst(tree.SList), useBreak, useContinue, labels) {
		return true
	}
	body := n.FirstChild()
	if body.Kind() == tree.ResourceSpecification {
		body = body.NextSibling()
	}
	if !isTerminated(body, useBreak, useContinue, labels) {
		return false
	}
	for c := n.FindFirst(tree.LiteralCatch); c.Kind() == tree.LiteralCatch; c = c.NextSibling() {
		if !isTerminated(c.FindFirst(tree.SList), useBreak, useContinue, labels) {
			return false
		}
	}
	return true
}

// switchTerminated requires every group to terminate. A break inside the
// nested switch only leaves that switch.
func switchTerminated(n tree.Node, useContinue bool, labels map[string]bool) bool {
	group := n.FindFirst(tree.CaseGroup)
	if group.IsNil() {
		return false
	}
	for ; !group.IsNil() && group.Kind() != tree.RCurly; group = group.NextSibling() {
		if group.Kind().IsComment() {
			continue
		}
		body := group.FindFirst(tree.SList)
		if body.IsNil() || !isTerminated(body, false, useContinue, labels) {
			return false
		}
	}
	return true
}
