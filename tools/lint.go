// Package tools provides developer-facing analysis of Vera source: a
// linter, a canonical formatter, and a cross-reference generator, the
// same trio the reference assembler keeps under tools/ for its own
// source language.
package tools

import (
	"sort"

	"github.com/max22/vera/intern"
	"github.com/max22/vera/parser"
)

// LintLevel is the severity of a LintIssue.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding, positioned at the fact or rule it
// concerns.
type LintIssue struct {
	Level   LintLevel
	Pos     parser.Position
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return i.Pos.String() + ": " + i.Level.String() + ": " + i.Message + " [" + i.Code + "]"
}

// LintOptions controls which passes Lint runs.
type LintOptions struct {
	CheckUnusedPorts  bool // ports never referenced by any rule
	CheckDeadRules    bool // rules whose LHS can never become satisfiable
	CheckRedundantLHS bool // a rule matching the same register twice
	CheckNoOpRules    bool // rule with an empty LHS and an empty RHS
	CheckStrayKeep    bool // "fact?" whose fact never appears as a plain LHS fact elsewhere
	CheckPortCollide  bool // port name scmp-equal to a fact already in use
}

// DefaultLintOptions enables every pass.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		CheckUnusedPorts:  true,
		CheckDeadRules:    true,
		CheckRedundantLHS: true,
		CheckNoOpRules:    true,
		CheckStrayKeep:    true,
		CheckPortCollide:  true,
	}
}

// Linter analyzes Vera source for issues beyond what the parser itself
// rejects.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue
}

// NewLinter creates a Linter; a nil options uses DefaultLintOptions.
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{options: options}
}

// Lint parses src and runs the enabled passes, returning issues sorted
// by source position. A parse failure is reported as a single LintError
// issue and short-circuits the remaining passes.
func (l *Linter) Lint(src, filename string, ports []string) []*LintIssue {
	l.issues = nil

	pool, err := parser.Parse(src, filename)
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			l.issues = append(l.issues, &LintIssue{
				Level: LintError, Pos: perr.Pos, Message: perr.Message, Code: perr.Kind.String(),
			})
		} else {
			l.issues = append(l.issues, &LintIssue{Level: LintError, Message: err.Error(), Code: "PARSE_ERROR"})
		}
		return l.issues
	}
	parser.AddPorts(pool, ports)

	r := intern.Intern(pool)
	rules := parser.BuildRules(pool)

	if l.options.CheckRedundantLHS {
		l.checkRedundantLHS(pool, rules)
	}
	if l.options.CheckUnusedPorts {
		l.checkUnusedPorts(pool)
	}
	if l.options.CheckDeadRules {
		l.checkDeadRules(pool, rules, r)
	}
	if l.options.CheckNoOpRules {
		l.checkNoOpRules(pool, rules)
	}
	if l.options.CheckStrayKeep {
		l.checkStrayKeep(pool, rules)
	}
	if l.options.CheckPortCollide {
		l.checkPortCollide(pool)
	}

	sort.SliceStable(l.issues, func(i, j int) bool {
		a, b := l.issues[i].Pos, l.issues[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return l.issues
}

// checkRedundantLHS warns when a rule's LHS names the same register
// (i.e. the same canonical fact) more than once: matching is set-based
// over distinct registers, so the repeat contributes nothing.
func (l *Linter) checkRedundantLHS(pool *parser.Pool, rules []parser.Rule) {
	for _, rule := range rules {
		seen := make(map[int]bool)
		for _, idx := range rule.LHS {
			obj := pool.Objects[idx]
			if seen[obj.Register] {
				l.issues = append(l.issues, &LintIssue{
					Level:   LintWarning,
					Pos:     obj.Pos,
					Message: "fact '" + obj.Text + "' already matched earlier in this rule's left side",
					Code:    "REDUNDANT_LHS_FACT",
				})
				continue
			}
			seen[obj.Register] = true
		}
	}
}

// checkUnusedPorts warns about a declared port whose register is never
// referenced by any rule's LHS or RHS.
func (l *Linter) checkUnusedPorts(pool *parser.Pool) {
	referenced := make(map[int]bool)
	for _, obj := range pool.Objects {
		if obj.Tag == parser.TagFact {
			referenced[obj.Register] = true
		}
	}
	for _, idx := range parser.Ports(pool) {
		port := pool.Objects[idx]
		if !referenced[port.Register] {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Pos:     port.Pos,
				Message: "port '" + port.Text + "' is never referenced by a rule",
				Code:    "UNUSED_PORT",
			})
		}
	}
}

// checkDeadRules flags rules whose LHS can never be fully satisfied: a
// register reachable only through a rule that is itself unreachable.
// Reachability starts from the initial register vector and closes over
// rules whose LHS is already fully reachable.
func (l *Linter) checkDeadRules(pool *parser.Pool, rules []parser.Rule, r int) {
	initial := intern.InitialRegisters(pool, r)
	reachable := make([]bool, r)
	for reg, count := range initial {
		if count > 0 {
			reachable[reg] = true
		}
	}

	type ruleRegs struct {
		lhs, rhs []int
		idx      int
	}
	var infos []ruleRegs
	for i, rule := range rules {
		if len(rule.LHS) == 0 {
			continue // feeds the initial vector only, handled above
		}
		infos = append(infos, ruleRegs{lhs: distinctRegisters(pool, rule.LHS), rhs: distinctRegisters(pool, rule.RHS), idx: i})
	}

	for changed := true; changed; {
		changed = false
		for _, info := range infos {
			if !allReachable(reachable, info.lhs) {
				continue
			}
			for _, reg := range info.rhs {
				if !reachable[reg] {
					reachable[reg] = true
					changed = true
				}
			}
		}
	}

	for _, info := range infos {
		if allReachable(reachable, info.lhs) {
			continue
		}
		firstIdx := rules[info.idx].LHS[0]
		l.issues = append(l.issues, &LintIssue{
			Level:   LintWarning,
			Pos:     pool.Objects[firstIdx].Pos,
			Message: "this rule's left side can never be fully satisfied by any reachable fact",
			Code:    "DEAD_RULE",
		})
	}
}

// checkNoOpRules flags a rule with both an empty LHS and an empty RHS:
// it fires unconditionally and changes nothing.
func (l *Linter) checkNoOpRules(pool *parser.Pool, rules []parser.Rule) {
	for _, rule := range rules {
		if len(rule.LHS) == 0 && len(rule.RHS) == 0 {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintInfo,
				Message: "rule has an empty left and right side and does nothing",
				Code:    "NOOP_RULE",
			})
		}
	}
}

// checkStrayKeep flags a "fact?" whose register never appears as a
// plain (non-keep) LHS fact anywhere: a keep marker promises the fact
// is required but not consumed elsewhere, so one that is never
// otherwise consumed is likely a typo for a plain LHS fact.
func (l *Linter) checkStrayKeep(pool *parser.Pool, rules []parser.Rule) {
	plainLHS := make(map[int]bool)
	for _, rule := range rules {
		for _, idx := range rule.LHS {
			obj := pool.Objects[idx]
			if !obj.Keep {
				plainLHS[obj.Register] = true
			}
		}
	}
	for _, rule := range rules {
		for _, idx := range rule.LHS {
			obj := pool.Objects[idx]
			if obj.Keep && !plainLHS[obj.Register] {
				l.issues = append(l.issues, &LintIssue{
					Level:   LintWarning,
					Pos:     obj.Pos,
					Message: "'" + obj.Text + "?' is never consumed as a plain fact anywhere; check for a typo",
					Code:    "STRAY_KEEP",
				})
			}
		}
	}
}

// checkPortCollide notes a declared port whose register is shared with
// a fact's canonical text: not an error, since interning is meant to
// unify them, but worth surfacing in case it was accidental.
func (l *Linter) checkPortCollide(pool *parser.Pool) {
	factRegs := make(map[int]bool)
	for _, obj := range pool.Objects {
		if obj.Tag == parser.TagFact {
			factRegs[obj.Register] = true
		}
	}
	for _, idx := range parser.Ports(pool) {
		port := pool.Objects[idx]
		if factRegs[port.Register] {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintInfo,
				Pos:     port.Pos,
				Message: "port '" + port.Text + "' shares a register with a same-named fact",
				Code:    "PORT_FACT_COLLISION",
			})
		}
	}
}

func distinctRegisters(pool *parser.Pool, indices []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, idx := range indices {
		reg := pool.Objects[idx].Register
		if !seen[reg] {
			seen[reg] = true
			out = append(out, reg)
		}
	}
	return out
}

func allReachable(reachable []bool, regs []int) bool {
	for _, reg := range regs {
		if !reachable[reg] {
			return false
		}
	}
	return true
}
