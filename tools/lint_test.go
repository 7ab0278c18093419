package tools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/max22/vera/tools"
)

func hasCode(issues []*tools.LintIssue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func TestLint_RedundantLHS(t *testing.T) {
	issues := tools.NewLinter(nil).Lint("|a,a|b", "t.vera", nil)
	assert.True(t, hasCode(issues, "REDUNDANT_LHS_FACT"), "issues = %v", issues)
}

func TestLint_UnusedPort(t *testing.T) {
	issues := tools.NewLinter(nil).Lint("|a|b", "t.vera", []string{"unused"})
	assert.True(t, hasCode(issues, "UNUSED_PORT"), "issues = %v", issues)
}

func TestLint_DeadRule(t *testing.T) {
	// "x" is never produced by any empty-LHS rule or any other rule's
	// RHS, so the rule consuming it can never fire.
	issues := tools.NewLinter(nil).Lint("||a|a|b|x|y", "t.vera", nil)
	assert.True(t, hasCode(issues, "DEAD_RULE"), "issues = %v", issues)
}

func TestLint_NoOpRule(t *testing.T) {
	issues := tools.NewLinter(nil).Lint("||", "t.vera", nil)
	assert.True(t, hasCode(issues, "NOOP_RULE"), "issues = %v", issues)
}

func TestLint_StrayKeep(t *testing.T) {
	// "a?" is never matched as a plain LHS fact anywhere else.
	issues := tools.NewLinter(nil).Lint("|a?|b", "t.vera", nil)
	assert.True(t, hasCode(issues, "STRAY_KEEP"), "issues = %v", issues)
}

func TestLint_PortFactCollision(t *testing.T) {
	// "apple" is both a declared port and a fact used in a rule, so the
	// two spellings scmp-collide onto the same register.
	issues := tools.NewLinter(nil).Lint("|apple|b", "t.vera", []string{"apple"})
	assert.True(t, hasCode(issues, "PORT_FACT_COLLISION"), "issues = %v", issues)
}

func TestLint_CleanSourceHasNoErrors(t *testing.T) {
	issues := tools.NewLinter(nil).Lint("||a:1|a|b", "t.vera", nil)
	for _, i := range issues {
		assert.NotEqual(t, tools.LintError, i.Level, "unexpected error-level issue on clean source: %v", i)
	}
}

func TestLint_ParseErrorShortCircuits(t *testing.T) {
	issues := tools.NewLinter(nil).Lint("   ", "t.vera", nil)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, tools.LintError, issues[0].Level)
	}
}
