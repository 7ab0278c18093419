package codegen

import (
	"testing"

	"github.com/max22/vera/parser"
)

func TestBranchOffset_RejectsOutOfRange(t *testing.T) {
	if _, err := branchOffset(0, 5000, branchRange, true); err == nil {
		t.Error("branchOffset: want error for 5000 exceeding B-type range, got nil")
	}
	if _, err := branchOffset(0, 3, branchRange, true); err == nil {
		t.Error("branchOffset: want error for odd offset 3, got nil")
	}
	if _, err := branchOffset(0, 4000, branchRange, true); err != nil {
		t.Errorf("branchOffset: unexpected error for in-range 4000: %v", err)
	}
	if _, err := branchOffset(0, 1048574, jalRange, true); err != nil {
		t.Errorf("branchOffset: unexpected error for in-range J-type max: %v", err)
	}
	if _, err := branchOffset(0, 1048576, jalRange, true); err == nil {
		t.Error("branchOffset: want error for J-type offset exceeding range, got nil")
	}
}

func TestBranchOffset_SkipsValidationOnPass1(t *testing.T) {
	// Pass 1's label tables are still zero, so a wildly out-of-range
	// displacement must pass through untouched rather than erroring
	// (spec.md §4.4.3).
	if _, err := branchOffset(0, 5000, branchRange, false); err != nil {
		t.Errorf("branchOffset: pass 1 (validate=false) must not reject out-of-range offsets, got %v", err)
	}
	if _, err := branchOffset(0, -5_000_000, jalRange, false); err != nil {
		t.Errorf("branchOffset: pass 1 (validate=false) must not reject out-of-range offsets, got %v", err)
	}
}

func TestDistinctLHS_CollapsesDuplicateRegisters(t *testing.T) {
	pool, err := parser.Parse("|a,a|b", "t.vera")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := 0
	for i := range pool.Objects {
		if pool.Objects[i].Tag == parser.TagFact {
			// manual, dependency-free interning: "a" twice shares a register
			if pool.Objects[i].Text == "a" {
				pool.Objects[i].Register = 0
			} else {
				pool.Objects[i].Register = 1
			}
			if pool.Objects[i].Register >= r {
				r = pool.Objects[i].Register + 1
			}
		}
	}

	rules := parser.BuildRules(pool)
	lhs := distinctLHS(pool, rules[0])
	if len(lhs) != 1 {
		t.Fatalf("distinctLHS: got %d entries, want 1 (duplicate register collapsed)", len(lhs))
	}
	if lhs[0].register != 0 {
		t.Errorf("distinctLHS: register = %d, want 0", lhs[0].register)
	}
}

func TestDiffForRule_KeepFactContributesNoConsumption(t *testing.T) {
	pool, err := parser.Parse("|a?|b", "t.vera")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pool.Objects[1].Register = 0 // the "a?" fact
	pool.Objects[3].Register = 1 // "b"

	rules := parser.BuildRules(pool)
	diff := diffForRule(pool, rules[0], 2)
	if diff[0] != 0 {
		t.Errorf("diff[a?] = %d, want 0 (kept, not consumed)", diff[0])
	}
	if diff[1] != 1 {
		t.Errorf("diff[b] = %d, want 1", diff[1])
	}
}
