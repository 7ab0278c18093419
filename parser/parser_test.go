package parser

import "testing"

func TestParse_SingleRule(t *testing.T) {
	pool, err := Parse("|a|b", "t.vera")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}

	rules := BuildRules(pool)
	if len(rules) != 1 {
		t.Fatalf("BuildRules: got %d rules, want 1", len(rules))
	}
	if len(rules[0].LHS) != 1 || len(rules[0].RHS) != 1 {
		t.Fatalf("rule shape = LHS %d RHS %d, want 1/1", len(rules[0].LHS), len(rules[0].RHS))
	}
	if got := pool.Objects[rules[0].LHS[0]].Text; got != "a" {
		t.Errorf("LHS fact text = %q, want %q", got, "a")
	}
	if got := pool.Objects[rules[0].RHS[0]].Text; got != "b" {
		t.Errorf("RHS fact text = %q, want %q", got, "b")
	}
}

func TestParse_EmptyLHSAndCount(t *testing.T) {
	pool, err := Parse("||a:2|a|b", "t.vera")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}

	rules := BuildRules(pool)
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}

	if len(rules[0].LHS) != 0 {
		t.Errorf("rule 0 LHS len = %d, want 0 (empty-LHS rule)", len(rules[0].LHS))
	}
	if len(rules[0].RHS) != 1 {
		t.Fatalf("rule 0 RHS len = %d, want 1", len(rules[0].RHS))
	}
	rhs0 := pool.Objects[rules[0].RHS[0]]
	if rhs0.Text != "a" || rhs0.Count != 2 {
		t.Errorf("rule 0 RHS = %q count %d, want \"a\" count 2", rhs0.Text, rhs0.Count)
	}

	if len(rules[1].LHS) != 1 || pool.Objects[rules[1].LHS[0]].Text != "a" {
		t.Errorf("rule 1 LHS mismatch")
	}
	if len(rules[1].RHS) != 1 || pool.Objects[rules[1].RHS[0]].Text != "b" {
		t.Errorf("rule 1 RHS mismatch")
	}
}

func TestParse_KeepMarker(t *testing.T) {
	pool, err := Parse("|sugar?|taste", "t.vera")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	rules := BuildRules(pool)
	fact := pool.Objects[rules[0].LHS[0]]
	if fact.Text != "sugar" || !fact.Keep {
		t.Errorf("got text %q keep %v, want \"sugar\" keep true", fact.Text, fact.Keep)
	}
}

func TestParse_WhitespacePreservedInSlice(t *testing.T) {
	pool, err := Parse("|apple  cake|fruit cake", "t.vera")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	rules := BuildRules(pool)
	if got := pool.Objects[rules[0].LHS[0]].Text; got != "apple  cake" {
		t.Errorf("fact text = %q, want interior whitespace preserved verbatim", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
	}{
		{"all whitespace", "   \n\t  ", ErrEmptySource},
		{"missing RHS", "|a", ErrUnexpectedEOF},
		{"empty fact", "|a,,|b", ErrEmptyFact},
		{"zero count", "|a|b:0", ErrBadCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, "t.vera")
			if err == nil {
				t.Fatalf("Parse(%q): expected error, got nil", tt.src)
			}
			perr, ok := err.(*Error)
			if !ok {
				t.Fatalf("Parse(%q): error type = %T, want *Error", tt.src, err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Parse(%q): kind = %v, want %v", tt.src, perr.Kind, tt.kind)
			}
		})
	}
}

func TestAddPorts_PrecedesRules(t *testing.T) {
	pool, err := Parse("|a|b", "t.vera")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	AddPorts(pool, []string{"in", "out"})

	ports := Ports(pool)
	if len(ports) != 2 {
		t.Fatalf("got %d ports, want 2", len(ports))
	}
	for _, idx := range ports {
		if idx >= 2 {
			t.Errorf("port at index %d, want it to precede rule objects", idx)
		}
	}
	if pool.Objects[0].Text != "in" || pool.Objects[1].Text != "out" {
		t.Errorf("port order not preserved: %q, %q", pool.Objects[0].Text, pool.Objects[1].Text)
	}
}

func TestCountObjects_MatchesParseInto(t *testing.T) {
	src := "||a:2|a|b"
	n, err := CountObjects(src)
	if err != nil {
		t.Fatalf("CountObjects: %v", err)
	}
	pool, err := Parse(src, "t.vera")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pool.Len() != n {
		t.Errorf("CountObjects = %d, but Parse produced %d objects", n, pool.Len())
	}
}

func TestParseInto_PoolOverflow(t *testing.T) {
	pool := &Pool{Objects: make([]Object, 0, 1)}
	err := ParseInto("|a|b", "t.vera", pool)
	if err == nil {
		t.Fatal("expected PoolOverflowError, got nil")
	}
	if _, ok := err.(*PoolOverflowError); !ok {
		t.Errorf("error type = %T, want *PoolOverflowError", err)
	}
}
