package parser

import "fmt"

// CountObjects performs the null-pool counting walk of spec.md §6: it
// parses src exactly as Parse does but only reports how many Objects the
// resulting pool would need, without allocating any of them. The host is
// expected to size its pool with this count before the real parse.
func CountObjects(src string) (int, error) {
	rules, _, err := scan(src, "")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rules {
		n += 2 // LHS + RHS markers
		n += len(r.lhs) + len(r.rhs)
	}
	return n, nil
}

// ParseInto performs the allocated-pool walk of spec.md §6: it parses src
// into pool, which must already have at least CountObjects(src) capacity
// reserved (pool.Objects may be nil; it is grown in place). Returns
// PoolOverflowError if cap(pool.Objects) is non-zero but too small —
// mirroring the host contract of spec.md §7, even though Go slices could
// otherwise grow silently.
func ParseInto(src, filename string, pool *Pool) error {
	rules, _, err := scan(src, filename)
	if err != nil {
		return err
	}

	need := 0
	for _, r := range rules {
		need += 2 + len(r.lhs) + len(r.rhs)
	}
	if c := cap(pool.Objects); c != 0 && c < need {
		return &PoolOverflowError{Needed: need, Available: c}
	}

	for _, r := range rules {
		pool.add(Object{Tag: TagLHS})
		for _, f := range r.lhs {
			pool.add(Object{Tag: TagFact, Text: f.text, Register: -1, Keep: f.keep, Pos: f.pos})
		}
		pool.add(Object{Tag: TagRHS})
		for _, f := range r.rhs {
			pool.add(Object{Tag: TagFact, Text: f.text, Register: -1, Count: f.count, Pos: f.pos})
		}
	}
	return nil
}

// Parse runs the counting pass then the allocating pass and returns the
// completed pool, as a single convenient call for Go callers (the
// reference host instead makes the two calls explicitly; ParseInto and
// CountObjects are exposed for callers who want to replicate that
// protocol exactly, e.g. to pre-size a pool from a fixed arena).
func Parse(src, filename string) (*Pool, error) {
	n, err := CountObjects(src)
	if err != nil {
		return nil, err
	}
	pool := &Pool{Objects: make([]Object, 0, n)}
	if err := ParseInto(src, filename, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// AddPorts prepends host-supplied port names to pool, ahead of any rule
// objects, per spec.md §3's "PORT* (LHS FACT* RHS FACT*)+" grammar and
// §6's "a separate call injects zero or more port names." Must be called
// before interning; calling it after codegen has already run is a bug in
// the caller. Duplicate names are not collapsed here — the interner
// collapses them via scmp, exactly as it collapses duplicate facts.
func AddPorts(pool *Pool, names []string) {
	ports := make([]Object, len(names))
	for i, n := range names {
		ports[i] = Object{Tag: TagPort, Text: n, Register: -1}
	}
	pool.Objects = append(ports, pool.Objects...)
}

type ruleSides struct {
	lhs []rawFact
	rhs []rawFact
}

// scan is the shared implementation behind CountObjects and ParseInto: it
// lexes src into alternating LHS/RHS sides and splits each side into
// facts, without touching a Pool.
func scan(src, filename string) ([]ruleSides, rune, *Error) {
	delim, sides, offsets, err := splitSides(src, filename)
	if err != nil {
		return nil, 0, err
	}

	var rules []ruleSides
	for i := 0; i < len(sides); i += 2 {
		lhs, err := splitFacts(sides[i], offsets[i], src, filename, true)
		if err != nil {
			return nil, 0, err
		}
		rhs, err := splitFacts(sides[i+1], offsets[i+1], src, filename, false)
		if err != nil {
			return nil, 0, err
		}
		rules = append(rules, ruleSides{lhs: lhs, rhs: rhs})
	}
	return rules, delim, nil
}

// PoolOverflowError is returned by ParseInto when a caller-supplied,
// fixed-capacity pool is too small for the source (spec.md §7).
type PoolOverflowError struct {
	Needed    int
	Available int
}

func (e *PoolOverflowError) Error() string {
	return fmt.Sprintf("pool overflow: need %d objects, have %d", e.Needed, e.Available)
}
