package codegen

import "github.com/max22/vera/parser"

// Assembler is the two-pass RV32IM emitter of spec.md §4.4. Pass 1 runs
// with every label table still zero, discovering each label's address by
// simply emitting the program and recording the running program counter
// at each label definition; the buffer it produces is discarded, because
// displacements computed against unresolved labels are wrong, but every
// instruction sequence's *length* never depends on operand values, so the
// addresses recorded are already final. Pass 2 re-emits with the now
// filled-in tables and keeps the result.
type Assembler struct {
	pool    *parser.Pool
	rules   []parser.Rule // only rules with a non-empty LHS (spec.md §4.3: empty-LHS rules are initial conditions, not runtime code)
	r       int
	initial []uint32
	maxSize int

	registersLabels []uint32 // byte offset of each register word
	rulesLabels     []uint32 // byte offset of each rule's prologue; len(rules)+1, last entry is the end label
	skipLabels      []uint32 // byte offset of each matcher BGEU's target (the instruction after the t1 update), one per distinct LHS fact
}

// NewAssembler prepares an Assembler for pool, whose objects must already
// be interned (registers assigned) and whose initial register vector has
// already been synthesized by package intern.
func NewAssembler(pool *parser.Pool, registerCount int, initial []uint32, maxSize int) *Assembler {
	var runtime []parser.Rule
	for _, rule := range parser.BuildRules(pool) {
		if len(rule.LHS) > 0 {
			runtime = append(runtime, rule)
		}
	}

	return &Assembler{
		pool:            pool,
		rules:           runtime,
		r:               registerCount,
		initial:         initial,
		maxSize:         maxSize,
		registersLabels: make([]uint32, registerCount),
		rulesLabels:     make([]uint32, len(runtime)+1),
	}
}

// Emit runs pass 1 then pass 2 and returns the final binary image, or a
// *CodegenOverflowError / *ImmediateRangeError on failure (spec.md §7).
func (a *Assembler) Emit() ([]byte, error) {
	total := 0
	for _, rule := range a.rules {
		total += len(distinctLHS(a.pool, rule))
	}
	a.skipLabels = make([]uint32, total)

	// Pass 1: every label table entry is still its zero default, so every
	// forward-referencing displacement computed here is bogus (spec.md
	// §4.4.3). Its only job is to discover label addresses by running the
	// emitter to find out how long each instruction sequence is; the
	// buffer is discarded and the (wrong) displacements must not be
	// range-checked, since a real, in-range pass-2 offset can easily look
	// out of range when computed against a zeroed label.
	if _, err := a.runPass(false); err != nil {
		return nil, err
	}
	buf, err := a.runPass(true)
	if err != nil {
		return nil, err
	}
	if len(buf) > a.maxSize {
		return nil, &CodegenOverflowError{Emitted: len(buf), MaxSize: a.maxSize}
	}
	return buf, nil
}

func (a *Assembler) runPass(validate bool) ([]byte, error) {
	var buf []byte
	pc := uint32(0)
	emit := func(word uint32) {
		buf = append(buf, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
		pc += 4
	}

	codeEntry := uint32(4 + 4*a.r)
	off, err := branchOffset(-1, int64(codeEntry)-int64(pc), jalRange, validate)
	if err != nil {
		return nil, err
	}
	emit(JAL(RegZero, off))

	for j := 0; j < a.r; j++ {
		a.registersLabels[j] = pc
		emit(a.initial[j])
	}

	skipIdx := 0
	for ri, rule := range a.rules {
		a.rulesLabels[ri] = pc
		var emitErr error
		skipIdx, emitErr = a.emitRule(ri, rule, skipIdx, &pc, emit, validate)
		if emitErr != nil {
			return nil, emitErr
		}
	}
	a.rulesLabels[len(a.rules)] = pc

	emit(EBREAK())
	emit(RET())
	return buf, nil
}

// emitRule emits rule ri's prologue, matcher, and rewrite epilogue
// (spec.md §4.4.4), returning the updated skip-label cursor. validate
// selects whether displacements against the (possibly still-unresolved)
// label tables are range-checked; pass 1 always passes false.
func (a *Assembler) emitRule(ri int, rule parser.Rule, skipIdx int, pc *uint32, emit func(uint32), validate bool) (int, error) {
	emit(ADDI(RegT1, RegZero, -1)) // t1 <- +inf (0xFFFFFFFF)

	for _, lhs := range distinctLHS(a.pool, rule) {
		auipc, lw := loadRegisterWord(RegT0, a.registersLabels[lhs.register], *pc)
		emit(auipc)
		emit(lw)
		emit(ADDI(RegT2, RegZero, 0))

		failOff, err := branchOffset(ri, int64(a.rulesLabels[ri+1])-int64(*pc), branchRange, validate)
		if err != nil {
			return skipIdx, err
		}
		emit(BEQ(RegT0, RegT2, failOff))

		emit(BGEU(RegT0, RegT1, 8)) // skip_label is always the very next instruction pair away
		emit(ADD(RegT1, RegT0, RegZero))

		a.skipLabels[skipIdx] = *pc
		skipIdx++
	}

	diff := diffForRule(a.pool, rule, a.r)
	for j := 0; j < a.r; j++ {
		d := diff[j]
		if d == 0 {
			continue
		}
		if d < -2048 || d > 2047 {
			return skipIdx, newImmRangeErr(ri, "diff", d, -2048, 2047)
		}

		auipc, lw := loadRegisterWord(RegT0, a.registersLabels[j], *pc)
		emit(auipc)
		emit(lw)
		emit(ADDI(RegT2, RegZero, int32(d)))
		emit(MUL(RegT2, RegT2, RegT1))
		emit(ADD(RegT0, RegT0, RegT2))

		auipcS, sw := storeRegisterWord(RegT0, RegT2, a.registersLabels[j], *pc)
		emit(auipcS)
		emit(sw)
	}

	emit(ADDI(RegA0, RegA0, 1))
	endOff, err := branchOffset(ri, int64(a.rulesLabels[len(a.rules)])-int64(*pc), jalRange, validate)
	if err != nil {
		return skipIdx, err
	}
	emit(JAL(RegZero, endOff))

	return skipIdx, nil
}

type rangeKind int

const (
	branchRange rangeKind = iota // B-type: 13-bit signed, even
	jalRange                     // J-type: 21-bit signed, even
)

// branchOffset validates that a computed displacement fits the encoding
// it will occupy, returning *ImmediateRangeError otherwise (spec.md
// §4.4.7: "displacement out of range ... emitter asserts"). On pass 1
// every forward label is still zero (spec.md §4.4.3), so the computed
// displacement is meaningless; validate is false in that case and the
// truncated offset is returned unchecked, to be discarded along with the
// rest of pass 1's buffer.
func branchOffset(rule int, off int64, kind rangeKind, validate bool) (int32, error) {
	var lo, hi int64
	switch kind {
	case branchRange:
		lo, hi = -4096, 4094
	case jalRange:
		lo, hi = -1048576, 1048574
	}
	if !validate {
		return int32(off), nil
	}
	if off%2 != 0 || off < lo || off > hi {
		return 0, newImmRangeErr(rule, "branch-offset", off, lo, hi)
	}
	return int32(off), nil
}

type lhsFact struct {
	register int
	keep     bool
}

// distinctLHS returns the rule's LHS facts with duplicate registers
// collapsed to their first occurrence (spec.md §9 open question 1: set
// semantics — "require at least one copy", not count-sensitive matching).
func distinctLHS(pool *parser.Pool, rule parser.Rule) []lhsFact {
	seen := make(map[int]bool, len(rule.LHS))
	var out []lhsFact
	for _, idx := range rule.LHS {
		obj := pool.Objects[idx]
		if seen[obj.Register] {
			continue
		}
		seen[obj.Register] = true
		out = append(out, lhsFact{register: obj.Register, keep: obj.Keep})
	}
	return out
}

// diffForRule computes the per-register net change diff[j] of spec.md
// §4.4.4's rewrite epilogue: -1 per distinct consumed (non-keep) LHS
// register, + RHS fact counts.
func diffForRule(pool *parser.Pool, rule parser.Rule, r int) []int64 {
	diff := make([]int64, r)
	for _, lhs := range distinctLHS(pool, rule) {
		if !lhs.keep {
			diff[lhs.register]--
		}
	}
	for _, idx := range rule.RHS {
		obj := pool.Objects[idx]
		diff[obj.Register] += int64(obj.Count)
	}
	return diff
}
