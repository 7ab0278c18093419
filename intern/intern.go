package intern

import "github.com/max22/vera/parser"

// Intern walks pool in order and assigns each distinct PORT/FACT object
// (by Scmp equivalence) a contiguous non-negative register index, reusing
// an earlier object's index when they match (spec.md §4.2). Returns the
// total register count R. Quadratic in pool size, as spec.md §4.2 notes
// is acceptable at the expected scale.
func Intern(pool *parser.Pool) int {
	next := 0

	for i := range pool.Objects {
		obj := &pool.Objects[i]
		if obj.Tag != parser.TagPort && obj.Tag != parser.TagFact {
			continue
		}

		found := -1
		for j := 0; j < i; j++ {
			other := &pool.Objects[j]
			if other.Tag != parser.TagPort && other.Tag != parser.TagFact {
				continue
			}
			if other.Register < 0 {
				continue
			}
			if Scmp(obj.Text, other.Text) {
				found = other.Register
				break
			}
		}

		if found >= 0 {
			obj.Register = found
		} else {
			obj.Register = next
			next++
		}
	}

	return next
}

// InitialRegisters scans the interned pool once and accumulates the RHS
// fact counts of every empty-LHS rule into a fresh register vector of
// length r (spec.md §4.3). Rules with a non-empty LHS contribute nothing.
func InitialRegisters(pool *parser.Pool, r int) []uint32 {
	initial := make([]uint32, r)

	for _, rule := range parser.BuildRules(pool) {
		if len(rule.LHS) != 0 {
			continue
		}
		for _, idx := range rule.RHS {
			fact := pool.Objects[idx]
			initial[fact.Register] += fact.Count
		}
	}

	return initial
}
