package parser

// Tag identifies the role of an Object within the flat pool (spec.md §3).
type Tag int

const (
	TagPort Tag = iota
	TagLHS
	TagRHS
	TagFact
)

func (t Tag) String() string {
	switch t {
	case TagPort:
		return "PORT"
	case TagLHS:
		return "LHS"
	case TagRHS:
		return "RHS"
	case TagFact:
		return "FACT"
	default:
		return "UNKNOWN"
	}
}

// Object is one entry of the flat object pool the parser produces. The
// pool obeys the grammar PORT* (LHS FACT* RHS FACT*)+ ; not every field is
// meaningful for every Tag (see spec.md §3's attribute table).
type Object struct {
	Tag Tag

	// PORT: stable externally-supplied name. FACT: source slice text.
	Text string

	// Filled in by intern.Intern; -1 until then.
	Register int

	// LHS FACT only: "fact?" was written — required but not consumed.
	Keep bool

	// RHS FACT only: the "fact : N" multiplier, default 1.
	Count uint32

	Pos Position
}

// Pool is the ordered, immutable-once-built sequence of Objects the parser
// hands to the interner and codegen. It is a contiguous slice rather than
// a linked list, per spec.md §9's "prefer the contiguous pool" guidance.
type Pool struct {
	Objects []Object
}

// Len reports the number of objects currently in the pool.
func (p *Pool) Len() int {
	return len(p.Objects)
}

func (p *Pool) add(obj Object) {
	p.Objects = append(p.Objects, obj)
}

// Rule describes one LHS|RHS rule as a pair of index ranges into Pool,
// convenient for the interner and codegen to walk without re-scanning
// markers. BuildRules derives these ranges from the pool's marker layout.
type Rule struct {
	LHS []int // indices of LHS FACT objects
	RHS []int // indices of RHS FACT objects
}

// BuildRules walks the pool once and groups FACT objects into per-rule
// LHS/RHS slices, using the marker grammar of spec.md §3: the next LHS
// marker ends the previous rule, there is no explicit terminator.
func BuildRules(pool *Pool) []Rule {
	var rules []Rule
	var cur *Rule
	side := TagLHS // which side new FACTs belong to

	for i, obj := range pool.Objects {
		switch obj.Tag {
		case TagPort:
			continue
		case TagLHS:
			rules = append(rules, Rule{})
			cur = &rules[len(rules)-1]
			side = TagLHS
		case TagRHS:
			side = TagRHS
		case TagFact:
			if cur == nil {
				continue
			}
			if side == TagLHS {
				cur.LHS = append(cur.LHS, i)
			} else {
				cur.RHS = append(cur.RHS, i)
			}
		}
	}
	return rules
}

// Ports returns the indices of PORT objects, in pool order (declaration
// order). A repeated port name keeps its own PORT object and index; the
// interner only gives the repeats one shared register.
func Ports(pool *Pool) []int {
	var idx []int
	for i, obj := range pool.Objects {
		if obj.Tag == TagPort {
			idx = append(idx, i)
		}
	}
	return idx
}
