package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/max22/vera/intern"
	"github.com/max22/vera/parser"
)

// RefKind is how a rule touches a register: consuming it from the LHS
// or producing it on the RHS. PORT declarations get their own kind.
type RefKind int

const (
	RefConsume RefKind = iota
	RefProduce
	RefPortDecl
)

func (k RefKind) String() string {
	switch k {
	case RefConsume:
		return "consume"
	case RefProduce:
		return "produce"
	case RefPortDecl:
		return "port"
	default:
		return "unknown"
	}
}

// Reference is one occurrence of a register within the source.
type Reference struct {
	Kind RefKind
	Rule int // index into the rule slice BuildRules returns, -1 for a port declaration
	Pos  parser.Position
}

// Symbol is a single interned register and everywhere it is touched.
type Symbol struct {
	Register   int
	Canonical  string // text of its first occurrence
	IsPort     bool
	References []*Reference
}

// XRefGenerator builds a register-level cross-reference over a parsed
// Vera program, the same role the reference assembler's XRefGenerator
// plays over labels and symbols.
type XRefGenerator struct {
	symbols map[int]*Symbol
}

// NewXRefGenerator creates an empty XRefGenerator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[int]*Symbol)}
}

// Generate parses input, interns it with ports, and collects every
// register's references.
func (x *XRefGenerator) Generate(input, filename string, ports []string) (map[int]*Symbol, error) {
	pool, err := parser.Parse(input, filename)
	if err != nil {
		return nil, err
	}
	parser.AddPorts(pool, ports)
	intern.Intern(pool)

	for _, idx := range parser.Ports(pool) {
		obj := pool.Objects[idx]
		sym := x.symbolFor(obj.Register, obj.Text)
		sym.IsPort = true
		sym.References = append(sym.References, &Reference{Kind: RefPortDecl, Rule: -1, Pos: obj.Pos})
	}

	for ri, rule := range parser.BuildRules(pool) {
		for _, idx := range rule.LHS {
			obj := pool.Objects[idx]
			sym := x.symbolFor(obj.Register, obj.Text)
			sym.References = append(sym.References, &Reference{Kind: RefConsume, Rule: ri, Pos: obj.Pos})
		}
		for _, idx := range rule.RHS {
			obj := pool.Objects[idx]
			sym := x.symbolFor(obj.Register, obj.Text)
			sym.References = append(sym.References, &Reference{Kind: RefProduce, Rule: ri, Pos: obj.Pos})
		}
	}

	return x.symbols, nil
}

func (x *XRefGenerator) symbolFor(register int, text string) *Symbol {
	sym, ok := x.symbols[register]
	if !ok {
		sym = &Symbol{Register: register, Canonical: canonicalize(text)}
		x.symbols[register] = sym
	}
	return sym
}

// GetSymbol looks up a register's Symbol.
func (x *XRefGenerator) GetSymbol(register int) (*Symbol, bool) {
	sym, ok := x.symbols[register]
	return sym, ok
}

// GetUnusedPorts returns every port register with no LHS/RHS reference.
func (x *XRefGenerator) GetUnusedPorts() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if !sym.IsPort {
			continue
		}
		used := false
		for _, ref := range sym.References {
			if ref.Kind != RefPortDecl {
				used = true
				break
			}
		}
		if !used {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Register < out[j].Register })
	return out
}

// XRefReport renders a cross-reference as a text report, sorted by
// register number (the order intern.Intern assigned them).
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport sorts symbols by register for deterministic output.
func NewXRefReport(symbols map[int]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, sym)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Register < sorted[j].Register })
	return &XRefReport{symbols: sorted}
}

func (r *XRefReport) String() string {
	var sb strings.Builder
	sb.WriteString("Register Cross-Reference\n")
	sb.WriteString("=========================\n\n")

	for _, sym := range r.symbols {
		kind := "fact"
		if sym.IsPort {
			kind = "port"
		}
		fmt.Fprintf(&sb, "r%-4d %-30q [%s]\n", sym.Register, sym.Canonical, kind)

		byKind := make(map[RefKind][]*Reference)
		for _, ref := range sym.References {
			byKind[ref.Kind] = append(byKind[ref.Kind], ref)
		}
		for _, kind := range []RefKind{RefPortDecl, RefConsume, RefProduce} {
			refs := byKind[kind]
			if len(refs) == 0 {
				continue
			}
			lines := make([]string, len(refs))
			for i, ref := range refs {
				lines[i] = ref.Pos.String()
			}
			fmt.Fprintf(&sb, "  %-9s: %s\n", kind, strings.Join(lines, ", "))
		}
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "Summary\n=======\nRegisters: %d\nUnused ports: %d\n", len(r.symbols), len(unusedPortsOf(r.symbols)))
	return sb.String()
}

func unusedPortsOf(symbols []*Symbol) []*Symbol {
	var out []*Symbol
	for _, sym := range symbols {
		if !sym.IsPort {
			continue
		}
		used := false
		for _, ref := range sym.References {
			if ref.Kind != RefPortDecl {
				used = true
				break
			}
		}
		if !used {
			out = append(out, sym)
		}
	}
	return out
}

// GenerateXRef is a convenience function producing a full text report.
func GenerateXRef(input, filename string, ports []string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(input, filename, ports)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
