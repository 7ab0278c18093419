package codegen

import "github.com/max22/vera/parser"

// Generate assembles pool into the spec.md §4.4 binary layout: an entry
// jump, R initial register words, per-rule matcher/rewrite code, and the
// end label's EBREAK/RET. pool must already be interned and initial must
// be the vector from intern.InitialRegisters. maxSize bounds the emitted
// image (spec.md §7's CodegenOverflow).
func Generate(pool *parser.Pool, registerCount int, initial []uint32, maxSize int) ([]byte, error) {
	return NewAssembler(pool, registerCount, initial, maxSize).Emit()
}
