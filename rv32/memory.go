// Package rv32 is a small RV32IM interpreter covering exactly the
// instruction subset codegen emits (spec.md §4.4.1). It exists to drive
// the compiler's own test suite and the `vera -run`/`-tui` CLI modes end
// to end; spec.md §1 treats the RISC-V simulator used in testing as
// external to the compiler core, so this package is deliberately kept
// outside the parser/intern/codegen import graph — nothing in the core
// depends on it.
package rv32

import "fmt"

// Memory is a flat, byte-addressable little-endian address space, sized
// to hold exactly the emitted image (spec.md §4.4's binary is loaded at
// address 0 of the target's RAM).
type Memory struct {
	bytes []byte
}

// NewMemory copies image into a fresh Memory.
func NewMemory(image []byte) *Memory {
	m := &Memory{bytes: make([]byte, len(image))}
	copy(m.bytes, image)
	return m
}

// Len reports the memory size in bytes.
func (m *Memory) Len() int {
	return len(m.bytes)
}

// ReadWord reads a little-endian 32-bit word at addr.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if int64(addr)+4 > int64(len(m.bytes)) {
		return 0, fmt.Errorf("rv32: read out of bounds at 0x%08x", addr)
	}
	b := m.bytes[addr : addr+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// WriteWord writes a little-endian 32-bit word at addr.
func (m *Memory) WriteWord(addr, value uint32) error {
	if int64(addr)+4 > int64(len(m.bytes)) {
		return fmt.Errorf("rv32: write out of bounds at 0x%08x", addr)
	}
	m.bytes[addr] = byte(value)
	m.bytes[addr+1] = byte(value >> 8)
	m.bytes[addr+2] = byte(value >> 16)
	m.bytes[addr+3] = byte(value >> 24)
	return nil
}

// Registers returns a copy of the R register words that live at byte
// offsets [4, 4+4*R) of the image, per spec.md §4.4's binary layout.
func (m *Memory) Registers(r int) ([]uint32, error) {
	out := make([]uint32, r)
	for j := 0; j < r; j++ {
		w, err := m.ReadWord(uint32(4 + 4*j))
		if err != nil {
			return nil, err
		}
		out[j] = w
	}
	return out, nil
}
