// Package codegen implements the two-pass RV32IM code emitter of
// spec.md §4.4: the per-rule matcher/rewrite machine code, the label
// tables that make forward branches possible, and the fixed binary
// layout (entry jump, register image, rule code, end label).
package codegen

// Register convention fixed by spec.md §4.4.2.
const (
	RegZero = 0  // x0
	RegRA   = 1  // x1, return address
	RegT0   = 5  // x5, scratch
	RegT1   = 6  // x6, min accumulator
	RegT2   = 7  // x7, scratch
	RegA0   = 10 // x10, rules-fired accumulator
)

const (
	opLoad   = 0x03 // LW
	opStore  = 0x23 // SW
	opOpImm  = 0x13 // ADDI
	opOp     = 0x33 // ADD / MUL
	opAUIPC  = 0x17
	opLUI    = 0x37
	opBranch = 0x63 // BEQ / BGEU
	opJALR   = 0x67
	opJAL    = 0x6F
	opSystem = 0x73 // EBREAK
)

func encR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// ADDI rd, rs1, imm — I-type, funct3=000.
func ADDI(rd, rs1 uint32, imm int32) uint32 {
	return imm12(imm)<<20 | rs1<<15 | 0<<12 | rd<<7 | opOpImm
}

// ADD rd, rs1, rs2 — R-type, funct7=0000000, funct3=000.
func ADD(rd, rs1, rs2 uint32) uint32 {
	return encR(0x00, rs2, rs1, 0x0, rd, opOp)
}

// MUL rd, rs1, rs2 — R-type, RV32M, funct7=0000001, funct3=000.
func MUL(rd, rs1, rs2 uint32) uint32 {
	return encR(0x01, rs2, rs1, 0x0, rd, opOp)
}

// LUI rd, imm20 — U-type.
func LUI(rd uint32, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | rd<<7 | opLUI
}

// AUIPC rd, imm20 — U-type.
func AUIPC(rd uint32, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | rd<<7 | opAUIPC
}

// LW rd, offset(rs1) — I-type, funct3=010.
func LW(rd, rs1 uint32, offset int32) uint32 {
	return imm12(offset)<<20 | rs1<<15 | 0x2<<12 | rd<<7 | opLoad
}

// SW rs2, offset(rs1) — S-type, funct3=010.
func SW(rs1, rs2 uint32, offset int32) uint32 {
	u := imm12(offset)
	imm11_5 := (u >> 5) & 0x7F
	imm4_0 := u & 0x1F
	return imm11_5<<25 | rs2<<20 | rs1<<15 | 0x2<<12 | imm4_0<<7 | opStore
}

// JAL rd, offset — J-type, offset is PC-relative, even, fits in 21 signed bits.
func JAL(rd uint32, offset int32) uint32 {
	u := uint32(offset) & 0x1FFFFF
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xFF
	return bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | rd<<7 | opJAL
}

// JALR rd, rs1, offset — I-type, funct3=000.
func JALR(rd, rs1 uint32, offset int32) uint32 {
	return imm12(offset)<<20 | rs1<<15 | 0<<12 | rd<<7 | opJALR
}

// RET is the JALR x0, x1, 0 pseudo-instruction.
func RET() uint32 {
	return JALR(RegZero, RegRA, 0)
}

// BEQ rs1, rs2, offset — B-type, funct3=000, offset PC-relative/even, 13 signed bits.
func BEQ(rs1, rs2 uint32, offset int32) uint32 {
	return encB(rs1, rs2, 0x0, offset)
}

// BGEU rs1, rs2, offset — B-type, funct3=111 (unsigned >=).
func BGEU(rs1, rs2 uint32, offset int32) uint32 {
	return encB(rs1, rs2, 0x7, offset)
}

func encB(rs1, rs2, funct3 uint32, offset int32) uint32 {
	u := uint32(offset) & 0x1FFF
	bit12 := (u >> 12) & 1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	bit11 := (u >> 11) & 1
	return bit12<<31 | bits10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | bits4_1<<8 | bit11<<7 | opBranch
}

// EBREAK traps to the host, per spec.md §4.4.6.
func EBREAK() uint32 {
	return 1<<20 | opSystem
}

func imm12(v int32) uint32 {
	return uint32(v) & 0xFFF
}
