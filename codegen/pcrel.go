package codegen

// splitPCRel computes the AUIPC upper-immediate / LW-or-SW lower-immediate
// split for a PC-relative offset, using the corrected formula from
// spec.md §9 open question 2 (upper = (offset+0x800)>>12) rather than the
// original C prototype's naive "upper = offset/4096; lower = offset -
// upper*4096", which does not keep lower within LW/SW's sign-extended
// 12-bit immediate when the low half is negative.
func splitPCRel(offset int32) (upper uint32, lower int32) {
	u := (offset + 0x800) >> 12
	l := offset - (u << 12)
	return uint32(u) & 0xFFFFF, l
}

// loadRegisterWord emits the AUIPC+LW pair that loads register[j] (at
// address regAddr) into dst, with the AUIPC living at byte offset pc
// (spec.md §4.4.5). Always exactly two instructions, regardless of the
// offset's value, so pass-1 instruction counts never depend on operand
// values (spec.md §9's "never emit variable-width pseudo-ops").
func loadRegisterWord(dst uint32, regAddr, pc uint32) (auipc, lw uint32) {
	upper, lower := splitPCRel(int32(regAddr - pc))
	return AUIPC(dst, upper), LW(dst, dst, lower)
}

// storeRegisterWord emits the AUIPC+SW pair that stores src into
// register[j] (at address regAddr), using scratch as the address base
// (spec.md §4.4.5: "store is analogous via AUIPC into a scratch base
// register, then SW").
func storeRegisterWord(src, scratch uint32, regAddr, pc uint32) (auipc, sw uint32) {
	upper, lower := splitPCRel(int32(regAddr - pc))
	return AUIPC(scratch, upper), SW(scratch, src, lower)
}
