package codegen

import "testing"

func TestSplitPCRel_RoundTrips(t *testing.T) {
	offsets := []int32{0, 4, -4, 12, -12, 2000, -2000, 4000, -4000, 100000, -100000}
	for _, off := range offsets {
		upper, lower := splitPCRel(off)
		got := int32(upper<<12) + lower
		if got != off {
			t.Errorf("splitPCRel(%d) = (upper=%d, lower=%d), recombined %d, want %d", off, upper, lower, got, off)
		}
		if lower < -2048 || lower > 2047 {
			t.Errorf("splitPCRel(%d): lower = %d out of LW/SW's signed 12-bit range", off, lower)
		}
	}
}

func TestLoadStoreRegisterWord_AlwaysTwoWords(t *testing.T) {
	for _, pc := range []uint32{0, 4, 1000, 100000} {
		auipc, lw := loadRegisterWord(RegT0, 4, pc)
		if auipc == 0 && lw == 0 {
			t.Errorf("loadRegisterWord(pc=%d) produced zero words", pc)
		}
		auipcS, sw := storeRegisterWord(RegT0, RegT2, 4, pc)
		if auipcS == 0 && sw == 0 {
			t.Errorf("storeRegisterWord(pc=%d) produced zero words", pc)
		}
	}
}
