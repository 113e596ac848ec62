package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
)

var _ = Describe("ALU", func() {
	var alu *emu.ALU

	BeforeEach(func() {
		alu = emu.NewALU()
	})

	It("should add with carry and overflow", func() {
		r, f := alu.Compute(insts.ALUAdd, 0x7FFF, 0x0001, false, false)
		Expect(r).To(Equal(uint16(0x8000)))
		Expect(f).To(Equal(emu.Flags{N: true, V: true}))

		r, f = alu.Compute(insts.ALUAdd, 0xFFFF, 0x0001, false, false)
		Expect(r).To(Equal(uint16(0)))
		Expect(f).To(Equal(emu.Flags{Z: true, C: true}))
	})

	It("should subtract as an inverted add", func() {
		r, f := alu.Compute(insts.ALUAdd, 5, 7, true, true)
		Expect(r).To(Equal(uint16(0xFFFE)))
		Expect(f.C).To(BeFalse())
		Expect(f.N).To(BeTrue())
	})

	It("should clear carry and overflow for logic", func() {
		r, f := alu.Compute(insts.ALUAnd, 0xF0F0, 0x0F0F, true, true)
		Expect(r).To(Equal(uint16(0xF0F0)))
		Expect(f).To(Equal(emu.Flags{N: true}))
	})

	DescribeTable("shifts",
		func(kind insts.ShiftKind, in uint16, chained, carry bool, out uint16, carryOut bool) {
			r, c := alu.Shift(kind, in, chained, carry)
			Expect(r).To(Equal(out))
			Expect(c).To(Equal(carryOut))
		},
		Entry("srl", insts.ShiftSRL, uint16(0x8001), false, false, uint16(0x4000), true),
		Entry("sra", insts.ShiftSRA, uint16(0x8001), false, false, uint16(0xC000), true),
		Entry("ror", insts.ShiftROR, uint16(0x0003), false, false, uint16(0x8001), true),
		Entry("rol keeps carry", insts.ShiftROL, uint16(0x8001), false, true, uint16(0x0003), true),
		Entry("chained srl", insts.ShiftSRL, uint16(0x0002), true, true, uint16(0x8001), false),
	)

	DescribeTable("predicates from left - right",
		func(cmp insts.CmpKind, left, right uint16, want bool) {
			_, f := alu.Compute(insts.ALUAdd, left, right, true, true)
			Expect(emu.Predicate(cmp, f)).To(Equal(want))
		},
		Entry("eq", insts.CmpEQ, uint16(4), uint16(4), true),
		Entry("ne", insts.CmpNE, uint16(4), uint16(4), false),
		Entry("lt signed", insts.CmpLT, uint16(0xFFFF), uint16(1), true),
		Entry("lt overflow", insts.CmpLT, uint16(0x8000), uint16(1), true),
		Entry("ltu", insts.CmpLTU, uint16(0xFFFF), uint16(1), false),
		Entry("ge equal", insts.CmpGE, uint16(3), uint16(3), true),
		Entry("ge signed", insts.CmpGE, uint16(1), uint16(0xFFFF), true),
		Entry("geu", insts.CmpGEU, uint16(1), uint16(0xFFFF), false),
	)
})
