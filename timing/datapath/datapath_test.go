package datapath_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/datapath"
)

var _ = Describe("ALU", func() {
	var alu *datapath.ALU

	BeforeEach(func() {
		alu = datapath.NewALU()
	})

	It("should ripple the carry across slices", func() {
		out, f := word(alu, insts.ALUAdd, 0x00FF, 0x0001, false, false)
		Expect(out).To(Equal(uint16(0x0100)))
		Expect(f.C).To(BeFalse())
		Expect(f.Z).To(BeFalse())
	})

	It("should report zero only when every slice is zero", func() {
		out, f := word(alu, insts.ALUAdd, 0xFFFF, 0x0001, false, false)
		Expect(out).To(Equal(uint16(0)))
		Expect(f.Z).To(BeTrue())
		Expect(f.C).To(BeTrue())

		_, f = word(alu, insts.ALUXor, 0x1000, 0x0000, false, false)
		Expect(f.Z).To(BeFalse())
	})

	It("should subtract as an inverted add with carry in", func() {
		out, f := word(alu, insts.ALUAdd, 5, 7, true, true)
		Expect(out).To(Equal(uint16(0xFFFE)))
		Expect(f.C).To(BeFalse())
		Expect(f.N).To(BeTrue())
	})

	It("should detect signed overflow from the top slice", func() {
		_, f := word(alu, insts.ALUAdd, 0x7FFF, 0x0001, false, false)
		Expect(f.V).To(BeTrue())
		Expect(f.N).To(BeTrue())

		_, f = word(alu, insts.ALUAdd, 0x8000, 0x0001, true, true)
		Expect(f.V).To(BeTrue())
	})

	It("should clear carry and overflow for logic functions", func() {
		out, f := word(alu, insts.ALUAnd, 0xF0F0, 0xFFFF, true, true)
		Expect(out).To(Equal(uint16(0)))
		Expect(f.C).To(BeFalse())
		Expect(f.V).To(BeFalse())
		Expect(f.Z).To(BeTrue())
	})
})

var _ = Describe("Shifter", func() {
	var s *datapath.Shifter

	BeforeEach(func() {
		s = datapath.NewShifter()
	})

	DescribeTable("one bit shifts",
		func(kind insts.ShiftKind, in, expected uint16, carry bool) {
			Expect(shift(s, kind, in, false, false)).To(Equal(expected))
			if kind.IsRight() {
				Expect(s.Carry()).To(Equal(carry))
			}
		},
		Entry("srl", insts.ShiftSRL, uint16(0x8001), uint16(0x4000), true),
		Entry("sra", insts.ShiftSRA, uint16(0x8001), uint16(0xC000), true),
		Entry("ror", insts.ShiftROR, uint16(0x8001), uint16(0xC000), true),
		Entry("ror even", insts.ShiftROR, uint16(0x1234), uint16(0x091A), false),
		Entry("rol", insts.ShiftROL, uint16(0x8001), uint16(0x0003), false),
		Entry("rol nibbles", insts.ShiftROL, uint16(0x1234), uint16(0x2468), false),
	)

	It("should shift the chained carry in at the top", func() {
		Expect(shift(s, insts.ShiftSRL, 0x0002, true, true)).To(Equal(uint16(0x8001)))
		Expect(s.Carry()).To(BeFalse())
	})
})

var _ = Describe("RegFile", func() {
	var rf *datapath.RegFile

	BeforeEach(func() {
		rf = datapath.NewRegFile()
	})

	It("should present neighbouring slices", func() {
		rf.Set(3, 0xABCD)
		Expect(rf.Read(3)).To(Equal(datapath.Port{Cur: 0xD, Above: 0xC, Below: 0xA}))

		rf.Rotate()
		Expect(rf.Read(3)).To(Equal(datapath.Port{Cur: 0xC, Above: 0xB, Below: 0xD}))
	})

	It("should return to alignment after four rotations", func() {
		rf.Set(2, 0x1234)
		for i := 0; i < 4; i++ {
			rf.Rotate()
		}
		Expect(rf.Word(2)).To(Equal(uint16(0x1234)))
	})

	It("should write one slice per cycle", func() {
		rf.Set(4, 0xFFFF)
		for p := uint8(0); p < 4; p++ {
			rf.Stage(4, p+1)
			rf.Rotate()
		}
		Expect(rf.Word(4)).To(Equal(uint16(0x4321)))
	})

	It("should keep register zero at zero", func() {
		rf.Set(0, 0xFFFF)
		rf.Stage(0, 0xF)
		rf.Rotate()
		Expect(rf.Read(0)).To(Equal(datapath.Port{}))
		Expect(rf.Word(0)).To(Equal(uint16(0)))
	})
})

var _ = Describe("PCUnit", func() {
	var pc *datapath.PCUnit

	beat := func(load bool, target uint16) (cur, next uint16) {
		for p := uint8(0); p < 4; p++ {
			c, n := pc.Slice(p)
			cur |= uint16(c) << (4 * p)
			next |= uint16(n) << (4 * p)
			pc.Tick(p, load, uint8(target>>(4*p)))
		}
		return cur, next
	}

	BeforeEach(func() {
		pc = datapath.NewPCUnit()
	})

	It("should apply the pending increment during the beat", func() {
		pc.Set(0x00FF)
		pc.Begin(2)
		cur, next := beat(false, 0)
		Expect(cur).To(Equal(uint16(0x0101)))
		Expect(next).To(Equal(uint16(0x0102)))
		Expect(pc.Value()).To(Equal(uint16(0x0101)))
	})

	It("should hold without an increment", func() {
		pc.Set(0x1234)
		pc.Begin(0)
		cur, _ := beat(false, 0)
		Expect(cur).To(Equal(uint16(0x1234)))
		Expect(pc.Value()).To(Equal(uint16(0x1234)))
	})

	It("should wrap around the address space", func() {
		pc.Set(0xFFFF)
		pc.Begin(1)
		_, next := beat(false, 0)
		Expect(pc.Value()).To(Equal(uint16(0)))
		Expect(next).To(Equal(uint16(1)))
	})

	It("should load a branch target", func() {
		pc.Set(0x0010)
		pc.Begin(1)
		cur, _ := beat(true, 0x0400)
		Expect(cur).To(Equal(uint16(0x0011)))
		Expect(pc.Value()).To(Equal(uint16(0x0400)))
	})
})
