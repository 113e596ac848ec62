package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	Describe("Opcode table", func() {
		It("should never match one word against two rows", func() {
			table := insts.Opcodes()
			for w := 0; w <= 0xFFFF; w++ {
				n := 0
				for _, opc := range table {
					if uint16(w)&opc.Mask == opc.Match {
						n++
					}
				}
				Expect(n).To(BeNumerically("<=", 1), "word 0x%04x", w)
			}
		})

		It("should resolve x compare mnemonics", func() {
			opc, condX, ok := insts.LookupMnemonic("ltux")
			Expect(ok).To(BeTrue())
			Expect(condX).To(BeTrue())
			Expect(opc.Op).To(Equal(insts.OpLTU))

			_, _, ok = insts.LookupMnemonic("addx")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Range length", func() {
		It("should count registers in either direction", func() {
			up := &insts.Instruction{Op: insts.OpLDM, Rd: 2, Rm: 5}
			down := &insts.Instruction{Op: insts.OpSTM, Rd: 7, Rm: 3}
			single := &insts.Instruction{Op: insts.OpLD}
			Expect(up.RangeLen()).To(Equal(4))
			Expect(down.RangeLen()).To(Equal(5))
			Expect(single.RangeLen()).To(Equal(1))
		})
	})
})
