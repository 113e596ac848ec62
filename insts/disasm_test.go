package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/insts"
)

var _ = Describe("Disassembler", func() {
	It("should parse and format cex masks", func() {
		mask, err := insts.ParseCondMask("tft")
		Expect(err).ToNot(HaveOccurred())
		Expect(mask).To(Equal(uint8(0b1101)))
		Expect(insts.FormatCondMask(mask)).To(Equal("tft"))

		_, err = insts.ParseCondMask("")
		Expect(err).To(MatchError(insts.ErrCondMask))
		_, err = insts.ParseCondMask("tx")
		Expect(err).To(MatchError(insts.ErrCondMask))
	})

	It("should fold immediates into their instruction", func() {
		lines := insts.Disassemble([]uint16{0x012F, 0x0010, 0xC0FF, 0xFFFF}, 0x100)

		Expect(lines).To(HaveLen(2))
		Expect(lines[0].Addr).To(Equal(uint16(0x100)))
		Expect(lines[0].Inst.String()).To(Equal("add r1, r2, 0x10"))
		Expect(lines[1].Addr).To(Equal(uint16(0x102)))
		Expect(lines[1].Inst.Op).To(Equal(insts.OpB))
		Expect(lines[1].Inst.Imm).To(Equal(uint16(0xFFFF)))
	})

	It("should annotate instructions inside a cex window", func() {
		// eqx r1, r2; add; cex tf; add; add; add
		lines := insts.Disassemble([]uint16{
			0xB812, 0x0111, 0xE005, 0x0111, 0x0111, 0x0111,
		}, 0)

		Expect(lines[1].Cond).To(Equal(byte('t')))
		Expect(lines[2].Cond).To(Equal(byte(0)))
		Expect(lines[3].Cond).To(Equal(byte('t')))
		Expect(lines[4].Cond).To(Equal(byte('f')))
		Expect(lines[5].Cond).To(Equal(byte(0)))
		Expect(lines[4].String()).To(ContainSubstring("[f]"))
	})

	It("should emit data lines for undefined words", func() {
		lines := insts.Disassemble([]uint16{0xF123}, 0)
		Expect(lines[0].Err).To(MatchError(insts.ErrDecodeFault))
		Expect(lines[0].String()).To(ContainSubstring(".word 0xf123"))
	})
})
