package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/emu"
)

var _ = Describe("Branches", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator(emu.WithMaxInstructions(100))
	})

	It("should link and return through jr", func() {
		e.LoadProgram(0, program(
			w(0xC2FF, 0x0003), // bl +3 -> 4, lr = 2
			halt,              // 2
			w(0xC4F0),         // jr zr
		))
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().ReadReg(14)).To(Equal(uint16(2)))
		Expect(e.RegFile().PC).To(Equal(uint16(2)))
	})

	It("should jump to an absolute register target", func() {
		e.LoadProgram(0, program(
			li(3, 0x20),
			w(0xC1F3), // j r3
		))
		e.Memory().LoadProgram(0x20, halt)
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().PC).To(Equal(uint16(0x20)))
	})

	It("should compute pc-relative addresses after the instruction word", func() {
		e.LoadProgram(0x10, program(
			w(0xC10F, 0x0004), // addpc r1, 4
			w(0xC200),         // addpc r2, zr
			halt,
		))
		e.RegFile().PC = 0x10
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().ReadReg(1)).To(Equal(uint16(0x15)))
		Expect(e.RegFile().ReadReg(2)).To(Equal(uint16(0x13)))
	})

	It("should keep running past a self branch when halting is off", func() {
		e = emu.NewEmulator(emu.WithMaxInstructions(10), emu.WithHaltOnSelfBranch(false))
		e.LoadProgram(0, halt)
		Expect(e.Run()).To(MatchError(emu.ErrMaxInstructions))
	})
})
