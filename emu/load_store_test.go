package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/emu"
)

var _ = Describe("Loads and stores", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator(emu.WithMaxInstructions(100))
	})

	It("should store and load with an offset", func() {
		e.LoadProgram(0, program(
			li(1, 0xABCD),
			li(2, 0x100),
			w(0x712F, 0x0003), // st r1, r2, 3
			w(0x632F, 0x0003), // ld r3, r2, 3
			halt,
		))
		Expect(e.Run()).To(Succeed())
		Expect(e.Memory().Read(0x103)).To(Equal(uint16(0xABCD)))
		Expect(e.RegFile().ReadReg(3)).To(Equal(uint16(0xABCD)))
	})

	It("should transfer register ranges in both directions", func() {
		e.LoadProgram(0, program(
			li(1, 0x11),
			li(2, 0x22),
			li(3, 0x33),
			li(5, 0x100),
			w(0x9153), // stm r1, r3, r5
			w(0x9355), // stm r3, r5, r5
			w(0x8658), // ldm r6, r8, r5
			halt,
		))
		Expect(e.Run()).To(Succeed())
		mem := e.Memory()
		Expect(mem.Read(0x100)).To(Equal(uint16(0x33)))
		Expect(mem.Read(0x102)).To(Equal(uint16(0x100)))
		rf := e.RegFile()
		Expect(rf.ReadReg(6)).To(Equal(uint16(0x33)))
		Expect(rf.ReadReg(7)).To(Equal(uint16(0)))
		Expect(rf.ReadReg(8)).To(Equal(uint16(0x100)))
		Expect(rf.ReadReg(5)).To(Equal(uint16(0x100)))
	})

	It("should store a descending range", func() {
		e.LoadProgram(0, program(
			li(1, 0x11),
			li(2, 0x22),
			li(3, 0x33),
			li(5, 0x100),
			w(0x9351), // stm r3, r1, r5
			halt,
		))
		Expect(e.Run()).To(Succeed())
		mem := e.Memory()
		Expect(mem.Read(0x100)).To(Equal(uint16(0x33)))
		Expect(mem.Read(0x101)).To(Equal(uint16(0x22)))
		Expect(mem.Read(0x102)).To(Equal(uint16(0x11)))
	})

	It("should update the base register", func() {
		e.Memory().Write(0x40, 7)
		e.Memory().Write(0x41, 9)
		e.LoadProgram(0, program(
			li(5, 0x40),
			w(0xA450), // ld+ r4, r5
			w(0xA352), // +ld r3, r5 -> r5 = 0x42
			w(0xA156), // -ld r1, r5 -> r5 = 0x41
			w(0xA251), // st+ r2, r5 -> [0x41] = 0, r5 = 0x42
			halt,
		))
		Expect(e.Run()).To(Succeed())
		rf := e.RegFile()
		Expect(rf.ReadReg(4)).To(Equal(uint16(7)))
		Expect(rf.ReadReg(3)).To(Equal(uint16(0)))
		Expect(rf.ReadReg(1)).To(Equal(uint16(9)))
		Expect(rf.ReadReg(5)).To(Equal(uint16(0x42)))
		Expect(e.Memory().Read(0x41)).To(Equal(uint16(0)))
	})
})
