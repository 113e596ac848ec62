package sqi_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/timing/sqi"
)

var _ = Describe("Engine", func() {
	var (
		bank   *sqi.Bank
		engine *sqi.Engine
	)

	beat := func() {
		engine.BeginBeat()
		for p := uint8(0); p < 4; p++ {
			engine.Tick(p)
		}
	}

	BeforeEach(func() {
		bank = sqi.NewBank()
		engine = sqi.NewBankEngine(bank)
	})

	It("should deliver the first read word after five beats", func() {
		bank.LoadWords(0x0100, []uint16{0xBEEF, 0x1234})
		engine.Redirect(0x0100, sqi.ModeRead)

		for i := 0; i < 4; i++ {
			beat()
			_, ok := engine.TakeWord()
			Expect(ok).To(BeFalse())
		}

		beat()
		w, ok := engine.TakeWord()
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(uint16(0xBEEF)))

		beat()
		w, ok = engine.TakeWord()
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(uint16(0x1234)))
	})

	It("should hold SCK while a completed word is not taken", func() {
		bank.LoadWords(0, []uint16{1, 2, 3})
		engine.Redirect(0, sqi.ModeRead)
		for i := 0; i < 5; i++ {
			beat()
		}

		beat()
		beat()
		Expect(engine.Stats().HeldBeats).To(Equal(uint64(2)))

		w, _ := engine.TakeWord()
		Expect(w).To(Equal(uint16(1)))
		beat()
		w, _ = engine.TakeWord()
		Expect(w).To(Equal(uint16(2)))
	})

	It("should write pushed words after the setup periods", func() {
		engine.Redirect(0x0040, sqi.ModeWrite)
		for i := 0; i < 3; i++ {
			Expect(engine.Accepting()).To(BeFalse())
			beat()
		}

		engine.BeginBeat()
		Expect(engine.Accepting()).To(BeTrue())
		for p := uint8(0); p < 4; p++ {
			engine.Tick(p)
		}
		engine.Push(0xCAFE)

		engine.BeginBeat()
		Expect(engine.Accepting()).To(BeTrue())
		for p := uint8(0); p < 4; p++ {
			engine.Tick(p)
		}
		engine.Push(0xF00D)
		beat()

		Expect(bank.ReadWord(0x0040)).To(Equal(uint16(0xCAFE)))
		Expect(bank.ReadWord(0x0041)).To(Equal(uint16(0xF00D)))
		Expect(engine.Stats().WordsWritten).To(Equal(uint64(2)))
	})

	It("should read back what it wrote", func() {
		engine.Redirect(0xFFFF, sqi.ModeWrite)
		for i := 0; i < 4; i++ {
			beat()
		}
		engine.Push(0x5A5A)
		beat()

		engine.Redirect(0xFFFF, sqi.ModeRead)
		for i := 0; i < 5; i++ {
			beat()
		}
		w, ok := engine.TakeWord()
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(uint16(0x5A5A)))
	})

	It("should drop a partial word on redirect", func() {
		bank.LoadWords(0, []uint16{0x1111})
		bank.LoadWords(0x20, []uint16{0x2222})
		engine.Redirect(0, sqi.ModeRead)
		for i := 0; i < 4; i++ {
			beat()
		}
		engine.BeginBeat()
		engine.Tick(0)

		engine.Redirect(0x20, sqi.ModeRead)
		for i := 0; i < 5; i++ {
			beat()
		}
		w, _ := engine.TakeWord()
		Expect(w).To(Equal(uint16(0x2222)))
		Expect(engine.Stats().Transactions).To(Equal(uint64(2)))
	})
})

var _ = Describe("Chip", func() {
	It("should ignore an unknown command until deselected", func() {
		chip := sqi.NewChip()
		chip.SetByte(0, 0xAB)
		chip.Deselect()

		for _, nib := range []uint8{0x0, 0xB, 0, 0, 0, 0, 0, 0, 0, 0} {
			Expect(chip.Clock(nib)).To(Equal(uint8(0)))
		}

		chip.Deselect()
		for _, nib := range []uint8{0x0, 0x3, 0, 0, 0, 0, 0, 0} {
			chip.Clock(nib)
		}
		Expect(chip.Clock(0)).To(Equal(uint8(0xA)))
		Expect(chip.Clock(0)).To(Equal(uint8(0xB)))
	})

	It("should load and dump its contents", func() {
		chip := sqi.NewChip()
		Expect(chip.Load([]byte{1, 2, 3})).To(Succeed())
		Expect(chip.Bytes()[:4]).To(Equal([]byte{1, 2, 3, 0}))
		Expect(chip.Bytes()).To(HaveLen(sqi.Size))
	})

	It("should count bytes moved over the bus", func() {
		chip := sqi.NewChip()
		chip.SetByte(0x10, 0x5A)
		Expect(chip.ByteAt(0x10)).To(Equal(byte(0x5A)))

		chip.Deselect()
		for _, nib := range []uint8{0x0, 0x3, 0, 0, 1, 0, 0, 0} {
			chip.Clock(nib)
		}
		Expect(chip.Clock(0)).To(Equal(uint8(0x5)))
		Expect(chip.Clock(0)).To(Equal(uint8(0xA)))
		chip.Clock(0)
		chip.Clock(0)

		chip.Deselect()
		for _, nib := range []uint8{0x0, 0x2, 0, 0, 2, 0, 0xC, 0x3} {
			chip.Clock(nib)
		}
		Expect(chip.ByteAt(0x20)).To(Equal(byte(0xC3)))

		reads, writes := chip.Transfers()
		Expect(reads).To(Equal(uint64(2)))
		Expect(writes).To(Equal(uint64(1)))
	})
})

var _ = Describe("Bank", func() {
	It("should split words across the chips", func() {
		bank := sqi.NewBank()
		bank.WriteWord(0x40, 0xBEEF)
		Expect(bank.Even.ByteAt(0x40)).To(Equal(byte(0xEF)))
		Expect(bank.Odd.ByteAt(0x40)).To(Equal(byte(0xBE)))
		Expect(bank.ReadWord(0x40)).To(Equal(uint16(0xBEEF)))

		reads, writes := bank.Transfers()
		Expect(reads).To(BeZero())
		Expect(writes).To(BeZero())
	})
})
