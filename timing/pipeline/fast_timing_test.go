package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/timing/latency"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

var _ = Describe("FastTiming", func() {
	estimate := func(words []uint16) pipeline.Statistics {
		e := emu.NewEmulator()
		e.LoadProgram(0, words)
		ft := pipeline.NewFastTiming(e, latency.NewTable(), pipeline.WithMaxInstructions(1000))
		Expect(ft.Run()).To(Succeed())
		Expect(ft.Halted()).To(BeTrue())
		return ft.Stats()
	}

	measure := func(words []uint16) pipeline.Statistics {
		p := pipeline.NewPipeline()
		p.LoadProgram(0, words)
		Expect(p.Run()).To(Succeed())
		return p.Stats()
	}

	It("should match the core on a counted loop", func() {
		loop := program(
			li(1, 3),
			w(0xA119),         // dec r1, r1
			w(0xB910),         // nex r1, zr
			w(0xC0FF, 0xFFFD), // b -3
			halt,
		)

		fast := estimate(loop)
		Expect(fast.Cycles).To(Equal(uint64(124)))
		Expect(fast.Skipped).To(Equal(uint64(1)))

		slow := measure(loop)
		Expect(slow.Cycles).To(Equal(fast.Cycles))
		Expect(slow.Instructions).To(Equal(fast.Instructions))
	})

	It("should match the core across memory ranges", func() {
		words := program(
			li(1, 0x0200),
			w(0x9214), // stm r2, r4, r1
			w(0x8513), // ldm r5, r3, r1
			w(0xA540), // ld+ r5, r4
			halt,
		)
		Expect(measure(words).Cycles).To(Equal(estimate(words).Cycles))
	})

	It("should stop at the instruction limit", func() {
		e := emu.NewEmulator()
		e.LoadProgram(0, program(w(0xC0FF, 0x0001), w(0xC0FF, 0xFFFD)))
		ft := pipeline.NewFastTiming(e, latency.NewTable(), pipeline.WithMaxInstructions(5))
		Expect(ft.Run()).To(MatchError(emu.ErrMaxInstructions))
		Expect(ft.Stats().Instructions).To(Equal(uint64(5)))
	})
})
