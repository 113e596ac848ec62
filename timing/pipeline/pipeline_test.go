package pipeline_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/latency"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

var _ = Describe("Pipeline", func() {
	var pipe *pipeline.Pipeline

	Describe("Timing", func() {
		It("should take five beats to fetch the first word", func() {
			pipe = pipeline.NewPipeline()
			pipe.LoadProgram(0, program(li(1, 5), halt))
			Expect(pipe.Run()).To(Succeed())

			stats := pipe.Stats()
			Expect(stats.Cycles).To(Equal(uint64(36)))
			Expect(stats.Beats).To(Equal(uint64(9)))
			Expect(stats.Instructions).To(Equal(uint64(2)))
			Expect(stats.FetchStalls).To(Equal(uint64(5)))
			Expect(stats.ImmediateStalls).To(Equal(uint64(2)))
			Expect(pipe.Phase()).To(Equal(uint8(0)))
			Expect(pipe.RegFile().Word(1)).To(Equal(uint16(5)))
		})

		It("should run register instructions at one beat each", func() {
			pipe = pipeline.NewPipeline()
			pipe.LoadProgram(0, program(
				w(0xA118, 0xA118, 0xA118, 0xA118), // inc r1, r1
				halt,
			))
			Expect(pipe.Run()).To(Succeed())
			Expect(pipe.Stats().Beats).To(Equal(uint64(5 + 4 + 2)))
			Expect(pipe.RegFile().Word(1)).To(Equal(uint16(4)))
		})

		It("should match the beat cost table for straight-line code", func() {
			words := program(
				li(2, 0x40),
				li(3, 0x1234),
				w(0x7320), // st r3, r2, zr
				w(0x6420), // ld r4, r2, zr
				w(0x0544), // add r5, r4, r4
				halt,
			)
			pipe = pipeline.NewPipeline()
			pipe.LoadProgram(0, words)
			Expect(pipe.Run()).To(Succeed())

			table := latency.NewTable()
			decoder := insts.NewDecoder()
			beats := uint64(latency.RedirectBeats)
			for addr := 0; addr < len(words); {
				inst, err := decoder.Decode(words[addr])
				Expect(err).NotTo(HaveOccurred())
				if addr == len(words)-2 {
					// The halting branch never redirects.
					beats += uint64(inst.Size())
				} else {
					beats += table.GetBeats(inst, false)
				}
				addr += inst.Size()
			}

			Expect(pipe.Stats().Cycles).To(Equal(beats * latency.CyclesPerBeat))
			Expect(pipe.RegFile().Word(5)).To(Equal(uint16(0x2468)))
			Expect(pipe.Bank().ReadWord(0x40)).To(Equal(uint16(0x1234)))
		})

		It("should charge a skipped instruction one beat per word", func() {
			pipe = pipeline.NewPipeline()
			pipe.LoadProgram(0, program(
				w(0xB100), // ne zr, zr
				w(0xE003), // cex t
				li(1, 7),  // skipped
				halt,
			))
			Expect(pipe.Run()).To(Succeed())
			Expect(pipe.Stats().Skipped).To(Equal(uint64(1)))
			Expect(pipe.Stats().Beats).To(Equal(uint64(5 + 1 + 1 + 2 + 2)))
			Expect(pipe.RegFile().Word(1)).To(BeZero())
		})
	})

	Describe("Equivalence with the emulator", func() {
		It("should add, compare and skip a branch", func() {
			runBoth(program(
				li(2, 5),
				li(3, 7),
				w(0x0123),         // add r1, r2, r3
				w(0xB810),         // eqx r1, zr
				w(0xC0FF, 0x0003), // b +3 (skipped)
				halt,
				li(4, 1),
				halt,
			), setup{})
		})

		It("should subtract and compare signed and unsigned", func() {
			runBoth(program(
				li(1, 0x8000),
				li(2, 1),
				w(0x1312),         // sub r3, r1, r2
				w(0xB212),         // lt r1, r2
				w(0xA41F),         // getp r4
				w(0xB312),         // ltu r1, r2
				w(0xA51F),         // getp r5
				w(0xB532),         // geu r3, r2
				w(0xA61F),         // getp r6
				w(0xB63F, 0x000F), // bit r3, #15
				w(0xA71F),         // getp r7
				halt,
			), setup{})
		})

		It("should run logic functions and shifts", func() {
			runBoth(program(
				li(1, 0x8001),
				li(2, 0x0FF0),
				w(0x2312), // and r3, r1, r2
				w(0x3412), // andn r4, r1, r2
				w(0x4512), // or r5, r1, r2
				w(0x5612), // xor r6, r1, r2
				w(0xA71A), // srl r7, r1
				w(0xA81B), // sra r8, r1
				w(0xA91C), // ror r9, r1
				w(0xAA1D), // rol r10, r1
				w(0xAB1E), // not r11, r1
				halt,
			), setup{})
		})

		It("should chain carries across words", func() {
			runBoth(program(
				li(1, 0xFFFF),
				li(2, 0x0001),
				li(3, 0x0001),
				w(0x0113), // add r1, r1, r3
				w(0xD1C2), // carry 2
				w(0x0220), // add r2, r2, zr
				w(0xA44A), // srl r4, r4
				w(0xA55A), // srl r5, r5
				halt,
			), setup{})
		})

		It("should run conditional windows and predicate chains", func() {
			runBoth(program(
				w(0xB000), // eq zr, zr
				w(0xE00D), // cex tft
				w(0xA118), // inc r1, r1
				w(0xA228), // inc r2, r2
				w(0xA338), // inc r3, r3
				w(0xB100), // ne zr, zr
				w(0xD4C1), // orp 1
				w(0xB000), // eq zr, zr
				w(0xA41F), // getp r4
				w(0xD3C1), // andp 1
				w(0xB100), // ne zr, zr
				w(0xA51F), // getp r5
				halt,
			), setup{})
		})

		It("should call and return", func() {
			runBoth(program(
				w(0xC2FF, 0x0004), // bl +4
				w(0xA118),         // inc r1, r1
				halt,              // 3
				w(0xA228),         // inc r2, r2
				w(0xC4F0),         // jr zr
			), setup{})
		})

		It("should jump through registers and read the PC", func() {
			runBoth(program(
				li(1, 0x0008),
				w(0xC3F1),         // jl r1
				halt,              // 3
				w(0, 0, 0),        // padding
				w(0xC50F, 0x0002), // addpc r5, #2
				w(0xC4F0),         // jr zr
			), setup{})
		})

		It("should transfer ranges and update bases", func() {
			runBoth(program(
				li(1, 0x0100),
				li(2, 0x1111),
				li(3, 0x2222),
				li(4, 0x3333),
				w(0x9214), // stm r2, r4, r1
				w(0x8715), // ldm r7, r5, r1 (descending)
				w(0xA211), // st+ r2, r1
				w(0xA316), // -ld r3, r1
				w(0x771F, 0x0010), // st r7, r1, #16
				w(0x6B1F, 0x0010), // ld r11, r1, #16
				halt,
			), setup{})
		})

		It("should echo received words", func() {
			e, p := runBoth(program(
				w(0xA10F), // urx r1
				w(0xD0C1), // utx r1
				w(0xA20F), // urx r2
				w(0xD0C2), // utx r2
				w(0xA30F), // urx r3
				w(0xA338), // inc r3, r3
				w(0xD0C3), // utx r3
				halt,
			), setup{input: []uint16{0x1234, 0xBEEF, 0xFFFF}})

			Expect(p.Output()).To(Equal([]uint16{0x1234, 0xBEEF, 0x0000}))
			Expect(e.UART().Output()).To(HaveLen(3))
			Expect(p.Overruns()).To(BeZero())
		})

		It("should read and drive pins", func() {
			runBoth(program(
				w(0xD120),         // in r1, 2
				w(0xB730),         // inp 3
				w(0xD280),         // outp 0
				w(0xD05F, 0x0001), // out 1, #1
				w(0xD160),         // outn 2, zr
				halt,
			), setup{pins: [4]bool{false, false, true, true}})
		})
	})

	Describe("Faults and limits", func() {
		It("should halt on an undefined instruction", func() {
			pipe = pipeline.NewPipeline()
			pipe.LoadProgram(0, program(w(0xA118), w(0xF000)))
			err := pipe.Run()
			Expect(errors.Is(err, insts.ErrDecodeFault)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("pc 0x0001"))
			Expect(pipe.PC()).To(Equal(uint16(1)))
			Expect(pipe.Halted()).To(BeTrue())
		})

		It("should report a program waiting for input that never comes", func() {
			pipe = pipeline.NewPipeline(pipeline.WithFailOnInputExhausted())
			pipe.LoadProgram(0, program(w(0xA10F), halt))
			Expect(pipe.Run()).To(MatchError(emu.ErrInputExhausted))
		})

		It("should keep waiting for input by default", func() {
			config := latency.DefaultTimingConfig()
			config.StallTimeoutCycles = 400
			pipe = pipeline.NewPipeline(pipeline.WithTimingConfig(config))
			pipe.LoadProgram(0, program(w(0xA10F), halt))

			Expect(pipe.RunCycles(200)).To(BeTrue())
			Expect(pipe.Err()).NotTo(HaveOccurred())
			Expect(pipe.Stats().UARTStalls).To(BeNumerically(">", 0))

			Expect(pipe.Run()).To(MatchError(pipeline.ErrStallTimeout))
			Expect(pipe.Stats().Instructions).To(BeZero())
		})

		It("should stop at the cycle limit", func() {
			config := latency.DefaultTimingConfig()
			config.MaxCycles = 40
			pipe = pipeline.NewPipeline(pipeline.WithTimingConfig(config))
			pipe.LoadProgram(0, program(
				w(0xC0FF, 0x0001), // b +1
				w(0xC0FF, 0xFFFD), // b -3
			))
			Expect(pipe.Run()).To(MatchError(pipeline.ErrMaxCycles))
			Expect(pipe.Stats().Cycles).To(Equal(uint64(40)))
		})

		It("should time out when nothing retires", func() {
			config := latency.DefaultTimingConfig()
			config.StallTimeoutCycles = 16
			pipe = pipeline.NewPipeline(pipeline.WithTimingConfig(config))
			pipe.LoadProgram(0, halt)
			Expect(pipe.Run()).To(MatchError(pipeline.ErrStallTimeout))
		})

		It("should keep running on a self branch when halting is off", func() {
			config := latency.DefaultTimingConfig()
			config.HaltOnSelfBranch = false
			config.MaxCycles = 400
			pipe = pipeline.NewPipeline(pipeline.WithTimingConfig(config))
			pipe.LoadProgram(0, halt)
			Expect(pipe.Run()).To(MatchError(pipeline.ErrMaxCycles))
			Expect(pipe.Stats().Branches).To(BeNumerically(">", 1))
		})

		It("should drop words without flow control", func() {
			config := latency.DefaultTimingConfig()
			config.UARTFlowControl = false
			pipe = pipeline.NewPipeline(
				pipeline.WithTimingConfig(config),
				pipeline.WithUARTInput(1, 2, 3),
			)
			pipe.LoadProgram(0, program(
				w(0x6100), // ld r1, zr, zr
				w(0xA20F), // urx r2
				w(0xA30F), // urx r3
				halt,
			))
			Expect(pipe.Run()).To(Succeed())
			Expect(pipe.Overruns()).To(Equal(uint64(1)))
			Expect(pipe.RegFile().Word(2)).To(Equal(uint16(1)))
			Expect(pipe.RegFile().Word(3)).To(Equal(uint16(2)))
		})
	})

	Describe("Reset", func() {
		It("should restart at address 0 keeping registers", func() {
			pipe = pipeline.NewPipeline()
			pipe.LoadProgram(0, program(w(0xA118), halt))
			Expect(pipe.Run()).To(Succeed())

			pipe.Reset()
			Expect(pipe.Halted()).To(BeFalse())
			Expect(pipe.Stats().Cycles).To(BeZero())
			Expect(pipe.Run()).To(Succeed())
			Expect(pipe.RegFile().Word(1)).To(Equal(uint16(2)))
		})
	})
})
