package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/core"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

// liHalt is "add r1, zr, #5" followed by a self-branch.
var liHalt = []uint16{0x010F, 0x0005, 0xC0FF, 0xFFFF}

var _ = Describe("Core", func() {
	var c *core.Core

	BeforeEach(func() {
		c = core.NewCore()
	})

	It("should create a core with a pipeline", func() {
		Expect(c).NotTo(BeNil())
		Expect(c.Pipeline).NotTo(BeNil())
		Expect(c.Halted()).To(BeFalse())
	})

	It("should set the PC", func() {
		c.SetPC(0x1000)
		Expect(c.Pipeline.PC()).To(Equal(uint16(0x1000)))
	})

	It("should run until halt", func() {
		c.LoadProgram(0, liHalt)
		Expect(c.Run()).To(Succeed())

		Expect(c.Halted()).To(BeTrue())
		Expect(c.Err()).NotTo(HaveOccurred())
		Expect(c.State().R[1]).To(Equal(uint16(5)))
		Expect(c.State().PC).To(Equal(uint16(2)))
	})

	It("should expose registers, predicate and pins", func() {
		c.LoadProgram(0, []uint16{
			0xB000,         // eq zr, zr
			0xD05F, 0x0001, // out 1, 1
			0x010F, 0x0005, // add r1, zr, 5
			0xC0FF, 0xFFFF, // b self
		})
		Expect(c.Run()).To(Succeed())

		Expect(c.Registers()[1]).To(Equal(uint16(5)))
		Expect(c.PC()).To(Equal(uint16(5)))
		Expect(c.Predicate()).To(BeTrue())
		Expect(c.Pins().Out).To(Equal([insts.NumPins]bool{false, true, false, false}))
	})

	It("should return stats", func() {
		c.LoadProgram(0, liHalt)
		Expect(c.Run()).To(Succeed())

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(36)))
		Expect(stats.Instructions).To(Equal(uint64(2)))
		Expect(stats.CPI()).To(BeNumerically("==", 18))
		Expect(stats.Stalls).To(BeNumerically(">", 0))
	})

	It("should count memory bus traffic", func() {
		c.LoadProgram(0, liHalt)
		Expect(c.Run()).To(Succeed())

		stats := c.Pipeline.Stats()
		Expect(stats.BusReads).To(BeNumerically(">=", 2*len(liHalt)))
		Expect(stats.BusWrites).To(BeZero())

		c.Reset()
		Expect(c.Pipeline.Stats().BusReads).To(BeZero())
	})

	It("should stop ticking once halted", func() {
		c.LoadProgram(0, liHalt)
		Expect(c.RunCycles(10)).To(BeTrue())
		Expect(c.RunCycles(100)).To(BeFalse())
		Expect(c.Tick()).To(BeFalse())
		Expect(c.Stats().Cycles).To(Equal(uint64(36)))
	})

	It("should run again after a reset", func() {
		c.LoadProgram(0, liHalt)
		Expect(c.Run()).To(Succeed())

		c.Reset()
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Run()).To(Succeed())
		Expect(c.State().R[1]).To(Equal(uint16(5)))
	})

	It("should collect UART output", func() {
		c = core.NewCore(pipeline.WithUARTInput(0x00AA))
		c.LoadProgram(0, []uint16{
			0xA10F, // urx r1
			0xD0C1, // utx r1
			0xC0FF, 0xFFFF,
		})
		Expect(c.Run()).To(Succeed())
		Expect(c.Output()).To(Equal([]uint16{0x00AA}))
	})

	It("should wait for input sent between runs", func() {
		c.LoadProgram(0, []uint16{
			0xA10F, // urx r1
			0xC0FF, 0xFFFF,
		})
		Expect(c.RunCycles(200)).To(BeTrue())
		Expect(c.Err()).NotTo(HaveOccurred())

		c.Send(0x1234)
		Expect(c.Run()).To(Succeed())
		Expect(c.Registers()[1]).To(Equal(uint16(0x1234)))
	})

	It("should fail fast on missing input when asked to", func() {
		c = core.NewCore(pipeline.WithFailOnInputExhausted())
		c.LoadProgram(0, []uint16{
			0xA10F, // urx r1
			0xC0FF, 0xFFFF,
		})
		Expect(c.Run()).To(MatchError(emu.ErrInputExhausted))
	})
})

var _ = Describe("Hooks", func() {
	It("should record retirements and writes", func() {
		c := core.NewCore()
		rec := &core.Recorder{}
		c.Pipeline.AcceptHook(rec)

		c.LoadProgram(0, liHalt)
		Expect(c.Run()).To(Succeed())

		Expect(rec.Retired).To(HaveLen(2))
		Expect(rec.Retired[0].Addr).To(Equal(uint16(0)))
		Expect(rec.Retired[0].Inst.Op).To(Equal(insts.OpADD))
		Expect(rec.Retired[1].Inst.Op).To(Equal(insts.OpB))
		Expect(rec.Retired[1].Cycle).To(BeNumerically(">", rec.Retired[0].Cycle))
		Expect(rec.RegWrites).To(Equal([]pipeline.RegWrite{{Reg: 1, Value: 5}}))
		Expect(rec.MemWrites).To(BeEmpty())
		Expect(rec.Redirects).To(BeEmpty())
	})

	It("should record stores and redirects", func() {
		c := core.NewCore()
		rec := &core.Recorder{}
		c.Pipeline.AcceptHook(rec)

		c.LoadProgram(0, []uint16{
			0x010F, 0x0100, // add r1, zr, #0x100
			0x020F, 0x0007, // add r2, zr, #7
			0x7210, // st r2, r1, zr
			0xC0FF, 0xFFFF,
		})
		Expect(c.Run()).To(Succeed())

		Expect(rec.MemWrites).To(Equal([]pipeline.MemWrite{{Addr: 0x0100, Value: 7}}))
		Expect(c.Pipeline.Stats().BusWrites).To(BeNumerically(">=", 2))
		Expect(rec.Redirects).NotTo(BeEmpty())
		Expect(rec.Redirects[0].Addr).To(Equal(uint16(0x0100)))
		Expect(c.Pipeline.Bank().ReadWord(0x0100)).To(Equal(uint16(7)))
	})

	It("should trace through a logger", func() {
		log, hook := test.NewNullLogger()
		log.SetLevel(logrus.DebugLevel)

		c := core.NewCore()
		c.Pipeline.AcceptHook(core.NewTracer(log))
		c.LoadProgram(0, liHalt)
		Expect(c.Run()).To(Succeed())

		var messages []string
		for _, e := range hook.AllEntries() {
			messages = append(messages, e.Message)
		}
		Expect(messages).To(ContainElement("write"))
		Expect(messages).To(ContainElement(HavePrefix("add r1, zr")))
	})
})

var _ = Describe("Component", func() {
	It("should run a core on an akita engine", func() {
		c := core.NewCore()
		c.LoadProgram(0, liHalt)

		Expect(core.RunOnEngine(c, 12)).To(Succeed())
		Expect(c.Halted()).To(BeTrue())
		Expect(c.State().R[1]).To(Equal(uint16(5)))
		Expect(c.Stats().Cycles).To(Equal(uint64(36)))
	})
})
