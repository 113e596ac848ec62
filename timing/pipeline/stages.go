package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/datapath"
	"github.com/sarchlab/idlisim/timing/sqi"
)

// operand returns the active slice of an operand source.
func (p *Pipeline) operand(op insts.Operand, phase uint8) datapath.Port {
	shift := 4 * phase

	switch op.Kind {
	case insts.SrcReg:
		return p.regs.Read(op.Reg)
	case insts.SrcPC:
		cur, _ := p.pc.Slice(phase)
		return datapath.Port{Cur: cur}
	case insts.SrcMem:
		return datapath.Port{Cur: uint8(p.fbuf.Word>>shift) & 0xF}
	case insts.SrcUART:
		return datapath.Port{Cur: uint8(p.rx.Peek()>>shift) & 0xF}
	case insts.SrcPin:
		if phase == 0 && p.pins.sampled[p.beat.op.PinIndex] {
			return datapath.Port{Cur: 1}
		}
	case insts.SrcPred:
		if phase == 0 && p.pred {
			return datapath.Port{Cur: 1}
		}
	}

	return datapath.Port{}
}

// executeSlice runs one slice of the current beat through the datapath.
// It returns the slice to load into the PC, if any.
func (p *Pipeline) executeSlice(phase uint8) (bool, uint8) {
	u := &p.beat.op
	shift := 4 * phase

	left := p.operand(u.Left, phase)
	right := p.operand(u.Right, phase).Cur
	cur, next := p.pc.Slice(phase)

	var out uint8
	if u.Shift != insts.ShiftNone {
		out = p.shifter.Slice(phase, u.Shift, left.Cur, left.Above, left.Below,
			p.beat.chained, p.carry)
	} else {
		cin := u.CarryIn
		if p.beat.chained {
			cin = p.carry
		}
		out, p.latch.flags = p.alu.Slice(phase, u.ALU, left.Cur, right, u.Invert, cin)
	}

	if u.Cmp == insts.CmpBit {
		if phase == 0 {
			p.latch.bitIndex = right
		}
		if p.latch.bitIndex>>2 == phase {
			p.latch.bit = (left.Cur>>(p.latch.bitIndex&3))&1 == 1
		}
	}

	p.latch.result |= uint16(out) << shift
	p.latch.left |= uint16(left.Cur) << shift

	if u.Aux == insts.AuxLink {
		link := cur
		if u.Imm {
			link = next
		}
		p.regs.Stage(insts.RegLink, link)
		p.latch.link |= uint16(link) << shift
	}

	switch u.Dest {
	case insts.DestReg:
		p.regs.Stage(u.DestReg, out)
	case insts.DestPC:
		return true, out
	}

	return false, 0
}

// commit applies the end of an instruction's first beat. It returns the
// number of instruction stream words consumed.
func (p *Pipeline) commit() uint8 {
	u := &p.ir.Op
	result := p.latch.result

	var consumed uint8
	if u.Imm {
		p.ir.Inst.Imm = p.fbuf.Word
		p.fbuf.Clear()
		consumed = 1
	}

	if u.SetsCarry {
		if u.Shift != insts.ShiftNone {
			p.carry = p.shifter.Carry()
		} else {
			p.carry = p.latch.flags.C
		}
	}

	switch u.Pin {
	case insts.PinOut:
		p.pins.Out[u.PinIndex] = result&1 == 1
	case insts.PinOutInv:
		p.pins.Out[u.PinIndex] = result&1 == 0
	case insts.PinOutPred:
		p.pins.Out[u.PinIndex] = p.pred
	}

	switch u.Dest {
	case insts.DestReg:
		p.regWritten(u.DestReg, result)
	case insts.DestUART:
		p.tx.Start(result)
		p.stats.Transmitted++
	case insts.DestPred:
		p.pred = p.predicate(u)
	case insts.DestPC:
		if u.Aux == insts.AuxLink {
			p.regWritten(insts.RegLink, p.latch.link)
		}
		p.branch()
		return 0
	}

	if u.Right.Kind == insts.SrcUART {
		p.rx.Pop()
		p.stats.Received++
	}

	if u.Mem != insts.MemNone {
		addr := p.latch.left
		if u.Aux == insts.AuxMemFromDest {
			addr = result
		}
		p.mem.Start(u, addr)

		mode := sqi.ModeRead
		if u.Mem == insts.MemStore {
			mode = sqi.ModeWrite
		}
		p.redirect(addr, mode)
		return consumed
	}

	p.retire(true)
	return consumed
}

// branch ends a PC-writing instruction. The PC unit already holds the
// target.
func (p *Pipeline) branch() {
	target := p.pc.Value()
	p.stats.Branches++

	op := p.ir.Inst.Op
	if p.haltOnSelfBranch && (op == insts.OpB || op == insts.OpJ) && target == p.ir.Addr {
		p.retire(true)
		p.halt()
		return
	}

	p.redirect(target, sqi.ModeRead)
	p.retire(true)
}

// dataBeat applies the end of one memory data beat.
func (p *Pipeline) dataBeat() {
	if p.mem.Kind == insts.MemLoad {
		p.regWritten(p.mem.Cur, p.fbuf.Word)
		p.fbuf.Clear()
		p.stats.LoadWords++
	} else {
		p.engine.Push(p.latch.result)
		p.memWritten(p.mem.Addr, p.latch.result)
		p.stats.StoreWords++
	}
	p.mem.Advance()
}

// finalBeat ends a memory instruction by returning the engine to the
// instruction stream.
func (p *Pipeline) finalBeat() {
	p.mem = MemSequencer{}
	p.redirect(p.pc.Value(), sqi.ModeRead)
	p.retire(true)
}

func (p *Pipeline) predicate(u *insts.MicroOp) bool {
	var v bool
	switch u.Cmp {
	case insts.CmpBit:
		v = p.latch.bit
	case insts.CmpPin:
		v = p.pins.sampled[u.PinIndex]
	case insts.CmpPut:
		return p.latch.result&1 == 1
	default:
		f := p.latch.flags
		v = emu.Predicate(u.Cmp, emu.Flags{N: f.N, Z: f.Z, C: f.C, V: f.V})
	}

	switch {
	case p.chain.Active(insts.CountAndP):
		v = v && p.pred
	case p.chain.Active(insts.CountOrP):
		v = v || p.pred
	}
	return v
}

// retire finishes the instruction in the instruction register.
func (p *Pipeline) retire(executed bool) {
	u := &p.ir.Op
	p.cond = emu.NextCond(p.cond, executed && u.CondWrite, u.CondData)

	if executed {
		if u.Count != insts.CountNone {
			p.chain = emu.Chain{Kind: u.Count, Count: u.CountImm}
			if u.CountImm == 0 {
				p.chain = emu.Chain{}
			}
		} else {
			p.chain.Tick()
		}
	} else {
		p.stats.Skipped++
	}

	p.stats.Instructions++
	p.sinceRetire = 0

	p.log.WithFields(logrus.Fields{
		"pc":    fmt.Sprintf("%04x", p.ir.Addr),
		"inst":  p.ir.Inst.String(),
		"run":   executed,
		"cycle": p.stats.Cycles,
	}).Debug("core retire")

	p.hook(HookPosRetire, Retirement{
		Addr:    p.ir.Addr,
		Inst:    p.ir.Inst,
		Skipped: !executed,
		Cycle:   p.stats.Cycles,
	})

	p.ir.Clear()
}

// fill hands a completed word to the fetch buffer and refills the
// instruction register. It returns the number of words consumed.
func (p *Pipeline) fill() uint8 {
	if !p.fbuf.Valid {
		if w, ok := p.engine.TakeWord(); ok {
			p.fbuf = FetchBuffer{Valid: true, Addr: p.streamAddr, Word: w}
			p.streamAddr++
		}
	}

	if p.halted || p.ir.Valid || p.mem.Busy() || !p.fbuf.Valid {
		return 0
	}

	inst, err := p.decoder.Decode(p.fbuf.Word)
	if err != nil {
		p.fail(fmt.Errorf("pc 0x%04x: %w", p.fbuf.Addr, err))
		return 0
	}

	p.ir = InstructionRegister{
		Valid: true,
		Addr:  p.fbuf.Addr,
		Inst:  inst,
		Op:    inst.MicroOp(),
	}
	p.fbuf.Clear()

	return 1
}

func (p *Pipeline) redirect(addr uint16, mode sqi.Mode) {
	p.engine.Redirect(addr, mode)
	p.fbuf.Clear()
	p.streamAddr = addr
	p.stats.Redirects++
	p.hook(HookPosRedirect, Redirect{Addr: addr, Mode: mode})
}
