package pipeline

import (
	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
)

// StallReason records why a beat did not execute.
type StallReason uint8

// Stall reasons.
const (
	StallNone StallReason = iota
	// StallFetch means the instruction register is empty.
	StallFetch
	// StallImmediate means the trailing immediate has not arrived.
	StallImmediate
	// StallMemory means load data or write buffer space is missing.
	StallMemory
	// StallUART means the transmitter is busy or no word was received.
	StallUART
)

// admit decides at phase 0 what the controller does over the coming beat.
// Nothing changes architectural state until the wrap.
func (p *Pipeline) admit() (beat, StallReason) {
	switch {
	case p.mem.Final:
		return beat{kind: beatFinal}, StallNone

	case p.mem.Active && p.mem.Kind == insts.MemLoad:
		if !p.fbuf.Valid {
			return beat{}, StallMemory
		}
		return beat{kind: beatExec, op: insts.LoadStep(p.mem.Cur), data: true}, StallNone

	case p.mem.Active:
		if !p.engine.Accepting() {
			return beat{}, StallMemory
		}
		return beat{kind: beatExec, op: insts.StoreStep(p.mem.Cur), data: true}, StallNone

	case !p.ir.Valid:
		return beat{}, StallFetch
	}

	u := p.ir.Op
	if u.Imm && !p.fbuf.Valid {
		return beat{}, StallImmediate
	}

	if !p.condAllows() {
		return beat{kind: beatSkip, op: u}, StallNone
	}

	if u.Dest == insts.DestUART && !p.tx.Ready() {
		return beat{}, StallUART
	}
	if u.Right.Kind == insts.SrcUART && !p.rx.Ready() {
		if p.failOnInputExhausted && p.sender.Idle() && !p.rx.Busy() {
			p.fail(emu.ErrInputExhausted)
		}
		return beat{}, StallUART
	}

	return beat{
		kind:    beatExec,
		op:      u,
		chained: u.SetsCarry && p.chain.Active(insts.CountCarry),
	}, StallNone
}

func (p *Pipeline) condAllows() bool {
	if p.cond <= 1 {
		return true
	}
	return (p.cond&1 == 1) == p.pred
}

func (p *Pipeline) countStall(reason StallReason) {
	switch reason {
	case StallFetch:
		p.stats.FetchStalls++
	case StallImmediate:
		p.stats.ImmediateStalls++
	case StallMemory:
		p.stats.MemStalls++
	case StallUART:
		p.stats.UARTStalls++
	}
}
