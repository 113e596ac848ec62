package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/sqi"
)

// Hook positions invoked by the controller. Each carries one of the item
// types below.
var (
	// HookPosRetire fires for every retired or skipped instruction.
	HookPosRetire = &sim.HookPos{Name: "Retire"}
	// HookPosRegWrite fires when a register write completes.
	HookPosRegWrite = &sim.HookPos{Name: "RegWrite"}
	// HookPosMemWrite fires when a store word is handed to the engine.
	HookPosMemWrite = &sim.HookPos{Name: "MemWrite"}
	// HookPosRedirect fires when the engine restarts at a new address.
	HookPosRedirect = &sim.HookPos{Name: "Redirect"}
)

// Retirement is the item of HookPosRetire.
type Retirement struct {
	Addr    uint16
	Inst    *insts.Instruction
	Skipped bool
	Cycle   uint64
}

// RegWrite is the item of HookPosRegWrite.
type RegWrite struct {
	Reg   uint8
	Value uint16
}

// MemWrite is the item of HookPosMemWrite.
type MemWrite struct {
	Addr  uint16
	Value uint16
}

// Redirect is the item of HookPosRedirect.
type Redirect struct {
	Addr uint16
	Mode sqi.Mode
}

func (p *Pipeline) hook(pos *sim.HookPos, item interface{}) {
	if p.NumHooks() == 0 {
		return
	}
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   item,
	})
}

func (p *Pipeline) regWritten(r uint8, v uint16) {
	if r == insts.RegZero {
		return
	}
	p.hook(HookPosRegWrite, RegWrite{Reg: r, Value: v})
}

func (p *Pipeline) memWritten(addr, v uint16) {
	p.hook(HookPosMemWrite, MemWrite{Addr: addr, Value: v})
}
