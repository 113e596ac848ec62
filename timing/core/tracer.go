package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

// Tracer logs core events at debug level.
type Tracer struct {
	log *logrus.Logger
}

// NewTracer creates a tracer writing to log.
func NewTracer(log *logrus.Logger) *Tracer {
	return &Tracer{log: log}
}

// Func implements sim.Hook.
func (t *Tracer) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case pipeline.Retirement:
		t.log.WithFields(logrus.Fields{
			"cycle":   item.Cycle,
			"pc":      fmt.Sprintf("%04x", item.Addr),
			"skipped": item.Skipped,
		}).Debug(item.Inst.String())
	case pipeline.RegWrite:
		t.log.WithFields(logrus.Fields{
			"reg":   insts.RegName(item.Reg),
			"value": fmt.Sprintf("%04x", item.Value),
		}).Debug("write")
	case pipeline.MemWrite:
		t.log.WithFields(logrus.Fields{
			"addr":  fmt.Sprintf("%04x", item.Addr),
			"value": fmt.Sprintf("%04x", item.Value),
		}).Debug("store")
	case pipeline.Redirect:
		t.log.WithFields(logrus.Fields{
			"addr": fmt.Sprintf("%04x", item.Addr),
			"mode": item.Mode,
		}).Debug("redirect")
	}
}

// Recorder collects hook items for inspection.
type Recorder struct {
	Retired   []pipeline.Retirement
	RegWrites []pipeline.RegWrite
	MemWrites []pipeline.MemWrite
	Redirects []pipeline.Redirect
}

// Func implements sim.Hook.
func (r *Recorder) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case pipeline.Retirement:
		r.Retired = append(r.Retired, item)
	case pipeline.RegWrite:
		r.RegWrites = append(r.RegWrites, item)
	case pipeline.MemWrite:
		r.MemWrites = append(r.MemWrites, item)
	case pipeline.Redirect:
		r.Redirects = append(r.Redirects, item)
	}
}
