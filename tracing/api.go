// Package tracing records the command stream a controller issues so runs
// can be inspected after the fact.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/gowinsim/sdramsim/sdram"
	"github.com/gowinsim/sdramsim/sim"
)

// A NamedHookable is a hookable simulation domain with a name.
type NamedHookable interface {
	sim.Hookable
	Name() string
}

// A CycleTeller reports the current simulation cycle.
type CycleTeller interface {
	CurrentCycle() uint64
}

// A CommandRecord is one issued command.
type CommandRecord struct {
	Cycle    uint64
	Location string
	Command  string
	Bank     uint32
	Address  uint32
	DQM      uint8
}

// A Tracer consumes the command records of a domain.
type Tracer interface {
	CommandIssued(record CommandRecord)
}

// CollectTrace lets the tracer collect the command trace of a domain.
func CollectTrace(domain NamedHookable, cycles CycleTeller, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.tracer == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := &traceHook{
		domain: domain,
		cycles: cycles,
		tracer: tracer,
	}
	domain.AcceptHook(h)
}

// A traceHook translates command-issue hook invocations into records.
type traceHook struct {
	domain NamedHookable
	cycles CycleTeller
	tracer Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sdram.HookPosCommandIssue {
		return
	}

	record := CommandRecord{
		Cycle:    h.cycles.CurrentCycle(),
		Location: h.domain.Name(),
		Command:  ctx.Item.(sdram.Command).String(),
	}
	if bus, ok := ctx.Detail.(sdram.BusState); ok {
		record.Bank = bus.Bank
		record.Address = bus.Address
		record.DQM = bus.DQM
	}

	h.tracer.CommandIssued(record)
}
