// Package agent provides a scenario driver that exercises an SDRAM
// controller the way client hardware would: it raises read and write
// requests, streams write words on the consume strobe, and collects read
// words on the produce strobe.
package agent

import (
	"log"

	"github.com/gowinsim/sdramsim/sdram"
)

type opKind int

const (
	opWrite opKind = iota
	opRead
)

type operation struct {
	kind      opKind
	addr      uint64
	words     []uint32
	count     int
	collected []uint32
	pos       int
	issued    bool
}

// Comp drives one controller through a queue of page operations.
type Comp struct {
	name string
	ctrl *sdram.Comp

	ops     []*operation
	current *operation
	results [][]uint32
}

// NewComp creates an agent for the given controller.
func NewComp(name string, ctrl *sdram.Comp) *Comp {
	return &Comp{
		name: name,
		ctrl: ctrl,
	}
}

// Name returns the name of the agent.
func (a *Comp) Name() string {
	return a.name
}

// WritePage queues a burst write of words starting at addr. The slice holds
// external words, one per produced strobe cycle, and must not be empty: the
// first word goes out on the data lines together with the request.
func (a *Comp) WritePage(addr uint64, words []uint32) {
	if len(words) == 0 {
		log.Panic("a write burst needs at least one word")
	}

	a.ops = append(a.ops, &operation{
		kind:  opWrite,
		addr:  addr,
		words: words,
	})
}

// ReadPage queues a burst read of count external words starting at addr.
func (a *Comp) ReadPage(addr uint64, count int) {
	a.ops = append(a.ops, &operation{
		kind:  opRead,
		addr:  addr,
		count: count,
	})
}

// Done reports whether every queued operation has fully completed.
func (a *Comp) Done() bool {
	return a.current == nil && len(a.ops) == 0
}

// ReadResults returns the collected words of each completed read, in queue
// order.
func (a *Comp) ReadResults() [][]uint32 {
	return a.results
}

// Tick reacts to the controller strobes for the cycle the controller just
// finished, and issues the next operation when the controller is ready. The
// agent must tick after the controller within the same engine cycle.
func (a *Comp) Tick() bool {
	progress := false

	if a.current != nil {
		progress = a.serveCurrent() || progress
	}

	if a.current == nil && len(a.ops) > 0 && a.ctrl.Ready() {
		a.issueNext()
		progress = true
	}

	return progress
}

func (a *Comp) issueNext() {
	op := a.ops[0]
	a.ops = a.ops[1:]
	a.current = op

	switch op.kind {
	case opWrite:
		log.Printf("agent %s: write burst at %#x, %d words",
			a.name, op.addr, len(op.words))
		a.ctrl.SetWriteData(op.words[0])
		a.ctrl.RequestWrite(op.addr)
	case opRead:
		log.Printf("agent %s: read burst at %#x, %d words",
			a.name, op.addr, op.count)
		a.ctrl.RequestRead(op.addr)
	}
	op.issued = true
}

func (a *Comp) serveCurrent() bool {
	op := a.current
	progress := false

	switch op.kind {
	case opWrite:
		if a.ctrl.WrIncAddress() {
			op.pos++
			if op.pos < len(op.words) {
				a.ctrl.SetWriteData(op.words[op.pos])
			}
			progress = true
		}
		if op.pos >= len(op.words) && a.ctrl.Ready() {
			a.current = nil
			progress = true
		}
	case opRead:
		if a.ctrl.RdIncAddress() {
			op.collected = append(op.collected, a.ctrl.DataOut())
			progress = true
		}
		if len(op.collected) >= op.count && a.ctrl.Ready() {
			a.results = append(a.results, op.collected)
			a.current = nil
			progress = true
		}
	}

	return progress
}
