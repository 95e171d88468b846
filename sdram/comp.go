// Package sdram implements a cycle-level model of a full-page-burst SDRAM
// controller. The controller owns four bank timing controllers, a command
// encoder, and a top-level sequencer, and drives a Device model through a
// shared bus state that is sampled once per cycle.
package sdram

import (
	"github.com/gowinsim/sdramsim/sdram/internal/addressmapping"
	"github.com/gowinsim/sdramsim/sim"
)

// A ControllerState is a top-level sequencer state.
type ControllerState int

// All sequencer states.
const (
	StateInit ControllerState = iota
	StateConfiguration
	StateIdle
	StateRefresh
	StateWriteBurst
	StateRead
	StateError
)

var controllerStateNames = map[ControllerState]string{
	StateInit:          "Init",
	StateConfiguration: "Configuration",
	StateIdle:          "Idle",
	StateRefresh:       "Refresh",
	StateWriteBurst:    "WriteBurst",
	StateRead:          "Read",
	StateError:         "Error",
}

func (s ControllerState) String() string {
	if n, ok := controllerStateNames[s]; ok {
		return n
	}
	return "Unknown"
}

// HookPosCommandIssue is triggered every cycle a command finishes issuing.
// The hook context item is the Command.
var HookPosCommandIssue = &sim.HookPos{Name: "CommandIssue"}

// A Device consumes the controller's pin assertions. Sample is called once
// per cycle with the bus as the controller leaves it; DataOut returns the
// word the device drove on the data lines during the previous cycle.
type Device interface {
	Sample(bus BusState)
	DataOut() uint32
}

// Comp is the SDRAM controller.
type Comp struct {
	sim.HookableBase

	name   string
	config Config
	device Device
	mapper addressmapping.Mapper

	banks []*bankController
	enc   *commandEncoder
	bus   BusState

	state     ControllerState
	prevState ControllerState
	step      int

	errorFlag bool
	ready     bool

	powerUpCounter int
	delayCounter   int
	repeatRefresh  bool

	burstWritesMode bool
	refreshStep     int
	refreshRequired bool

	ctrlAddress uint64
	target      addressmapping.Location

	// Latched one cycle behind the bank counters, like the registered
	// decode signals they model.
	targetCanActivate    bool
	targetCanPrecharge   bool
	targetRefreshCounter int

	pageColumn     int
	suspendCounter int
	wrDrain        int

	rdInProgress bool
	wrInProgress bool
	rdStaging    uint32
	wrStaging    uint32

	rdPending bool
	wrPending bool
	rdAddress uint64
	wrAddress uint64

	dataIn       uint32
	dataOut      uint32
	rdIncAddress bool
	wrIncAddress bool

	widthMask uint32
}

// NewComp creates a controller over the given device. The device may be nil,
// in which case the controller drives an unobserved bus.
func NewComp(name string, config Config, device Device) *Comp {
	c := &Comp{
		name:         name,
		config:       config,
		device:       device,
		delayCounter: -1,
	}

	c.mapper = addressmapping.MakeBuilder().
		WithColumnWidth(config.ColumnWidth).
		WithBankWidth(config.BankWidth).
		WithRowWidth(config.RowAddressWidth).
		WithMaskBitOffset(config.MaskBitOffset).
		Build()

	for i := 0; i < config.NumBanks; i++ {
		c.banks = append(c.banks, newBankController(&c.config))
	}
	c.enc = newCommandEncoder(c)

	if config.DataByteWidth == 4 {
		c.widthMask = 0xffffffff
	} else {
		c.widthMask = 1<<uint(config.DataByteWidth*8) - 1
	}

	c.targetCanActivate = true
	c.targetCanPrecharge = true

	return c
}

// Name returns the name of the controller.
func (c *Comp) Name() string {
	return c.name
}

// Config returns the controller configuration.
func (c *Comp) Config() Config {
	return c.config
}

// Tick advances the controller by one cycle. It returns false once the
// controller has parked in the terminal error state.
func (c *Comp) Tick() bool {
	if c.state == StateError {
		return false
	}

	c.rdIncAddress = false
	c.wrIncAddress = false
	// Completion is a per-cycle signal. Wait cycles apply no command, so
	// the flag must not linger from the previous issue.
	c.enc.completed = false

	c.stepState()

	if c.enc.completed {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosCommandIssue,
			Item:   c.enc.current,
			Detail: c.bus,
		})
	}

	for _, b := range c.banks {
		b.tick()
	}
	c.latchTargetFlags()

	if c.device != nil {
		c.device.Sample(c.bus)
	}

	return true
}

func (c *Comp) targetBank() *bankController {
	return c.banks[c.target.Bank]
}

func (c *Comp) latchTargetFlags() {
	b := c.targetBank()
	c.targetCanActivate = b.canActivate()
	c.targetCanPrecharge = b.canPrecharge
	c.targetRefreshCounter = b.refiCounter
}

func (c *Comp) banksShouldRefresh() bool {
	for _, b := range c.banks {
		if b.shouldRefresh {
			return true
		}
	}
	return false
}

// Ready reports whether the controller can accept a new request.
func (c *Comp) Ready() bool {
	return c.ready
}

// Faulted reports whether the controller hit a protocol violation and parked
// in the terminal error state.
func (c *Comp) Faulted() bool {
	return c.errorFlag
}

// State returns the current sequencer state.
func (c *Comp) State() ControllerState {
	return c.state
}

// BankStates returns the current state of each bank.
func (c *Comp) BankStates() []BankState {
	states := make([]BankState, len(c.banks))
	for i, b := range c.banks {
		states[i] = b.state
	}
	return states
}

// Bus returns the pin assertions as of the last cycle.
func (c *Comp) Bus() BusState {
	return c.bus
}

// RequestRead asks for a burst read starting at addr. The request is picked
// up the next time the sequencer idles.
func (c *Comp) RequestRead(addr uint64) {
	c.rdPending = true
	c.rdAddress = addr
}

// RequestWrite asks for a burst write starting at addr.
func (c *Comp) RequestWrite(addr uint64) {
	c.wrPending = true
	c.wrAddress = addr
}

// SetWriteData presents the next write word on the client data-in lines. The
// word is consumed on cycles where WrIncAddress reports true.
func (c *Comp) SetWriteData(v uint32) {
	c.dataIn = v & c.widthMask
}

// DataOut returns the client data-out lines.
func (c *Comp) DataOut() uint32 {
	return c.dataOut
}

// RdIncAddress reports whether a read word was produced this cycle. The
// client advances its read pointer on every cycle this is true.
func (c *Comp) RdIncAddress() bool {
	return c.rdIncAddress
}

// WrIncAddress reports whether the write word on the data-in lines was
// consumed this cycle.
func (c *Comp) WrIncAddress() bool {
	return c.wrIncAddress
}

// sliceShift returns the bit position of external word i inside a native
// word.
func (c *Comp) sliceShift(i int) uint {
	return uint(i * c.config.DataByteWidth * 8)
}

// readSlice extracts external word i from a native word.
func (c *Comp) readSlice(word uint32, i int) uint32 {
	return (word >> c.sliceShift(i)) & c.widthMask
}

// gatherWriteSlice accumulates the presented write word as external word i
// of the native word under assembly.
func (c *Comp) gatherWriteSlice(i int) {
	c.wrStaging |= (c.dataIn & c.widthMask) << c.sliceShift(i)
}
