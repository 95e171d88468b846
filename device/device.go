// Package device models the SDRAM chip side of the bus: command decode,
// open rows, CKE clock suspension, CAS latency, and full-page bursts over a
// sparse word storage. The model is driven purely by the controller sampling
// its bus state once per cycle.
package device

import (
	"fmt"
	"log"

	"github.com/gowinsim/sdramsim/sdram"
)

type burstKind int

const (
	burstNone burstKind = iota
	burstRead
	burstWrite
)

// Comp is the memory device model. It implements sdram.Device.
type Comp struct {
	name    string
	config  sdram.Config
	storage *Storage

	// cke is the clock-enable level latched on the previous cycle. A
	// sample taken while it is low freezes the device entirely.
	cke bool

	mode    sdram.ModeRegister
	modeSet bool

	rowActive []bool
	openRow   []uint64

	burst     burstKind
	burstBank uint64
	burstCol  uint64
	burstEnd  uint64
	latency   int

	dataOut uint32

	faults []string
}

// NewComp creates a device shaped by the controller configuration, backed
// by its own sparse storage.
func NewComp(name string, config sdram.Config) *Comp {
	return &Comp{
		name:      name,
		config:    config,
		storage:   NewStorage(config.MaxWords),
		rowActive: make([]bool, config.NumBanks),
		openRow:   make([]uint64, config.NumBanks),
	}
}

// Name returns the name of the device.
func (d *Comp) Name() string {
	return d.name
}

// Storage exposes the backing storage, mainly so tests and scenario agents
// can preload or inspect memory contents directly.
func (d *Comp) Storage() *Storage {
	return d.storage
}

// DataOut returns the word the device drove on the data lines during the
// previous cycle.
func (d *Comp) DataOut() uint32 {
	return d.dataOut
}

// Faults returns the protocol violations observed so far.
func (d *Comp) Faults() []string {
	return d.faults
}

// Sample consumes the controller's pin assertions for one cycle.
func (d *Comp) Sample(bus sdram.BusState) {
	effective := d.cke
	d.cke = bus.ClkEn
	if !effective {
		return
	}

	d.decode(bus)
	d.stepBurst(bus)
}

func (d *Comp) fault(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.faults = append(d.faults, msg)
	log.Printf("device %s: %s", d.name, msg)
}

// decode interprets the command lines. Deselect and no-operation leave any
// burst in flight untouched.
func (d *Comp) decode(bus sdram.BusState) {
	if bus.CSn {
		return
	}

	switch {
	case !bus.RASn && !bus.CASn && !bus.WEn:
		d.decodeModeRegisterSet(bus)
	case !bus.RASn && bus.CASn && bus.WEn:
		d.decodeActivate(bus)
	case !bus.RASn && bus.CASn && !bus.WEn:
		d.decodePrecharge(bus)
	case !bus.RASn && !bus.CASn && bus.WEn:
		d.decodeAutoRefresh()
	case bus.RASn && !bus.CASn && !bus.WEn:
		d.decodeWrite(bus)
	case bus.RASn && !bus.CASn && bus.WEn:
		d.decodeRead(bus)
	case bus.RASn && bus.CASn && !bus.WEn:
		d.burst = burstNone
	}
}

func (d *Comp) decodeModeRegisterSet(bus sdram.BusState) {
	for b, active := range d.rowActive {
		if active {
			d.fault("mode register set with bank %d row open", b)
			return
		}
	}
	d.mode = sdram.UnpackModeRegister(bus.Address)
	d.modeSet = true
}

func (d *Comp) decodeActivate(bus sdram.BusState) {
	bank := uint64(bus.Bank)
	if d.rowActive[bank] {
		d.fault("activate on bank %d with a row already open", bank)
		return
	}
	d.rowActive[bank] = true
	d.openRow[bank] = uint64(bus.Address) &
		(1<<uint(d.config.RowAddressWidth) - 1)
}

func (d *Comp) decodePrecharge(bus sdram.BusState) {
	d.burst = burstNone
	if bus.Address&(1<<10) != 0 {
		for b := range d.rowActive {
			d.rowActive[b] = false
		}
		return
	}
	d.rowActive[bus.Bank] = false
}

func (d *Comp) decodeAutoRefresh() {
	for b, active := range d.rowActive {
		if active {
			d.fault("auto refresh with bank %d row open", b)
			return
		}
	}
}

// burstWords returns the burst length programmed in the mode register.
func (d *Comp) burstWords() uint64 {
	switch d.mode.BurstLength {
	case sdram.BurstLength1:
		return 1
	case sdram.BurstLength2:
		return 2
	case sdram.BurstLength4:
		return 4
	case sdram.BurstLength8:
		return 8
	default:
		return uint64(d.config.PageWords)
	}
}

func (d *Comp) startBurst(bus sdram.BusState, kind burstKind) bool {
	bank := uint64(bus.Bank)
	if !d.modeSet {
		d.fault("burst before the mode register was programmed")
		return false
	}
	if !d.rowActive[bank] {
		d.fault("burst on bank %d with no open row", bank)
		return false
	}

	col := uint64(bus.Address) & (1<<uint(d.config.ColumnWidth) - 1)
	d.burst = kind
	d.burstBank = bank
	d.burstCol = col
	d.burstEnd = col + d.burstWords()
	if end := uint64(d.config.PageWords); d.burstEnd > end {
		d.burstEnd = end
	}
	return true
}

func (d *Comp) decodeWrite(bus sdram.BusState) {
	if !d.startBurst(bus, burstWrite) {
		return
	}
	// The first word goes in on the command cycle itself.
	d.writeWord(bus)
}

func (d *Comp) decodeRead(bus sdram.BusState) {
	if !d.startBurst(bus, burstRead) {
		return
	}
	d.latency = int(d.config.CASLatency)
}

// stepBurst advances a burst in flight by one effective cycle. The command
// cycle itself already consumed or produced its word during decode.
func (d *Comp) stepBurst(bus sdram.BusState) {
	switch d.burst {
	case burstWrite:
		if bus.CSn || (bus.RASn && bus.CASn && bus.WEn) {
			d.writeWord(bus)
		}
	case burstRead:
		if !bus.CSn && !(bus.RASn && bus.CASn && bus.WEn) {
			return
		}
		if d.latency > 1 {
			d.latency--
			return
		}
		d.readWord()
	}
}

// wordAddress flattens the burst position into the storage address space.
func (d *Comp) wordAddress() uint64 {
	row := d.openRow[d.burstBank]
	return row<<uint(d.config.BankWidth+d.config.ColumnWidth) |
		d.burstBank<<uint(d.config.ColumnWidth) |
		d.burstCol
}

func (d *Comp) writeWord(bus sdram.BusState) {
	if !bus.DqWrite {
		d.fault("write burst cycle without the data bus driven")
		d.burst = burstNone
		return
	}
	if bus.DQM == 0xF {
		// Fully masked; the burst is effectively over.
		d.burst = burstNone
		return
	}

	addr := d.wordAddress()
	old, err := d.storage.Read(addr)
	if err != nil {
		d.fault("write burst left the device: %v", err)
		d.burst = burstNone
		return
	}

	merged := old
	for lane := 0; lane < 4; lane++ {
		if bus.DQM&(1<<uint(lane)) != 0 {
			continue
		}
		mask := uint32(0xff) << uint(lane*8)
		merged = merged&^mask | bus.Dq&mask
	}
	if err := d.storage.Write(addr, merged); err != nil {
		d.fault("write burst left the device: %v", err)
		d.burst = burstNone
		return
	}

	d.burstCol++
	if d.burstCol >= d.burstEnd {
		d.burst = burstNone
	}
}

func (d *Comp) readWord() {
	addr := d.wordAddress()
	v, err := d.storage.Read(addr)
	if err != nil {
		d.fault("read burst left the device: %v", err)
		d.burst = burstNone
		return
	}
	d.dataOut = v

	d.burstCol++
	if d.burstCol >= d.burstEnd {
		d.burst = burstNone
	}
}
