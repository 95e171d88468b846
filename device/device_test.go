package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gowinsim/sdramsim/sdram"
)

func makeTestDevice() *Comp {
	cfg := sdram.MakeBuilder().WithMaxWords(4 * 2048 * 8).Build()
	return NewComp("dev", cfg)
}

func deselect() sdram.BusState {
	return sdram.BusState{ClkEn: true, CSn: true, RASn: true, CASn: true, WEn: true}
}

func primeAndConfigure(d *Comp) {
	// The first sample only latches clock-enable high.
	d.Sample(deselect())

	d.Sample(sdram.BusState{
		ClkEn: true,
		Address: sdram.ModeRegister{
			BurstLength: sdram.BurstLengthFullPage,
			BurstType:   sdram.BurstSequential,
			CASLatency:  sdram.CASLatency3,
		}.Pack(),
	})
}

func activate(d *Comp, bank, row uint32) {
	d.Sample(sdram.BusState{
		ClkEn: true, CASn: true, WEn: true,
		Bank: bank, Address: row,
	})
}

func TestDeviceWriteBurst(t *testing.T) {
	d := makeTestDevice()
	primeAndConfigure(d)
	activate(d, 1, 5)

	d.Sample(sdram.BusState{
		ClkEn: true, RASn: true,
		Bank: 1, Address: 2,
		Dq: 0x11111111, DqWrite: true,
	})
	cont := deselect()
	cont.Dq = 0x22222222
	cont.DqWrite = true
	d.Sample(cont)

	assert.Empty(t, d.Faults())

	// Row 5, bank 1, columns 2 and 3 with a 3-bit column field.
	v, _ := d.storage.Read(5<<5 | 1<<3 | 2)
	assert.Equal(t, uint32(0x11111111), v)
	v, _ = d.storage.Read(5<<5 | 1<<3 | 3)
	assert.Equal(t, uint32(0x22222222), v)
}

func TestDeviceWriteHonorsByteMask(t *testing.T) {
	d := makeTestDevice()
	primeAndConfigure(d)
	activate(d, 0, 0)

	d.Sample(sdram.BusState{
		ClkEn: true, RASn: true,
		Dq: 0xaabbccdd, DqWrite: true, DQM: 0x8,
	})

	v, _ := d.storage.Read(0)
	assert.Equal(t, uint32(0x00bbccdd), v)
}

func TestDeviceFlagsWriteBurstLeavingStorage(t *testing.T) {
	d := makeTestDevice()
	// Shrink the backing storage so a legal-looking burst lands outside it.
	d.storage = NewStorage(8)
	primeAndConfigure(d)
	activate(d, 0, 1)

	d.Sample(sdram.BusState{
		ClkEn: true, RASn: true,
		Dq: 0xdeadbeef, DqWrite: true,
	})

	assert.NotEmpty(t, d.Faults())
}

func TestDeviceReadBurstLatency(t *testing.T) {
	d := makeTestDevice()
	primeAndConfigure(d)
	activate(d, 0, 0)
	d.storage.Write(2, 0xcafe0001)
	d.storage.Write(3, 0xcafe0002)

	// Read command at column 2 with CAS latency 3.
	d.Sample(sdram.BusState{ClkEn: true, RASn: true, WEn: true, Address: 2})

	d.Sample(deselect())
	assert.Equal(t, uint32(0), d.DataOut())
	d.Sample(deselect())
	assert.Equal(t, uint32(0), d.DataOut())
	d.Sample(deselect())
	assert.Equal(t, uint32(0xcafe0001), d.DataOut())
	d.Sample(deselect())
	assert.Equal(t, uint32(0xcafe0002), d.DataOut())
}

func TestDeviceFreezesWhileClockSuspended(t *testing.T) {
	d := makeTestDevice()
	primeAndConfigure(d)
	activate(d, 0, 0)
	d.storage.Write(0, 0xaa)
	d.storage.Write(1, 0xbb)
	d.storage.Write(2, 0xcc)

	d.Sample(sdram.BusState{ClkEn: true, RASn: true, WEn: true, Address: 0})

	d.Sample(deselect())
	d.Sample(deselect())
	d.Sample(deselect())
	assert.Equal(t, uint32(0xaa), d.DataOut())

	// Lowering clock-enable takes effect on the next cycle.
	low := deselect()
	low.ClkEn = false
	d.Sample(low)
	assert.Equal(t, uint32(0xbb), d.DataOut())

	frozen := deselect()
	d.Sample(frozen)
	assert.Equal(t, uint32(0xbb), d.DataOut())

	d.Sample(deselect())
	assert.Equal(t, uint32(0xcc), d.DataOut())
}

func TestDeviceFlagsBurstWithoutOpenRow(t *testing.T) {
	d := makeTestDevice()
	primeAndConfigure(d)

	d.Sample(sdram.BusState{ClkEn: true, RASn: true, WEn: true, Address: 0})

	assert.NotEmpty(t, d.Faults())
}

func TestDevicePrechargeAllClosesEveryRow(t *testing.T) {
	d := makeTestDevice()
	primeAndConfigure(d)
	activate(d, 0, 1)
	activate(d, 2, 7)

	d.Sample(sdram.BusState{
		ClkEn: true, CASn: true,
		Address: 1 << 10,
	})

	// A fresh activate on either bank must not be flagged.
	activate(d, 0, 3)
	activate(d, 2, 4)
	assert.Empty(t, d.Faults())
}
