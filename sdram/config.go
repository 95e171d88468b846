package sdram

import (
	"fmt"
	"math/bits"

	"github.com/gowinsim/sdramsim/sim"
)

// CASLatency is the number of cycles between a Read command and the first
// valid output word. The device supports 2 and 3 only.
type CASLatency int

// Supported CAS latencies.
const (
	CASLatency2 CASLatency = 2
	CASLatency3 CASLatency = 3
)

// Config is the fixed elaboration-time configuration of the controller. It
// is computed once by the Builder and passed by reference to every
// component; nothing in it changes at run time.
type Config struct {
	Freq sim.Freq

	// DataByteWidth is the external interface width in bytes (1-4). The
	// 3-byte configuration occupies a full native word with the high lane
	// permanently masked.
	DataByteWidth int

	RowAddressWidth int
	NumBanks        int
	DataWidth       int
	MaxWords        uint64
	CASLatency      CASLatency

	BankWidth     int
	ColumnWidth   int
	PageWords     int
	MaskBitOffset int

	// SuspendCycles is the number of clock-suspend cycles inserted per
	// native word when the external width is narrower than the native
	// word. SuspendShiftBits is the shift used by the refresh cycle-budget
	// estimate.
	SuspendCycles    int
	SuspendShiftBits int

	PowerUpCycles int
	RCCycles      int
	RCDCycles     int
	RPCycles      int
	RRDCycles     int
	RASCycles     int
	WRCycles      int
	MRDCycles     int
	REFICycles    int

	// Safety margins, in cycles, added to the remaining-burst estimate
	// when deciding whether a refresh must run before a burst may start.
	// The defaults carry the empirically validated values for the GW2AR
	// device; ports to other devices should re-derive them from the
	// device's timing table.
	ReadRefreshMarginCycles  int
	WriteRefreshMarginCycles int
}

// TargetMask returns the DQM value driven during Write commands. Widths that
// exactly divide the native word need no masking; the 3-byte configuration
// permanently excludes the high byte lane.
func (c *Config) TargetMask() uint8 {
	if c.DataByteWidth == 3 {
		return 0x8
	}
	return 0x0
}

// roundedByteWidth returns the number of native-word bytes a single external
// word occupies.
func roundedByteWidth(dataByteWidth int) int {
	if dataByteWidth == 3 {
		return 4
	}
	return dataByteWidth
}

// Builder builds controller configurations. Timing parameters are given in
// nanoseconds and converted to cycle counts at the configured frequency.
type Builder struct {
	freq            sim.Freq
	dataByteWidth   int
	rowAddressWidth int
	numBanks        int
	dataWidth       int
	maxWords        uint64
	casLatency      CASLatency

	tPowerUpNs float64
	tRCNs      float64
	tRCDNs     float64
	tRPNs      float64
	tRRDNs     float64
	tRASNs     float64
	tWRNs      float64
	tMRDNs     float64
	tREFINs    float64

	readRefreshMarginCycles  int
	writeRefreshMarginCycles int
}

// MakeBuilder creates a Builder with the GW2AR-LV18QN88 defaults.
func MakeBuilder() Builder {
	return Builder{
		freq:            100 * sim.MHz,
		dataByteWidth:   3,
		rowAddressWidth: 11,
		numBanks:        4,
		dataWidth:       32,
		maxWords:        2 * 1024 * 1024,
		casLatency:      CASLatency3,

		tPowerUpNs: 200000.0,
		tRCNs:      55.0,
		tRCDNs:     42.0,
		tRPNs:      15.0,
		tRRDNs:     10.0,
		tRASNs:     40.0,
		tWRNs:      15.0,
		tMRDNs:     30.0,
		tREFINs:    7800.0,

		readRefreshMarginCycles:  20,
		writeRefreshMarginCycles: 18,
	}
}

// WithFreq sets the system clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithDataByteWidth sets the external interface width in bytes (1-4).
func (b Builder) WithDataByteWidth(w int) Builder {
	b.dataByteWidth = w
	return b
}

// WithRowAddressWidth sets the number of row address bits.
func (b Builder) WithRowAddressWidth(w int) Builder {
	b.rowAddressWidth = w
	return b
}

// WithMaxWords sets the total number of native words in the device. It must
// be an exact power of two spanned by the column, bank, and row fields.
func (b Builder) WithMaxWords(n uint64) Builder {
	b.maxWords = n
	return b
}

// WithCASLatency sets the CAS latency (2 or 3).
func (b Builder) WithCASLatency(cl CASLatency) Builder {
	b.casLatency = cl
	return b
}

// WithRefreshIntervalNs overrides the average refresh interval.
func (b Builder) WithRefreshIntervalNs(ns float64) Builder {
	b.tREFINs = ns
	return b
}

// WithPowerUpNs overrides the power-up stabilization time.
func (b Builder) WithPowerUpNs(ns float64) Builder {
	b.tPowerUpNs = ns
	return b
}

// WithRefreshMargins overrides the preventive-refresh cycle-budget margins
// for reads and writes.
func (b Builder) WithRefreshMargins(read, write int) Builder {
	b.readRefreshMarginCycles = read
	b.writeRefreshMarginCycles = write
	return b
}

// Build computes the configuration. It panics on configurations the
// controller cannot drive.
func (b Builder) Build() Config {
	c := Config{
		Freq:            b.freq,
		DataByteWidth:   b.dataByteWidth,
		RowAddressWidth: b.rowAddressWidth,
		NumBanks:        b.numBanks,
		DataWidth:       b.dataWidth,
		MaxWords:        b.maxWords,
		CASLatency:      b.casLatency,

		ReadRefreshMarginCycles:  b.readRefreshMarginCycles,
		WriteRefreshMarginCycles: b.writeRefreshMarginCycles,
	}

	b.validateFixedParams()

	c.BankWidth = bits.Len(uint(b.numBanks)) - 1
	wordsPerBank := b.maxWords / uint64(b.numBanks) >> uint(b.rowAddressWidth)
	c.ColumnWidth = bits.Len64(wordsPerBank) - 1
	c.PageWords = 1 << uint(c.ColumnWidth)

	span := uint64(1) << uint(c.BankWidth+c.ColumnWidth+b.rowAddressWidth)
	if span != b.maxWords {
		panic(fmt.Errorf(
			"column, bank, and row bits span %d words, configured %d",
			span, b.maxWords))
	}

	rounded := roundedByteWidth(b.dataByteWidth)
	c.SuspendCycles = (b.dataWidth/8)/rounded - 1
	if c.SuspendCycles > 0 {
		c.SuspendShiftBits = bits.Len(uint(c.SuspendCycles+1)) - 2
	}

	switch rounded {
	case 4:
		c.MaskBitOffset = 0
	case 2:
		c.MaskBitOffset = 1
	case 1:
		c.MaskBitOffset = 2
	}

	c.PowerUpCycles = b.freq.NanoToCycles(b.tPowerUpNs)
	c.RCCycles = b.freq.NanoToCycles(b.tRCNs)
	c.RCDCycles = b.freq.NanoToCycles(b.tRCDNs)
	c.RPCycles = b.freq.NanoToCycles(b.tRPNs)
	c.RRDCycles = b.freq.NanoToCycles(b.tRRDNs)
	c.RASCycles = b.freq.NanoToCycles(b.tRASNs)
	c.WRCycles = b.freq.NanoToCycles(b.tWRNs)
	c.MRDCycles = b.freq.NanoToCycles(b.tMRDNs)
	c.REFICycles = b.freq.NanoToCycles(b.tREFINs)

	c.validateTiming()

	return c
}

func (b Builder) validateFixedParams() {
	if b.numBanks != 4 {
		panic(fmt.Errorf(
			"bank count must be 4, the bank decoding logic is hard-coded"))
	}

	if b.casLatency != CASLatency2 && b.casLatency != CASLatency3 {
		panic(fmt.Errorf("CAS latency must be 2 or 3, got %d", b.casLatency))
	}

	if b.dataByteWidth < 1 || b.dataByteWidth > 4 {
		panic(fmt.Errorf(
			"interface data width must be 1-4 bytes, got %d",
			b.dataByteWidth))
	}
}

func (c *Config) validateTiming() {
	if c.RCDCycles < 3 {
		panic(fmt.Errorf(
			"the write burst path needs RCD >= 3 cycles, got %d",
			c.RCDCycles))
	}

	minOne := map[string]int{
		"RC":   c.RCCycles,
		"RCD":  c.RCDCycles,
		"RP":   c.RPCycles,
		"RRD":  c.RRDCycles,
		"RAS":  c.RASCycles,
		"WR":   c.WRCycles,
		"MRD":  c.MRDCycles,
		"REFI": c.REFICycles,
	}
	for name, cycles := range minOne {
		if cycles < 1 {
			panic(fmt.Errorf("%s must be at least 1 cycle", name))
		}
	}
}
