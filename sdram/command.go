package sdram

// A Command is one of the protocol primitives the controller can drive onto
// the command bus. Commands are stateless values: the sequencer produces
// them and the encoder consumes them.
type Command int

// All commands of the device protocol.
const (
	CmdNone Command = iota
	CmdBankActivate
	CmdBankPrecharge
	CmdPrechargeAll
	CmdWrite
	CmdWriteAutoPrecharge
	CmdRead
	CmdReadAutoPrecharge
	CmdModeRegisterSet
	CmdNoOp
	CmdBurstStop
	CmdDeselect
	CmdAutoRefresh
	CmdSelfRefreshEntry
	CmdSelfRefreshExit
	CmdOutputEnable
	CmdOutputDisable
)

var commandNames = map[Command]string{
	CmdNone:               "None",
	CmdBankActivate:       "BankActivate",
	CmdBankPrecharge:      "BankPrecharge",
	CmdPrechargeAll:       "PrechargeAll",
	CmdWrite:              "Write",
	CmdWriteAutoPrecharge: "WriteAutoPrecharge",
	CmdRead:               "Read",
	CmdReadAutoPrecharge:  "ReadAutoPrecharge",
	CmdModeRegisterSet:    "ModeRegisterSet",
	CmdNoOp:               "NoOp",
	CmdBurstStop:          "BurstStop",
	CmdDeselect:           "Deselect",
	CmdAutoRefresh:        "AutoRefresh",
	CmdSelfRefreshEntry:   "SelfRefreshEntry",
	CmdSelfRefreshExit:    "SelfRefreshExit",
	CmdOutputEnable:       "OutputEnable",
	CmdOutputDisable:      "OutputDisable",
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "Unknown"
}

// BusState is the set of pin assertions the controller drives toward the
// device. The control lines are active low on the wire; they are kept here
// with wire polarity (true = electrically high = deasserted) so a trace of
// BusState reads like the datasheet's truth table.
type BusState struct {
	ClkEn bool
	CSn   bool
	RASn  bool
	CASn  bool
	WEn   bool

	Address uint32
	Bank    uint32

	// DQM is the byte-lane mask, one bit per lane of the native word.
	DQM uint8

	// Dq carries write data; DqWrite is high while the controller drives
	// the data bus.
	Dq      uint32
	DqWrite bool
}

// Mode-register fields, packed into the address lines during a
// ModeRegisterSet command.

// BurstLengthField selects the number of words per burst.
type BurstLengthField uint32

// Burst length encodings.
const (
	BurstLength1 BurstLengthField = iota
	BurstLength2
	BurstLength4
	BurstLength8
	_
	_
	_
	BurstLengthFullPage
)

// BurstTypeField selects sequential or interleaved burst ordering.
type BurstTypeField uint32

// Burst type encodings.
const (
	BurstSequential BurstTypeField = iota
	BurstInterleaved
)

// TestModeField selects the vendor test mode. Only the normal mode is ever
// driven by this controller.
type TestModeField uint32

// Test mode encodings.
const (
	TestModeNormal TestModeField = iota
	TestModeVendor1
	TestModeVendor2
	TestModeVendor3
)

// WriteBurstModeField selects whether writes burst like reads or are single
// word.
type WriteBurstModeField uint32

// Write mode encodings.
const (
	BurstReadBurstWrite WriteBurstModeField = iota
	BurstReadSingleWrite
)

// ModeRegister is the value packed into the address lines during a
// ModeRegisterSet command.
type ModeRegister struct {
	BurstLength BurstLengthField
	BurstType   BurstTypeField
	CASLatency  CASLatency
	TestMode    TestModeField
	WriteMode   WriteBurstModeField
}

// Pack lays the fields out on the address lines: A0-A2 burst length, A3
// burst type, A4-A6 CAS latency, A7-A8 test mode, A9 write mode, A10 and up
// zero.
func (m ModeRegister) Pack() uint32 {
	return uint32(m.BurstLength)&0x7 |
		(uint32(m.BurstType)&0x1)<<3 |
		(uint32(m.CASLatency)&0x7)<<4 |
		(uint32(m.TestMode)&0x3)<<7 |
		(uint32(m.WriteMode)&0x1)<<9
}

// UnpackModeRegister decodes address lines driven during a ModeRegisterSet
// back into mode fields. The device model uses it to adopt the configured
// burst and latency behavior.
func UnpackModeRegister(address uint32) ModeRegister {
	return ModeRegister{
		BurstLength: BurstLengthField(address & 0x7),
		BurstType:   BurstTypeField((address >> 3) & 0x1),
		CASLatency:  CASLatency((address >> 4) & 0x7),
		TestMode:    TestModeField((address >> 7) & 0x3),
		WriteMode:   WriteBurstModeField((address >> 9) & 0x1),
	}
}
