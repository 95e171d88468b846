package sdram

// A BankState tracks where one bank is in its activate/burst/precharge
// life cycle. The sequencer only ever keeps one bank open at a time, but the
// refresh bookkeeping is still per bank.
type BankState int

// All bank states.
const (
	BankNotReady BankState = iota
	BankIdle
	BankActive
	BankActiveBurst
	BankPrecharging
	BankRefreshing
)

var bankStateNames = map[BankState]string{
	BankNotReady:    "NotReady",
	BankIdle:        "Idle",
	BankActive:      "Active",
	BankActiveBurst: "ActiveBurst",
	BankPrecharging: "Precharging",
	BankRefreshing:  "Refreshing",
}

func (s BankState) String() string {
	if n, ok := bankStateNames[s]; ok {
		return n
	}
	return "Unknown"
}

// A bankController tracks the timing windows of a single bank. An activated
// bank must age tRAS cycles before it can be precharged, the same bank can
// only be re-activated tRC cycles after the previous activation, and any two
// activations on different banks must sit tRRD cycles apart. The controller
// also counts down the bank's refresh interval.
//
// The activated and otherActivated strobes are raised by the encoder on the
// cycle a BankActivate is issued and consumed by the next tick.
type bankController struct {
	refiCycles int
	rasCycles  int
	rcCycles   int
	rrdCycles  int

	state BankState

	refiCounter           int
	rasCounter            int
	activatedCounter      int
	otherActivatedCounter int

	shouldRefresh bool
	canPrecharge  bool

	activated      bool
	otherActivated bool
}

func newBankController(config *Config) *bankController {
	return &bankController{
		refiCycles: config.REFICycles,
		rasCycles:  config.RASCycles,
		rcCycles:   config.RCCycles,
		rrdCycles:  config.RRDCycles,
	}
}

// canActivate reports whether a BankActivate may be issued to this bank
// right now. Unlike the latched shouldRefresh and canPrecharge flags it
// reflects the counters as of the previous tick directly.
func (b *bankController) canActivate() bool {
	return b.activatedCounter == 0 && b.otherActivatedCounter == 0
}

// tick advances all timing counters by one cycle.
func (b *bankController) tick() {
	b.tickRefresh()
	b.tickRowAge()
	b.tickActivationWindows()
}

func (b *bankController) tickRefresh() {
	switch b.state {
	case BankIdle, BankActive, BankActiveBurst:
		// The flag is raised a few cycles early so the sequencer can
		// finish closing the row before the interval actually expires.
		if b.refiCounter <= 3 {
			b.shouldRefresh = true
		}
		if b.refiCounter > 0 {
			b.refiCounter--
		}
	default:
		b.refiCounter = b.refiCycles - 1
		b.shouldRefresh = false
	}
}

func (b *bankController) tickRowAge() {
	switch b.state {
	case BankActive, BankActiveBurst:
		if b.rasCounter < b.rasCycles-1 {
			b.canPrecharge = false
			b.rasCounter++
		} else {
			b.canPrecharge = true
		}
	default:
		b.canPrecharge = true
		b.rasCounter = 0
	}
}

func (b *bankController) tickActivationWindows() {
	if b.activated {
		b.activatedCounter = b.rcCycles - 1
		b.activated = false
	} else if b.activatedCounter > 0 {
		b.activatedCounter--
	}

	if b.otherActivated {
		b.otherActivatedCounter = b.rrdCycles - 1
		b.otherActivated = false
	} else if b.otherActivatedCounter > 0 {
		b.otherActivatedCounter--
	}
}
