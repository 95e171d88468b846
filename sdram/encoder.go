package sdram

// commandEncoder turns Commands into pin assertions on the Comp's bus state.
// Issuing a command takes two phases: if the clock-enable line is low when a
// command is applied, the first apply only raises it and reports one cycle
// remaining; the command's signals go out on the following apply. Commands
// that the device must be given time to absorb (PrechargeAll and
// ModeRegisterSet) additionally run a hold countdown before they report
// completion.
//
// apply is meant to be called on every cycle the sequencer spends on the
// same command, like combinational decode logic re-evaluated each clock.
type commandEncoder struct {
	comp *Comp

	current   Command
	remaining int
	completed bool
	delay     int
}

func newCommandEncoder(comp *Comp) *commandEncoder {
	return &commandEncoder{
		comp:  comp,
		delay: -1,
	}
}

// raiseClkEn performs the first issue phase. It returns true if the cycle
// was spent bringing clock-enable back up.
func (e *commandEncoder) raiseClkEn() bool {
	if !e.comp.bus.ClkEn {
		e.comp.bus.ClkEn = true
		e.remaining = 1
		return true
	}
	e.remaining = 0
	return false
}

// targetBurstable reports whether the bank addressed by the pending request
// has an open row a Read or Write can land on.
func (e *commandEncoder) targetBurstable() bool {
	s := e.comp.targetBank().state
	return s == BankActive || s == BankActiveBurst
}

func (e *commandEncoder) allBanksIdle() bool {
	for _, b := range e.comp.banks {
		if b.state != BankIdle {
			return false
		}
	}
	return true
}

func (e *commandEncoder) apply(cmd Command) {
	e.current = cmd
	e.completed = false

	switch cmd {
	case CmdBankActivate:
		e.applyBankActivate()
	case CmdBankPrecharge:
		e.applyBankPrecharge()
	case CmdPrechargeAll:
		e.applyPrechargeAll()
	case CmdWrite, CmdWriteAutoPrecharge:
		e.applyWrite(cmd == CmdWriteAutoPrecharge)
	case CmdRead, CmdReadAutoPrecharge:
		e.applyRead(cmd == CmdReadAutoPrecharge)
	case CmdModeRegisterSet:
		e.applyModeRegisterSet()
	case CmdNoOp:
		e.applyNoOp()
	case CmdBurstStop:
		e.applyBurstStop()
	case CmdAutoRefresh:
		e.applyAutoRefresh()
	case CmdSelfRefreshEntry:
		e.applySelfRefreshEntry()
	case CmdSelfRefreshExit:
		e.applySelfRefreshExit()
	case CmdOutputEnable:
		e.applyOutputEnable()
	case CmdOutputDisable:
		e.applyOutputDisable()
	default:
		e.current = CmdDeselect
		e.applyDeselect()
	}
}

func (e *commandEncoder) applyBankActivate() {
	c := e.comp

	if c.targetBank().state != BankIdle || !c.targetCanActivate {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	e.completed = true
	for i, b := range c.banks {
		if uint64(i) == c.target.Bank {
			b.activated = true
			if c.burstWritesMode {
				b.state = BankActiveBurst
			} else {
				b.state = BankActive
			}
		} else {
			b.otherActivated = true
		}
	}

	c.bus.Bank = uint32(c.target.Bank)
	c.bus.Address = uint32(c.target.Row)
	c.bus.CSn = false
	c.bus.RASn = false
	c.bus.CASn = true
	c.bus.WEn = true
}

func (e *commandEncoder) applyBankPrecharge() {
	c := e.comp

	if e.raiseClkEn() {
		return
	}

	e.completed = true
	c.targetBank().state = BankIdle

	c.bus.Address &^= 1 << 10
	c.bus.CSn = false
	c.bus.RASn = false
	c.bus.CASn = true
	c.bus.WEn = false
}

func (e *commandEncoder) applyPrechargeAll() {
	c := e.comp

	if e.raiseClkEn() {
		return
	}

	if e.delay < 0 {
		e.delay = c.config.RPCycles - 1

		c.bus.Address |= 1 << 10
		c.bus.CSn = false
		c.bus.RASn = false
		c.bus.CASn = true
		c.bus.WEn = false
		for _, b := range c.banks {
			b.state = BankIdle
		}
		return
	}

	if e.delay > 0 {
		e.delay--
		return
	}
	e.completed = true
	e.delay = -1
}

func (e *commandEncoder) applyWrite(autoPrecharge bool) {
	c := e.comp

	if !e.targetBurstable() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	e.completed = true
	c.bus.DQM = c.config.TargetMask()
	c.bus.Bank = uint32(c.target.Bank)
	// The column occupies the low address lines, which also drives the
	// auto-precharge line A10 low.
	c.bus.Address = uint32(c.target.Column)
	if autoPrecharge {
		c.bus.Address |= 1 << 10
	}
	c.bus.CSn = false
	c.bus.RASn = true
	c.bus.CASn = false
	c.bus.WEn = false
}

func (e *commandEncoder) applyRead(autoPrecharge bool) {
	c := e.comp

	if !e.targetBurstable() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	if !autoPrecharge {
		e.completed = true
	}
	c.bus.Bank = uint32(c.target.Bank)
	c.bus.Address = uint32(c.target.Column)
	if autoPrecharge {
		c.bus.Address |= 1 << 10
	}
	c.bus.CSn = false
	c.bus.RASn = true
	c.bus.CASn = false
	c.bus.WEn = true
}

func (e *commandEncoder) applyModeRegisterSet() {
	c := e.comp

	if !e.allBanksIdle() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	if e.delay < 0 {
		e.delay = c.config.MRDCycles - 1

		// The mode value itself goes on the address lines through
		// setModeConfig before the command is applied.
		c.bus.CSn = false
		c.bus.RASn = false
		c.bus.CASn = false
		c.bus.WEn = false
		return
	}

	if e.delay > 0 {
		e.delay--
		return
	}
	e.completed = true
	e.delay = -1
}

func (e *commandEncoder) applyNoOp() {
	c := e.comp

	if e.raiseClkEn() {
		return
	}

	e.completed = true
	c.bus.CSn = false
	c.bus.RASn = true
	c.bus.CASn = true
	c.bus.WEn = true
}

func (e *commandEncoder) applyBurstStop() {
	c := e.comp

	if c.targetBank().state != BankActiveBurst {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	c.bus.CSn = false
	c.bus.RASn = true
	c.bus.CASn = true
	c.bus.WEn = false
}

func (e *commandEncoder) applyDeselect() {
	c := e.comp

	if e.raiseClkEn() {
		return
	}

	e.completed = true
	c.bus.CSn = true
}

func (e *commandEncoder) applyAutoRefresh() {
	c := e.comp

	if !e.allBanksIdle() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	e.completed = true
	for _, b := range c.banks {
		b.state = BankRefreshing
	}
	c.bus.CSn = false
	c.bus.RASn = false
	c.bus.CASn = false
	c.bus.WEn = true
}

func (e *commandEncoder) applySelfRefreshEntry() {
	c := e.comp

	if !e.allBanksIdle() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	// Clock-enable drops together with the command so the device latches
	// it low on the following edge.
	c.bus.ClkEn = false
	c.bus.CSn = false
	c.bus.RASn = false
	c.bus.CASn = false
	c.bus.WEn = true
}

func (e *commandEncoder) applySelfRefreshExit() {
	c := e.comp

	if !e.allBanksIdle() {
		c.errorFlag = true
		return
	}

	if c.bus.ClkEn {
		c.bus.ClkEn = false
		e.remaining = 1
		return
	}

	e.remaining = 0
	c.bus.ClkEn = true
	c.bus.CSn = false
	c.bus.RASn = true
	c.bus.CASn = true
	c.bus.WEn = true
}

func (e *commandEncoder) applyOutputEnable() {
	c := e.comp

	if !e.targetBurstable() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	c.bus.DQM = 0x0
}

func (e *commandEncoder) applyOutputDisable() {
	c := e.comp

	if !e.targetBurstable() {
		c.errorFlag = true
		return
	}
	if e.raiseClkEn() {
		return
	}

	e.completed = true
	c.bus.DQM = 0xF
}

// setModeConfig drives a mode register value onto the address and bank
// lines. It accompanies a ModeRegisterSet command.
func (e *commandEncoder) setModeConfig(mode ModeRegister) {
	e.comp.bus.Bank = 0
	e.comp.bus.Address = mode.Pack()
}
