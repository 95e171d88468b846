package sdram

// The top-level sequencer. Each handler runs once per cycle and advances a
// step index inside its state, mirroring a hardware state machine with a
// per-state command index register. A raised error flag parks the sequencer
// in the terminal error state on the following cycle.

func (c *Comp) stepState() {
	if c.errorFlag && c.state != StateError {
		c.prevState = c.state
		c.state = StateError
		c.ready = false
		return
	}

	switch c.state {
	case StateInit:
		c.stepInit()
	case StateConfiguration:
		c.stepConfiguration()
	case StateIdle:
		c.stepIdle()
	case StateRead:
		c.stepRead()
	case StateWriteBurst:
		c.stepWriteBurst()
	case StateRefresh:
		c.stepRefresh()
	case StateError:
	}
}

// stepInit deselects the device and waits out the power-up stabilization
// time with clock-enable held low.
func (c *Comp) stepInit() {
	switch c.step {
	case 0:
		c.enc.apply(CmdDeselect)
		if c.enc.completed {
			c.repeatRefresh = false
			c.powerUpCounter = c.config.PowerUpCycles
			c.step = 1
			c.bus.ClkEn = false
			c.bus.RASn = true
			c.bus.CASn = true
			c.bus.WEn = true
		}
	case 1:
		if c.powerUpCounter > 0 {
			c.powerUpCounter--
		} else {
			c.prevState = StateInit
			c.step = 0
			c.delayCounter = -1
			c.state = StateConfiguration
		}
	}
}

// stepConfiguration precharges all banks, programs the mode register for
// sequential full-page bursts, and issues the two auto-refreshes the device
// requires before first use.
func (c *Comp) stepConfiguration() {
	switch c.step {
	case 0:
		c.enc.apply(CmdPrechargeAll)
		if c.enc.completed {
			c.repeatRefresh = true
			c.step = 1
		}
	case 1:
		c.enc.apply(CmdDeselect)
		if c.enc.completed {
			c.step = 2
		}
	case 2:
		c.enc.apply(CmdModeRegisterSet)
		if c.enc.remaining == 0 {
			c.enc.setModeConfig(ModeRegister{
				BurstLength: BurstLengthFullPage,
				BurstType:   BurstSequential,
				CASLatency:  c.config.CASLatency,
				TestMode:    TestModeNormal,
				WriteMode:   BurstReadBurstWrite,
			})
		}
		if c.enc.completed {
			c.burstWritesMode = true
			c.step = 3
		}
	case 3:
		c.enc.apply(CmdAutoRefresh)
		if c.enc.completed {
			c.step = 4
		}
	case 4:
		c.enc.apply(CmdDeselect)
		if c.enc.completed {
			c.step = 5
			c.delayCounter = c.config.RCCycles - 1
		}
	case 5:
		if c.delayCounter > 0 {
			c.delayCounter--
		} else if c.delayCounter == 0 {
			c.delayCounter = -1
			c.step = 6
		}
	case 6:
		for _, b := range c.banks {
			b.state = BankIdle
		}
		if c.repeatRefresh {
			c.repeatRefresh = false
			c.step = 3
		} else {
			c.ready = true
			c.step = 0
			c.prevState = StateConfiguration
			c.state = StateIdle
		}
	}
}

// stepIdle keeps the bus on no-operation and arbitrates refreshes over
// reads over writes.
func (c *Comp) stepIdle() {
	c.enc.apply(CmdNoOp)
	if !c.enc.completed {
		return
	}

	switch {
	case c.banksShouldRefresh():
		c.prevState = StateIdle
		c.state = StateRefresh
	case c.rdPending:
		c.prevState = StateIdle
		c.ready = false
		c.rdPending = false
		c.ctrlAddress = c.rdAddress
		c.target = c.mapper.Map(c.rdAddress)
		c.step = 0
		c.state = StateRead
	case c.wrPending && c.burstWritesMode:
		c.prevState = StateIdle
		c.ready = false
		c.wrPending = false
		c.ctrlAddress = c.wrAddress
		c.target = c.mapper.Map(c.wrAddress)
		c.step = 0
		c.state = StateWriteBurst
	}
}

// stepRead runs one full-page burst read: preventive-refresh check, row
// activation, RAS-to-CAS wait, the read burst itself with clock-suspend
// based width adaptation, then precharge.
func (c *Comp) stepRead() {
	switch c.step {
	case 0:
		remaining := (c.config.PageWords - int(c.target.Column)) <<
			uint(c.config.SuspendShiftBits)
		c.refreshRequired = c.targetRefreshCounter <
			remaining+c.config.ReadRefreshMarginCycles
		c.step = 1
	case 1:
		if c.refreshRequired {
			// Preventive refresh so the burst cannot overrun the
			// bank's refresh interval.
			c.prevState = StateRead
			c.state = StateRefresh
		} else if c.targetCanActivate {
			c.enc.apply(CmdBankActivate)
			if c.enc.completed {
				c.bus.DQM = c.config.TargetMask()
				c.step = 2
			}
		}
	case 2:
		c.enc.apply(CmdDeselect)
		if c.enc.completed {
			c.delayCounter = c.config.RCDCycles - 1
			c.step = 3
		}
	case 3:
		if c.delayCounter > 0 {
			c.delayCounter--
		} else if c.delayCounter == 0 {
			c.delayCounter = -1
			// ReadAutoPrecharge does not precharge on full-page
			// bursts, so a plain Read plus explicit precharge is
			// used instead.
			c.enc.apply(CmdRead)
			if c.enc.completed {
				c.pageColumn = int(c.target.Column)
				c.step = 4
			}
		}
	case 4:
		c.enc.apply(CmdDeselect)
		if c.enc.completed {
			c.step = 5
		}
	case 5:
		if c.config.CASLatency == CASLatency2 {
			c.rdInProgress = true
			c.step = 7
			if c.config.SuspendCycles > 0 {
				c.suspendCounter = 0
				c.bus.ClkEn = false
			}
		} else {
			c.step = 6
		}
	case 6:
		// Extra wait cycle for CAS latency 3.
		c.rdInProgress = true
		c.step = 7
		if c.config.SuspendCycles > 0 {
			c.suspendCounter = 0
			c.bus.ClkEn = false
		}
	case 7:
		c.stepReadStream()
	case 8:
		c.rdInProgress = false
		if c.targetCanPrecharge {
			c.enc.apply(CmdBankPrecharge)
			if c.enc.completed {
				c.step = 9
			}
		}
	case 9:
		c.enc.apply(CmdDeselect)
		if c.enc.completed {
			c.delayCounter = c.config.RPCycles - 1
			c.step = 10
		}
	case 10:
		if c.delayCounter > 0 {
			c.delayCounter--
		} else if c.delayCounter == 0 {
			c.delayCounter = -1
			c.step = 0
			c.ready = true
			c.prevState = StateRead
			c.state = StateIdle
		}
	}
}

// stepReadStream delivers one external word per cycle. When the external
// width is narrower than a native word, the device clock is suspended while
// the staged word is sliced out, resuming for exactly one cycle per native
// word.
func (c *Comp) stepReadStream() {
	c.rdIncAddress = true

	if c.config.SuspendCycles == 0 {
		c.dataOut = c.device.DataOut() & c.widthMask
		if c.pageColumn == c.config.PageWords-2 {
			c.enc.apply(CmdOutputDisable)
		}
		if c.pageColumn < c.config.PageWords-1 {
			c.pageColumn++
		} else {
			c.pageColumn = 0
			c.step = 8
		}
		return
	}

	if c.suspendCounter == 0 {
		c.rdStaging = c.device.DataOut()
	}
	c.dataOut = c.readSlice(c.rdStaging, c.suspendCounter)

	if c.suspendCounter == c.config.SuspendCycles-1 {
		// Resume one cycle early so the device steps to the next word
		// exactly when the next window opens.
		c.bus.ClkEn = true
	}
	if c.suspendCounter == c.config.SuspendCycles {
		if c.pageColumn == c.config.PageWords-1 {
			c.enc.apply(CmdOutputDisable)
		} else {
			c.bus.ClkEn = false
		}
	}

	if c.suspendCounter < c.config.SuspendCycles {
		c.suspendCounter++
	} else if c.pageColumn < c.config.PageWords-1 {
		c.pageColumn++
		c.suspendCounter = 0
	} else {
		c.suspendCounter = 0
		c.pageColumn = 0
		c.step = 8
	}
}

// stepWriteBurst runs one full-page burst write, gathering external words
// into native words during suspended cycles when the interface is narrow.
func (c *Comp) stepWriteBurst() {
	switch c.step {
	case 0:
		remaining := (c.config.PageWords - int(c.target.Column)) <<
			uint(c.config.SuspendShiftBits)
		c.refreshRequired = c.targetRefreshCounter <
			remaining+c.config.WriteRefreshMarginCycles
		c.step = 1
	case 1:
		if c.refreshRequired {
			c.prevState = StateWriteBurst
			c.state = StateRefresh
		} else if c.targetCanActivate {
			c.enc.apply(CmdBankActivate)
			if c.enc.completed {
				c.bus.DQM = c.config.TargetMask()
				c.step = 2
			}
		}
	case 2:
		c.enc.apply(CmdNoOp)
		if c.enc.completed {
			c.delayCounter = c.config.RCDCycles - 1
			c.step = 3
		}
	case 3:
		c.stepWriteFirstWord()
	case 4:
		c.stepWriteStream()
	case 5:
		c.enc.apply(CmdDeselect)
		if c.delayCounter > 0 {
			c.delayCounter--
		}
		if c.enc.completed {
			c.step = 6
		}
	case 6:
		if c.delayCounter > 0 {
			c.delayCounter--
		} else if c.delayCounter == 0 && c.targetCanPrecharge {
			c.enc.apply(CmdBankPrecharge)
			if c.enc.completed {
				c.delayCounter = c.config.RPCycles - 1
				c.step = 7
			}
		}
	case 7:
		c.enc.apply(CmdDeselect)
		if c.delayCounter > 0 {
			c.delayCounter--
		} else if c.delayCounter == 0 {
			c.delayCounter = -1
			c.step = 0
			c.ready = true
			c.prevState = StateWriteBurst
			c.state = StateIdle
		}
	}
}

// stepWriteFirstWord waits out the RAS-to-CAS delay and issues the Write
// command with the first native word on the data lines. With a narrow
// interface the word is gathered from the client during the tail of the
// wait, one external word per cycle.
func (c *Comp) stepWriteFirstWord() {
	if c.config.SuspendCycles > 0 {
		if c.delayCounter > 0 {
			c.delayCounter--
			c.suspendCounter = 0
			return
		}

		c.wrInProgress = true
		if c.suspendCounter < c.config.SuspendCycles {
			c.pageColumn = int(c.target.Column)
			c.gatherWriteSlice(c.suspendCounter)
			c.wrIncAddress = true
			c.suspendCounter++
			return
		}

		c.delayCounter = -1
		c.suspendCounter = 0
		c.bus.DqWrite = true
		c.bus.Dq = c.wrStaging |
			(c.dataIn&c.widthMask)<<c.sliceShift(c.config.SuspendCycles)
		c.wrStaging = 0
		c.wrIncAddress = true
		c.enc.apply(CmdWrite)
		if !c.enc.completed {
			c.errorFlag = true
			return
		}
		// Suspend immediately so the next word can be gathered before
		// the device steps the burst.
		c.bus.ClkEn = false
		c.step = 4
		return
	}

	if c.delayCounter > 0 {
		c.delayCounter--
		return
	}

	c.delayCounter = -1
	c.wrInProgress = true
	c.bus.DqWrite = true
	c.bus.Dq = c.dataIn & c.widthMask
	c.wrIncAddress = true
	c.pageColumn = int(c.target.Column)
	// WriteAutoPrecharge does not precharge on full-page bursts, so a
	// plain Write plus explicit precharge is used instead.
	c.enc.apply(CmdWrite)
	if c.enc.completed {
		c.step = 4
	}
}

// stepWriteStream feeds the remaining native words of the burst, then masks
// the data lines and starts the write-recovery wait.
func (c *Comp) stepWriteStream() {
	if c.wrInProgress {
		// The command lines fall back to deselect so the burst in
		// flight is not re-decoded as a new Write.
		c.bus.CSn = true

		if c.config.SuspendCycles == 0 {
			c.bus.Dq = c.dataIn & c.widthMask
			c.wrIncAddress = true
			if c.pageColumn < c.config.PageWords-1 {
				c.pageColumn++
			} else {
				c.wrInProgress = false
				c.wrDrain = 1
			}
			return
		}

		if c.suspendCounter < c.config.SuspendCycles {
			c.bus.ClkEn = false
			c.gatherWriteSlice(c.suspendCounter)
			c.wrIncAddress = true
			c.suspendCounter++
			return
		}

		c.bus.ClkEn = true
		c.bus.Dq = c.wrStaging |
			(c.dataIn&c.widthMask)<<c.sliceShift(c.config.SuspendCycles)
		c.wrStaging = 0
		c.wrIncAddress = true
		c.suspendCounter = 0
		if c.pageColumn < c.config.PageWords-1 {
			c.pageColumn++
		} else {
			c.wrInProgress = false
			c.wrDrain = 1
		}
		return
	}

	if c.wrDrain > 0 {
		// The final word is still being absorbed by the device.
		c.wrDrain--
		return
	}

	c.bus.DqWrite = false
	c.enc.apply(CmdOutputDisable)
	if c.enc.completed {
		c.pageColumn = 0
		c.delayCounter = c.config.WRCycles - 1
		c.step = 5
	}
}

// stepRefresh issues one auto-refresh, waits out the refresh cycle time,
// then resumes whatever state the refresh interrupted.
func (c *Comp) stepRefresh() {
	switch c.refreshStep {
	case 0:
		c.enc.apply(CmdAutoRefresh)
		if c.enc.completed {
			c.refreshStep = 1
			c.delayCounter = c.config.RCCycles - 1
		}
	case 1:
		c.enc.apply(CmdDeselect)
		if c.delayCounter > 0 {
			c.delayCounter--
		} else if c.delayCounter == 0 && c.enc.completed {
			c.delayCounter = -1
			c.refreshStep = 0
			c.refreshRequired = false
			for _, b := range c.banks {
				b.state = BankIdle
			}

			resume := c.prevState
			c.prevState = StateRefresh
			switch resume {
			case StateWriteBurst:
				c.state = StateWriteBurst
			case StateRead:
				c.state = StateRead
			default:
				c.state = StateIdle
			}
		}
	}
}
