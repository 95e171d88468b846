package sim

import "log"

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	Tick() bool
}

// A CycleEngine drives a set of Tickers that share one synchronous clock
// domain. Each call to one of the Run methods advances the whole domain one
// tick at a time; all registered tickers observe the state left by the
// previous tick, so there are no read-after-write hazards within a tick.
type CycleEngine struct {
	HookableBase

	freq    Freq
	cycle   uint64
	tickers []Ticker
}

// NewCycleEngine creates a CycleEngine running at the given frequency.
func NewCycleEngine(freq Freq) *CycleEngine {
	if freq == 0 {
		log.Panic("frequency cannot be 0")
	}

	e := new(CycleEngine)
	e.freq = freq

	return e
}

// RegisterTicker adds a ticker to be advanced on every cycle. Tickers run in
// registration order.
func (e *CycleEngine) RegisterTicker(t Ticker) {
	e.tickers = append(e.tickers, t)
}

// CurrentCycle returns the number of cycles advanced since the engine was
// created.
func (e *CycleEngine) CurrentCycle() uint64 {
	return e.cycle
}

// CurrentTime returns the simulated time that corresponds to the current
// cycle.
func (e *CycleEngine) CurrentTime() VTimeInSec {
	return VTimeInSec(float64(e.cycle) / float64(e.freq))
}

// Freq returns the frequency of the clock domain.
func (e *CycleEngine) Freq() Freq {
	return e.freq
}

func (e *CycleEngine) tick() bool {
	ctx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeTick,
		Item:   e.cycle,
	}
	e.InvokeHook(ctx)

	madeProgress := false
	for _, t := range e.tickers {
		madeProgress = t.Tick() || madeProgress
	}

	e.cycle++

	ctx.Pos = HookPosAfterTick
	ctx.Item = e.cycle
	e.InvokeHook(ctx)

	return madeProgress
}

// Run advances the domain by n ticks.
func (e *CycleEngine) Run(n int) {
	for i := 0; i < n; i++ {
		e.tick()
	}
}

// RunUntil advances the domain until cond returns true, or panics after max
// ticks. Every wait in the simulated hardware is a bounded counter, so a
// condition that does not come true within the caller's bound indicates a
// modeling bug rather than a long simulation.
func (e *CycleEngine) RunUntil(cond func() bool, max int) {
	for i := 0; i < max; i++ {
		if cond() {
			return
		}
		e.tick()
	}

	log.Panicf("condition not reached within %d cycles", max)
}
