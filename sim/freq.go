package sim

import (
	"log"
	"math"
)

// VTimeInSec defines simulation time in seconds.
type VTimeInSec float64

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return VTimeInSec(1.0 / f)
}

// Cycle converts a time to the number of cycles passed since time 0.
func (f Freq) Cycle(time VTimeInSec) uint64 {
	return uint64(math.Round(float64(time) * float64(f)))
}

// NCyclesLater returns the time after N cycles
func (f Freq) NCyclesLater(n int, now VTimeInSec) VTimeInSec {
	if math.IsNaN(float64(now)) {
		log.Panic("invalid time")
	}
	return now + VTimeInSec(Freq(n)/f)
}

// NanoToCycles converts a duration in nanoseconds to a cycle count at this
// frequency, rounded up. Device timing tables are given in nanoseconds while
// the controller counts whole cycles, so the conversion always rounds toward
// the safe side.
func (f Freq) NanoToCycles(ns float64) int {
	return int(math.Ceil(ns * 1e-9 * float64(f)))
}
