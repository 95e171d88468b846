package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gowinsim/sdramsim/agent"
	"github.com/gowinsim/sdramsim/datarecording"
	"github.com/gowinsim/sdramsim/device"
	"github.com/gowinsim/sdramsim/monitoring"
	"github.com/gowinsim/sdramsim/sdram"
	"github.com/gowinsim/sdramsim/sim"
	"github.com/gowinsim/sdramsim/tracing"
)

var (
	runDataWidth   int
	runMaxCycles   int
	runTracePath   string
	runMonitor     bool
	runMonitorPort int
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run a simulation scenario",
	Long: `Run one simulation scenario against the behavioral device model.

Scenarios:
  refresh        initialize and let the controller idle through refreshes
  read           burst-read one page of prefilled device storage
  write          burst-write one page and verify device storage
  read-refresh   write then read back with a tight refresh interval
  write-refresh  write several pages with a tight refresh interval`,
	ValidArgs: []string{
		"refresh", "read", "write", "read-refresh", "write-refresh",
	},
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: runScenario,
}

func init() {
	runCmd.Flags().IntVar(&runDataWidth, "data-width",
		intEnvOr("SDRAMSIM_DATA_WIDTH", 3),
		"external data width in bytes (1-4)")
	runCmd.Flags().IntVar(&runMaxCycles, "max-cycles", 10000000,
		"abort if the scenario has not completed within this many cycles")
	runCmd.Flags().StringVar(&runTracePath, "trace",
		envOr("SDRAMSIM_TRACE", ""),
		"record the command trace into this SQLite database")
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false,
		"serve simulation state over HTTP")
	runCmd.Flags().IntVar(&runMonitorPort, "monitor-port",
		intEnvOr("SDRAMSIM_MONITOR_PORT", 0),
		"port for the monitoring server, 0 picks a free port")

	rootCmd.AddCommand(runCmd)
}

func intEnvOr(key string, def int) int {
	v, err := strconv.Atoi(envOr(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func runScenario(_ *cobra.Command, args []string) error {
	scenario := args[0]

	builder := sdram.MakeBuilder().WithDataByteWidth(runDataWidth)
	switch scenario {
	case "read-refresh", "write-refresh":
		// Tight enough that preventive refreshes interleave with the
		// bursts, long enough that a single page still fits.
		builder = builder.WithRefreshIntervalNs(3000)
	}
	cfg := builder.Build()

	dev := device.NewComp("Device", cfg)
	ctrl := sdram.NewComp("Ctrl", cfg, dev)
	ag := agent.NewComp("Agent", ctrl)

	engine := sim.NewCycleEngine(cfg.Freq)
	engine.RegisterTicker(ctrl)
	engine.RegisterTicker(ag)

	if runTracePath != "" {
		recorder := datarecording.New(runTracePath)
		tracer := tracing.NewDBTracer(recorder)
		tracing.CollectTrace(ctrl, engine, tracer)
	}

	if runMonitor {
		m := monitoring.NewMonitor().WithPortNumber(runMonitorPort)
		m.RegisterEngine(engine)
		m.RegisterComponent(ctrl)
		m.RegisterComponent(ag)
		m.RegisterComponent(dev)
		m.StartServer()
	}

	engine.RunUntil(ctrl.Ready, 100000)
	fmt.Printf("controller ready after %d cycles\n", engine.CurrentCycle())

	words := cfg.PageWords * (cfg.SuspendCycles + 1)
	pattern := makePattern(words, wordMask(cfg))

	switch scenario {
	case "refresh":
		engine.Run(50000)
	case "read":
		prefillPage(dev, cfg, 0)
		ag.ReadPage(0, words)
	case "write":
		ag.WritePage(0, pattern)
	case "read-refresh":
		ag.WritePage(0, pattern)
		ag.ReadPage(0, words)
	case "write-refresh":
		// Page stride in client address space, which carries the
		// width-adaptation bits below the column field.
		stride := uint64(cfg.PageWords << uint(cfg.MaskBitOffset))
		for p := uint64(0); p < 4; p++ {
			ag.WritePage(p*stride, pattern)
		}
	}

	engine.RunUntil(ag.Done, runMaxCycles)

	if ctrl.Faulted() {
		return fmt.Errorf("controller faulted in cycle %d",
			engine.CurrentCycle())
	}
	if faults := dev.Faults(); len(faults) > 0 {
		return fmt.Errorf("device reported faults: %v", faults)
	}

	if scenario == "read-refresh" {
		got := ag.ReadResults()[0]
		for i, w := range got {
			if w != pattern[i] {
				return fmt.Errorf(
					"read-back mismatch at word %d: got %#x, want %#x",
					i, w, pattern[i])
			}
		}
		fmt.Printf("read back %d words intact\n", len(got))
	}

	fmt.Printf("scenario %s completed in %d cycles\n",
		scenario, engine.CurrentCycle())

	return nil
}

// wordMask returns the mask of valid bits in one external word.
func wordMask(cfg sdram.Config) uint32 {
	if cfg.DataByteWidth == 4 {
		return 0xffffffff
	}
	return 1<<uint(cfg.DataByteWidth*8) - 1
}

func makePattern(n int, mask uint32) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = 0x9e3779b9 * uint32(i+1) & mask
	}
	return words
}

// prefillPage loads one page of native words directly into device storage so
// a read-only scenario has something to stream out.
func prefillPage(dev *device.Comp, cfg sdram.Config, base uint64) {
	for i := 0; i < cfg.PageWords; i++ {
		err := dev.Storage().Write(base+uint64(i), 0x9e3779b9*uint32(i+1))
		if err != nil {
			panic(err)
		}
	}
}
