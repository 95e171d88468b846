package sdram_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/gowinsim/sdramsim/agent"
	"github.com/gowinsim/sdramsim/device"
	"github.com/gowinsim/sdramsim/sdram"
	"github.com/gowinsim/sdramsim/sim"
)

// commandRecorder collects the commands the controller finishes issuing.
type commandRecorder struct {
	commands []sdram.Command
}

func (r *commandRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != sdram.HookPosCommandIssue {
		return
	}
	r.commands = append(r.commands, ctx.Item.(sdram.Command))
}

func (r *commandRecorder) count(cmd sdram.Command) int {
	n := 0
	for _, c := range r.commands {
		if c == cmd {
			n++
		}
	}
	return n
}

// significant filters out the Deselect and NoOp filler between commands.
func (r *commandRecorder) significant() []sdram.Command {
	var out []sdram.Command
	for _, c := range r.commands {
		if c == sdram.CmdDeselect || c == sdram.CmdNoOp {
			continue
		}
		out = append(out, c)
	}
	return out
}

func smallConfig(width int) sdram.Config {
	return sdram.MakeBuilder().
		WithDataByteWidth(width).
		WithPowerUpNs(100).
		WithMaxWords(4 * 2048 * 8).
		Build()
}

func testPattern(n int, mask uint32) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = (0x9e3779b9 * uint32(i+1)) & mask
	}
	return words
}

func wordMask(cfg sdram.Config) uint32 {
	if cfg.DataByteWidth == 4 {
		return 0xffffffff
	}
	return 1<<uint(cfg.DataByteWidth*8) - 1
}

var _ = Describe("Controller", func() {
	It("should initialize with precharge, mode set, and two refreshes", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		dev := NewMockDevice(mockCtrl)
		dev.EXPECT().Sample(gomock.Any()).AnyTimes()
		dev.EXPECT().DataOut().AnyTimes()

		cfg := smallConfig(4)
		ctrl := sdram.NewComp("ctrl", cfg, dev)
		recorder := &commandRecorder{}
		ctrl.AcceptHook(recorder)

		eng := sim.NewCycleEngine(cfg.Freq)
		eng.RegisterTicker(ctrl)
		eng.RunUntil(ctrl.Ready, 1000)

		Expect(ctrl.State()).To(Equal(sdram.StateIdle))
		Expect(recorder.significant()).To(Equal([]sdram.Command{
			sdram.CmdPrechargeAll,
			sdram.CmdModeRegisterSet,
			sdram.CmdAutoRefresh,
			sdram.CmdAutoRefresh,
		}))

		// Each command completes exactly once. Power-up and timing-drain
		// cycles issue nothing, so they must not repeat the previous
		// command into the hook.
		Expect(recorder.commands).To(HaveLen(8))
		Expect(recorder.count(sdram.CmdDeselect)).To(Equal(4))
	})

	DescribeTable("round-trips a full page",
		func(width int) {
			cfg := smallConfig(width)
			dev := device.NewComp("dev", cfg)
			ctrl := sdram.NewComp("ctrl", cfg, dev)
			ag := agent.NewComp("agent", ctrl)

			eng := sim.NewCycleEngine(cfg.Freq)
			eng.RegisterTicker(ctrl)
			eng.RegisterTicker(ag)

			n := cfg.PageWords * (cfg.SuspendCycles + 1)
			words := testPattern(n, wordMask(cfg))
			ag.WritePage(0, words)
			ag.ReadPage(0, n)

			eng.RunUntil(ag.Done, 100000)

			Expect(ctrl.Faulted()).To(BeFalse())
			Expect(dev.Faults()).To(BeEmpty())
			Expect(ag.ReadResults()).To(HaveLen(1))
			Expect(ag.ReadResults()[0]).To(Equal(words))
		},
		Entry("one byte wide", 1),
		Entry("two bytes wide", 2),
		Entry("three bytes wide", 3),
		Entry("four bytes wide", 4),
	)

	It("should burst from the requested column to the end of the page", func() {
		cfg := smallConfig(4)
		dev := device.NewComp("dev", cfg)
		ctrl := sdram.NewComp("ctrl", cfg, dev)
		ag := agent.NewComp("agent", ctrl)

		eng := sim.NewCycleEngine(cfg.Freq)
		eng.RegisterTicker(ctrl)
		eng.RegisterTicker(ag)

		n := cfg.PageWords - 3
		words := testPattern(n, 0xffffffff)
		ag.WritePage(3, words)
		ag.ReadPage(3, n)

		eng.RunUntil(ag.Done, 100000)

		Expect(ctrl.Faulted()).To(BeFalse())
		Expect(dev.Faults()).To(BeEmpty())
		Expect(ag.ReadResults()[0]).To(Equal(words))
	})

	It("should keep the high lane masked on the three byte interface", func() {
		cfg := smallConfig(3)
		dev := device.NewComp("dev", cfg)
		ctrl := sdram.NewComp("ctrl", cfg, dev)
		ag := agent.NewComp("agent", ctrl)

		eng := sim.NewCycleEngine(cfg.Freq)
		eng.RegisterTicker(ctrl)
		eng.RegisterTicker(ag)

		words := testPattern(cfg.PageWords, 0xffffff)
		ag.WritePage(0, words)

		eng.RunUntil(ag.Done, 100000)

		Expect(dev.Faults()).To(BeEmpty())
		for i := 0; i < cfg.PageWords; i++ {
			v, err := dev.Storage().Read(uint64(i))
			Expect(err).ToNot(HaveOccurred())
			Expect(v & 0xff000000).To(Equal(uint32(0)))
			Expect(v).To(Equal(words[i]))
		}
	})

	It("should divert to exactly one refresh when the burst budget is short", func() {
		// With a 20-cycle refresh interval the budget check fails for
		// every burst, so each one must be preceded by a single refresh
		// excursion before the row is opened.
		cfg := sdram.MakeBuilder().
			WithDataByteWidth(4).
			WithPowerUpNs(100).
			WithMaxWords(4 * 2048 * 8).
			WithRefreshIntervalNs(200).
			Build()
		dev := device.NewComp("dev", cfg)
		ctrl := sdram.NewComp("ctrl", cfg, dev)
		ag := agent.NewComp("agent", ctrl)
		recorder := &commandRecorder{}
		ctrl.AcceptHook(recorder)

		eng := sim.NewCycleEngine(cfg.Freq)
		eng.RegisterTicker(ctrl)
		eng.RegisterTicker(ag)
		eng.RunUntil(ctrl.Ready, 1000)

		mark := len(recorder.commands)
		words := testPattern(cfg.PageWords, 0xffffffff)
		ag.WritePage(0, words)

		eng.RunUntil(ag.Done, 10000)

		Expect(ctrl.Faulted()).To(BeFalse())
		Expect(dev.Faults()).To(BeEmpty())

		burst := recorder.commands[mark:]
		writeAt := -1
		for i, c := range burst {
			if c == sdram.CmdWrite {
				writeAt = i
				break
			}
		}
		Expect(writeAt).To(BeNumerically(">", 0))

		prefix := []sdram.Command{}
		for _, c := range burst[:writeAt] {
			if c == sdram.CmdDeselect || c == sdram.CmdNoOp {
				continue
			}
			prefix = append(prefix, c)
		}
		Expect(prefix).To(Equal([]sdram.Command{
			sdram.CmdAutoRefresh,
			sdram.CmdBankActivate,
		}))

		for i := 0; i < cfg.PageWords; i++ {
			v, err := dev.Storage().Read(uint64(i))
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(words[i]))
		}
	})

	It("should refresh periodically without disturbing data", func() {
		cfg := sdram.MakeBuilder().
			WithDataByteWidth(4).
			WithPowerUpNs(100).
			WithMaxWords(4 * 2048 * 8).
			WithRefreshIntervalNs(600).
			Build()
		dev := device.NewComp("dev", cfg)
		ctrl := sdram.NewComp("ctrl", cfg, dev)
		ag := agent.NewComp("agent", ctrl)
		recorder := &commandRecorder{}
		ctrl.AcceptHook(recorder)

		eng := sim.NewCycleEngine(cfg.Freq)
		eng.RegisterTicker(ctrl)
		eng.RegisterTicker(ag)

		words := testPattern(cfg.PageWords, 0xffffffff)
		for page := 0; page < 4; page++ {
			ag.WritePage(uint64(page*cfg.PageWords), words)
		}
		for page := 0; page < 4; page++ {
			ag.ReadPage(uint64(page*cfg.PageWords), cfg.PageWords)
		}

		eng.RunUntil(ag.Done, 100000)

		Expect(ctrl.Faulted()).To(BeFalse())
		Expect(dev.Faults()).To(BeEmpty())
		for _, result := range ag.ReadResults() {
			Expect(result).To(Equal(words))
		}

		// Two refreshes belong to initialization; the rest came from
		// the interval and preventive checks.
		Expect(recorder.count(sdram.CmdAutoRefresh)).To(BeNumerically(">", 2))
	})
})
