package tracing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowinsim/sdramsim/sdram"
	"github.com/gowinsim/sdramsim/sim"
	"github.com/gowinsim/sdramsim/tracing"
)

// fakeRecorder captures inserted entries without a database.
type fakeRecorder struct {
	tables  []string
	entries []any
}

func (r *fakeRecorder) CreateTable(tableName string, sampleEntry any) {
	r.tables = append(r.tables, tableName)
}

func (r *fakeRecorder) InsertData(tableName string, entry any) {
	r.entries = append(r.entries, entry)
}

func (r *fakeRecorder) ListTables() []string { return r.tables }
func (r *fakeRecorder) Flush()               {}

func TestDBTracerRecordsIssuedCommands(t *testing.T) {
	backend := &fakeRecorder{}
	tracer := tracing.NewDBTracer(backend)

	cfg := sdram.MakeBuilder().WithPowerUpNs(100).Build()
	ctrl := sdram.NewComp("ctrl", cfg, nil)
	eng := sim.NewCycleEngine(cfg.Freq)
	eng.RegisterTicker(ctrl)

	tracing.CollectTrace(ctrl, eng, tracer)

	eng.RunUntil(ctrl.Ready, 1000)

	require.NotEmpty(t, backend.entries)

	first := backend.entries[0].(tracing.CommandRecord)
	assert.Equal(t, "Deselect", first.Command)
	assert.Equal(t, "ctrl", first.Location)

	refreshes := 0
	for _, e := range backend.entries {
		if e.(tracing.CommandRecord).Command == "AutoRefresh" {
			refreshes++
		}
	}
	assert.Equal(t, 2, refreshes)
}

func TestCollectTraceRejectsDuplicates(t *testing.T) {
	backend := &fakeRecorder{}
	tracer := tracing.NewDBTracer(backend)

	cfg := sdram.MakeBuilder().Build()
	ctrl := sdram.NewComp("ctrl", cfg, nil)
	eng := sim.NewCycleEngine(cfg.Freq)

	tracing.CollectTrace(ctrl, eng, tracer)
	assert.Panics(t, func() {
		tracing.CollectTrace(ctrl, eng, tracer)
	})
}
