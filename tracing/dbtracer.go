package tracing

import (
	"sync"

	"github.com/gowinsim/sdramsim/datarecording"
)

const commandTraceTable = "command_trace"

// DBTracer stores command records through a data recording backend, so the
// trace of a run ends up in a queryable database.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer over the given backend.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{backend: backend}
	t.backend.CreateTable(commandTraceTable, CommandRecord{})
	return t
}

// CommandIssued stores one command record.
func (t *DBTracer) CommandIssued(record CommandRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(commandTraceTable, record)
}
