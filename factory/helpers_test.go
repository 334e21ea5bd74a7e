package factory

import (
	"sync"
	"sync/atomic"
)

// obj is a value with identity; id tells which create call produced it.
type obj struct{ id int64 }

// counter hands out create functions that record how often they ran.
type counter struct{ n atomic.Int64 }

func (c *counter) create() (*obj, error) {
	return &obj{id: c.n.Add(1)}, nil
}

func (c *counter) calls() int64 { return c.n.Load() }

// finalizeLog records OnFinalize calls.
type finalizeLog[K comparable] struct {
	mu   sync.Mutex
	keys []K
}

func (l *finalizeLog[K]) record(k K, _ *obj) {
	l.mu.Lock()
	l.keys = append(l.keys, k)
	l.mu.Unlock()
}

func (l *finalizeLog[K]) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// recMetrics counts Metrics calls.
type recMetrics struct {
	hits, misses, createErrs atomic.Int64
	attached, orphanedFin    atomic.Int64
	orphans                  atomic.Int64
	live, retained           atomic.Int64
}

func (m *recMetrics) Hit()         { m.hits.Add(1) }
func (m *recMetrics) Miss()        { m.misses.Add(1) }
func (m *recMetrics) CreateError() { m.createErrs.Add(1) }
func (m *recMetrics) Finalize(s FinalizeState) {
	if s == FinalizeOrphaned {
		m.orphanedFin.Add(1)
		return
	}
	m.attached.Add(1)
}
func (m *recMetrics) Orphan(n int) { m.orphans.Add(int64(n)) }
func (m *recMetrics) Size(live, retained int) {
	m.live.Store(int64(live))
	m.retained.Store(int64(retained))
}

// recLogger keeps every message per level.
type recLogger struct {
	mu    sync.Mutex
	lines map[string][]Fields
}

func newRecLogger() *recLogger { return &recLogger{lines: make(map[string][]Fields)} }

func (l *recLogger) add(level string, f Fields) {
	l.mu.Lock()
	l.lines[level] = append(l.lines[level], f)
	l.mu.Unlock()
}

func (l *recLogger) Debug(_ string, f Fields) { l.add("debug", f) }
func (l *recLogger) Info(_ string, f Fields)  { l.add("info", f) }
func (l *recLogger) Warn(_ string, f Fields)  { l.add("warn", f) }
func (l *recLogger) Error(_ string, f Fields) { l.add("error", f) }

func (l *recLogger) at(level string) []Fields {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Fields(nil), l.lines[level]...)
}

var (
	_ Metrics = (*recMetrics)(nil)
	_ Logger  = (*recLogger)(nil)
)
