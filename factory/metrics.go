package factory

// FinalizeState tells whether a value was finalized while its factory was
// still attached or after the factory had been closed.
type FinalizeState int

const (
	// FinalizeAttached — the entry was removed from a live factory's store.
	FinalizeAttached FinalizeState = iota
	// FinalizeOrphaned — the value outlived its factory.
	FinalizeOrphaned
)

func (s FinalizeState) String() string {
	if s == FinalizeOrphaned {
		return "orphaned"
	}
	return "attached"
}

// Metrics exposes factory-level observability hooks.
// Implementations must be safe for concurrent use: Finalize may be called
// from any goroutine, including after the factory was closed.
type Metrics interface {
	Hit()
	Miss()
	CreateError()
	Finalize(state FinalizeState)
	// Orphan reports how many entries outlived the factory at Close.
	Orphan(n int)
	// Size reports the number of listed entries and retention pins.
	Size(live, retained int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                   {}
func (NoopMetrics) Miss()                  {}
func (NoopMetrics) CreateError()           {}
func (NoopMetrics) Finalize(FinalizeState) {}
func (NoopMetrics) Orphan(int)             {}
func (NoopMetrics) Size(int, int)          {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
