package factory

import "github.com/IvanBrykalov/uniquefactory/retention"

// Options configures a factory. Zero values are safe; defaults are
// applied in New():
//   - nil Retention => keep nothing
//   - nil Metrics   => NoopMetrics
//   - nil Logger    => NopLogger
//   - nil Equal     => built-in == on K (Hash is ignored)
type Options[K comparable, V any] struct {
	// Retention decides whether the factory pins recently returned values
	// beyond their external references. Fixed for the factory's lifetime.
	Retention retention.Policy[K, V]

	// Custom key identity. When Equal is set, keys are bucketed by Hash and
	// compared with Equal; the two must agree (Equal(a, b) implies
	// Hash(a) == Hash(b)). A nil Hash falls back to a built-in hash of the
	// common scalar key types.
	Hash  func(K) uint64
	Equal func(a, b K) bool

	// Valid reports whether a stored key is still meaningful, for keys whose
	// parts have their own lifetime (e.g. weak.Pointer fields). It is
	// checked under the factory lock on every hit and by Sweep. An entry
	// whose key turned invalid is dropped from the cache; holders keep
	// their value.
	Valid func(K) bool

	// OnFinalize runs once per value after its last reference is released,
	// outside the factory lock. It also runs for values that outlived the
	// factory. Keep it lightweight; it may call Get on the same factory.
	OnFinalize func(K, V)

	// Observability
	Metrics Metrics
	Logger  Logger

	// Debug enables the teardown leak diagnostic (logged at Warn) and turns
	// Ref misuse (use after Release, double Release) into panics.
	Debug bool
}
