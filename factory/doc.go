// Package factory provides a generic, thread-safe "unique factory": a
// memoizing constructor that hands out shared, reference-counted values and
// guarantees at most one live value per key.
//
// Design
//
//   - Ownership: a value is owned by its Refs (and, optionally, by the
//     retention policy). The store only holds weak pointers used for lookup,
//     so the factory is never the thing keeping a value alive.
//
//   - Uniqueness: Get runs lookup and construction under a single lock per
//     factory. Two goroutines missing on the same key cannot both construct.
//     A slow create function therefore blocks every other Get on the same
//     factory; this is accepted in exchange for the exactly-once guarantee.
//
//   - Finalization: releasing the last reference removes the entry from the
//     store and runs Options.OnFinalize, outside the lock. Each entry knows
//     its factory until the factory is closed; Close detaches (orphans)
//     every outstanding entry, after which releasing it never touches the
//     factory again.
//
//   - Retention: Options.Retention may pin recently returned values so that
//     a value requested again shortly after its release is not rebuilt.
//     See the retention/nothing, retention/boundedset and retention/recent
//     packages.
//
//   - Errors: a failing create function leaves no trace in the cache; its
//     error is returned wrapped in *CreateError and the next Get retries.
//
// Basic usage
//
//	f := factory.New[string, *Parser](factory.Options[string, *Parser]{})
//	defer f.Close()
//
//	ref, err := f.Get("en_US", func() (*Parser, error) { return loadParser("en_US") })
//	if err != nil {
//	    return err
//	}
//	defer ref.Release()
//	p := ref.Value()
//
// Keeping the last few values alive
//
//	f := factory.New[string, *Parser](factory.Options[string, *Parser]{
//	    Retention: boundedset.New[string, *Parser](16),
//	})
//
// Thread-safety
//
// All Factory and Ref methods are safe for concurrent use. The create
// function runs with the factory lock held: it must not call Get on the same
// factory, nor release the last Ref of one of its values.
package factory
