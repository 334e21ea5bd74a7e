// Package util contains internal helpers (key hashing, padded counters).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Sum64 hashes common key types with xxhash.
// Supported: string, []byte, [16|32|64]byte, all int/uint widths, uintptr, bool, fmt.Stringer.
// For other key types (structs, arrays of other shapes) callers must supply
// their own hash function; Sum64 panics rather than hash them poorly.
func Sum64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	// Integer-like keys: hash the little-endian bytes of the value.
	case uint8:
		return sumUint64(uint64(v))
	case uint16:
		return sumUint64(uint64(v))
	case uint32:
		return sumUint64(uint64(v))
	case uint64:
		return sumUint64(v)
	case uint:
		return sumUint64(uint64(v))
	case uintptr:
		return sumUint64(uint64(v))
	case int8:
		return sumUint64(uint64(uint8(v)))
	case int16:
		return sumUint64(uint64(uint16(v)))
	case int32:
		return sumUint64(uint64(uint32(v)))
	case int64:
		return sumUint64(uint64(v))
	case int:
		return sumUint64(uint64(v))
	case bool:
		if v {
			return sumUint64(1)
		}
		return sumUint64(0)

	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.Sum64: unsupported key type %T; provide Options.Hash", k))
	}
}

// SumStrings hashes a sequence of strings as one composite key.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func SumStrings(parts ...string) uint64 {
	d := xxhash.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = d.Write(n[:])
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}

func sumUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}
