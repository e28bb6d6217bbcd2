// Package safe converts between integer widths without silent truncation.
package safe

import (
	"fmt"
	"math"
)

// Integer is any built-in integer type or a type derived from one.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Uint16 converts v, failing when it is negative or above math.MaxUint16.
func Uint16[T Integer](v T) (uint16, error) {
	u, err := bounded(v, math.MaxUint16, "uint16")
	return uint16(u), err
}

// Uint32 converts v, failing when it is negative or above math.MaxUint32.
func Uint32[T Integer](v T) (uint32, error) {
	u, err := bounded(v, math.MaxUint32, "uint32")
	return uint32(u), err
}

// Uint64 converts v, failing when it is negative.
func Uint64[T Integer](v T) (uint64, error) {
	return bounded(v, math.MaxUint64, "uint64")
}

func bounded[T Integer](v T, limit uint64, target string) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of %s range", v, target)
	}
	u := uint64(v)
	if u > limit {
		return 0, fmt.Errorf("value %d out of %s range", v, target)
	}
	return u, nil
}
