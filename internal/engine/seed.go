package engine

import (
	crand "crypto/rand"
	"encoding/binary"
)

// Seeds derives the per-resource seed for a session. For a fixed base, the
// derived seed depends only on the declared offset, never on resolution
// order.
type Seeds struct {
	Base int64
}

// For returns the derived seed for a declared offset.
func (s Seeds) For(offset int64) int64 {
	return s.Base + offset
}

// RandomBase draws a fresh base seed. Used when the caller supplies none;
// the drawn value is reported back so the run can be reproduced.
func RandomBase() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("engine: reading entropy for base seed: " + err.Error())
	}
	// Keep it positive and comfortably inside int64 range.
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
