package des

import (
	"crypto/rand"
	"encoding/binary"
)

// osRandomSeed draws a seed from the OS entropy source for Builder.WithSeed's
// default-unset case. Only called once per Runtime construction; the
// RNG it seeds is otherwise fully deterministic for the rest of the run.
func osRandomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unreachable on supported
		// platforms; fall back to a fixed seed rather than propagate an
		// error from a path spec.md documents as "default-OS-random".
		return 0x5eed
	}
	return binary.LittleEndian.Uint64(buf[:])
}
