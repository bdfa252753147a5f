package chat

import "math/rand"

// ShouldNotifyMemoryUpdate decides whether to tell the user their memory
// changed. Only a strictly longer summary is a candidate, and even then the
// notice fires half the time. This is a deliberately noisy UX signal, not a
// correctness mechanism; the snapshot is persisted either way.
func ShouldNotifyMemoryUpdate(oldLen, newLen int, rng *rand.Rand) bool {
	if newLen <= oldLen {
		return false
	}
	return rng.Intn(2) == 0
}
