package pipeline

import "time"

// ResolveSeed picks the flag seed, then the configured seed, then the clock.
func ResolveSeed(flagSeed, configured uint64) uint64 {
	if flagSeed != 0 {
		return flagSeed
	}
	if configured != 0 {
		return configured
	}
	return uint64(time.Now().UnixNano())
}
