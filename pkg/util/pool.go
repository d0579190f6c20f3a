package util

import "runtime"

// GetOptimalPoolSize returns the parser pool size: 2× CPU cores, clamped
// to [4, 32]. Tree-sitter parsing runs in cgo, so extra parsers keep
// goroutines busy while others are blocked in C.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
