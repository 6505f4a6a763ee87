package graphidx

import "math"

func floatFromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func bitsFromFloat(f float64) uint64 {
	return math.Float64bits(f)
}
