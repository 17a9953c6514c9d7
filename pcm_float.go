package wavtrim

import "math"

const (
	scalePCMInt16Neg = 32768.0
	scalePCMInt16Pos = 32767.0
	minPCMInt16      = -32768
	maxPCMInt16      = 32767
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// float32ToPCM16 scales negative values by 32768 and positive values by 32767
// so that both -1 and +1 land exactly on the int16 limits.
func float32ToPCM16(value float32) int16 {
	if math.IsNaN(float64(value)) {
		return 0
	}

	value = clampFloat32(value, -1, 1)

	var sample float64
	if value < 0 {
		sample = math.Round(float64(value) * scalePCMInt16Neg)
	} else {
		sample = math.Round(float64(value) * scalePCMInt16Pos)
	}

	if sample < minPCMInt16 {
		return minPCMInt16
	}

	if sample > maxPCMInt16 {
		return maxPCMInt16
	}

	return int16(sample)
}
