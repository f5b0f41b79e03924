package vars

func Clamp[T int | int32 | int64 | float32 | float64](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
