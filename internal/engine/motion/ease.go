package motion

import "math"

// Clamp01 limits x to [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// MapRange maps value from [min1, max1] onto [min2, max2] without clamping.
func MapRange(value, min1, max1, min2, max2 float64) float64 {
	if max1 == min1 {
		return min2
	}
	return min2 + (max2-min2)*(value-min1)/(max1-min1)
}

// EaseInOutExpo is flat at both ends with a steep middle.
func EaseInOutExpo(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	case x < 0.5:
		return math.Pow(2, 20*x-10) / 2
	default:
		return (2 - math.Pow(2, -20*x+10)) / 2
	}
}

// EaseInOutCubic accelerates then decelerates.
func EaseInOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}

// EaseInExpo starts almost flat and shoots up near 1.
func EaseInExpo(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(2, 10*x-10)
}

// EaseOutQuint decelerates strongly.
func EaseOutQuint(x float64) float64 {
	return 1 - math.Pow(1-x, 5)
}

// EaseOutExpo jumps quickly and settles at 1.
func EaseOutExpo(x float64) float64 {
	if x >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*x)
}
