package engine

import "math"

// Quantum reports the smallest representable time delta for the given
// accuracy (number of decimal digits after the point). Default accuracy
// is 4, giving a quantum of 0.0001 simulated seconds.
func Quantum(accuracy int) float64 {
	return math.Pow(10, -float64(accuracy))
}

// Round snaps t to the nearest multiple of quantum, matching the
// scheduler's clock-accuracy contract (§4.1).
func Round(t float64, accuracy int) float64 {
	q := Quantum(accuracy)
	return math.Round(t/q) * q
}
