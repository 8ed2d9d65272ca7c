// Package synthdata produces reproducible synthetic trial analytics when no
// live pipeline backend is available. Every quantity is a closed-form
// function of a seed derived from the entity's identity, so the same entity
// always yields an identical dataset.
package synthdata

import "math"

// Seed derives the integer seed for an entity from its id and display name
// using a rolling polynomial hash wrapped to int32 range. The seed is the
// sole source of determinism for the generated record.
func Seed(entityID, displayName string) int {
	var h int32
	for _, ch := range entityID + displayName {
		h = h*31 + int32(ch)
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}

// unitRand maps an integer seed into [0, 1) via a stateless sine fold.
// Successive values for one record are drawn with distinct small offsets
// (seed+1, seed+2, ...) rather than by mutating shared generator state, so
// quantities are decorrelated but fully reproducible.
func unitRand(seed int) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}
