package badger

import "math"

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has no magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, sqA, sqB float64
	for i := range min(len(a), len(b)) {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		sqA += x * x
		sqB += y * y
	}
	if sqA == 0 || sqB == 0 {
		return 0
	}
	return dot / math.Sqrt(sqA*sqB)
}
