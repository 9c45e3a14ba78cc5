package mathutil

import "math"

// normEpsilon is the norm below which a vector is treated as zero; dividing
// by anything smaller would amplify noise instead of producing a direction.
const normEpsilon = 1e-9

// Dot computes the inner product of two equal-length vectors.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm computes the L2 norm of a vector.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// IsZero reports whether the vector's norm is below the zero threshold.
func IsZero(v []float32) bool {
	return Norm(v) < normEpsilon
}

// Normalize returns a fresh unit-length copy of v. A zero-norm vector is
// returned as an all-zero copy rather than divided by its near-zero norm.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	norm := Norm(v)
	if norm < normEpsilon {
		return out
	}
	for i := range v {
		out[i] = v[i] / norm
	}
	return out
}
