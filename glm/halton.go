package glm

// Halton returns the element at index of the halton low discrepancy
// sequence with the given base. Index 0 yields 0, values are in [0, 1).
func Halton(index, base int) float32 {
	result := float32(0)
	f := float32(1)

	for i := index; i > 0; i /= base {
		f /= float32(base)
		result += f * float32(i%base)
	}

	return result
}
