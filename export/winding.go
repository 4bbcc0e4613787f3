package export

// ReverseWinding returns a copy of a triangle list index buffer with the
// second and third index of every triangle swapped. Applying it twice gives
// back the input. A trailing partial triangle is copied unchanged.
func ReverseWinding(indices []byte, is16 bool) []byte {
	size := 4
	if is16 {
		size = 2
	}
	out := make([]byte, len(indices))
	copy(out, indices)

	triangle := 3 * size
	for i := 0; i+triangle <= len(out); i += triangle {
		second := out[i+size : i+2*size]
		third := out[i+2*size : i+3*size]
		for j := 0; j < size; j++ {
			second[j], third[j] = third[j], second[j]
		}
	}
	return out
}
