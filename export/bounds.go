package export

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// PositionBounds scans count vertices of stride bytes and returns the per
// axis min and max of the three floats found at offset inside each vertex.
func PositionBounds(data []byte, stride, offset, count int) (min, max [3]float32, err error) {
	if count <= 0 {
		return min, max, errors.New("no vertices to bound")
	}
	if stride <= 0 || offset < 0 || offset+12 > stride {
		return min, max, errors.Errorf("position at offset %d does not fit into stride %d", offset, stride)
	}
	if need := (count-1)*stride + offset + 12; need > len(data) {
		return min, max, errors.Errorf("%d vertices of stride %d need %d bytes, have %d", count, stride, need, len(data))
	}

	for axis := range min {
		min[axis] = math.MaxFloat32
		max[axis] = -math.MaxFloat32
	}
	for i := 0; i < count; i++ {
		at := i*stride + offset
		for axis := 0; axis < 3; axis++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(data[at+axis*4:]))
			if v < min[axis] {
				min[axis] = v
			}
			if v > max[axis] {
				max[axis] = v
			}
		}
	}
	return min, max, nil
}
