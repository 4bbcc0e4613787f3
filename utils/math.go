package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// QuatXYZW returns the quaternion components in x, y, z, w order.
func QuatXYZW(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// NormalizedQuat renormalizes q. A zero quaternion becomes the identity.
func NormalizedQuat(q mgl32.Quat) mgl32.Quat {
	l := q.Len()
	if l == 0 {
		return mgl32.QuatIdent()
	}
	return q.Scale(1 / l)
}
