package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World axes: X forward at yaw 0, Y right, Z up.
var (
	Up      = mgl64.Vec3{0, 0, 1}
	Forward = mgl64.Vec3{1, 0, 0}
)

const epsilon = 1e-9

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// YawAxes returns the horizontal forward and right unit vectors for a yaw in
// degrees.
func YawAxes(yaw float64) (forward, right mgl64.Vec3) {
	r := mgl64.DegToRad(yaw)
	s, c := math.Sincos(r)
	return mgl64.Vec3{c, s, 0}, mgl64.Vec3{-s, c, 0}
}

// Horizontal drops the vertical component.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], 0}
}

// SafeNormalize returns the unit vector of v, or false when v is (near) zero.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func SafeNormalize2(v mgl64.Vec2) (mgl64.Vec2, bool) {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec2{}, false
	}
	return v.Mul(1 / l), true
}

// ProjectOnPlane projects p onto the plane through origin with the given unit
// normal.
func ProjectOnPlane(p, origin, normal mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(origin).Dot(normal)
	return p.Sub(normal.Mul(d))
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
