package network

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func LerpFloat(from, to, amount float64) float64 {
	return from + (to-from)*amount
}

func LerpVec3(from, to mgl64.Vec3, amount float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(amount))
}

// SlerpQuat interpolates along the shortest arc between two rotations.
func SlerpQuat(from, to mgl64.Quat, amount float64) mgl64.Quat {
	if amount <= 0 {
		return from
	}
	if amount >= 1 {
		return to
	}
	if from.Dot(to) < 0 {
		// q and -q are the same rotation; flip to take the short way round.
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, amount).Normalize()
}

// WrapLerp returns a lerp over the cyclic range [0, modulus) that travels the
// shorter way around, so 9.5 -> 0.5 with modulus 10 passes through 10/0.
func WrapLerp(modulus float64) LerpFunc[float64] {
	return func(from, to, amount float64) float64 {
		diff := to - from
		if diff > modulus/2 {
			diff -= modulus
		} else if diff < -modulus/2 {
			diff += modulus
		}
		return Wrap(from+diff*amount, modulus)
	}
}

// Wrap folds v into [0, modulus).
func Wrap(v, modulus float64) float64 {
	if modulus <= 0 {
		return v
	}
	r := math.Mod(v, modulus)
	if r < 0 {
		r += modulus
	}
	return r
}

// QuatAngle is the rotation angle in radians between two orientations.
func QuatAngle(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Dot(b))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}
