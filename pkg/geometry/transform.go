package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-phong-raytracer/pkg/core"
)

// MeshTransform places mesh data in the scene. Rotation is in radians
// around the X, Y and Z axes, applied in that order after scaling and
// before translation.
type MeshTransform struct {
	Scale       core.Vec3 // Zero value means no scaling
	Rotation    core.Vec3
	Translation core.Vec3
}

// Matrix returns the homogeneous transform T·Rz·Ry·Rx·S
func (mt MeshTransform) Matrix() mgl64.Mat4 {
	scale := mt.Scale
	if scale == (core.Vec3{}) {
		scale = core.NewVec3(1, 1, 1)
	}
	return mgl64.Translate3D(mt.Translation.X, mt.Translation.Y, mt.Translation.Z).
		Mul4(mgl64.HomogRotate3DZ(mt.Rotation.Z)).
		Mul4(mgl64.HomogRotate3DY(mt.Rotation.Y)).
		Mul4(mgl64.HomogRotate3DX(mt.Rotation.X)).
		Mul4(mgl64.Scale3D(scale.X, scale.Y, scale.Z))
}

// transformer applies a fixed transform to points and normals
type transformer struct {
	points  mgl64.Mat4
	normals mgl64.Mat3
}

func newTransformer(mt MeshTransform) transformer {
	m := mt.Matrix()
	return transformer{
		points:  m,
		normals: m.Mat3().Inv().Transpose(),
	}
}

func (tf transformer) point(p core.Vec3) core.Vec3 {
	r := tf.points.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return core.NewVec3(r[0], r[1], r[2])
}

// normal maps a normal with the inverse-transpose so it stays perpendicular
// to the transformed surface under non-uniform scaling
func (tf transformer) normal(n core.Vec3) core.Vec3 {
	r := tf.normals.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
	return core.NewVec3(r[0], r[1], r[2]).Unit()
}
