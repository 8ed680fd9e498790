package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Local basis directions, OpenGL convention: -Z is front.
var (
	basisFront = mgl64.Vec3{0, 0, -1}
	basisUp    = mgl64.Vec3{0, 1, 0}
	basisRight = mgl64.Vec3{1, 0, 0}
)

// TransformObserver receives the single change notification a Transform emits
// after any of its position, rotation or scale changed. t is the Transform that changed.
type TransformObserver interface {
	OnTransformUpdated(t *Transform)
}

// Transform represents a pose in 3D space: position, orientation and per-axis scale.
// The rotation quaternion is the source of truth, Euler angles are only derived from it.
type Transform struct {
	position mgl64.Vec3
	rotation mgl64.Quat
	scale    mgl64.Vec3

	// cache
	rotationMatrix   mgl64.Mat4
	matrix           mgl64.Mat4
	front, up, right mgl64.Vec3

	lockDepth       int
	pendingRotation bool
	pending         bool

	observer TransformObserver
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return NewTransformTRS(mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})
}

// NewTransformAt creates a transform translated to position, with no rotation and unit scale
func NewTransformAt(position mgl64.Vec3) Transform {
	return NewTransformTRS(position, mgl64.QuatIdent(), mgl64.Vec3{1, 1, 1})
}

// NewTransformTRS creates a transform from its three components.
func NewTransformTRS(position mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) Transform {
	t := Transform{
		position: position,
		rotation: rotation.Normalize(),
		scale:    scale,
	}
	t.UpdateCache()

	return t
}

// NewTransformEuler creates a transform whose rotation is given as Euler angles in radians.
func NewTransformEuler(position, euler, scale mgl64.Vec3) Transform {
	return NewTransformTRS(position, EulerToQuat(euler), scale)
}

// Copy returns a detached copy: same pose, fresh cache, no observer and no open batch.
func (t Transform) Copy() Transform {
	t.observer = nil
	if t.pending || t.lockDepth > 0 {
		t.lockDepth = 0
		t.pending = false
		t.pendingRotation = false
		t.UpdateCache()
	}

	return t
}

// UpdateCache recomputes every derived field, ignoring the cache lock.
func (t *Transform) UpdateCache() {
	t.updateRotationCache()
	t.updateMatrix()
}

func (t *Transform) updateRotationCache() {
	t.rotationMatrix = t.rotation.Mat4()
	t.front = t.rotation.Rotate(basisFront)
	t.up = t.rotation.Rotate(basisUp)
	t.right = t.rotation.Rotate(basisRight)
}

func (t *Transform) updateMatrix() {
	translate := mgl64.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	scale := mgl64.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
	t.matrix = translate.Mul4(t.rotationMatrix).Mul4(scale)
}

// changed refreshes the cache and fires the observer, or records the change
// for the outermost UnlockCache when a batch is open.
func (t *Transform) changed(rotation bool) {
	if t.lockDepth > 0 {
		t.pending = true
		t.pendingRotation = t.pendingRotation || rotation
		return
	}

	if rotation {
		t.updateRotationCache()
	}
	t.updateMatrix()
	t.notify()
}

func (t *Transform) notify() {
	if t.observer != nil {
		t.observer.OnTransformUpdated(t)
	}
}

// IsCacheLocked reports whether a cache batch is open
func (t *Transform) IsCacheLocked() bool {
	return t.lockDepth > 0
}

// LockCache opens a cache batch. Batches nest; derived fields may be stale until the
// matching outermost UnlockCache.
func (t *Transform) LockCache() {
	t.lockDepth++
}

// UnlockCache closes a cache batch. Closing the outermost batch recomputes the cache once
// and fires a single notification if anything changed inside it.
func (t *Transform) UnlockCache() {
	if t.lockDepth == 0 {
		return
	}
	t.lockDepth--
	if t.lockDepth > 0 || !t.pending {
		return
	}

	rotation := t.pendingRotation
	t.pending = false
	t.pendingRotation = false
	if rotation {
		t.updateRotationCache()
	}
	t.updateMatrix()
	t.notify()
}

// Batch runs fn inside a cache batch and always closes it, even if fn panics.
func (t *Transform) Batch(fn func(t *Transform)) {
	t.LockCache()
	defer t.UnlockCache()

	fn(t)
}

func (t *Transform) GetPosition() mgl64.Vec3 {
	return t.position
}

func (t *Transform) GetRotation() mgl64.Quat {
	return t.rotation
}

// GetEulerAngles derives X/Y/Z Euler angles in radians from the rotation, for display.
func (t *Transform) GetEulerAngles() mgl64.Vec3 {
	return QuatToEuler(t.rotation)
}

func (t *Transform) GetRotationMatrix() mgl64.Mat4 {
	return t.rotationMatrix
}

func (t *Transform) GetScale() mgl64.Vec3 {
	return t.scale
}

func (t *Transform) GetFront() mgl64.Vec3 {
	return t.front
}

func (t *Transform) GetUp() mgl64.Vec3 {
	return t.up
}

func (t *Transform) GetRight() mgl64.Vec3 {
	return t.right
}

// GetTransformationMatrix returns Translate(position) * Rotation * Scale(scale):
// a point is scaled around the local origin, then rotated, then translated.
func (t *Transform) GetTransformationMatrix() mgl64.Mat4 {
	return t.matrix
}

func (t *Transform) SetPosition(v mgl64.Vec3) {
	t.position = v
	t.changed(false)
}

func (t *Transform) SetScale(v mgl64.Vec3) {
	t.scale = v
	t.changed(false)
}

// SetRotation assigns the orientation. q is normalized; a zero quaternion becomes identity.
func (t *Transform) SetRotation(q mgl64.Quat) {
	t.rotation = q.Normalize()
	t.changed(true)
}

// SetRotationEuler assigns the orientation from Euler angles in radians.
func (t *Transform) SetRotationEuler(euler mgl64.Vec3) {
	t.SetRotation(EulerToQuat(euler))
}

func (t *Transform) Translate(v mgl64.Vec3) {
	t.position = t.position.Add(v)
	t.changed(false)
}

// Rotate composes delta on top of the current orientation, in parent space.
func (t *Transform) Rotate(delta mgl64.Quat) {
	t.rotation = delta.Mul(t.rotation).Normalize()
	t.changed(true)
}

// RotateEuler rotates by the quaternion built from Euler angles in radians.
func (t *Transform) RotateEuler(euler mgl64.Vec3) {
	t.Rotate(EulerToQuat(euler))
}

// Scale adds v to the per-axis scale.
func (t *Transform) Scale(v mgl64.Vec3) {
	t.scale = t.scale.Add(v)
	t.changed(false)
}

// Compose returns the pose of local expressed in the space t is expressed in.
// With t the resolved global transform of a parent, the result is the child's global transform.
// The result is exact unless t carries a non-uniform scale and local a rotation: the product
// then holds a shear no TRS pose can represent, and chaining Compose loses it.
// GameObject.GetGlobalTransform resolves positions through the exact matrix product instead.
func (t Transform) Compose(local Transform) Transform {
	position := t.position.Add(t.rotation.Rotate(mulVec3(t.scale, local.position)))
	rotation := t.rotation.Mul(local.rotation)
	scale := mulVec3(t.scale, local.scale)

	return NewTransformTRS(position, rotation, scale)
}

// LocalToGlobal combines t, a local transform, with its parent's resolved global transform.
func (t Transform) LocalToGlobal(parentGlobal Transform) Transform {
	return parentGlobal.Compose(t)
}

// GlobalToLocal expresses t, a global transform, relative to parentGlobal.
// parentGlobal.Compose(t.GlobalToLocal(parentGlobal)) equals t for any non-zero parent scale.
func (t Transform) GlobalToLocal(parentGlobal Transform) Transform {
	inverseRotation := parentGlobal.rotation.Conjugate()

	position := divVec3(inverseRotation.Rotate(t.position.Sub(parentGlobal.position)), parentGlobal.scale)
	rotation := inverseRotation.Mul(t.rotation)
	scale := divVec3(t.scale, parentGlobal.scale)

	return NewTransformTRS(position, rotation, scale)
}

// Inverse returns the transform undoing t.
func (t Transform) Inverse() Transform {
	return NewTransform().GlobalToLocal(t)
}

// ApproxEqual compares position, orientation (q and -q are the same orientation) and scale.
// Components are compared by absolute difference, so float noise around zero stays equal.
func (t Transform) ApproxEqual(other Transform, epsilon float64) bool {
	if !vec3Near(t.position, other.position, epsilon) || !vec3Near(t.scale, other.scale, epsilon) {
		return false
	}

	return math.Abs(math.Abs(t.rotation.Dot(other.rotation))-1) <= epsilon
}

// EulerToQuat builds the rotation applying X, then Y, then Z (angles in radians).
func EulerToQuat(euler mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(euler.X(), basisRight)
	qy := mgl64.QuatRotate(euler.Y(), basisUp)
	qz := mgl64.QuatRotate(euler.Z(), mgl64.Vec3{0, 0, 1})

	return qz.Mul(qy).Mul(qx).Normalize()
}

// QuatToEuler is the inverse of EulerToQuat, result in radians.
func QuatToEuler(q mgl64.Quat) (e mgl64.Vec3) {
	sinrCosp := 2 * (q.W*q.X() + q.Y()*q.Z())
	cosrCosp := 1 - 2*(q.X()*q.X()+q.Y()*q.Y())
	e[0] = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.Y() - q.Z()*q.X())
	if math.Abs(sinp) >= 1 {
		e[1] = math.Copysign(math.Pi/2, sinp)
	} else {
		e[1] = math.Asin(sinp)
	}

	sinyCosp := 2 * (q.W*q.Z() + q.X()*q.Y())
	cosyCosp := 1 - 2*(q.Y()*q.Y()+q.Z()*q.Z())
	e[2] = math.Atan2(sinyCosp, cosyCosp)

	return e
}

func vec3Near(a, b mgl64.Vec3, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}

	return true
}

func mulVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// divVec3 treats a zero divisor component as collapsing that axis to zero.
func divVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	var r mgl64.Vec3
	for i := range r {
		if b[i] != 0 {
			r[i] = a[i] / b[i]
		}
	}

	return r
}
