package actor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

type counterObserver struct {
	calls int
}

func (c *counterObserver) OnTransformUpdated(*Transform) {
	c.calls++
}

func mat4Equal(a, b mgl64.Mat4, tolerance float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewTransform_Identity(t *testing.T) {
	tr := NewTransform()

	if tr.GetPosition() != (mgl64.Vec3{}) {
		t.Errorf("GetPosition() = %v, want zero", tr.GetPosition())
	}
	if tr.GetScale() != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("GetScale() = %v, want {1,1,1}", tr.GetScale())
	}
	if !tr.GetRotation().ApproxEqualThreshold(mgl64.QuatIdent(), epsilon) {
		t.Errorf("GetRotation() = %v, want identity", tr.GetRotation())
	}
	if !mat4Equal(tr.GetTransformationMatrix(), mgl64.Ident4(), epsilon) {
		t.Errorf("GetTransformationMatrix() = %v, want identity", tr.GetTransformationMatrix())
	}

	tests := []struct {
		name string
		got  mgl64.Vec3
		want mgl64.Vec3
	}{
		{"front", tr.GetFront(), mgl64.Vec3{0, 0, -1}},
		{"up", tr.GetUp(), mgl64.Vec3{0, 1, 0}},
		{"right", tr.GetRight(), mgl64.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		if !vec3Equal(tt.got, tt.want, epsilon) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestNewTransformEuler(t *testing.T) {
	tr := NewTransformEuler(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, math.Pi / 2, 0}, mgl64.Vec3{2, 2, 2})

	if !vec3Equal(tr.GetFront(), mgl64.Vec3{-1, 0, 0}, epsilon) {
		t.Errorf("GetFront() = %v, want {-1,0,0}", tr.GetFront())
	}
	if tr.GetPosition() != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("GetPosition() = %v", tr.GetPosition())
	}
}

// =============================================================================
// Mutator Tests
// =============================================================================

func TestTransform_SetRotationRefreshesBasis(t *testing.T) {
	tr := NewTransform()
	tr.SetRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	if !vec3Equal(tr.GetFront(), mgl64.Vec3{-1, 0, 0}, epsilon) {
		t.Errorf("GetFront() = %v, want {-1,0,0}", tr.GetFront())
	}
	if !vec3Equal(tr.GetRight(), mgl64.Vec3{0, 0, -1}, epsilon) {
		t.Errorf("GetRight() = %v, want {0,0,-1}", tr.GetRight())
	}
	if !vec3Equal(tr.GetUp(), mgl64.Vec3{0, 1, 0}, epsilon) {
		t.Errorf("GetUp() = %v, want {0,1,0}", tr.GetUp())
	}
	if !mat4Equal(tr.GetRotationMatrix(), tr.GetRotation().Mat4(), epsilon) {
		t.Error("GetRotationMatrix() does not match the rotation")
	}
}

func TestTransform_RotateComposesQuaternions(t *testing.T) {
	tr := NewTransform()
	quarter := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})

	tr.Rotate(quarter)
	tr.Rotate(quarter)

	if !vec3Equal(tr.GetFront(), mgl64.Vec3{0, 0, 1}, epsilon) {
		t.Errorf("GetFront() after two quarter turns = %v, want {0,0,1}", tr.GetFront())
	}
}

func TestTransform_MatrixIsTRS(t *testing.T) {
	tr := NewTransformTRS(
		mgl64.Vec3{1, 1, 1},
		mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
		mgl64.Vec3{2, 2, 2},
	)

	// scale (1,0,0) -> (2,0,0), rotate about Z -> (0,2,0), translate -> (1,3,1)
	got := tr.GetTransformationMatrix().Mul4x1(mgl64.Vec4{1, 0, 0, 1}).Vec3()
	if !vec3Equal(got, mgl64.Vec3{1, 3, 1}, epsilon) {
		t.Errorf("transformed point = %v, want {1,3,1}", got)
	}
}

func TestTransform_MutatorsNotify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tr *Transform)
	}{
		{"SetPosition", func(tr *Transform) { tr.SetPosition(mgl64.Vec3{1, 0, 0}) }},
		{"SetScale", func(tr *Transform) { tr.SetScale(mgl64.Vec3{2, 2, 2}) }},
		{"SetRotation", func(tr *Transform) { tr.SetRotation(mgl64.QuatRotate(1, mgl64.Vec3{1, 0, 0})) }},
		{"SetRotationEuler", func(tr *Transform) { tr.SetRotationEuler(mgl64.Vec3{0, 1, 0}) }},
		{"Translate", func(tr *Transform) { tr.Translate(mgl64.Vec3{0, 1, 0}) }},
		{"Rotate", func(tr *Transform) { tr.Rotate(mgl64.QuatRotate(1, mgl64.Vec3{0, 0, 1})) }},
		{"RotateEuler", func(tr *Transform) { tr.RotateEuler(mgl64.Vec3{0, 0, 1}) }},
		{"Scale", func(tr *Transform) { tr.Scale(mgl64.Vec3{1, 1, 1}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransform()
			observer := &counterObserver{}
			tr.observer = observer

			tt.mutate(&tr)

			if observer.calls != 1 {
				t.Errorf("observer calls = %d, want 1", observer.calls)
			}
		})
	}
}

func TestTransform_ScaleAdds(t *testing.T) {
	tr := NewTransform()
	tr.Scale(mgl64.Vec3{1, 0.5, 0})

	if tr.GetScale() != (mgl64.Vec3{2, 1.5, 1}) {
		t.Errorf("GetScale() = %v, want {2,1.5,1}", tr.GetScale())
	}
}

func TestTransform_ReplayMatchesDirectConstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randVec := func() mgl64.Vec3 {
		return mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	}

	for run := 0; run < 20; run++ {
		tr := NewTransform()
		position := mgl64.Vec3{}
		rotation := mgl64.QuatIdent()
		scale := mgl64.Vec3{1, 1, 1}

		for step := 0; step < 50; step++ {
			v := randVec()
			switch rng.Intn(3) {
			case 0:
				tr.Translate(v)
				position = position.Add(v)
			case 1:
				tr.RotateEuler(v)
				rotation = EulerToQuat(v).Mul(rotation).Normalize()
			case 2:
				v = v.Mul(0.1)
				tr.Scale(v)
				scale = scale.Add(v)
			}
		}

		direct := NewTransformTRS(position, rotation, scale)
		if !mat4Equal(tr.GetTransformationMatrix(), direct.GetTransformationMatrix(), 1e-9) {
			t.Fatalf("run %d: replayed matrix %v, direct %v", run, tr.GetTransformationMatrix(), direct.GetTransformationMatrix())
		}
	}
}

// =============================================================================
// Cache Lock Tests
// =============================================================================

func TestTransform_BatchCoalescesNotifications(t *testing.T) {
	tr := NewTransform()
	observer := &counterObserver{}
	tr.observer = observer

	tr.Batch(func(tr *Transform) {
		tr.SetPosition(mgl64.Vec3{1, 2, 3})
		tr.RotateEuler(mgl64.Vec3{0, math.Pi / 2, 0})
		tr.SetScale(mgl64.Vec3{2, 2, 2})

		if !tr.IsCacheLocked() {
			t.Error("IsCacheLocked() = false inside Batch")
		}
		if observer.calls != 0 {
			t.Errorf("observer calls inside Batch = %d, want 0", observer.calls)
		}
		// derived fields are stale while locked
		if !vec3Equal(tr.GetFront(), mgl64.Vec3{0, 0, -1}, epsilon) {
			t.Errorf("GetFront() inside Batch = %v, want the stale {0,0,-1}", tr.GetFront())
		}
	})

	if observer.calls != 1 {
		t.Errorf("observer calls after Batch = %d, want 1", observer.calls)
	}
	if tr.IsCacheLocked() {
		t.Error("IsCacheLocked() = true after Batch")
	}
	if !vec3Equal(tr.GetFront(), mgl64.Vec3{-1, 0, 0}, epsilon) {
		t.Errorf("GetFront() after Batch = %v, want {-1,0,0}", tr.GetFront())
	}

	direct := NewTransformTRS(mgl64.Vec3{1, 2, 3}, EulerToQuat(mgl64.Vec3{0, math.Pi / 2, 0}), mgl64.Vec3{2, 2, 2})
	if !mat4Equal(tr.GetTransformationMatrix(), direct.GetTransformationMatrix(), epsilon) {
		t.Error("matrix after Batch does not match direct construction")
	}
}

func TestTransform_NestedLock(t *testing.T) {
	tr := NewTransform()
	observer := &counterObserver{}
	tr.observer = observer

	tr.LockCache()
	tr.LockCache()
	tr.Translate(mgl64.Vec3{1, 0, 0})
	tr.UnlockCache()

	if observer.calls != 0 {
		t.Errorf("observer calls after inner unlock = %d, want 0", observer.calls)
	}

	tr.UnlockCache()
	if observer.calls != 1 {
		t.Errorf("observer calls after outer unlock = %d, want 1", observer.calls)
	}

	// unbalanced unlock is ignored
	tr.UnlockCache()
	if observer.calls != 1 {
		t.Errorf("observer calls after extra unlock = %d, want 1", observer.calls)
	}
}

func TestTransform_EmptyBatchDoesNotNotify(t *testing.T) {
	tr := NewTransform()
	observer := &counterObserver{}
	tr.observer = observer

	tr.Batch(func(tr *Transform) {})

	if observer.calls != 0 {
		t.Errorf("observer calls = %d, want 0", observer.calls)
	}
}

func TestTransform_BatchUnlocksOnPanic(t *testing.T) {
	tr := NewTransform()

	func() {
		defer func() { recover() }()
		tr.Batch(func(tr *Transform) {
			tr.Translate(mgl64.Vec3{1, 0, 0})
			panic("boom")
		})
	}()

	if tr.IsCacheLocked() {
		t.Error("IsCacheLocked() = true after a panicking Batch")
	}
	if !vec3Equal(tr.GetTransformationMatrix().Col(3).Vec3(), mgl64.Vec3{1, 0, 0}, epsilon) {
		t.Error("matrix was not refreshed after a panicking Batch")
	}
}

func TestTransform_CopyIsDetached(t *testing.T) {
	tr := NewTransform()
	observer := &counterObserver{}
	tr.observer = observer

	copied := tr.Copy()
	copied.Translate(mgl64.Vec3{1, 0, 0})

	if observer.calls != 0 {
		t.Errorf("mutating a copy notified the original observer %d times", observer.calls)
	}
	if tr.GetPosition() != (mgl64.Vec3{}) {
		t.Errorf("original position changed to %v", tr.GetPosition())
	}
}

func TestTransform_CopyWhileLockedRefreshes(t *testing.T) {
	tr := NewTransform()
	tr.LockCache()
	tr.SetPosition(mgl64.Vec3{0, 5, 0})

	copied := tr.Copy()
	if copied.IsCacheLocked() {
		t.Error("copy inherited the cache lock")
	}
	if !vec3Equal(copied.GetTransformationMatrix().Col(3).Vec3(), mgl64.Vec3{0, 5, 0}, epsilon) {
		t.Error("copy cache is stale")
	}
}

// =============================================================================
// Composition Tests
// =============================================================================

func TestTransform_ComposeMatchesMatrixProduct(t *testing.T) {
	parent := NewTransformEuler(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0.3, 0.2, 0.1}, mgl64.Vec3{2, 2, 2})
	local := NewTransformEuler(mgl64.Vec3{-1, 0, 4}, mgl64.Vec3{0.5, -0.1, 0.7}, mgl64.Vec3{0.5, 0.5, 0.5})

	global := parent.Compose(local)
	want := parent.GetTransformationMatrix().Mul4(local.GetTransformationMatrix())

	if !mat4Equal(global.GetTransformationMatrix(), want, epsilon) {
		t.Errorf("Compose matrix = %v, want %v", global.GetTransformationMatrix(), want)
	}
	if !local.LocalToGlobal(parent).ApproxEqual(global, epsilon) {
		t.Error("LocalToGlobal differs from Compose")
	}
}

func TestTransform_ComposeAssociative(t *testing.T) {
	a := NewTransformEuler(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.1, 0.2, 0.3}, mgl64.Vec3{2, 2, 2})
	b := NewTransformEuler(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{-0.4, 0.5, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
	c := NewTransformEuler(mgl64.Vec3{0, 0, -2}, mgl64.Vec3{1, 0, 0.2}, mgl64.Vec3{3, 3, 3})

	left := a.Compose(b).Compose(c)
	right := a.Compose(b.Compose(c))

	if !left.ApproxEqual(right, epsilon) {
		t.Errorf("(a*b)*c = %+v, a*(b*c) = %+v", left, right)
	}
}

func TestTransform_GlobalToLocalRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		parent Transform
		global Transform
	}{
		{
			name:   "identity parent",
			parent: NewTransform(),
			global: NewTransformEuler(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0.1, 0.2, 0.3}, mgl64.Vec3{1, 2, 3}),
		},
		{
			name:   "uniform scale parent",
			parent: NewTransformEuler(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{0, math.Pi / 2, 0}, mgl64.Vec3{2, 2, 2}),
			global: NewTransformEuler(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.4, 0, 0}, mgl64.Vec3{1, 1, 1}),
		},
		{
			name:   "non-uniform scale parent",
			parent: NewTransformEuler(mgl64.Vec3{-3, 2, 1}, mgl64.Vec3{0.7, -0.2, 1.1}, mgl64.Vec3{1, 2, 4}),
			global: NewTransformEuler(mgl64.Vec3{4, 4, 4}, mgl64.Vec3{0, 0, 0.3}, mgl64.Vec3{2, 2, 2}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := tt.global.GlobalToLocal(tt.parent)
			back := tt.parent.Compose(local)

			if !back.ApproxEqual(tt.global, epsilon) {
				t.Errorf("parent.Compose(GlobalToLocal) = %+v, want %+v", back, tt.global)
			}
		})
	}
}

func TestTransform_Inverse(t *testing.T) {
	tr := NewTransformEuler(mgl64.Vec3{1, -2, 3}, mgl64.Vec3{0.3, 0.6, -0.9}, mgl64.Vec3{2, 2, 2})

	if !tr.Compose(tr.Inverse()).ApproxEqual(NewTransform(), epsilon) {
		t.Error("t * t^-1 is not identity")
	}
	if !tr.Inverse().Compose(tr).ApproxEqual(NewTransform(), epsilon) {
		t.Error("t^-1 * t is not identity")
	}
}

func TestTransform_ApproxEqual(t *testing.T) {
	base := NewTransformEuler(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{1, 1, 1})
	q := base.GetRotation()

	tests := []struct {
		name  string
		other Transform
		want  bool
	}{
		{"identical", base, true},
		{"noise around zero", NewTransformTRS(mgl64.Vec3{1, -4.4e-16, 2.2e-16}, q, mgl64.Vec3{1, 1, 1}), true},
		{"noise around one", NewTransformTRS(mgl64.Vec3{1 + 1e-12, 0, 0}, q, mgl64.Vec3{1, 1 - 1e-12, 1}), true},
		{"negated quaternion", NewTransformTRS(mgl64.Vec3{1, 0, 0}, q.Scale(-1), mgl64.Vec3{1, 1, 1}), true},
		{"moved off zero", NewTransformTRS(mgl64.Vec3{1, 1e-6, 0}, q, mgl64.Vec3{1, 1, 1}), false},
		{"scaled", NewTransformTRS(mgl64.Vec3{1, 0, 0}, q, mgl64.Vec3{1, 1, 1.001}), false},
		{"rotated", NewTransformEuler(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0.6, 0}, mgl64.Vec3{1, 1, 1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.ApproxEqual(tt.other, epsilon); got != tt.want {
				t.Errorf("ApproxEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransform_InverseZeroScale(t *testing.T) {
	tr := NewTransformTRS(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent(), mgl64.Vec3{0, 1, 1})
	inv := tr.Inverse()

	if inv.GetScale() != (mgl64.Vec3{0, 1, 1}) {
		t.Errorf("Inverse().GetScale() = %v, want {0,1,1}", inv.GetScale())
	}
}

// =============================================================================
// Euler Tests
// =============================================================================

func TestEulerRoundTrip(t *testing.T) {
	tests := []mgl64.Vec3{
		{0, 0, 0},
		{0.5, 0, 0},
		{0, 0.5, 0},
		{0, 0, 0.5},
		{0.3, -0.7, 1.2},
		{-2.5, 1.1, -0.4},
	}

	for _, euler := range tests {
		got := QuatToEuler(EulerToQuat(euler))
		if !vec3Equal(got, euler, 1e-9) {
			t.Errorf("QuatToEuler(EulerToQuat(%v)) = %v", euler, got)
		}
	}
}

func TestTransform_GetEulerAngles(t *testing.T) {
	tr := NewTransform()
	tr.SetRotationEuler(mgl64.Vec3{0.1, 0.2, 0.3})

	if !vec3Equal(tr.GetEulerAngles(), mgl64.Vec3{0.1, 0.2, 0.3}, 1e-9) {
		t.Errorf("GetEulerAngles() = %v", tr.GetEulerAngles())
	}
}
