package actor

import "github.com/go-gl/mathgl/mgl64"

// Kind tags the specialized node a GameObject's behavior implements.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindEntity
	KindCamera
	KindAudioSource
	KindAudioListener
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindCamera:
		return "camera"
	case KindAudioSource:
		return "audio_source"
	case KindAudioListener:
		return "audio_listener"
	default:
		return "unknown"
	}
}

// Behavior is the per-type strategy of a GameObject. OnGlobalTransformChanged runs
// whenever the object's resolved global pose may have changed, before its children
// are notified.
type Behavior interface {
	Kind() Kind
	OnGlobalTransformChanged(object *GameObject)
}

// LocalTransformObserver is implemented by behaviors that need to know the object's own
// transform was edited. It runs before OnGlobalTransformChanged.
type LocalTransformObserver interface {
	OnLocalTransformChanged(object *GameObject)
}

// ParentTransformObserver is implemented by behaviors that need to know an ancestor
// moved or the object was reparented. It runs before OnGlobalTransformChanged.
type ParentTransformObserver interface {
	OnParentTransformChanged(object *GameObject)
}

// Destroyer is implemented by behaviors releasing resources when their object is destroyed.
type Destroyer interface {
	OnDestroy(object *GameObject)
}

// GameObject is a node of the scene graph. It owns its local Transform and tracks,
// without owning them, its parent and children.
type GameObject struct {
	scene  *Scene
	handle Handle
	name   string

	transform Transform

	parent   Handle
	children []Handle

	behavior Behavior
}

// localHook routes the owned transform's notification to the object. A value copy of the
// owned transform carries the hook along, so only the object's own field may fire it.
type localHook GameObject

func (h *localHook) OnTransformUpdated(t *Transform) {
	if o := (*GameObject)(h); t == &o.transform {
		o.localTransformChanged()
	}
}

func (o *GameObject) assignLocal(t Transform) {
	o.transform = t.Copy()
	o.transform.observer = (*localHook)(o)
}

func (o *GameObject) Scene() *Scene {
	return o.scene
}

func (o *GameObject) Handle() Handle {
	return o.handle
}

// Alive reports whether the object has not been destroyed
func (o *GameObject) Alive() bool {
	return o != nil && o.scene != nil && o.scene.Get(o.handle) == o
}

func (o *GameObject) Name() string {
	return o.name
}

func (o *GameObject) SetName(name string) {
	o.name = name
}

func (o *GameObject) Behavior() Behavior {
	return o.behavior
}

func (o *GameObject) Kind() Kind {
	if o.behavior == nil {
		return KindUnknown
	}

	return o.behavior.Kind()
}

// Transform returns the owned local transform. Edits through it notify the hierarchy.
func (o *GameObject) Transform() *Transform {
	return &o.transform
}

// SetLocalTransform replaces the local transform and notifies the hierarchy once.
func (o *GameObject) SetLocalTransform(t Transform) {
	o.assignLocal(t)
	o.localTransformChanged()
}

// Batch edits the local transform with the cache locked: one recompute and at most
// one hierarchy notification, when fn returns.
func (o *GameObject) Batch(fn func(t *Transform)) {
	o.transform.Batch(fn)
}

// Refresh fires the global transform notification for the object and its descendants
// without changing anything.
func (o *GameObject) Refresh() {
	if o.Alive() {
		o.globalTransformChanged()
	}
}

// Parent returns the parent, or nil for a root or destroyed object.
func (o *GameObject) Parent() *GameObject {
	if o.scene == nil {
		return nil
	}

	return o.scene.Get(o.parent)
}

// Children returns the live children in order.
func (o *GameObject) Children() []*GameObject {
	if o.scene == nil {
		return nil
	}

	children := make([]*GameObject, 0, len(o.children))
	for _, h := range o.children {
		if c := o.scene.Get(h); c != nil {
			children = append(children, c)
		}
	}

	return children
}

func (o *GameObject) ChildCount() int {
	return len(o.children)
}

// Walk visits the object and its descendants depth-first, parents before children.
func (o *GameObject) Walk(fn func(o *GameObject)) {
	fn(o)
	for _, c := range o.Children() {
		c.Walk(fn)
	}
}

// IsAncestorOf reports whether o is a strict ancestor of other.
func (o *GameObject) IsAncestorOf(other *GameObject) bool {
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == o {
			return true
		}
	}

	return false
}

// SetParent moves the object under newParent (nil detaches it) and returns its index among
// newParent's children, or NotAttached.
// The call is rejected, returning NotAttached with the tree untouched, when newParent is o
// itself, one of its descendants, destroyed, or from another scene.
// With preserveGlobalPose, the local transform is recomputed so the global pose does not move;
// it has no effect when newParent is nil.
func (o *GameObject) SetParent(newParent *GameObject, preserveGlobalPose bool) int {
	if !o.Alive() {
		return NotAttached
	}
	if newParent != nil {
		if newParent == o || !newParent.Alive() || newParent.scene != o.scene || o.IsAncestorOf(newParent) {
			return NotAttached
		}
	}

	var global Transform
	if preserveGlobalPose && newParent != nil {
		global = o.GetGlobalTransform()
	}

	oldParent := o.Parent()
	o.detach()

	index := NotAttached
	if newParent != nil {
		newParent.children = append(newParent.children, o.handle)
		o.parent = newParent.handle
		index = len(newParent.children) - 1

		if preserveGlobalPose {
			m, rotation, scale := newParent.globalFrame()
			o.assignLocal(NewTransformTRS(
				m.Inv().Mul4x1(global.position.Vec4(1)).Vec3(),
				rotation.Conjugate().Mul(global.rotation),
				divVec3(global.scale, scale),
			))
		}
	}

	o.scene.Events.emit(ParentChangedEvent{Object: o, OldParent: oldParent, NewParent: newParent})
	o.parentTransformChanged()

	return index
}

func (o *GameObject) detach() {
	if p := o.Parent(); p != nil {
		for i, h := range p.children {
			if h == o.handle {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	o.parent = NilHandle
}

// Destroy detaches the object from its parent and orphans its children, which are not
// destroyed. Every handle to the object goes stale.
func (o *GameObject) Destroy() {
	if !o.Alive() {
		return
	}

	if d, ok := o.behavior.(Destroyer); ok {
		d.OnDestroy(o)
	}

	o.detach()

	children := o.children
	o.children = nil
	for _, h := range children {
		if c := o.scene.Get(h); c != nil {
			c.parent = NilHandle
			c.parentTransformChanged()
		}
	}

	scene := o.scene
	scene.release(o.handle)
	scene.Events.emit(ObjectDestroyedEvent{Object: o})
	o.scene = nil
}

// GetParentGlobalTransform resolves the ancestors into one global transform,
// identity for a root.
func (o *GameObject) GetParentGlobalTransform() Transform {
	if p := o.Parent(); p != nil {
		return p.GetGlobalTransform()
	}

	return NewTransform()
}

// GetGlobalTransform returns the pose of the object in world space. The position is the
// translation of GetGlobalMatrix; rotation and scale are the products along the chain.
// Under a non-uniform scale above a rotation the world matrix holds a shear, and only the
// rotation and scale of the pose are approximate there.
func (o *GameObject) GetGlobalTransform() Transform {
	m, rotation, scale := o.globalFrame()

	return NewTransformTRS(m.Col(3).Vec3(), rotation, scale)
}

// GetGlobalMatrix returns the exact product of the ancestors' and the object's TRS matrices.
// It differs from GetGlobalTransform().GetTransformationMatrix() only under non-uniform
// scale combined with rotation, where the pose cannot represent the shear.
func (o *GameObject) GetGlobalMatrix() mgl64.Mat4 {
	m, _, _ := o.globalFrame()

	return m
}

// globalFrame walks up to the root once, accumulating the world matrix together with the
// rotation and per-axis scale products.
func (o *GameObject) globalFrame() (m mgl64.Mat4, rotation mgl64.Quat, scale mgl64.Vec3) {
	m = o.transform.GetTransformationMatrix()
	rotation = o.transform.rotation
	scale = o.transform.scale
	for p := o.Parent(); p != nil; p = p.Parent() {
		m = p.transform.GetTransformationMatrix().Mul4(m)
		rotation = p.transform.rotation.Mul(rotation)
		scale = mulVec3(p.transform.scale, scale)
	}

	return m, rotation, scale
}

func (o *GameObject) localTransformChanged() {
	if !o.Alive() {
		return
	}
	if obs, ok := o.behavior.(LocalTransformObserver); ok {
		obs.OnLocalTransformChanged(o)
	}
	o.globalTransformChanged()
}

func (o *GameObject) parentTransformChanged() {
	if obs, ok := o.behavior.(ParentTransformObserver); ok {
		obs.OnParentTransformChanged(o)
	}
	o.globalTransformChanged()
}

func (o *GameObject) globalTransformChanged() {
	if o.behavior != nil {
		o.behavior.OnGlobalTransformChanged(o)
	}

	// a hook may reshape the tree, walk a snapshot
	children := append([]Handle(nil), o.children...)
	for _, h := range children {
		if !o.Alive() {
			return
		}
		if c := o.scene.Get(h); c != nil && c.parent == o.handle {
			c.parentTransformChanged()
		}
	}
}
