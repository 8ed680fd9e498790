package actor

// NotAttached is returned by SetParent when the object ends up without a parent,
// or when the reparent was rejected.
const NotAttached = -1

// Handle addresses a GameObject slot in a Scene. A handle whose object was destroyed
// never resolves again, even when the slot is reused.
type Handle struct {
	index      uint32
	generation uint32
}

// NilHandle never resolves to an object
var NilHandle Handle

func (h Handle) IsNil() bool {
	return h.generation == 0
}

type slot struct {
	object     *GameObject
	generation uint32
}

// Scene is the arena owning the scene graph slots. Parent and child links between
// objects are stored as handles into it, so destroyed objects never dangle.
type Scene struct {
	slots []slot
	free  []uint32

	Events Events
}

func NewScene() *Scene {
	return &Scene{
		Events: NewEvents(),
	}
}

// NewObject allocates a parentless GameObject with the given local transform.
// behavior may be nil.
func (s *Scene) NewObject(t Transform, behavior Behavior) *GameObject {
	o := &GameObject{
		scene:    s,
		behavior: behavior,
	}
	o.assignLocal(t)

	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[index]
	sl.generation++
	sl.object = o
	o.handle = Handle{index: index, generation: sl.generation}

	s.Events.emit(ObjectCreatedEvent{Object: o})

	return o
}

// Get resolves a handle, returning nil if it is nil or stale.
func (s *Scene) Get(h Handle) *GameObject {
	if h.IsNil() || int(h.index) >= len(s.slots) {
		return nil
	}

	sl := s.slots[h.index]
	if sl.generation != h.generation {
		return nil
	}

	return sl.object
}

func (s *Scene) release(h Handle) {
	sl := &s.slots[h.index]
	if sl.generation != h.generation {
		return
	}

	sl.object = nil
	s.free = append(s.free, h.index)
}

// Len returns the number of live objects
func (s *Scene) Len() int {
	return len(s.slots) - len(s.free)
}

// Objects returns every live object in slot order
func (s *Scene) Objects() []*GameObject {
	objects := make([]*GameObject, 0, s.Len())
	for _, sl := range s.slots {
		if sl.object != nil {
			objects = append(objects, sl.object)
		}
	}

	return objects
}

// Roots returns the live objects without a parent, in slot order.
func (s *Scene) Roots() []*GameObject {
	var roots []*GameObject
	for _, sl := range s.slots {
		if sl.object != nil && sl.object.parent.IsNil() {
			roots = append(roots, sl.object)
		}
	}

	return roots
}

// FindByName returns the first live object named name, in slot order.
func (s *Scene) FindByName(name string) *GameObject {
	for _, sl := range s.slots {
		if sl.object != nil && sl.object.name == name {
			return sl.object
		}
	}

	return nil
}

// Walk visits every object depth-first, roots in slot order and children in order.
func (s *Scene) Walk(fn func(o *GameObject)) {
	for _, root := range s.Roots() {
		root.Walk(fn)
	}
}
