package audio

// Context binds a Backend to the objects created on it. It is created once at
// startup and handed to every audio constructor.
type Context struct {
	backend Backend
	closed  bool

	listener *Listener
	sources  map[*Source]struct{}
	clips    map[*Clip]struct{}
	slots    map[*EffectSlot]struct{}
}

func NewContext(backend Backend) *Context {
	return &Context{
		backend: backend,
		sources: make(map[*Source]struct{}),
		clips:   make(map[*Clip]struct{}),
		slots:   make(map[*EffectSlot]struct{}),
	}
}

func (c *Context) Backend() Backend {
	return c.backend
}

// Listener returns the live listener, or nil.
func (c *Context) Listener() *Listener {
	return c.listener
}

func (c *Context) Closed() bool {
	return c.closed
}

// Close releases every source, clip and slot, gives up the listener claim and closes
// the backend. Scene nodes stay in their scene; released sources ignore pose changes.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}

	for s := range c.sources {
		s.release()
	}
	var first error
	for clip := range c.clips {
		if err := clip.Release(); err != nil && first == nil {
			first = err
		}
	}
	for slot := range c.slots {
		if err := slot.Release(); err != nil && first == nil {
			first = err
		}
	}
	c.listener = nil
	c.closed = true

	if err := c.backend.Close(); err != nil && first == nil {
		first = err
	}

	return first
}
