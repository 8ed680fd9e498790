package audio

import (
	"github.com/akmonengine/uc3d/actor"
)

// Listener is the scene node the backend hears from. A Context has at most one live Listener.
type Listener struct {
	*actor.GameObject

	ctx *Context
	err error
}

// NewListener claims the context listener. It fails with ErrListenerExists, touching
// nothing, while another listener of ctx is alive.
func NewListener(ctx *Context, scene *actor.Scene, t actor.Transform) (*Listener, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	if ctx.listener != nil {
		return nil, ErrListenerExists
	}

	l := &Listener{ctx: ctx}
	ctx.listener = l
	l.GameObject = scene.NewObject(t, l)
	l.Refresh()
	if err := l.err; err != nil {
		l.Destroy()
		return nil, err
	}

	return l, nil
}

// MustNewListener is NewListener panicking on error.
func MustNewListener(ctx *Context, scene *actor.Scene, t actor.Transform) *Listener {
	l, err := NewListener(ctx, scene, t)
	if err != nil {
		panic(err)
	}

	return l
}

func (l *Listener) Kind() actor.Kind {
	return actor.KindAudioListener
}

func (l *Listener) OnGlobalTransformChanged(object *actor.GameObject) {
	if l.ctx.listener != l {
		return
	}

	global := object.GetGlobalTransform()
	if err := l.ctx.backend.SetListenerPosition(global.GetPosition()); err != nil {
		l.err = err
		return
	}
	l.err = l.ctx.backend.SetListenerOrientation(global.GetFront(), global.GetUp())
}

// OnDestroy gives the claim back to the context.
func (l *Listener) OnDestroy(*actor.GameObject) {
	if l.ctx.listener == l {
		l.ctx.listener = nil
	}
}

// Err returns the error of the last pose update, if any.
func (l *Listener) Err() error {
	return l.err
}
