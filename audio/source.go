package audio

import (
	"github.com/akmonengine/uc3d/actor"
)

// Source is a scene node emitting sound from its global position.
type Source struct {
	*actor.GameObject

	ctx      *Context
	id       SourceID
	clip     *Clip
	slot     *EffectSlot
	looped   bool
	released bool

	// err is the last failure of a pose update
	err error
}

// NewSource allocates a backend source and a scene node for it, not looping.
func NewSource(ctx *Context, scene *actor.Scene, t actor.Transform) (*Source, error) {
	if ctx.closed {
		return nil, ErrClosed
	}

	id, err := ctx.backend.GenSource()
	if err != nil {
		return nil, err
	}
	s := &Source{ctx: ctx, id: id}
	if err := ctx.backend.SetSourceLooping(id, false); err != nil {
		_ = ctx.backend.DeleteSource(id)
		return nil, err
	}

	s.GameObject = scene.NewObject(t, s)
	ctx.sources[s] = struct{}{}
	s.Refresh()
	if err := s.err; err != nil {
		s.Destroy()
		return nil, err
	}

	return s, nil
}

func (s *Source) Kind() actor.Kind {
	return actor.KindAudioSource
}

func (s *Source) OnGlobalTransformChanged(object *actor.GameObject) {
	if s.released {
		return
	}

	global := object.GetGlobalTransform()
	s.err = s.ctx.backend.SetSourcePosition(s.id, global.GetPosition())
}

// OnDestroy releases the backend source when the node is destroyed.
func (s *Source) OnDestroy(*actor.GameObject) {
	s.release()
}

// Err returns the error of the last position update, if any.
func (s *Source) Err() error {
	return s.err
}

func (s *Source) ID() SourceID {
	return s.id
}

func (s *Source) IsLooped() bool {
	return s.looped
}

func (s *Source) SetLooping(loop bool) error {
	if s.released {
		return ErrUnknownHandle
	}
	if err := s.ctx.backend.SetSourceLooping(s.id, loop); err != nil {
		return err
	}
	s.looped = loop

	return nil
}

func (s *Source) SetFloat(p Param, v float64) error {
	if s.released {
		return ErrUnknownHandle
	}

	return s.ctx.backend.SetSourceFloat(s.id, p, v)
}

func (s *Source) GetClip() *Clip {
	return s.clip
}

// SetClip stops the source and binds clip to it, nil unbinding the current one.
func (s *Source) SetClip(clip *Clip) error {
	if s.released {
		return ErrUnknownHandle
	}
	if clip != nil && clip.released {
		return ErrUnknownHandle
	}
	if clip == s.clip {
		return nil
	}

	if err := s.ctx.backend.StopSource(s.id); err != nil {
		return err
	}
	var buffer BufferID
	if clip != nil {
		buffer = clip.id
	}
	if err := s.ctx.backend.SetSourceBuffer(s.id, buffer); err != nil {
		return err
	}

	if s.clip != nil {
		s.clip.removeUser(s)
	}
	s.clip = clip
	if clip != nil {
		clip.users = append(clip.users, s)
	}

	return nil
}

// PlayClip binds clip and plays it from the start.
func (s *Source) PlayClip(clip *Clip) error {
	if err := s.SetClip(clip); err != nil {
		return err
	}

	return s.Play()
}

func (s *Source) Play() error {
	if s.released {
		return ErrUnknownHandle
	}

	return s.ctx.backend.PlaySource(s.id)
}

func (s *Source) Pause() error {
	if s.released {
		return ErrUnknownHandle
	}

	return s.ctx.backend.PauseSource(s.id)
}

func (s *Source) Stop() error {
	if s.released {
		return ErrUnknownHandle
	}

	return s.ctx.backend.StopSource(s.id)
}

func (s *Source) Rewind() error {
	if s.released {
		return ErrUnknownHandle
	}

	return s.ctx.backend.RewindSource(s.id)
}

// GetState returns StateUndefined once the source is released.
func (s *Source) GetState() State {
	if s.released {
		return StateUndefined
	}

	state, err := s.ctx.backend.SourceState(s.id)
	if err != nil {
		return StateUndefined
	}

	return state
}

func (s *Source) GetEffectSlot() *EffectSlot {
	return s.slot
}

// release detaches the source from its clip and slot, then deletes the backend source.
func (s *Source) release() {
	if s.released {
		return
	}

	if s.slot != nil {
		_, _ = s.slot.RemoveSource(s)
	}
	if s.clip != nil {
		s.clip.removeUser(s)
		s.clip = nil
	}
	s.err = s.ctx.backend.DeleteSource(s.id)
	s.released = true
	delete(s.ctx.sources, s)
}
