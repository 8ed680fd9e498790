package audio

import "github.com/akmonengine/uc3d/asset"

// Clip is a sound buffer that any number of sources may play.
type Clip struct {
	ctx      *Context
	id       BufferID
	sound    asset.SoundData
	users    []*Source
	released bool
}

func NewClip(ctx *Context) (*Clip, error) {
	if ctx.closed {
		return nil, ErrClosed
	}

	id, err := ctx.backend.GenBuffer()
	if err != nil {
		return nil, err
	}
	c := &Clip{ctx: ctx, id: id}
	ctx.clips[c] = struct{}{}

	return c, nil
}

func (c *Clip) ID() BufferID {
	return c.id
}

func (c *Clip) Sound() asset.SoundData {
	return c.sound
}

// Users returns the sources currently set to the clip
func (c *Clip) Users() []*Source {
	return append([]*Source(nil), c.users...)
}

// SetData replaces the samples. Every source using the clip is rewound first.
func (c *Clip) SetData(sound asset.SoundData) error {
	if c.released {
		return ErrUnknownHandle
	}

	for _, s := range c.users {
		if err := s.Rewind(); err != nil {
			return err
		}
	}
	if err := c.ctx.backend.BufferData(c.id, sound); err != nil {
		return err
	}
	c.sound = sound

	return nil
}

// LoadFromUCSOUNDFile replaces the samples with the file content.
// On error the clip is left untouched.
func (c *Clip) LoadFromUCSOUNDFile(path string) error {
	sound, err := asset.LoadSound(path)
	if err != nil {
		return err
	}

	return c.SetData(sound)
}

// Release clears the clip from every source using it and deletes the buffer.
func (c *Clip) Release() error {
	if c.released {
		return nil
	}

	var first error
	for _, s := range c.Users() {
		if err := s.SetClip(nil); err != nil && first == nil {
			first = err
		}
	}
	if err := c.ctx.backend.DeleteBuffer(c.id); err != nil && first == nil {
		first = err
	}
	c.released = true
	delete(c.ctx.clips, c)

	return first
}

func (c *Clip) removeUser(s *Source) {
	for i, u := range c.users {
		if u == s {
			c.users = append(c.users[:i], c.users[i+1:]...)
			return
		}
	}
}
