package audio

import (
	"sync"

	"github.com/akmonengine/uc3d/asset"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// SoftSource is the state SoftBackend keeps for a source
type SoftSource struct {
	Position mgl64.Vec3
	Floats   map[Param]float64
	Looping  bool
	Buffer   BufferID
	Send     SlotID
	State    State
	// Offset is the playback position in bytes, reset by Rewind and Stop
	Offset int
}

// SoftBackend keeps the whole audio state in memory without producing sound. It backs
// headless runs and tests.
type SoftBackend struct {
	mu sync.Mutex

	next    uint32
	sources map[SourceID]*SoftSource
	buffers map[BufferID]asset.SoundData
	slots   map[SlotID]EffectProperties

	listenerPosition mgl64.Vec3
	listenerFront    mgl64.Vec3
	listenerUp       mgl64.Vec3
	closed           bool
}

func NewSoftBackend() *SoftBackend {
	return &SoftBackend{
		sources:       make(map[SourceID]*SoftSource),
		buffers:       make(map[BufferID]asset.SoundData),
		slots:         make(map[SlotID]EffectProperties),
		listenerFront: mgl64.Vec3{0, 0, -1},
		listenerUp:    mgl64.Vec3{0, 1, 0},
	}
}

func (b *SoftBackend) id() uint32 {
	b.next++
	return b.next
}

func (b *SoftBackend) source(id SourceID) (*SoftSource, error) {
	if b.closed {
		return nil, ErrClosed
	}
	s, ok := b.sources[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "source %d", id)
	}

	return s, nil
}

func (b *SoftBackend) GenSource() (SourceID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}

	id := SourceID(b.id())
	b.sources[id] = &SoftSource{Floats: map[Param]float64{Gain: 1, Pitch: 1}, State: StateInitial}

	return id, nil
}

func (b *SoftBackend) DeleteSource(id SourceID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.source(id); err != nil {
		return err
	}
	delete(b.sources, id)

	return nil
}

// update runs fn on the source under the lock
func (b *SoftBackend) update(id SourceID, fn func(s *SoftSource) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.source(id)
	if err != nil {
		return err
	}

	return fn(s)
}

func (b *SoftBackend) SetSourcePosition(id SourceID, position mgl64.Vec3) error {
	return b.update(id, func(s *SoftSource) error {
		s.Position = position
		return nil
	})
}

func (b *SoftBackend) SetSourceFloat(id SourceID, p Param, v float64) error {
	return b.update(id, func(s *SoftSource) error {
		s.Floats[p] = v
		return nil
	})
}

func (b *SoftBackend) SetSourceLooping(id SourceID, looping bool) error {
	return b.update(id, func(s *SoftSource) error {
		s.Looping = looping
		return nil
	})
}

func (b *SoftBackend) SetSourceBuffer(id SourceID, buffer BufferID) error {
	return b.update(id, func(s *SoftSource) error {
		if buffer != 0 {
			if _, ok := b.buffers[buffer]; !ok {
				return errors.Wrapf(ErrUnknownHandle, "buffer %d", buffer)
			}
		}
		s.Buffer = buffer
		s.Offset = 0
		s.State = StateInitial
		return nil
	})
}

func (b *SoftBackend) SetSourceSend(id SourceID, slot SlotID) error {
	return b.update(id, func(s *SoftSource) error {
		if slot != 0 {
			if _, ok := b.slots[slot]; !ok {
				return errors.Wrapf(ErrUnknownHandle, "effect slot %d", slot)
			}
		}
		s.Send = slot
		return nil
	})
}

// PlaySource without a buffer leaves the source stopped, like OpenAL.
func (b *SoftBackend) PlaySource(id SourceID) error {
	return b.update(id, func(s *SoftSource) error {
		if s.Buffer == 0 {
			s.State = StateStopped
			return nil
		}
		if s.State == StateStopped {
			s.Offset = 0
		}
		s.State = StatePlaying
		return nil
	})
}

func (b *SoftBackend) PauseSource(id SourceID) error {
	return b.update(id, func(s *SoftSource) error {
		if s.State == StatePlaying {
			s.State = StatePaused
		}
		return nil
	})
}

func (b *SoftBackend) StopSource(id SourceID) error {
	return b.update(id, func(s *SoftSource) error {
		if s.State != StateInitial {
			s.State = StateStopped
		}
		s.Offset = 0
		return nil
	})
}

func (b *SoftBackend) RewindSource(id SourceID) error {
	return b.update(id, func(s *SoftSource) error {
		s.State = StateInitial
		s.Offset = 0
		return nil
	})
}

func (b *SoftBackend) SourceState(id SourceID) (State, error) {
	var state State
	err := b.update(id, func(s *SoftSource) error {
		state = s.State
		return nil
	})

	return state, err
}

// Source returns a copy of the state of a source.
func (b *SoftBackend) Source(id SourceID) (SoftSource, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[id]
	if !ok {
		return SoftSource{}, false
	}

	c := *s
	c.Floats = make(map[Param]float64, len(s.Floats))
	for k, v := range s.Floats {
		c.Floats[k] = v
	}

	return c, true
}

// Advance moves every playing source forward by n bytes of its buffer. Sources reaching the
// end loop or stop.
func (b *SoftBackend) Advance(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sources {
		if s.State != StatePlaying {
			continue
		}
		size := len(b.buffers[s.Buffer].PCM)
		s.Offset += n
		if s.Offset < size {
			continue
		}
		if s.Looping && size > 0 {
			s.Offset %= size
		} else {
			s.Offset = 0
			s.State = StateStopped
		}
	}
}

func (b *SoftBackend) GenBuffer() (BufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}

	id := BufferID(b.id())
	b.buffers[id] = asset.SoundData{}

	return id, nil
}

func (b *SoftBackend) BufferData(id BufferID, sound asset.SoundData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if _, ok := b.buffers[id]; !ok {
		return errors.Wrapf(ErrUnknownHandle, "buffer %d", id)
	}
	if sound.Format > asset.SoundStereo16 {
		return errors.Errorf("buffer %d: unsupported format %d", id, sound.Format)
	}
	for _, s := range b.sources {
		if s.Buffer == id && (s.State == StatePlaying || s.State == StatePaused) {
			return errors.Errorf("buffer %d is in use by a playing source", id)
		}
	}
	b.buffers[id] = sound

	return nil
}

func (b *SoftBackend) DeleteBuffer(id BufferID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if _, ok := b.buffers[id]; !ok {
		return errors.Wrapf(ErrUnknownHandle, "buffer %d", id)
	}
	for _, s := range b.sources {
		if s.Buffer == id {
			return errors.Errorf("buffer %d is still attached", id)
		}
	}
	delete(b.buffers, id)

	return nil
}

func (b *SoftBackend) SetListenerPosition(position mgl64.Vec3) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.listenerPosition = position

	return nil
}

func (b *SoftBackend) SetListenerOrientation(front, up mgl64.Vec3) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.listenerFront = front
	b.listenerUp = up

	return nil
}

// Listener returns the listener position and orientation.
func (b *SoftBackend) Listener() (position, front, up mgl64.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.listenerPosition, b.listenerFront, b.listenerUp
}

func (b *SoftBackend) GenEffectSlot() (SlotID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}

	id := SlotID(b.id())
	b.slots[id] = NewEffectProperties(EffectNull)

	return id, nil
}

func (b *SoftBackend) SetSlotEffect(id SlotID, effect EffectProperties) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if _, ok := b.slots[id]; !ok {
		return errors.Wrapf(ErrUnknownHandle, "effect slot %d", id)
	}
	b.slots[id] = effect.Clone()

	return nil
}

// SlotEffect returns the effect loaded in a slot.
func (b *SoftBackend) SlotEffect(id SlotID) (EffectProperties, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.slots[id]

	return e.Clone(), ok
}

func (b *SoftBackend) DeleteEffectSlot(id SlotID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if _, ok := b.slots[id]; !ok {
		return errors.Wrapf(ErrUnknownHandle, "effect slot %d", id)
	}
	for _, s := range b.sources {
		if s.Send == id {
			s.Send = 0
		}
	}
	delete(b.slots, id)

	return nil
}

// Counts returns how many sources, buffers and effect slots are alive.
func (b *SoftBackend) Counts() (sources, buffers, slots int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.sources), len(b.buffers), len(b.slots)
}

func (b *SoftBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true

	return nil
}
