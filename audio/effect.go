package audio

import "maps"

type EffectType uint8

const (
	EffectNull EffectType = iota
	EffectReverb
	EffectChorus
	EffectDistortion
	EffectEcho
	EffectFlanger
	EffectEqualizer
)

// EffectParam names an effect property; the meaning depends on the effect type.
type EffectParam uint16

const (
	ReverbDensity EffectParam = iota + 1
	ReverbDiffusion
	ReverbGain
	ReverbDecayTime
	EchoDelay
	EchoFeedback
	DistortionEdge
	DistortionGain
)

// EffectProperties describes an effect, applied to a slot with EffectSlot.ApplyEffect.
type EffectProperties struct {
	Type   EffectType
	Ints   map[EffectParam]int32
	Floats map[EffectParam]float64
}

func NewEffectProperties(t EffectType) EffectProperties {
	return EffectProperties{
		Type:   t,
		Ints:   make(map[EffectParam]int32),
		Floats: make(map[EffectParam]float64),
	}
}

func (p *EffectProperties) SetEffectType(t EffectType) {
	p.Type = t
}

func (p *EffectProperties) SetEffectInt(param EffectParam, v int32) {
	if p.Ints == nil {
		p.Ints = make(map[EffectParam]int32)
	}
	p.Ints[param] = v
}

func (p *EffectProperties) SetEffectFloat(param EffectParam, v float64) {
	if p.Floats == nil {
		p.Floats = make(map[EffectParam]float64)
	}
	p.Floats[param] = v
}

// Clone returns a deep copy
func (p EffectProperties) Clone() EffectProperties {
	return EffectProperties{
		Type:   p.Type,
		Ints:   maps.Clone(p.Ints),
		Floats: maps.Clone(p.Floats),
	}
}

// EffectSlot is an auxiliary send shared by any number of sources. A source feeds at
// most one slot.
type EffectSlot struct {
	ctx      *Context
	id       SlotID
	sources  []*Source
	effect   EffectProperties
	released bool
}

func NewEffectSlot(ctx *Context) (*EffectSlot, error) {
	if ctx.closed {
		return nil, ErrClosed
	}

	id, err := ctx.backend.GenEffectSlot()
	if err != nil {
		return nil, err
	}
	slot := &EffectSlot{ctx: ctx, id: id, effect: NewEffectProperties(EffectNull)}
	ctx.slots[slot] = struct{}{}

	return slot, nil
}

func (e *EffectSlot) ID() SlotID {
	return e.id
}

// ApplyEffect loads a copy of props into the slot.
func (e *EffectSlot) ApplyEffect(props EffectProperties) error {
	if e.released {
		return ErrUnknownHandle
	}
	if err := e.ctx.backend.SetSlotEffect(e.id, props); err != nil {
		return err
	}
	e.effect = props.Clone()

	return nil
}

// Effect returns a copy of the last applied effect
func (e *EffectSlot) Effect() EffectProperties {
	return e.effect.Clone()
}

func (e *EffectSlot) HasSource(s *Source) bool {
	for _, src := range e.sources {
		if src == s {
			return true
		}
	}

	return false
}

func (e *EffectSlot) Sources() []*Source {
	return append([]*Source(nil), e.sources...)
}

// AddSource routes s to the slot, taking it out of its previous slot. It reports false
// when s already feeds this slot.
func (e *EffectSlot) AddSource(s *Source) (bool, error) {
	if e.released || s.released {
		return false, ErrUnknownHandle
	}
	if e.HasSource(s) {
		return false, nil
	}
	if s.slot != nil {
		if _, err := s.slot.RemoveSource(s); err != nil {
			return false, err
		}
	}

	if err := e.ctx.backend.SetSourceSend(s.id, e.id); err != nil {
		return false, err
	}
	s.slot = e
	e.sources = append(e.sources, s)

	return true, nil
}

// RemoveSource reports false when s does not feed this slot.
func (e *EffectSlot) RemoveSource(s *Source) (bool, error) {
	if !e.HasSource(s) {
		return false, nil
	}

	var err error
	if !s.released {
		err = e.ctx.backend.SetSourceSend(s.id, 0)
	}
	s.slot = nil
	for i, src := range e.sources {
		if src == s {
			e.sources = append(e.sources[:i], e.sources[i+1:]...)
			break
		}
	}

	return true, err
}

// Release detaches every source and deletes the slot.
func (e *EffectSlot) Release() error {
	if e.released {
		return nil
	}

	var first error
	for _, s := range e.Sources() {
		if _, err := e.RemoveSource(s); err != nil && first == nil {
			first = err
		}
	}
	if err := e.ctx.backend.DeleteEffectSlot(e.id); err != nil && first == nil {
		first = err
	}
	e.released = true
	delete(e.ctx.slots, e)

	return first
}
