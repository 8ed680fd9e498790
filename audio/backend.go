// Package audio is the positional sound side of the engine. Scene nodes push their
// global pose to a Backend modeled on OpenAL: sources, buffers, one listener and
// auxiliary effect slots, all addressed by opaque IDs.
package audio

import (
	"github.com/akmonengine/uc3d/asset"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var (
	ErrUnknownHandle  = errors.New("unknown audio handle")
	ErrListenerExists = errors.New("an audio listener already exists")
	ErrClosed         = errors.New("audio context closed")
)

type (
	SourceID uint32
	BufferID uint32
	SlotID   uint32
)

// State of a source
type State uint8

const (
	StateUndefined State = iota
	StateInitial
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "undefined"
	}
}

// Param is a float source property
type Param uint8

const (
	Gain Param = iota
	Pitch
	MinGain
	MaxGain
	MaxDistance
	RolloffFactor
	ReferenceDistance
)

// Backend is the audio device. Zero IDs never name a live object: SetSourceBuffer and
// SetSourceSend take 0 to detach.
type Backend interface {
	GenSource() (SourceID, error)
	DeleteSource(id SourceID) error
	SetSourcePosition(id SourceID, position mgl64.Vec3) error
	SetSourceFloat(id SourceID, p Param, v float64) error
	SetSourceLooping(id SourceID, looping bool) error
	SetSourceBuffer(id SourceID, buffer BufferID) error
	SetSourceSend(id SourceID, slot SlotID) error
	PlaySource(id SourceID) error
	PauseSource(id SourceID) error
	StopSource(id SourceID) error
	RewindSource(id SourceID) error
	SourceState(id SourceID) (State, error)

	GenBuffer() (BufferID, error)
	BufferData(id BufferID, sound asset.SoundData) error
	DeleteBuffer(id BufferID) error

	SetListenerPosition(position mgl64.Vec3) error
	SetListenerOrientation(front, up mgl64.Vec3) error

	GenEffectSlot() (SlotID, error)
	SetSlotEffect(id SlotID, effect EffectProperties) error
	DeleteEffectSlot(id SlotID) error

	Close() error
}
