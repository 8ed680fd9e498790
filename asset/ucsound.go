package asset

import (
	"bytes"
	"os"
	"time"

	"github.com/pkg/errors"
)

// SoundFormat is the PCM layout of an UCSOUND file
type SoundFormat uint8

const (
	SoundMono8 SoundFormat = iota
	SoundMono16
	SoundStereo8
	SoundStereo16
)

func (f SoundFormat) String() string {
	switch f {
	case SoundMono8:
		return "mono8"
	case SoundMono16:
		return "mono16"
	case SoundStereo8:
		return "stereo8"
	case SoundStereo16:
		return "stereo16"
	default:
		return "unknown"
	}
}

func (f SoundFormat) Channels() int {
	if f == SoundStereo8 || f == SoundStereo16 {
		return 2
	}

	return 1
}

// BytesPerSample is the size of a sample of one channel: unsigned 8-bit or signed 16-bit.
func (f SoundFormat) BytesPerSample() int {
	if f == SoundMono16 || f == SoundStereo16 {
		return 2
	}

	return 1
}

type SoundData struct {
	Format    SoundFormat
	Frequency int
	PCM       []byte
}

// Duration of the whole PCM payload, 0 when the frequency is 0.
func (s SoundData) Duration() time.Duration {
	frame := s.Format.Channels() * s.Format.BytesPerSample()
	if s.Frequency == 0 {
		return 0
	}

	return time.Duration(len(s.PCM)/frame) * time.Second / time.Duration(s.Frequency)
}

// DecodeSound parses an UCSOUND file:
//
//	"UCSOUND" u16 version u8 format u16 frequency
//	PCM bytes up to the end of the file
func DecodeSound(data []byte) (SoundData, error) {
	c := &cursor{data: data}
	if err := c.signature(soundSignature); err != nil {
		return SoundData{}, err
	}
	if err := c.version(); err != nil {
		return SoundData{}, err
	}
	format, ok := c.u8()
	if !ok {
		return SoundData{}, ErrTruncatedHeader
	}
	if format > uint8(SoundStereo16) {
		return SoundData{}, errors.Wrapf(ErrUnsupportedType, "sound format %d", format)
	}
	frequency, ok := c.u16()
	if !ok {
		return SoundData{}, ErrTruncatedHeader
	}

	return SoundData{
		Format:    SoundFormat(format),
		Frequency: int(frequency),
		PCM:       bytes.Clone(c.rest()),
	}, nil
}

func EncodeSound(s SoundData) ([]byte, error) {
	if s.Format > SoundStereo16 {
		return nil, errors.Wrapf(ErrUnsupportedType, "sound format %d", s.Format)
	}
	if s.Frequency < 0 || s.Frequency > 0xffff {
		return nil, errors.Errorf("sound frequency %d out of range", s.Frequency)
	}

	var buf bytes.Buffer
	header(&buf, soundSignature)
	buf.WriteByte(byte(s.Format))
	putU16(&buf, uint16(s.Frequency))
	buf.Write(s.PCM)

	return buf.Bytes(), nil
}

// LoadSound reads and decodes an UCSOUND file.
func LoadSound(path string) (SoundData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SoundData{}, errors.Wrapf(err, "ucsound %s", path)
	}

	s, err := DecodeSound(data)
	if err != nil {
		return SoundData{}, errors.Wrapf(err, "ucsound %s", path)
	}

	return s, nil
}

func SaveSound(path string, s SoundData) error {
	data, err := EncodeSound(s)
	if err != nil {
		return errors.Wrapf(err, "ucsound %s", path)
	}

	return errors.Wrapf(os.WriteFile(path, data, 0o644), "ucsound %s", path)
}
