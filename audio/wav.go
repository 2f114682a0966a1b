// Package audio resolves spoken guidance into playable buffers and plays ordered chunk
// scripts back to back.
//
// Generated speech arrives as headerless PCM. Before it is persisted or decoded it is
// wrapped in a 44-byte RIFF/WAVE header so the stored blob can be decoded without any
// out-of-band metadata.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// HeaderSize is the size of the canonical WAVE header written by EncodeWAV.
const HeaderSize = 44

const pcmFormat = 1

var ErrInvalidContainer = errors.New("invalid audio container")

// Format describes uncompressed PCM.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is what the speech model returns: 16-bit mono at 24 kHz.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

// BlockAlign is the size in bytes of one frame.
func (f Format) BlockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// ByteRate is the number of bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

func (f Format) validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0 {
		return fmt.Errorf("%w: bad format %+v", ErrInvalidContainer, f)
	}
	return nil
}

// Buffer is decoded audio ready for an Output.
type Buffer struct {
	Format Format
	PCM    []byte
}

// Duration is the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	rate := b.Format.ByteRate()
	if rate == 0 {
		return 0
	}
	return time.Duration(len(b.PCM)) * time.Second / time.Duration(rate)
}

// DecodePCMBase64 decodes the base64 payload returned by the speech model.
func DecodePCMBase64(s string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio payload: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", ErrInvalidContainer)
	}
	return pcm, nil
}

// EncodeWAV prefixes pcm with a WAVE header describing f.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	out := make([]byte, HeaderSize+len(pcm))
	le := binary.LittleEndian

	copy(out[0:4], "RIFF")
	le.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	le.PutUint32(out[16:20], 16)
	le.PutUint16(out[20:22], pcmFormat)
	le.PutUint16(out[22:24], uint16(f.Channels))
	le.PutUint32(out[24:28], uint32(f.SampleRate))
	le.PutUint32(out[28:32], uint32(f.ByteRate()))
	le.PutUint16(out[32:34], uint16(f.BlockAlign()))
	le.PutUint16(out[34:36], uint16(f.BitsPerSample))
	copy(out[36:40], "data")
	le.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[HeaderSize:], pcm)

	return out, nil
}

// DecodeWAV parses a container written by EncodeWAV.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidContainer, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE tags", ErrInvalidContainer)
	}

	le := binary.LittleEndian
	if code := le.Uint16(data[20:22]); code != pcmFormat {
		return nil, fmt.Errorf("%w: unsupported format code %d", ErrInvalidContainer, code)
	}

	f := Format{
		Channels:      int(le.Uint16(data[22:24])),
		SampleRate:    int(le.Uint32(data[24:28])),
		BitsPerSample: int(le.Uint16(data[34:36])),
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	if int(le.Uint32(data[28:32])) != f.ByteRate() || int(le.Uint16(data[32:34])) != f.BlockAlign() {
		return nil, fmt.Errorf("%w: inconsistent byte rate or block align", ErrInvalidContainer)
	}

	size := int(le.Uint32(data[40:44]))
	if size > len(data)-HeaderSize {
		return nil, fmt.Errorf("%w: declares %d data bytes, has %d", ErrInvalidContainer, size, len(data)-HeaderSize)
	}
	if size == 0 || size%f.BlockAlign() != 0 {
		return nil, fmt.Errorf("%w: data length %d is not a whole number of frames", ErrInvalidContainer, size)
	}

	pcm := make([]byte, size)
	copy(pcm, data[HeaderSize:HeaderSize+size])
	return &Buffer{Format: f, PCM: pcm}, nil
}
