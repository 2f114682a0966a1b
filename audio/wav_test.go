package audio

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 480)
	out, err := EncodeWAV(pcm, DefaultFormat)
	require.NoError(t, err)
	require.Len(t, out, HeaderSize+len(pcm))

	le := binary.LittleEndian
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, uint32(36+480), le.Uint32(out[4:8]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, uint16(1), le.Uint16(out[20:22]))
	assert.Equal(t, uint16(1), le.Uint16(out[22:24]))
	assert.Equal(t, uint32(24000), le.Uint32(out[24:28]))
	assert.Equal(t, uint32(48000), le.Uint32(out[28:32]))
	assert.Equal(t, uint16(2), le.Uint16(out[32:34]))
	assert.Equal(t, uint16(16), le.Uint16(out[34:36]))
	assert.Equal(t, "data", string(out[36:40]))
	assert.Equal(t, uint32(480), le.Uint32(out[40:44]))
}

func TestDecodeWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	stereo := Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}
	out, err := EncodeWAV(pcm, stereo)
	require.NoError(t, err)

	buf, err := DecodeWAV(out)
	require.NoError(t, err)
	assert.Equal(t, stereo, buf.Format)
	assert.Equal(t, pcm, buf.PCM)
}

func TestDecodeWAVRejectsBadContainers(t *testing.T) {
	good, err := EncodeWAV(make([]byte, 100), DefaultFormat)
	require.NoError(t, err)

	corrupt := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return fn(b)
	}

	tests := map[string][]byte{
		"short":      good[:20],
		"bad tag":    corrupt(func(b []byte) []byte { copy(b[0:4], "RIFX"); return b }),
		"not pcm":    corrupt(func(b []byte) []byte { b[20] = 3; return b }),
		"bad rate":   corrupt(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[28:32], 1); return b }),
		"truncated":  good[:len(good)-10],
		"odd frames": corrupt(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[40:44], 99); return b }),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeWAV(data)
			assert.ErrorIs(t, err, ErrInvalidContainer)
		})
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Format: DefaultFormat, PCM: make([]byte, 48000)}
	assert.Equal(t, time.Second, buf.Duration())
}

func TestDecodePCMBase64(t *testing.T) {
	pcm, err := DecodePCMBase64(base64.StdEncoding.EncodeToString([]byte{9, 9}))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, pcm)

	_, err = DecodePCMBase64("***")
	assert.Error(t, err)

	_, err = DecodePCMBase64("")
	assert.ErrorIs(t, err, ErrInvalidContainer)
}
