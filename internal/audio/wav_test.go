package audio

import (
	"encoding/binary"
	"testing"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	wav, err := EncodeWAV(pcm, SpeechFormat)
	require.NoError(t, err)

	require.Len(t, wav, 44+len(pcm))
	assert.True(t, IsWAV(wav))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestEncodeWAVRejects(t *testing.T) {
	_, err := EncodeWAV(nil, SpeechFormat)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeEmptySpeech))

	_, err = EncodeWAV([]byte{1}, Format{SampleRate: 24000, Channels: 1, BitsPerSample: 12})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidFormat))
}

func TestFormatFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		rate int
	}{
		{"audio/L16;codec=pcm;rate=24000", 24000},
		{"audio/L16; rate=16000", 16000},
		{"audio/L16;rate=oops", 24000},
		{"", 24000},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			f := FormatFromMIME(tt.mime)
			assert.Equal(t, tt.rate, f.SampleRate)
			assert.Equal(t, 1, f.Channels)
			assert.Equal(t, 16, f.BitsPerSample)
		})
	}
}

func TestSpeechToWAVKeepsExistingHeader(t *testing.T) {
	wav, err := EncodeWAV([]byte{1, 2}, SpeechFormat)
	require.NoError(t, err)

	out, err := SpeechToWAV(types.Speech{MIMEType: "audio/wav", Data: wav})
	require.NoError(t, err)
	assert.Equal(t, wav, out)

	out, err = SpeechToWAV(types.Speech{MIMEType: "audio/L16;rate=16000", Data: []byte{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(out[24:28]))
}
