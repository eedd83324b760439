// Package audio wraps synthesized speech for playback.
package audio

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"
)

// Format describes raw little-endian PCM.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// SpeechFormat is what the speech model returns unless the MIME type says otherwise.
var SpeechFormat = Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

// FormatFromMIME reads the rate parameter of an "audio/L16;rate=24000" style
// MIME type, falling back to SpeechFormat.
func FormatFromMIME(mimeType string) Format {
	f := SpeechFormat
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(key, "rate") {
			continue
		}
		if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
			f.SampleRate = rate
		}
	}
	return f
}

// IsWAV reports whether data already carries a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// EncodeWAV prefixes pcm with a 44-byte WAV header.
func EncodeWAV(pcm []byte, f Format) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, appErrors.NewValidationError(appErrors.ErrCodeEmptySpeech, "no audio samples to encode", nil)
	}
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0 {
		return nil, appErrors.NewValidationError(appErrors.ErrCodeInvalidFormat, "unsupported PCM format", nil)
	}

	blockAlign := f.Channels * f.BitsPerSample / 8
	byteRate := f.SampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(f.BitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// SpeechToWAV returns playable WAV bytes for synthesized speech.
func SpeechToWAV(speech types.Speech) ([]byte, error) {
	if IsWAV(speech.Data) {
		return speech.Data, nil
	}
	return EncodeWAV(speech.Data, FormatFromMIME(speech.MIMEType))
}
