// Package wav generates minimal PCM WAV payloads. Used for the mock TTS
// provider and for the fallback audio returned when synthesis fails.
package wav

import "encoding/binary"

const (
	sampleRate    = 8000
	bitsPerSample = 16
	numChannels   = 1
	headerSize    = 44
)

// Silence returns a valid 8kHz 16-bit mono WAV file containing ms
// milliseconds of silence.
func Silence(ms int) []byte {
	if ms < 0 {
		ms = 0
	}
	samples := sampleRate * ms / 1000
	dataSize := samples * numChannels * bitsPerSample / 8

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], sampleRate*numChannels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(buf[32:34], numChannels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	return buf
}

// IsWAV reports whether the payload starts with a RIFF/WAVE header.
func IsWAV(payload []byte) bool {
	return len(payload) >= 12 && string(payload[0:4]) == "RIFF" && string(payload[8:12]) == "WAVE"
}
