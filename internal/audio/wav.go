package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

const (
	// WAVHeaderSize is the canonical 44-byte RIFF/WAVE header: 12-byte RIFF
	// descriptor, 24-byte fmt chunk and 8-byte data chunk header.
	WAVHeaderSize = 44

	bytesPerSample = 2
)

// EncodeWAV wraps raw PCM16LE audio bytes in a WAV container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize + len(pcm))
	// bytes.Buffer never fails on write.
	_ = WriteWAVTo(&buf, pcm, sampleRate, channels)
	return buf.Bytes()
}

// EncodeWAVPCM16LE wraps raw PCM16LE mono audio bytes in a WAV container.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) []byte {
	return EncodeWAV(pcm, sampleRate, 1)
}

// WriteWAVTo writes raw PCM16LE audio bytes to out as a WAV stream.
func WriteWAVTo(out io.Writer, pcm []byte, sampleRate, channels int) error {
	const (
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = 1
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * channels * bytesPerSample)
	blockAlign := uint16(channels * bytesPerSample)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(channels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}

// EstimateDuration returns the playback length in seconds of mono PCM16 audio.
func EstimateDuration(pcmLen, sampleRate int) float64 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return float64(pcmLen) / float64(sampleRate*bytesPerSample)
}
