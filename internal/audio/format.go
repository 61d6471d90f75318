package audio

import "bytes"

// DefaultSampleRate is the PCM rate produced by the hosted speech synthesizer.
const DefaultSampleRate = 24000

// Format identifies the container of a buffered client recording.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatWebM Format = "webm"
)

var riffMarker = []byte("RIFF")

// DetectFormat classifies a recording by its leading bytes. Buffers starting
// with the RIFF marker are WAV; everything else is treated as the WebM stream
// browsers emit from MediaRecorder.
func DetectFormat(buf []byte) Format {
	if len(buf) >= len(riffMarker) && bytes.Equal(buf[:len(riffMarker)], riffMarker) {
		return FormatWAV
	}
	return FormatWebM
}

// MIMEType returns the media type sent upstream for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	default:
		return "audio/webm"
	}
}
