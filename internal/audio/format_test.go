package audio

import "testing"

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want Format
	}{
		{"riff", []byte("RIFF\x24\x00\x00\x00WAVE"), FormatWAV},
		{"riff only", []byte("RIFF"), FormatWAV},
		{"webm ebml", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01}, FormatWebM},
		{"lowercase riff", []byte("riff...."), FormatWebM},
		{"short", []byte("RIF"), FormatWebM},
		{"empty", nil, FormatWebM},
	}
	for _, tc := range cases {
		if got := DetectFormat(tc.buf); got != tc.want {
			t.Fatalf("%s: DetectFormat() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatMIMEType(t *testing.T) {
	if got := FormatWAV.MIMEType(); got != "audio/wav" {
		t.Fatalf("FormatWAV.MIMEType() = %q, want audio/wav", got)
	}
	if got := FormatWebM.MIMEType(); got != "audio/webm" {
		t.Fatalf("FormatWebM.MIMEType() = %q, want audio/webm", got)
	}
}
