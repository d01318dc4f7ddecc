package espeak

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/recite-cli/recite/reading/audio"
)

// TestNewMissingBinary verifies construction fails when the synthesizer is
// not installed.
func TestNewMissingBinary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Binary = "definitely-not-a-real-synthesizer"
	if _, err := New(cfg, audio.NewMockSink(), nil, nil); err == nil {
		t.Fatal("New() succeeded with a nonexistent binary")
	}
}

// TestEspeakPitch tests the multiplier-to-scale mapping.
func TestEspeakPitch(t *testing.T) {
	tests := []struct {
		name     string
		pitch    float64
		expected int
	}{
		{"neutral", 1.0, 50},
		{"half", 0.5, 25},
		{"double clamps to top", 2.0, 99},
		{"just under double", 1.9, 95},
		{"zero falls back to neutral", 0, 50},
		{"negative falls back to neutral", -1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := espeakPitch(tt.pitch); got != tt.expected {
				t.Errorf("espeakPitch(%v) = %d, want %d", tt.pitch, got, tt.expected)
			}
		})
	}
}

// wavBlob builds a minimal canonical mono 16-bit WAV around the samples.
func wavBlob(samples []int16) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(22050))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(22050*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	for _, s := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

// TestDecodeWAV tests PCM extraction from a WAV blob.
func TestDecodeWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768}
	pcm, err := decodeWAV(wavBlob(samples))
	if err != nil {
		t.Fatalf("decodeWAV() error: %v", err)
	}

	if len(pcm) != len(samples)*2 {
		t.Fatalf("decoded %d bytes, want %d", len(pcm), len(samples)*2)
	}
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

// TestDecodeWAVRejectsGarbage verifies non-WAV input fails.
func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := decodeWAV([]byte("this is not audio")); err == nil {
		t.Error("decodeWAV() accepted garbage")
	}
	if _, err := decodeWAV(wavBlob(nil)); err == nil {
		t.Error("decodeWAV() accepted an empty data chunk")
	}
}

// TestParseVoices tests parsing of `espeak-ng --voices` output.
func TestParseVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      afrikaans            gmw/af
 5  en-gb           --/M      english-gb           gmw/en-GB
 5  en-us           --/F      english-us           gmw/en-US
 malformed line
`
	voices := parseVoices(out)
	if len(voices) != 3 {
		t.Fatalf("parsed %d voices, want 3", len(voices))
	}

	first := voices[0]
	if first.ID != "af" || first.Name != "afrikaans" || first.Gender != "male" {
		t.Errorf("first voice = %+v, want af/afrikaans/male", first)
	}
	if voices[1].ID != "en-gb" || voices[1].Language != "en-gb" {
		t.Errorf("second voice = %+v, want en-gb", voices[1])
	}
	if voices[2].Gender != "female" {
		t.Errorf("third voice gender = %q, want female", voices[2].Gender)
	}
}

// TestParseVoicesEmpty verifies header-only output yields no voices.
func TestParseVoicesEmpty(t *testing.T) {
	out := "Pty Language       Age/Gender VoiceName          File\n"
	if voices := parseVoices(out); len(voices) != 0 {
		t.Errorf("parsed %d voices from header-only output, want 0", len(voices))
	}
}
