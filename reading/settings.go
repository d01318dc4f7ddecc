package reading

import "github.com/recite-cli/recite/reading/extract"

// Rate and pitch bounds. Values outside the range are clamped, never
// rejected.
const (
	MinRate  = 0.5
	MaxRate  = 2.0
	MinPitch = 0.5
	MaxPitch = 2.0
)

// VoiceSettings configures how utterances are synthesized. Settings are
// mutable at any time and take effect on the next utterance dispatch; rate
// and pitch are additionally pushed onto the in-flight utterance when the
// engine supports live adjustment.
type VoiceSettings struct {
	VoiceID string
	Rate    float64
	Pitch   float64
}

// DefaultVoiceSettings returns neutral settings with no explicit voice.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Rate: 1.0, Pitch: 1.0}
}

// Clamped returns a copy with rate and pitch forced into their valid ranges.
func (v VoiceSettings) Clamped() VoiceSettings {
	v.Rate = clamp(v.Rate, MinRate, MaxRate)
	v.Pitch = clamp(v.Pitch, MinPitch, MaxPitch)
	return v
}

// FilterConfig controls content exclusion during sentence extraction. It is
// applied only when a session starts, never mid-playback.
type FilterConfig = extract.Filters

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
