package compress

import (
	"fmt"

	"github.com/driftline/reelpost/encode"
)

// Rung is one step of the compression ladder. Each later rung trades more
// fidelity (lower bitrate scale, higher CRF) for less encode time (faster
// preset), raising the chance of fitting the budget without the whole
// pipeline becoming unreasonably slow.
type Rung struct {
	BitrateScale float64 // multiplier applied to the base bitrate
	CRF          int     // quality degradation factor
	Preset       string  // x264 encode-speed preset
}

// DefaultLadder is the tuned attempt sequence. The multipliers, CRF values,
// and presets are empirical; treat them as tunable configuration, not
// load-bearing constants.
var DefaultLadder = []Rung{
	{BitrateScale: 1.0, CRF: 28, Preset: "medium"},
	{BitrateScale: 0.8, CRF: 32, Preset: "fast"},
	{BitrateScale: 0.6, CRF: 35, Preset: "veryfast"},
}

// Plan derives encode settings for a 1-based attempt index against the given
// ladder. The base bitrate is budget*8*margin/duration: margin < 1 reserves
// headroom for the audio stream and container overhead. All bitrates are
// floored to integer bps. Requesting an attempt outside the ladder is a
// caller bug and returns an error.
func Plan(ladder []Rung, budget int64, duration, margin float64, audioBitrate, attempt int) (encode.Settings, error) {
	if duration <= 0 {
		return encode.Settings{}, fmt.Errorf("plan: non-positive duration %v", duration)
	}
	if attempt < 1 || attempt > len(ladder) {
		return encode.Settings{}, fmt.Errorf("plan: attempt %d outside ladder of %d rungs", attempt, len(ladder))
	}
	base := float64(budget) * 8 * margin / duration
	rung := ladder[attempt-1]
	return encode.Settings{
		VideoBitrate: int(base * rung.BitrateScale),
		CRF:          rung.CRF,
		Preset:       rung.Preset,
		AudioBitrate: audioBitrate,
		FastStart:    true,
	}, nil
}
