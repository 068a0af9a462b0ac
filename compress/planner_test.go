package compress

import (
	"math"
	"testing"
)

func TestPlanBaseBitrate(t *testing.T) {
	// attempt 1 uses the base bitrate unscaled: floor(budget*8*margin/duration)
	cases := []struct {
		budget   int64
		duration float64
		margin   float64
		want     int
	}{
		{8 * 1024 * 1024, 60, 0.85, int(math.Floor(float64(8*1024*1024) * 8 * 0.85 / 60))},
		{8 * 1024 * 1024, 34.5, 0.85, int(math.Floor(float64(8*1024*1024) * 8 * 0.85 / 34.5))},
		{25 * 1024 * 1024, 120, 0.9, int(float64(25*1024*1024) * 8 * 0.9 / 120)},
		{1000, 7, 0.85, int(math.Floor(1000 * 8 * 0.85 / 7))},
	}
	for _, tc := range cases {
		s, err := Plan(DefaultLadder, tc.budget, tc.duration, tc.margin, 96_000, 1)
		if err != nil {
			t.Fatal(err)
		}
		if s.VideoBitrate != tc.want {
			t.Errorf("Plan(%d, %v, %v, 1) bitrate = %d, want %d", tc.budget, tc.duration, tc.margin, s.VideoBitrate, tc.want)
		}
	}
}

func TestPlanMonotonicLadder(t *testing.T) {
	var prevBitrate, prevCRF int
	var prev string
	for attempt := 1; attempt <= len(DefaultLadder); attempt++ {
		s, err := Plan(DefaultLadder, 8*1024*1024, 45, 0.85, 96_000, attempt)
		if err != nil {
			t.Fatal(err)
		}
		if attempt > 1 {
			if s.VideoBitrate >= prevBitrate {
				t.Errorf("attempt %d bitrate %d not below previous %d", attempt, s.VideoBitrate, prevBitrate)
			}
			if s.CRF <= prevCRF {
				t.Errorf("attempt %d CRF %d not above previous %d", attempt, s.CRF, prevCRF)
			}
			if s.Preset == prev {
				t.Errorf("attempt %d preset unchanged from previous", attempt)
			}
		}
		prevBitrate, prevCRF, prev = s.VideoBitrate, s.CRF, s.Preset
	}
}

func TestPlanDefaultLadderValues(t *testing.T) {
	s2, err := Plan(DefaultLadder, 1_000_000, 10, 0.85, 96_000, 2)
	if err != nil {
		t.Fatal(err)
	}
	base := float64(1_000_000) * 8 * 0.85 / 10
	if want := int(base * 0.8); s2.VideoBitrate != want {
		t.Errorf("attempt 2 bitrate = %d, want %d", s2.VideoBitrate, want)
	}
	if s2.CRF != 32 || s2.Preset != "fast" {
		t.Errorf("attempt 2 settings = crf %d preset %s", s2.CRF, s2.Preset)
	}
	if s2.AudioBitrate != 96_000 {
		t.Errorf("audio bitrate = %d", s2.AudioBitrate)
	}
	if !s2.FastStart {
		t.Error("expected faststart")
	}
}

func TestPlanPreconditions(t *testing.T) {
	if _, err := Plan(DefaultLadder, 1000, 10, 0.85, 96_000, 0); err == nil {
		t.Error("attempt 0 should fail")
	}
	if _, err := Plan(DefaultLadder, 1000, 10, 0.85, 96_000, len(DefaultLadder)+1); err == nil {
		t.Error("attempt beyond ladder should fail")
	}
	if _, err := Plan(DefaultLadder, 1000, 0, 0.85, 96_000, 1); err == nil {
		t.Error("zero duration should fail")
	}
}
