package audio

import (
	gomath "math"
	"testing"
)

func TestVolumeToDb(t *testing.T) {
	tests := []struct {
		vol  float64
		want float64
	}{
		{1.0, 0},
		{0.5, -6.02},
		{0.25, -12.04},
		{0.1, -20},
	}
	for _, tt := range tests {
		got := volumeToDb(tt.vol)
		if gomath.Abs(got-tt.want) > 0.1 {
			t.Errorf("volumeToDb(%v) = %v, want about %v", tt.vol, got, tt.want)
		}
	}
	if db := volumeToDb(0); db > -90 {
		t.Errorf("volumeToDb(0) = %v, want effectively silent", db)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%v, %v, %v) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestDefaultVolumes(t *testing.T) {
	m := New()
	if m.GetMasterVolume() != 1.0 {
		t.Errorf("master = %v, want 1.0", m.GetMasterVolume())
	}
	if m.GetBGMVolume() != 0.7 {
		t.Errorf("bgm = %v, want 0.7", m.GetBGMVolume())
	}
	if m.GetSFXVolume() != 1.0 {
		t.Errorf("sfx = %v, want 1.0", m.GetSFXVolume())
	}
}

func TestSetVolumeClamps(t *testing.T) {
	m := New()

	m.SetMasterVolume(0.5)
	if m.GetMasterVolume() != 0.5 {
		t.Errorf("master = %v, want 0.5", m.GetMasterVolume())
	}
	m.SetMasterVolume(2.0)
	if m.GetMasterVolume() != 1.0 {
		t.Errorf("master = %v, want clamped to 1.0", m.GetMasterVolume())
	}
	m.SetBGMVolume(-1.0)
	if m.GetBGMVolume() != 0.0 {
		t.Errorf("bgm = %v, want clamped to 0.0", m.GetBGMVolume())
	}
}

func TestPlaybackRequiresInit(t *testing.T) {
	m := New()
	if err := m.PlaySFX([]byte("not a wav")); err == nil {
		t.Error("PlaySFX before Init should fail")
	}
	if err := m.PlayBGM("track", []byte("not a wav"), false); err == nil {
		t.Error("PlayBGM before Init should fail")
	}
	if m.IsBGMPlaying() {
		t.Error("nothing should be playing")
	}
	if m.CurrentBGM() != "" {
		t.Errorf("CurrentBGM = %q, want empty", m.CurrentBGM())
	}
}
