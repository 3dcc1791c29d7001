// Package audio plays background music and sound effects through beep.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the speaker sample rate everything is resampled to.
const DefaultSampleRate = beep.SampleRate(44100)

// Manager owns the speaker and mixes BGM with concurrent sound effects.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate

	bgmStreamer beep.StreamSeekCloser
	bgmCtrl     *beep.Ctrl
	bgmVolume   *effects.Volume
	bgmPlaying  bool
	bgmName     string

	// 0.0 to 1.0
	masterVolume float64
	bgmVolLevel  float64
	sfxVolLevel  float64

	sfxMixer *beep.Mixer
}

// New creates a manager. Call Init before playing anything.
func New() *Manager {
	return &Manager{
		masterVolume: 1.0,
		bgmVolLevel:  0.7,
		sfxVolLevel:  1.0,
		sfxMixer:     &beep.Mixer{},
	}
}

// Init opens the speaker and starts the effect mixer. Idempotent.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.sampleRate = DefaultSampleRate
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.sfxMixer)

	m.initialized = true
	return nil
}

// Close stops all playback and releases the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopBGMLocked()
	speaker.Clear()
	m.initialized = false
}

// IsInitialized reports whether Init succeeded.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the overall volume, clamped to [0, 1].
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
	m.applyBGMVolumeLocked()
}

// SetBGMVolume sets the music volume, clamped to [0, 1].
func (m *Manager) SetBGMVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bgmVolLevel = clamp(vol, 0, 1)
	m.applyBGMVolumeLocked()
}

// SetSFXVolume sets the effect volume, clamped to [0, 1].
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolLevel = clamp(vol, 0, 1)
}

// GetMasterVolume returns the overall volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// GetBGMVolume returns the music volume.
func (m *Manager) GetBGMVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bgmVolLevel
}

// GetSFXVolume returns the effect volume.
func (m *Manager) GetSFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolLevel
}

func (m *Manager) applyBGMVolumeLocked() {
	if m.bgmVolume == nil {
		return
	}
	vol := m.masterVolume * m.bgmVolLevel
	if vol <= 0 {
		m.bgmVolume.Silent = true
		return
	}
	m.bgmVolume.Silent = false
	m.bgmVolume.Volume = volumeToDb(vol)
}

// volumeToDb maps a linear 0-1 volume onto the dB scale beep's Volume
// effect expects: 1 is 0dB, 0.5 about -6dB.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * math.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// decode parses WAV data and resamples it to the speaker rate.
func (m *Manager) decode(data []byte) (beep.StreamSeekCloser, beep.Streamer, error) {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("decode wav: %w", err)
	}
	if format.SampleRate != m.sampleRate {
		return streamer, beep.Resample(4, format.SampleRate, m.sampleRate, streamer), nil
	}
	return streamer, streamer, nil
}

// PlayBGM starts background music from WAV data, replacing any current
// track. name identifies the track for CurrentBGM.
func (m *Manager) PlayBGM(name string, data []byte, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return fmt.Errorf("audio not initialized")
	}
	m.stopBGMLocked()

	streamer, resampled, err := m.decode(data)
	if err != nil {
		return err
	}

	var src beep.Streamer = resampled
	if loop {
		src = &loopStreamer{streamer: streamer, resampled: resampled, loop: true}
	}

	m.bgmCtrl = &beep.Ctrl{Streamer: src}
	m.bgmVolume = &effects.Volume{Streamer: m.bgmCtrl, Base: 2}
	m.applyBGMVolumeLocked()

	m.bgmStreamer = streamer
	m.bgmName = name
	m.bgmPlaying = true

	speaker.Play(beep.Seq(m.bgmVolume, beep.Callback(func() {
		m.mu.Lock()
		m.bgmPlaying = false
		m.mu.Unlock()
	})))
	return nil
}

// StopBGM stops the current track.
func (m *Manager) StopBGM() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopBGMLocked()
}

func (m *Manager) stopBGMLocked() {
	if m.bgmCtrl != nil {
		m.bgmCtrl.Paused = true
	}
	speaker.Clear()
	// Clearing drops the mixer too; reattach it.
	if m.initialized {
		speaker.Play(m.sfxMixer)
	}
	m.bgmPlaying = false
	if m.bgmStreamer != nil {
		m.bgmStreamer.Close()
		m.bgmStreamer = nil
	}
	m.bgmCtrl = nil
	m.bgmVolume = nil
	m.bgmName = ""
}

// PauseBGM pauses the current track.
func (m *Manager) PauseBGM() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bgmCtrl != nil {
		m.bgmCtrl.Paused = true
		m.bgmPlaying = false
	}
}

// ResumeBGM resumes a paused track.
func (m *Manager) ResumeBGM() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bgmCtrl != nil {
		m.bgmCtrl.Paused = false
		m.bgmPlaying = true
	}
}

// IsBGMPlaying reports whether a track is currently audible.
func (m *Manager) IsBGMPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bgmPlaying
}

// CurrentBGM returns the name of the playing track, empty when none.
func (m *Manager) CurrentBGM() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bgmName
}

// PlaySFX fires a sound effect from WAV data. Effects mix concurrently
// on top of whatever BGM is playing.
func (m *Manager) PlaySFX(data []byte) error {
	m.mu.RLock()
	initialized := m.initialized
	vol := m.masterVolume * m.sfxVolLevel
	m.mu.RUnlock()

	if !initialized {
		return fmt.Errorf("audio not initialized")
	}

	_, resampled, err := m.decode(data)
	if err != nil {
		return err
	}

	m.sfxMixer.Add(&effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToDb(vol),
		Silent:   vol <= 0,
	})
	return nil
}

// loopStreamer replays its source from the start whenever it drains.
type loopStreamer struct {
	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
	loop      bool
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.resampled.Stream(samples[filled:])
		filled += n
		if !ok {
			if l.loop {
				if err := l.streamer.Seek(0); err != nil {
					return filled, false
				}
				continue
			}
			return filled, false
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
