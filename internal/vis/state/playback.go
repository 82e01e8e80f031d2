package state

import "time"

// PlaybackState steps through recorded ticks in wall-clock time.
type PlaybackState struct {
	Tick     float64 // fractional playback position in ticks
	LastTick int     // index of the final recorded frame
	Rate     float64 // ticks per second
	Playing  bool

	lastUpdate time.Time
}

// DefaultRate is the playback rate for a freshly loaded run.
const DefaultRate = 20

// NewPlaybackState creates a paused playback over frames recorded frames.
func NewPlaybackState(frames int) *PlaybackState {
	return &PlaybackState{
		LastTick:   max(frames-1, 0),
		Rate:       DefaultRate,
		lastUpdate: time.Now(),
	}
}

// TogglePlay toggles playback, rewinding first when parked at the end.
func (p *PlaybackState) TogglePlay() {
	if p.Playing {
		p.Pause()
		return
	}
	if p.Frame() >= p.LastTick {
		p.Tick = 0
	}
	p.Play()
}

// Play starts playback.
func (p *PlaybackState) Play() {
	p.Playing = true
	p.lastUpdate = time.Now()
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset rewinds to the first frame.
func (p *PlaybackState) Reset() {
	p.Tick = 0
	p.Playing = false
}

// Advance moves playback forward by the wall time since the last call.
func (p *PlaybackState) Advance() {
	now := time.Now()
	elapsed := now.Sub(p.lastUpdate)
	p.lastUpdate = now
	p.AdvanceBy(elapsed)
}

// AdvanceBy moves playback forward by elapsed wall time. Playback stops
// on the last frame.
func (p *PlaybackState) AdvanceBy(elapsed time.Duration) {
	if !p.Playing {
		return
	}
	p.Tick += elapsed.Seconds() * p.Rate
	if p.Tick >= float64(p.LastTick) {
		p.Tick = float64(p.LastTick)
		p.Playing = false
	}
}

// SetTick seeks to tick, clamped to the recording.
func (p *PlaybackState) SetTick(t float64) {
	p.Tick = min(max(t, 0), float64(p.LastTick))
}

// StepForward pauses and moves to the next whole tick.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTick(float64(p.Frame() + 1))
}

// StepBack pauses and moves to the previous whole tick.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTick(float64(p.Frame() - 1))
}

// SetRate sets the playback rate, clamped to 1..240 ticks per second.
func (p *PlaybackState) SetRate(rate float64) {
	p.Rate = min(max(rate, 1), 240)
}

// Frame returns the index of the frame on screen.
func (p *PlaybackState) Frame() int {
	return int(p.Tick)
}

// Progress returns the playback position as 0-1.
func (p *PlaybackState) Progress() float64 {
	if p.LastTick <= 0 {
		return 0
	}
	return p.Tick / float64(p.LastTick)
}
