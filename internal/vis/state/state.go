// Package state holds what the viewer shows: a recorded run and where
// playback is within it.
package state

import (
	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/sim"
)

// Layers toggles optional overlays.
type Layers struct {
	Preview   bool // strategic preview beyond the tactical plan
	Trail     bool // tiles already travelled
	Knowledge bool // dim obstacles the agent has not seen yet
}

// State is the viewer's model of one recorded simulation.
type State struct {
	Result    *sim.SimulationResult
	Scenario  *sim.Scenario
	Exclusion core.Rect
	Playback  *PlaybackState
	Layers    Layers

	// seenAt[i] is the first frame at which Scenario.Obstacles[i] came
	// within sight, or -1 if it never did.
	seenAt []int
}

// New wraps a recorded result. The result must carry frames.
func New(res *sim.SimulationResult) *State {
	st := &State{
		Result:   res,
		Scenario: res.Config.Scenario,
		Playback: NewPlaybackState(len(res.Frames)),
		Layers:   Layers{Preview: true, Trail: true, Knowledge: true},
	}
	if st.Scenario != nil {
		st.Exclusion = st.Scenario.ExclusionRect()
		st.seenAt = sightings(st.Scenario, res.Frames)
	}
	return st
}

func sightings(sc *sim.Scenario, frames []sim.Frame) []int {
	seen := make([]int, len(sc.Obstacles))
	for i, o := range sc.Obstacles {
		seen[i] = -1
		for f, fr := range frames {
			if fr.Agent.Chebyshev(o) <= sc.SightRadius {
				seen[i] = f
				break
			}
		}
	}
	return seen
}

// Frame returns the frame under the playhead, or nil for an empty recording.
func (s *State) Frame() *sim.Frame {
	if len(s.Result.Frames) == 0 {
		return nil
	}
	i := min(s.Playback.Frame(), len(s.Result.Frames)-1)
	return &s.Result.Frames[i]
}

// Trail returns the agent positions up to and including the current frame.
func (s *State) Trail() []core.Tile {
	n := min(s.Playback.Frame()+1, len(s.Result.Frames))
	out := make([]core.Tile, 0, n)
	for _, f := range s.Result.Frames[:n] {
		out = append(out, f.Agent)
	}
	return out
}

// ObstacleSeen reports whether obstacle i had been seen by the current frame.
func (s *State) ObstacleSeen(i int) bool {
	if i < 0 || i >= len(s.seenAt) {
		return false
	}
	return s.seenAt[i] >= 0 && s.seenAt[i] <= s.Playback.Frame()
}
