// Package planner drives the per-episode lap planning loop.
package planner

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a signal does not apply to the
// current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// Signal is an external event reported by the host.
type Signal int

const (
	EnteredArea Signal = iota
	CargoPickedUp
	CargoDelivered
	LeftArea
)

func (s Signal) String() string {
	switch s {
	case EnteredArea:
		return "entered-area"
	case CargoPickedUp:
		return "cargo-picked-up"
	case CargoDelivered:
		return "cargo-delivered"
	case LeftArea:
		return "left-area"
	}
	return fmt.Sprintf("Signal(%d)", int(s))
}

// Phase is the episode state.
type Phase int

const (
	Idle Phase = iota
	InArea
	CollectingOutbound
	AtMandatoryStop
	CollectingReturn
	LapComplete
	EpisodeComplete
)

var phaseNames = [...]string{
	"idle", "in-area", "collecting-outbound", "at-mandatory-stop",
	"collecting-return", "lap-complete", "episode-complete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Active reports whether the planner should produce plans in this phase.
func (p Phase) Active() bool {
	return p != Idle && p != EpisodeComplete
}

// Episode tracks one visit to the area, from entering to leaving.
type Episode struct {
	ID           uuid.UUID
	Phase        Phase
	Lap          int // 1-based, 0 while idle
	LapsRequired int
	HasCargo     bool
}

// NewEpisode returns an idle episode that will require laps laps.
func NewEpisode(laps int) *Episode {
	return &Episode{LapsRequired: laps}
}

// Apply moves the episode along for sig. On error the episode is left
// unchanged.
func (e *Episode) Apply(sig Signal) error {
	switch sig {
	case EnteredArea:
		if e.Phase != Idle {
			break
		}
		e.ID = uuid.New()
		e.Phase = InArea
		e.Lap = 1
		e.HasCargo = false
		return nil

	case CargoPickedUp:
		if e.Phase != CollectingOutbound && e.Phase != InArea {
			break
		}
		e.Phase = AtMandatoryStop
		e.HasCargo = true
		return nil

	case CargoDelivered:
		if e.Phase != CollectingReturn && e.Phase != AtMandatoryStop {
			break
		}
		e.Phase = LapComplete
		e.HasCargo = false
		return nil

	case LeftArea:
		if e.Phase == Idle {
			break
		}
		laps := e.LapsRequired
		*e = Episode{LapsRequired: laps}
		return nil
	}
	return fmt.Errorf("%w: %s during %s", ErrInvalidTransition, sig, e.Phase)
}

// Tick advances the transient phases. It returns true when the phase
// changed.
func (e *Episode) Tick() bool {
	switch e.Phase {
	case InArea:
		e.Phase = CollectingOutbound
	case AtMandatoryStop:
		e.Phase = CollectingReturn
	case LapComplete:
		if e.Lap >= e.LapsRequired {
			e.Phase = EpisodeComplete
		} else {
			e.Lap++
			e.Phase = CollectingOutbound
		}
	default:
		return false
	}
	return true
}

// Final reports whether the current lap is the last one.
func (e *Episode) Final() bool {
	return e.Lap >= e.LapsRequired
}
