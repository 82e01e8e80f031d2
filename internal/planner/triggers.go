package planner

import (
	"github.com/elektrokombinacija/lapnav/internal/algo"
	"github.com/elektrokombinacija/lapnav/internal/core"
)

// Re-plan reasons.
const (
	reasonInitial  = "initial"
	reasonPeriodic = "periodic"
	reasonPickups  = "pickups-changed"
	reasonCargo    = "cargo-changed"
	reasonLap      = "lap-advanced"
	reasonArrived  = "plan-consumed"
	reasonBlocked  = "path-blocked"
)

// triggers remembers what the last evaluation saw.
type triggers struct {
	primed     bool
	lastReplan int
	pickups    core.TileSet
	cargo      bool
	lap        int
}

func (t *triggers) replanned(tick int) { t.lastReplan = tick }

// evaluateTriggers returns why a re-plan is due, empty if it is not.
func (p *Planner) evaluateTriggers(s core.Snapshot, lap int, field *algo.Field) []string {
	t := &p.trig
	pickups := core.CollectibleSet(s.Pickups)

	var reasons []string
	if !t.primed {
		reasons = append(reasons, reasonInitial)
	} else {
		if p.tick-t.lastReplan >= p.cfg.ReplanInterval {
			reasons = append(reasons, reasonPeriodic)
		}
		if !pickups.Equal(t.pickups) {
			reasons = append(reasons, reasonPickups)
		}
		if s.HasCargo != t.cargo {
			reasons = append(reasons, reasonCargo)
		}
		if lap != t.lap {
			reasons = append(reasons, reasonLap)
		}
	}

	if p.published != nil {
		ahead := core.TrimPath(p.published.Tiles, s.Agent)
		if len(ahead) == 0 {
			reasons = append(reasons, reasonArrived)
		}
		for _, tile := range ahead {
			if field.Blocked(tile) {
				// The kept plan's costs are stale; force a fresh one.
				p.stab.Clear()
				reasons = append(reasons, reasonBlocked)
				break
			}
		}
	}

	t.primed = true
	t.pickups = pickups
	t.cargo = s.HasCargo
	t.lap = lap
	return reasons
}
