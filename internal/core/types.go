// Package core defines domain models for lap routing.
package core

import "fmt"

// Difficulty selects the episode tier and, with it, the number of laps.
type Difficulty int

const (
	Swordfish Difficulty = iota // 1 lap
	Shark                       // 2 laps
	Marlin                      // 3 laps
)

var difficultyNames = [...]string{"swordfish", "shark", "marlin"}

func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// Laps returns the number of laps an episode of this difficulty requires.
func (d Difficulty) Laps() int {
	return int(d) + 1
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), difficultyNames[:])
	if err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	*d = Difficulty(v)
	return nil
}

// OptimizationMode trades plan stability against eagerness to switch.
type OptimizationMode int

const (
	Relaxed   OptimizationMode = iota // keep plans unless clearly beaten
	Efficient                         // switch on smaller improvements
)

var modeNames = [...]string{"relaxed", "efficient"}

func (m OptimizationMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("OptimizationMode(%d)", int(m))
	}
	return modeNames[m]
}

func (m OptimizationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *OptimizationMode) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), modeNames[:])
	if err != nil {
		return fmt.Errorf("optimization mode: %w", err)
	}
	*m = OptimizationMode(v)
	return nil
}

// RouteMode selects dynamic multi-lap planning or a pre-recorded route.
type RouteMode int

const (
	Dynamic RouteMode = iota
	Static
)

var routeModeNames = [...]string{"dynamic", "static"}

func (m RouteMode) String() string {
	if m < 0 || int(m) >= len(routeModeNames) {
		return fmt.Sprintf("RouteMode(%d)", int(m))
	}
	return routeModeNames[m]
}

func (m RouteMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *RouteMode) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), routeModeNames[:])
	if err != nil {
		return fmt.Errorf("route mode: %w", err)
	}
	*m = RouteMode(v)
	return nil
}

// Side is a horizontal half of the map relative to some split column.
type Side int

const (
	SideNone Side = iota
	SideWest      // x below the split
	SideEast      // x above the split
)

var sideNames = [...]string{"none", "west", "east"}

func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

// Opposite returns the other side. SideNone has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case SideWest:
		return SideEast
	case SideEast:
		return SideWest
	default:
		return SideNone
	}
}

// Holds reports whether x lies on side s of split.
func (s Side) Holds(x, split int) bool {
	switch s {
	case SideWest:
		return x < split
	case SideEast:
		return x > split
	default:
		return true
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), sideNames[:])
	if err != nil {
		return fmt.Errorf("side: %w", err)
	}
	*s = Side(v)
	return nil
}

func parseEnum(s string, names []string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}
