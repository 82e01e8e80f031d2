package sim

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// Hazard moves back and forth along an axis and is dangerous for part of
// each period.
type Hazard struct {
	Origin core.Tile `json:"origin"`
	Axis   core.Dir  `json:"axis"`
	Range  int       `json:"range" jsonschema:"minimum=0"`
	Period int       `json:"period" jsonschema:"minimum=1"`
	Danger int       `json:"danger" jsonschema:"minimum=0,description=Dangerous ticks at the start of each period"`
	Phase  int       `json:"phase,omitempty"`
}

// At returns the hazard's tile at tick.
func (h Hazard) At(tick int) core.Tile {
	if h.Range <= 0 {
		return h.Origin
	}
	span := 2 * h.Range
	k := (tick + h.Phase) % span
	off := k
	if k > h.Range {
		off = span - k
	}
	off -= h.Range / 2
	return core.Tile{X: h.Origin.X + h.Axis.DX*off, Y: h.Origin.Y + h.Axis.DY*off, Plane: h.Origin.Plane}
}

// Dangerous reports whether the hazard is active at tick.
func (h Hazard) Dangerous(tick int) bool {
	if h.Period <= 0 {
		return false
	}
	return (tick+h.Phase)%h.Period < h.Danger
}

// Scenario is a complete world for one episode.
type Scenario struct {
	Name       string          `json:"name"`
	Params     *ScenarioParams `json:"params,omitempty"`
	Difficulty core.Difficulty `json:"difficulty"`

	Start   core.Tile `json:"start"`
	Heading core.Dir  `json:"heading"`

	MandatoryPickup  core.Tile    `json:"mandatory_pickup"`
	MandatoryDropoff core.Tile    `json:"mandatory_dropoff"`
	Exclusion        core.Offsets `json:"exclusion"`

	Pickups   []core.Tile `json:"pickups"`
	Obstacles []core.Tile `json:"obstacles"`
	Boosts    []core.Tile `json:"boosts"`
	Hazards   []Hazard    `json:"hazards"`

	SightRadius int    `json:"sight_radius" jsonschema:"minimum=1"`
	Bounds      Bounds `json:"bounds"`
	Generated   string `json:"generated,omitempty"`
}

// Bounds is the area content was generated in. The world is open beyond it.
type Bounds struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Contains reports whether t lies inside the bounds.
func (b Bounds) Contains(t core.Tile) bool {
	return t.X >= b.MinX && t.X <= b.MaxX && t.Y >= b.MinY && t.Y <= b.MaxY
}

// Rect returns the bounds as a tile rectangle.
func (b Bounds) Rect() core.Rect {
	return core.Rect{MinX: b.MinX, MaxX: b.MaxX, MinY: b.MinY, MaxY: b.MaxY}
}

// ExclusionRect returns the no-go region anchored on the dropoff.
func (s *Scenario) ExclusionRect() core.Rect {
	return core.ExclusionFrom(s.MandatoryDropoff, s.Exclusion)
}

// LoadScenario reads a scenario JSON file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.SightRadius <= 0 {
		return nil, fmt.Errorf("scenario %s: sight_radius must be positive", path)
	}
	return &s, nil
}

// Save writes the scenario as indented JSON.
func (s *Scenario) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ScenarioParams defines parameters for scenario generation.
type ScenarioParams struct {
	Seed            int64           `json:"seed"`
	Difficulty      core.Difficulty `json:"difficulty"`
	Exclusion       core.Offsets    `json:"exclusion"`
	Margin          int             `json:"margin" jsonschema:"minimum=4"` // free band around the exclusion
	PickupCount     int             `json:"pickup_count"`
	ObstacleDensity float64         `json:"obstacle_density" jsonschema:"minimum=0,maximum=0.3"`
	BoostCount      int             `json:"boost_count"`
	HazardCount     int             `json:"hazard_count"`
	SightRadius     int             `json:"sight_radius"`
}

// DefaultParams returns a full-size arena.
func DefaultParams() ScenarioParams {
	return ScenarioParams{
		Seed:            42,
		Difficulty:      core.Swordfish,
		Exclusion:       core.DefaultConfig().ExclusionOffsets,
		Margin:          24,
		PickupCount:     14,
		ObstacleDensity: 0.03,
		BoostCount:      6,
		HazardCount:     4,
		SightRadius:     12,
	}
}

// SmallParams returns a compact arena for quick runs.
func SmallParams() ScenarioParams {
	return ScenarioParams{
		Seed:            1,
		Difficulty:      core.Swordfish,
		Exclusion:       core.Offsets{MinX: -6, MaxX: 6, MinY: -20, MaxY: -10},
		Margin:          10,
		PickupCount:     6,
		ObstacleDensity: 0.02,
		BoostCount:      2,
		HazardCount:     1,
		SightRadius:     8,
	}
}

// GenerateScenario builds a deterministic scenario from params. The
// dropoff sits at the origin; the mandatory pickup lies beyond the
// exclusion so every lap has to go around it.
func GenerateScenario(params ScenarioParams) *Scenario {
	rng := rand.New(rand.NewSource(params.Seed))
	off := params.Exclusion
	m := params.Margin

	s := &Scenario{
		Name:             fmt.Sprintf("lap_%s_%d_%d", params.Difficulty, params.PickupCount, params.Seed),
		Params:           &params,
		Difficulty:       params.Difficulty,
		MandatoryDropoff: core.T(0, 0),
		Exclusion:        off,
		SightRadius:      params.SightRadius,
		Generated:        time.Now().UTC().Format(time.RFC3339),
	}
	excl := s.ExclusionRect()
	s.Bounds = Bounds{
		MinX: excl.MinX - m,
		MaxX: excl.MaxX + m,
		MinY: excl.MinY - m,
		MaxY: max(excl.MaxY+m, m/2),
	}
	s.MandatoryPickup = core.T(excl.Center().X, excl.MinY-m/2)
	s.Start = core.T(0, 2)
	s.Heading = core.Dir{DY: -1}

	keyPoints := []core.Tile{s.Start, s.MandatoryPickup, s.MandatoryDropoff}
	used := core.NewTileSet(keyPoints...)
	free := func(t core.Tile, clearance int) bool {
		if !s.Bounds.Contains(t) || excl.Distance(t) <= 3 || used.Has(t) {
			return false
		}
		for _, k := range keyPoints {
			if k.Chebyshev(t) < clearance {
				return false
			}
		}
		return true
	}
	randTile := func() core.Tile {
		return core.T(
			s.Bounds.MinX+rng.Intn(s.Bounds.MaxX-s.Bounds.MinX+1),
			s.Bounds.MinY+rng.Intn(s.Bounds.MaxY-s.Bounds.MinY+1),
		)
	}

	for y := s.Bounds.MinY; y <= s.Bounds.MaxY; y++ {
		for x := s.Bounds.MinX; x <= s.Bounds.MaxX; x++ {
			t := core.T(x, y)
			if rng.Float64() < params.ObstacleDensity && free(t, 5) {
				s.Obstacles = append(s.Obstacles, t)
				used.Add(t)
			}
		}
	}

	obstacles := core.NewTileSet(s.Obstacles...)
	place := func(n, clearance int) []core.Tile {
		var out []core.Tile
		for tries := 0; len(out) < n && tries < n*200; tries++ {
			t := randTile()
			if !free(t, clearance) || obstacles.Near(t, 1) {
				continue
			}
			out = append(out, t)
			used.Add(t)
		}
		return out
	}
	s.Pickups = place(params.PickupCount, 3)
	s.Boosts = place(params.BoostCount, 3)

	axes := core.Neighbors8[:4]
	for i := 0; i < params.HazardCount; i++ {
		period := 8 + rng.Intn(7)
		s.Hazards = append(s.Hazards, Hazard{
			Origin: randTile(),
			Axis:   axes[rng.Intn(len(axes))],
			Range:  3 + rng.Intn(4),
			Period: period,
			Danger: period / 2,
			Phase:  rng.Intn(period),
		})
	}
	return s
}
