package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidConfig is returned by Validate and LoadConfig.
var ErrInvalidConfig = errors.New("invalid config")

// TurnParams converts a heading change into a cost.
type TurnParams struct {
	RateDeg     float64 `json:"rate_deg" jsonschema:"description=Maximum turn per tick in degrees"`
	Base        float64 `json:"base,omitempty" jsonschema:"description=Flat penalty for any turn"`
	CostPerTick float64 `json:"cost_per_tick" jsonschema:"description=Penalty per tick spent turning"`
	SharpCost   float64 `json:"sharp_cost" jsonschema:"description=Quadratic weight for turns beyond 90 degrees"`
}

// DefaultTurnParams matches a 15 degree/tick vehicle.
func DefaultTurnParams() TurnParams {
	return TurnParams{RateDeg: 15, CostPerTick: 0.5, SharpCost: 0.25}
}

// RelaxedTurnParams discourages every turn to keep routes smooth.
func RelaxedTurnParams() TurnParams {
	return TurnParams{RateDeg: 15, Base: 0.3, CostPerTick: 0.7, SharpCost: 0.25}
}

// EfficientTurnParams makes small turns cheap so nearby boosts get picked up.
func EfficientTurnParams() TurnParams {
	return TurnParams{RateDeg: 15, CostPerTick: 0.17, SharpCost: 0.25}
}

// Config configures a planner.
type Config struct {
	Difficulty Difficulty       `json:"difficulty"`
	Mode       OptimizationMode `json:"mode"`
	RouteMode  RouteMode        `json:"route_mode"`

	MaxSearchRadius int  `json:"max_search_radius" jsonschema:"minimum=1"`
	ReplanInterval  int  `json:"replan_interval" jsonschema:"minimum=1"`
	PathLookahead   int  `json:"path_lookahead" jsonschema:"minimum=1,maximum=10"`
	PreferredSide   Side `json:"preferred_side"`

	RelaxedTurn   TurnParams `json:"relaxed_turn"`
	EfficientTurn TurnParams `json:"efficient_turn"`

	// Tactical cost of entering a boost tile, per mode.
	RelaxedBoost   float64 `json:"relaxed_boost" jsonschema:"maximum=0"`
	EfficientBoost float64 `json:"efficient_boost" jsonschema:"maximum=0"`

	// Fraction of the old plan's remaining cost a new plan must beat.
	RelaxedThreshold   float64 `json:"relaxed_threshold" jsonschema:"minimum=0,maximum=1"`
	EfficientThreshold float64 `json:"efficient_threshold" jsonschema:"minimum=0,maximum=1"`
	Proximity          int     `json:"proximity" jsonschema:"minimum=0"`

	Tolerances       Tolerances `json:"tolerances"`
	ExclusionOffsets Offsets    `json:"exclusion_offsets"`

	// Authored routes for static route mode, per difficulty.
	Routes map[Difficulty][]Waypoint `json:"routes,omitempty"`
}

// DefaultConfig returns default planner configuration.
func DefaultConfig() Config {
	return Config{
		Difficulty:         Swordfish,
		Mode:               Relaxed,
		RouteMode:          Dynamic,
		MaxSearchRadius:    100,
		ReplanInterval:     2,
		PathLookahead:      3,
		PreferredSide:      SideWest,
		RelaxedTurn:        RelaxedTurnParams(),
		EfficientTurn:      EfficientTurnParams(),
		RelaxedBoost:       -5,
		EfficientBoost:     -8,
		RelaxedThreshold:   0.80,
		EfficientThreshold: 0.95,
		Proximity:          2,
		Tolerances:         DefaultTolerances(),
		ExclusionOffsets:   Offsets{MinX: -26, MaxX: 22, MinY: -106, MaxY: -53},
	}
}

// Threshold returns the stabilizer fraction for the configured mode.
func (c Config) Threshold() float64 {
	if c.Mode == Efficient {
		return c.EfficientThreshold
	}
	return c.RelaxedThreshold
}

// Turn returns the turn parameters for the configured mode.
func (c Config) Turn() TurnParams {
	if c.Mode == Efficient {
		return c.EfficientTurn
	}
	return c.RelaxedTurn
}

// Boost returns the tactical boost cost for the configured mode.
func (c Config) Boost() float64 {
	if c.Mode == Efficient {
		return c.EfficientBoost
	}
	return c.RelaxedBoost
}

// Route returns the authored route for the configured difficulty.
func (c Config) Route() []Waypoint {
	return c.Routes[c.Difficulty]
}

// Validate checks ranges.
func (c Config) Validate() error {
	switch {
	case c.MaxSearchRadius <= 0:
		return fmt.Errorf("%w: max_search_radius %d must be positive", ErrInvalidConfig, c.MaxSearchRadius)
	case c.ReplanInterval <= 0:
		return fmt.Errorf("%w: replan_interval %d must be positive", ErrInvalidConfig, c.ReplanInterval)
	case c.PathLookahead < 1 || c.PathLookahead > 10:
		return fmt.Errorf("%w: path_lookahead %d outside 1..10", ErrInvalidConfig, c.PathLookahead)
	case c.RelaxedThreshold <= 0 || c.RelaxedThreshold > 1:
		return fmt.Errorf("%w: relaxed_threshold %.2f outside (0,1]", ErrInvalidConfig, c.RelaxedThreshold)
	case c.EfficientThreshold <= 0 || c.EfficientThreshold > 1:
		return fmt.Errorf("%w: efficient_threshold %.2f outside (0,1]", ErrInvalidConfig, c.EfficientThreshold)
	case c.Proximity < 0:
		return fmt.Errorf("%w: proximity %d is negative", ErrInvalidConfig, c.Proximity)
	case c.RelaxedTurn.RateDeg <= 0 || c.EfficientTurn.RateDeg <= 0:
		return fmt.Errorf("%w: turn rates %.1f/%.1f must be positive", ErrInvalidConfig, c.RelaxedTurn.RateDeg, c.EfficientTurn.RateDeg)
	case c.RelaxedBoost > 0 || c.EfficientBoost > 0:
		return fmt.Errorf("%w: boost costs %.1f/%.1f must not be positive", ErrInvalidConfig, c.RelaxedBoost, c.EfficientBoost)
	}
	for d, route := range c.Routes {
		for i, wp := range route {
			if wp.Location == nil && !wp.Type.Mandatory() {
				return fmt.Errorf("%w: route %s waypoint %d (%s) has no location", ErrInvalidConfig, d, i, wp.Type)
			}
		}
	}
	return nil
}

// LoadConfig reads a JSON config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
