package core

import "fmt"

// WaypointType classifies a high-level route target.
type WaypointType int

const (
	WaypointPickup           WaypointType = iota // scattered collectible
	WaypointMandatoryPickup                      // cargo collection point
	WaypointMandatoryDropoff                     // cargo delivery point
	WaypointAuxiliary                            // any other objective
)

var waypointTypeNames = [...]string{"pickup", "mandatory_pickup", "mandatory_dropoff", "auxiliary"}

func (t WaypointType) String() string {
	if t < 0 || int(t) >= len(waypointTypeNames) {
		return fmt.Sprintf("WaypointType(%d)", int(t))
	}
	return waypointTypeNames[t]
}

func (t WaypointType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *WaypointType) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), waypointTypeNames[:])
	if err != nil {
		return fmt.Errorf("waypoint type: %w", err)
	}
	*t = WaypointType(v)
	return nil
}

// Mandatory reports whether the type is one of the fixed cargo stops.
func (t WaypointType) Mandatory() bool {
	return t == WaypointMandatoryPickup || t == WaypointMandatoryDropoff
}

// Tolerances holds the reach radius per waypoint type, in tiles.
type Tolerances struct {
	Pickup           int `json:"pickup"`
	MandatoryPickup  int `json:"mandatory_pickup"`
	MandatoryDropoff int `json:"mandatory_dropoff"`
	Auxiliary        int `json:"auxiliary"`
}

// DefaultTolerances mirrors the trigger radii observed in play.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Pickup:           2,
		MandatoryPickup:  7,
		MandatoryDropoff: 7,
		Auxiliary:        1,
	}
}

// For returns the tolerance for a waypoint type.
func (t Tolerances) For(typ WaypointType) int {
	switch typ {
	case WaypointPickup:
		return t.Pickup
	case WaypointMandatoryPickup:
		return t.MandatoryPickup
	case WaypointMandatoryDropoff:
		return t.MandatoryDropoff
	default:
		return t.Auxiliary
	}
}

// Waypoint is a typed target the route must visit.
// Location is nil for mandatory stops whose position comes from shared
// state (see Resolve).
type Waypoint struct {
	Type      WaypointType `json:"type"`
	Location  *Tile        `json:"location,omitempty"`
	Tolerance int          `json:"tolerance"`
	Lap       int          `json:"lap,omitempty"` // 1-based; 0 for authored routes
}

// NewWaypoint creates a located waypoint with the type's tolerance.
func NewWaypoint(typ WaypointType, loc Tile, tol Tolerances, lap int) Waypoint {
	return Waypoint{Type: typ, Location: &loc, Tolerance: tol.For(typ), Lap: lap}
}

// Resolve returns a copy with a nil Location filled from the known
// mandatory locations. ok is false if the location is still unknown.
func (w Waypoint) Resolve(pickup, dropoff *Tile) (Waypoint, bool) {
	if w.Location != nil {
		return w, true
	}
	var loc *Tile
	switch w.Type {
	case WaypointMandatoryPickup:
		loc = pickup
	case WaypointMandatoryDropoff:
		loc = dropoff
	}
	if loc == nil {
		return w, false
	}
	t := *loc
	w.Location = &t
	return w, true
}

// Reached reports whether t is within the waypoint's tolerance.
func (w Waypoint) Reached(t Tile) bool {
	if w.Location == nil {
		return false
	}
	return w.Location.Chebyshev(t) <= w.Tolerance
}

func (w Waypoint) String() string {
	if w.Location == nil {
		return fmt.Sprintf("%s@?", w.Type)
	}
	return fmt.Sprintf("%s@%s", w.Type, *w.Location)
}

// Pickup is a world object that may currently be collected.
type Pickup struct {
	Tile        Tile `json:"tile"`
	Collectible bool `json:"collectible"`
}

// CollectibleSet returns the tiles of pickups that are collectible now.
func CollectibleSet(pickups []Pickup) TileSet {
	s := make(TileSet, len(pickups))
	for _, p := range pickups {
		if p.Collectible {
			s[p.Tile] = struct{}{}
		}
	}
	return s
}
