package sim

import "github.com/elektrokombinacija/lapnav/internal/core"

// routeClearance is how far authored corners sit outside the exclusion.
const routeClearance = 3

// AuthoredRoute builds a static lap for sc: down the outbound side of the
// exclusion, through the mandatory pickup, back up the other side and into
// the mandatory dropoff. Mandatory stops carry no location so the planner
// resolves them from what it has observed.
func AuthoredRoute(sc *Scenario, tol core.Tolerances, outbound core.Side) []core.Waypoint {
	if outbound == core.SideNone {
		outbound = core.SideWest
	}
	excl := sc.ExclusionRect()
	column := func(s core.Side) int {
		if s == core.SideEast {
			return excl.MaxX + routeClearance
		}
		return excl.MinX - routeClearance
	}
	top, bottom := excl.MaxY+routeClearance, excl.MinY-routeClearance
	out, back := column(outbound), column(outbound.Opposite())

	aux := func(x, y int) core.Waypoint {
		return core.NewWaypoint(core.WaypointAuxiliary, core.T(x, y), tol, 0)
	}
	return []core.Waypoint{
		aux(out, top),
		aux(out, bottom),
		{Type: core.WaypointMandatoryPickup, Tolerance: tol.For(core.WaypointMandatoryPickup)},
		aux(back, bottom),
		aux(back, top),
		{Type: core.WaypointMandatoryDropoff, Tolerance: tol.For(core.WaypointMandatoryDropoff)},
	}
}

// withRoute returns cfg with an authored route for sc when static mode is
// selected and cfg has none for the scenario's difficulty.
func withRoute(cfg core.Config, sc *Scenario) (core.Config, bool) {
	if cfg.RouteMode != core.Static || len(cfg.Routes[sc.Difficulty]) > 0 {
		return cfg, false
	}
	routes := make(map[core.Difficulty][]core.Waypoint, len(cfg.Routes)+1)
	for d, r := range cfg.Routes {
		routes[d] = r
	}
	routes[sc.Difficulty] = AuthoredRoute(sc, cfg.Tolerances, cfg.PreferredSide)
	cfg.Routes = routes
	return cfg, true
}
