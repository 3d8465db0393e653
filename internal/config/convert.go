package config

import (
	"fmt"
	"time"

	"github.com/gitrdm/berthplan/internal/berth"
)

// ShiftLabel is the wall-clock label for one shift, computed at 6-hour
// granularity from Shifts.StartDate. It exists purely for the external
// visualizer per SPEC_FULL.md §3 EXPANSION; the solver core never reads it.
type ShiftLabel struct {
	Index int
	Start time.Time
	End   time.Time
}

const shiftHours = 6

// ToProblem converts a validated Config into a berth.Problem plus the
// derived shift labels. It does not clamp arrival shifts or compute arrival
// fractions — that is internal/preprocess's job (SPEC_FULL.md §4.2).
func ToProblem(cfg *Config) (*berth.Problem, []ShiftLabel, error) {
	depthProfile := make([]berth.DepthPoint, len(cfg.Berth.DepthMap))
	for i, d := range cfg.Berth.DepthMap {
		depthProfile[i] = berth.DepthPoint{Position: d.Position, Depth: d.Depth}
	}

	startDate, err := time.Parse("02012006", cfg.Shifts.StartDate)
	if err != nil {
		return nil, nil, fmt.Errorf("config: invalid shifts.start_date %q: %w", cfg.Shifts.StartDate, err)
	}

	labels := make([]ShiftLabel, cfg.Shifts.NumShifts)
	for i := 0; i < cfg.Shifts.NumShifts; i++ {
		start := startDate.Add(time.Duration(i*shiftHours) * time.Hour)
		labels[i] = ShiftLabel{
			Index: i,
			Start: start,
			End:   start.Add(shiftHours * time.Hour),
		}
	}

	vessels := make([]berth.Vessel, len(cfg.Vessels))
	for i, v := range cfg.Vessels {
		pref, err := parseProductivityPreference(v.ProductivityPreference)
		if err != nil {
			return nil, nil, fmt.Errorf("config: vessel %q: %w", v.Name, err)
		}
		zones := make([]berth.TargetZone, len(v.TargetZones))
		for j, z := range v.TargetZones {
			zones[j] = berth.TargetZone{YardZoneID: z.YardQuayZoneID, Volume: z.Volume}
		}
		vessels[i] = berth.Vessel{
			Name:                   v.Name,
			LOA:                    v.LOA,
			Draft:                  v.Draft,
			Workload:               v.Workload,
			MaxCranes:              v.MaxCranes,
			ProductivityPreference: pref,
			ArrivalShiftIndex:      v.ArrivalShift,
			ArrivalHourOffset:      v.ArrivalHourOffset,
			TargetZones:            zones,
		}
	}

	cranes := make([]berth.Crane, len(cfg.Cranes))
	for i, c := range cfg.Cranes {
		ctype, err := parseCraneType(c.CraneType)
		if err != nil {
			return nil, nil, fmt.Errorf("config: crane %q: %w", c.ID, err)
		}
		cranes[i] = berth.Crane{
			ID:              c.ID,
			Name:            c.Name,
			Type:            ctype,
			BerthRangeStart: c.BerthRangeStart,
			BerthRangeEnd:   c.BerthRangeEnd,
			MinProductivity: c.MinProductivity,
			MaxProductivity: c.MaxProductivity,
		}
	}

	availability := make(map[int]map[string]bool)
	for _, u := range cfg.CraneUnavailability {
		for _, shift := range u.Shifts {
			if availability[shift] == nil {
				availability[shift] = make(map[string]bool)
			}
			availability[shift][u.CraneID] = false
		}
	}

	forbiddenZones := make([]berth.ForbiddenZone, len(cfg.ForbiddenZones))
	for i, z := range cfg.ForbiddenZones {
		forbiddenZones[i] = berth.ForbiddenZone{
			StartBerthPosition: z.StartBerthPosition,
			EndBerthPosition:   z.EndBerthPosition,
			StartShift:         z.StartShift,
			EndShift:           z.EndShift,
			Description:        z.Description,
		}
	}

	yardZones := make([]berth.YardQuayZone, len(cfg.YardQuayZones))
	for i, z := range cfg.YardQuayZones {
		yardZones[i] = berth.YardQuayZone{ID: z.ID, Name: z.Name, StartDist: z.StartDist, EndDist: z.EndDist}
	}

	toggles := berth.Toggles{
		EnableForbiddenZones:     boolOr(cfg.SolverRules.EnableForbiddenZones, true),
		EnableCraneCapacity:      boolOr(cfg.SolverRules.EnableCraneCapacity, true),
		EnableMaxCranes:          boolOr(cfg.SolverRules.EnableMaxCranes, true),
		EnableMinCranesOnArrival: boolOr(cfg.SolverRules.EnableMinCranesOnArrival, true),
		EnableCraneReach:         boolOr(cfg.SolverRules.EnableCraneReach, true),
		EnableSTSNonCrossing:     boolOr(cfg.SolverRules.EnableSTSNonCrossing, true),
		EnableShiftingGang:       boolOr(cfg.SolverRules.EnableShiftingGang, true),
		EnableCraneReachStrict:   boolOr(cfg.SolverRules.EnableCraneReachStrict, false),
	}

	problem := berth.New(
		cfg.Berth.Length,
		depthProfile,
		cfg.Shifts.NumShifts,
		vessels,
		cranes,
		availability,
		forbiddenZones,
		yardZones,
		toggles,
	)

	return problem, labels, nil
}

func parseProductivityPreference(s string) (berth.ProductivityPreference, error) {
	switch s {
	case "MAX":
		return berth.ProductivityMax, nil
	case "MIN":
		return berth.ProductivityMin, nil
	case "INTERMEDIATE":
		return berth.ProductivityIntermediate, nil
	default:
		return 0, fmt.Errorf("unknown productivity_preference %q", s)
	}
}

func parseCraneType(s string) (berth.CraneType, error) {
	switch s {
	case "STS":
		return berth.CraneSTS, nil
	case "MHC":
		return berth.CraneMHC, nil
	default:
		return 0, fmt.Errorf("unknown crane_type %q", s)
	}
}
