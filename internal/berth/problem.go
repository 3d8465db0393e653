// Package berth holds the immutable description of a container terminal
// planning problem: the quay, its vessels, its crane fleet, the planning
// horizon, and the rule toggles that gate optional constraint families.
//
// Problem values are read-only after construction. Nothing in this package
// touches a solver, a file, or the network.
package berth

import "sort"

// ProductivityPreference chooses which crane productivity figure applies to
// a vessel.
type ProductivityPreference int

const (
	ProductivityMin ProductivityPreference = iota
	ProductivityIntermediate
	ProductivityMax
)

// CraneType distinguishes rail-bound ship-to-shore cranes from mobile
// harbour cranes.
type CraneType int

const (
	CraneSTS CraneType = iota
	CraneMHC
)

// GAP is the fixed lateral clearance, in metres, enforced between adjacent
// vessels and around the quay ends.
const GAP = 40

// DepthPoint is one entry of a piecewise-constant depth profile: depth(x)
// equals the depth of the greatest DepthPoint.Position <= x.
type DepthPoint struct {
	Position int
	Depth    float64
}

// TargetZone is a vessel's declared preference for a yard-quay zone, with
// the volume of cargo it expects to move through that zone.
type TargetZone struct {
	YardZoneID string
	Volume     int
}

// Vessel is one arriving ship awaiting a berth position and a shift window.
//
// ArrivalShiftIndex and ArrivalHourOffset are the raw inputs from
// configuration; the clamped arrival shift and the derived arrival fraction
// used by the model builder are computed by internal/preprocess (C2), not
// stored here, since Problem values must stay read-only and the clamp/
// derivation is itself part of the feasibility analysis.
type Vessel struct {
	Name                   string
	LOA                    int
	Draft                  float64
	Workload               int
	MaxCranes              int
	ProductivityPreference ProductivityPreference
	ArrivalShiftIndex      int
	ArrivalHourOffset      float64
	TargetZones            []TargetZone
}

// Crane is one member of the quay crane fleet.
type Crane struct {
	ID              string
	Name            string
	Type            CraneType
	BerthRangeStart int
	BerthRangeEnd   int
	MinProductivity int
	MaxProductivity int
}

// ForbiddenZone is a rectangular space-time block no vessel may occupy.
type ForbiddenZone struct {
	StartBerthPosition int
	EndBerthPosition   int
	StartShift         int
	EndShift           int
	Description        string
}

// YardQuayZone is a named interval along the quay used for yard-distance
// scoring.
type YardQuayZone struct {
	ID         string
	Name       string
	StartDist  int
	EndDist    int
}

// Toggles gates the eight (plus one expansion) optional constraint
// families described in SPEC_FULL.md §4.3.
type Toggles struct {
	EnableForbiddenZones     bool
	EnableCraneCapacity      bool
	EnableMaxCranes          bool
	EnableMinCranesOnArrival bool
	EnableCraneReach         bool
	EnableSTSNonCrossing     bool
	EnableShiftingGang       bool
	// EnableCraneReachStrict additionally enforces the symmetric upper
	// bound pos[i]+loa_i <= berthRangeEnd_k. Off by default; see
	// SPEC_FULL.md §9, open question 2.
	EnableCraneReachStrict bool
}

// DefaultToggles returns every toggle enabled, matching the configuration
// default documented in SPEC_FULL.md §6 ("defaults: all true"), except the
// expansion toggle EnableCraneReachStrict which defaults off.
func DefaultToggles() Toggles {
	return Toggles{
		EnableForbiddenZones:     true,
		EnableCraneCapacity:      true,
		EnableMaxCranes:          true,
		EnableMinCranesOnArrival: true,
		EnableCraneReach:         true,
		EnableSTSNonCrossing:     true,
		EnableShiftingGang:       true,
		EnableCraneReachStrict:   false,
	}
}

// Problem is the immutable description of one terminal planning instance.
type Problem struct {
	berthLength    int
	depthProfile   []DepthPoint
	numShifts      int
	vessels        []Vessel
	cranes         []Crane
	availability   map[int]map[string]bool // shift -> craneID -> available
	forbiddenZones []ForbiddenZone
	yardZones      []YardQuayZone
	toggles        Toggles
}

// New constructs a Problem. depthProfile need not be pre-sorted; New sorts
// a copy by position. availability maps a shift index to the set of crane
// IDs usable in that shift; a shift absent from the map is treated as "all
// cranes available" to keep simple configurations terse.
func New(
	berthLength int,
	depthProfile []DepthPoint,
	numShifts int,
	vessels []Vessel,
	cranes []Crane,
	availability map[int]map[string]bool,
	forbiddenZones []ForbiddenZone,
	yardZones []YardQuayZone,
	toggles Toggles,
) *Problem {
	dp := make([]DepthPoint, len(depthProfile))
	copy(dp, depthProfile)
	sort.Slice(dp, func(i, j int) bool { return dp[i].Position < dp[j].Position })

	return &Problem{
		berthLength:    berthLength,
		depthProfile:   dp,
		numShifts:      numShifts,
		vessels:        append([]Vessel(nil), vessels...),
		cranes:         append([]Crane(nil), cranes...),
		availability:   availability,
		forbiddenZones: append([]ForbiddenZone(nil), forbiddenZones...),
		yardZones:      append([]YardQuayZone(nil), yardZones...),
		toggles:        toggles,
	}
}

func (p *Problem) BerthLength() int               { return p.berthLength }
func (p *Problem) NumShifts() int                 { return p.numShifts }
func (p *Problem) Vessels() []Vessel              { return p.vessels }
func (p *Problem) Cranes() []Crane                { return p.cranes }
func (p *Problem) ForbiddenZones() []ForbiddenZone { return p.forbiddenZones }
func (p *Problem) YardZones() []YardQuayZone       { return p.yardZones }
func (p *Problem) Toggles() Toggles                { return p.toggles }

// DepthAt returns the depth at berth position x, per the piecewise-constant
// step function: the depth of the greatest profile position <= x. Returns 0
// if x is before the first profile entry.
func (p *Problem) DepthAt(x int) float64 {
	// sort.Search finds the first index whose position is > x; the entry
	// we want is the one just before it.
	idx := sort.Search(len(p.depthProfile), func(i int) bool {
		return p.depthProfile[i].Position > x
	})
	if idx == 0 {
		return 0
	}
	return p.depthProfile[idx-1].Depth
}

// CraneAvailable reports whether crane id may operate during shift t. A
// shift with no explicit availability entry is treated as fully available.
func (p *Problem) CraneAvailable(craneID string, t int) bool {
	shiftAvail, ok := p.availability[t]
	if !ok {
		return true
	}
	avail, ok := shiftAvail[craneID]
	return !ok || avail
}

// Limit computes limit(k,i,t) as defined in SPEC_FULL.md §4.3: the crane's
// productivity figure selected by the vessel's preference, reduced by the
// vessel's arrival fraction when t is the vessel's (preprocessed, clamped)
// arrival shift.
func Limit(c Crane, v Vessel, t int, clampedArrivalShift int, arrivalFraction float64) int {
	var base int
	switch v.ProductivityPreference {
	case ProductivityMax:
		base = c.MaxProductivity
	case ProductivityMin:
		base = c.MinProductivity
	default:
		base = (c.MinProductivity + c.MaxProductivity) / 2
	}
	if t == clampedArrivalShift {
		base = int(float64(base) * arrivalFraction)
	}
	return base
}
