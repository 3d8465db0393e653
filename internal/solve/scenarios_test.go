package solve

import (
	"context"
	"testing"
	"time"

	"github.com/gitrdm/berthplan/internal/berth"
)

// totalMoves sums every crane/shift move count recorded for one vessel.
func totalMoves(vs VesselSolution) int {
	total := 0
	for _, byShift := range vs.Moves {
		for _, count := range byShift {
			total += count
		}
	}
	return total
}

// distinctActiveCranesInShift counts cranes with a nonzero move count for vs
// in the given shift.
func distinctActiveCranesInShift(vs VesselSolution, shift int) int {
	n := 0
	for _, byShift := range vs.Moves {
		if byShift[shift] > 0 {
			n++
		}
	}
	return n
}

// TestScenarioS1SingleVesselDeepQuay is spec.md S1: one vessel, one crane,
// a uniformly deep quay, and a draft-indifferent single-shift horizon.
func TestScenarioS1SingleVesselDeepQuay(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 16}}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 200, Draft: 10, Workload: 100, MaxCranes: 2, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := []berth.Crane{
		{ID: "STS-01", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 1000, MinProductivity: 100, MaxProductivity: 130},
	}
	p := berth.New(1000, depth, 2, vessels, cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("Status = %s, want %s", sol.Status, StatusOptimal)
	}
	if len(sol.Vessels) != 1 {
		t.Fatalf("expected 1 vessel, got %d", len(sol.Vessels))
	}

	vs := sol.Vessels[0]
	if vs.Position != berth.GAP {
		t.Errorf("Position = %d, want GAP (%d)", vs.Position, berth.GAP)
	}
	if vs.StartShift != 0 {
		t.Errorf("StartShift = %d, want 0", vs.StartShift)
	}
	if vs.EndShift != 1 {
		t.Errorf("EndShift = %d, want 1", vs.EndShift)
	}
	byShift, ok := vs.Moves["STS-01"]
	if !ok || byShift[0] <= 0 {
		t.Errorf("expected STS-01 to perform moves on V1 in shift 0, got %v", vs.Moves)
	}
}

// TestScenarioS2DraftBlocksPosition is spec.md S2: the same layout as S1,
// but a deeper draft and a shoaling depth profile restrict feasible
// positions to [GAP, 500-loa-GAP].
func TestScenarioS2DraftBlocksPosition(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 16}, {Position: 500, Depth: 12}}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 200, Draft: 13, Workload: 100, MaxCranes: 2, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := []berth.Crane{
		{ID: "STS-01", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 1000, MinProductivity: 100, MaxProductivity: 130},
	}
	p := berth.New(1000, depth, 2, vessels, cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("Status = %s, want %s", sol.Status, StatusOptimal)
	}

	vs := sol.Vessels[0]
	const lo, hi = 40, 500 - 200 - 40
	if vs.Position < lo || vs.Position > hi {
		t.Errorf("Position = %d, want in [%d,%d]", vs.Position, lo, hi)
	}
}

// TestScenarioS3ForbiddenZoneForcesShift is spec.md S3: every depth-feasible
// berth position overlaps a forbidden zone's berth span, so the vessel must
// either wait out the zone in time or dodge it in space — whichever the
// solver finds cheaper. Depth is only adequate in [300,700), which combined
// with loa=300 leaves feasible positions in [300,400]: every one of them
// overlaps the zone's [400,600) berth span, so escaping in space alone is
// impossible and the solver must delay past the zone's shift window.
func TestScenarioS3ForbiddenZoneForcesShift(t *testing.T) {
	depth := []berth.DepthPoint{
		{Position: 0, Depth: 5},
		{Position: 300, Depth: 16},
		{Position: 700, Depth: 5},
	}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 300, Draft: 10, Workload: 100, MaxCranes: 2, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 1},
	}
	cranes := []berth.Crane{
		{ID: "STS-01", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 1000, MinProductivity: 100, MaxProductivity: 130},
	}
	zone := berth.ForbiddenZone{
		StartBerthPosition: 400,
		EndBerthPosition:   600,
		StartShift:         1,
		EndShift:           3,
		Description:        "crane maintenance window",
	}
	p := berth.New(1000, depth, 4, vessels, cranes, nil, []berth.ForbiddenZone{zone}, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
		t.Fatalf("Status = %s, want OPTIMAL or FEASIBLE", sol.Status)
	}

	vs := sol.Vessels[0]
	escapesInTime := vs.StartShift >= zone.EndShift || vs.EndShift <= zone.StartShift
	escapesInSpace := vs.Position+vessels[0].LOA+berth.GAP <= zone.StartBerthPosition || vs.Position >= zone.EndBerthPosition
	if !escapesInTime && !escapesInSpace {
		t.Errorf("vessel occupies the forbidden zone: pos=%d loa=%d shifts=[%d,%d) zone berth=[%d,%d) shifts=[%d,%d)",
			vs.Position, vessels[0].LOA, vs.StartShift, vs.EndShift,
			zone.StartBerthPosition, zone.EndBerthPosition, zone.StartShift, zone.EndShift)
	}
	// The depth-feasible window leaves no spatial escape, so the solver had
	// to delay past the zone in time, starting on or after shift 3.
	if !escapesInTime {
		t.Errorf("expected the vessel to escape the zone in time (depth restricts every feasible position into its berth span), got StartShift=%d EndShift=%d", vs.StartShift, vs.EndShift)
	}
}

// TestScenarioS4STSNonCrossing is spec.md S4: two vessels that need to be
// active in the same shift, each naturally drawing a different STS crane.
// Non-crossing requires the vessel served by the lower-indexed STS crane to
// sit at or left of the vessel served by the higher-indexed one.
func TestScenarioS4STSNonCrossing(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 16}}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 150, Draft: 10, Workload: 100, MaxCranes: 1, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
		{Name: "V2", LOA: 150, Draft: 10, Workload: 100, MaxCranes: 1, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := []berth.Crane{
		{ID: "STS-01", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 1000, MinProductivity: 100, MaxProductivity: 130},
		{ID: "STS-02", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 1000, MinProductivity: 100, MaxProductivity: 130},
	}
	p := berth.New(1000, depth, 2, vessels, cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
		t.Fatalf("Status = %s, want OPTIMAL or FEASIBLE", sol.Status)
	}

	// Invariant 8 (STS non-crossing) is the general form of S4's expectation;
	// checking it here also covers the disjoint-berth variant of this
	// scenario where the two vessels never actually share an STS crane pair
	// in the same shift.
	checkInvariants(t, p, sol)
}

// TestScenarioS5WorkloadRequiresMultipleCranes is spec.md S5: a single
// vessel's workload exceeds what any one crane can move in one shift, so
// the solver must either activate enough distinct cranes at once or spread
// the work across more than one shift.
func TestScenarioS5WorkloadRequiresMultipleCranes(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 16}}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 200, Draft: 10, Workload: 500, MaxCranes: 4, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := make([]berth.Crane, 4)
	for i := range cranes {
		cranes[i] = berth.Crane{
			ID: craneName(i), Type: berth.CraneSTS,
			BerthRangeStart: 0, BerthRangeEnd: 1000,
			MinProductivity: 100, MaxProductivity: 130,
		}
	}
	p := berth.New(1000, depth, 4, vessels, cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
		t.Fatalf("Status = %s, want OPTIMAL or FEASIBLE", sol.Status)
	}

	vs := sol.Vessels[0]
	if totalMoves(vs) < vessels[0].Workload {
		t.Fatalf("total moves %d < workload %d", totalMoves(vs), vessels[0].Workload)
	}

	spansMultipleShifts := vs.EndShift-vs.StartShift > 1
	usesFourCranesInArrivalShift := distinctActiveCranesInShift(vs, vs.StartShift) >= 4
	if !spansMultipleShifts && !usesFourCranesInArrivalShift {
		t.Errorf("expected either >=4 distinct active cranes in shift %d or a multi-shift window, got %d distinct cranes and window [%d,%d)",
			vs.StartShift, distinctActiveCranesInShift(vs, vs.StartShift), vs.StartShift, vs.EndShift)
	}
}

func craneName(i int) string {
	return string(rune('A'+i)) + "-crane"
}

// TestScenarioS6InfeasibleDraft is spec.md S6: a vessel whose draft exceeds
// the quay's maximum depth everywhere must be rejected during preprocessing
// without ever reaching the solver.
func TestScenarioS6InfeasibleDraft(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 16}}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 200, Draft: 20, Workload: 100, MaxCranes: 1, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := []berth.Crane{
		{ID: "STS-01", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 1000, MinProductivity: 100, MaxProductivity: 130},
	}
	p := berth.New(1000, depth, 2, vessels, cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Errorf("Status = %s, want %s", sol.Status, StatusInfeasible)
	}
	if len(sol.Vessels) != 0 {
		t.Errorf("expected an empty vessel list, got %d entries", len(sol.Vessels))
	}
}
