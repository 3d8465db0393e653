package solve

import (
	"context"
	"testing"
	"time"

	"github.com/gitrdm/berthplan/internal/berth"
)

// craneByID mirrors how internal/planmodel looks cranes up, for assertions
// that need a crane's configured fields back from a VesselSolution's
// string-keyed Moves map.
func craneByID(p *berth.Problem, id string) (berth.Crane, bool) {
	for _, c := range p.Cranes() {
		if c.ID == id {
			return c, true
		}
	}
	return berth.Crane{}, false
}

// minDepthOverRange samples every integer berth position in [start, end) and
// returns the shallowest depth found. Problem.DepthAt implements spec.md's
// piecewise-constant step function, so a unit-granularity scan over the
// small ranges these tests use is exact.
func minDepthOverRange(p *berth.Problem, start, end int) float64 {
	min := p.DepthAt(start)
	for x := start + 1; x < end; x++ {
		if d := p.DepthAt(x); d < min {
			min = d
		}
	}
	return min
}

// checkInvariants asserts spec.md §8's universal invariants 1-8 against one
// returned Solution. Invariants 9 (idempotence) and 10 (toggle monotonicity)
// are cross-run properties and are checked separately below.
func checkInvariants(t *testing.T, p *berth.Problem, sol *Solution) {
	t.Helper()
	if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
		t.Fatalf("checkInvariants called with non-solved status %s", sol.Status)
	}

	vessels := p.Vessels()
	if len(sol.Vessels) != len(vessels) {
		t.Fatalf("Solution has %d vessels, Problem has %d", len(sol.Vessels), len(vessels))
	}

	// Invariant 1: startShift >= arrivalShiftIndex, endShift > startShift.
	for i, vs := range sol.Vessels {
		arrival := vessels[i].ArrivalShiftIndex
		if vs.StartShift < arrival {
			t.Errorf("vessel %s: StartShift=%d < arrivalShiftIndex=%d", vs.VesselName, vs.StartShift, arrival)
		}
		if vs.EndShift <= vs.StartShift {
			t.Errorf("vessel %s: EndShift=%d <= StartShift=%d", vs.VesselName, vs.EndShift, vs.StartShift)
		}
	}

	// Invariant 2: no two vessels' [pos, pos+loa+GAP) x [start, end) rectangles overlap.
	for i := range sol.Vessels {
		for j := i + 1; j < len(sol.Vessels); j++ {
			a, b := sol.Vessels[i], sol.Vessels[j]
			aLoa, bLoa := vessels[i].LOA, vessels[j].LOA
			xOverlap := a.Position < b.Position+bLoa+berth.GAP && b.Position < a.Position+aLoa+berth.GAP
			tOverlap := a.StartShift < b.EndShift && b.StartShift < a.EndShift
			if xOverlap && tOverlap {
				t.Errorf("vessels %s and %s overlap: pos/loa=(%d,%d)/(%d,%d) shifts=(%d,%d)/(%d,%d)",
					a.VesselName, b.VesselName, a.Position, aLoa, b.Position, bLoa,
					a.StartShift, a.EndShift, b.StartShift, b.EndShift)
			}
		}
	}

	// Invariant 3: minimum depth across [pos, pos+loa) >= draft.
	for i, vs := range sol.Vessels {
		minDepth := minDepthOverRange(p, vs.Position, vs.Position+vessels[i].LOA)
		if minDepth < vessels[i].Draft {
			t.Errorf("vessel %s: min depth %.1f over [%d,%d) < draft %.1f",
				vs.VesselName, minDepth, vs.Position, vs.Position+vessels[i].LOA, vessels[i].Draft)
		}
	}

	// Invariant 4: total assigned moves >= workload.
	for i, vs := range sol.Vessels {
		total := 0
		for _, byShift := range vs.Moves {
			for _, count := range byShift {
				total += count
			}
		}
		if total < vessels[i].Workload {
			t.Errorf("vessel %s: total moves %d < workload %d", vs.VesselName, total, vessels[i].Workload)
		}
	}

	// Invariant 5: per-crane, per-shift total moves <= maxProductivity.
	movesByCraneShift := make(map[string]map[int]int)
	for _, vs := range sol.Vessels {
		for craneID, byShift := range vs.Moves {
			if movesByCraneShift[craneID] == nil {
				movesByCraneShift[craneID] = make(map[int]int)
			}
			for shift, count := range byShift {
				movesByCraneShift[craneID][shift] += count
			}
		}
	}
	for craneID, byShift := range movesByCraneShift {
		c, ok := craneByID(p, craneID)
		if !ok {
			t.Fatalf("Solution references unknown crane %q", craneID)
		}
		for shift, total := range byShift {
			if total > c.MaxProductivity {
				t.Errorf("crane %s shift %d: total moves %d > maxProductivity %d", craneID, shift, total, c.MaxProductivity)
			}
		}
	}

	// Invariant 6: distinct active cranes per vessel per shift <= maxCranes.
	if p.Toggles().EnableMaxCranes {
		for i, vs := range sol.Vessels {
			activeByShift := make(map[int]int)
			for _, byShift := range vs.Moves {
				for shift, count := range byShift {
					if count > 0 {
						activeByShift[shift]++
					}
				}
			}
			for shift, n := range activeByShift {
				if n > vessels[i].MaxCranes {
					t.Errorf("vessel %s shift %d: %d distinct active cranes > maxCranes %d",
						vs.VesselName, shift, n, vessels[i].MaxCranes)
				}
			}
		}
	}

	// Invariant 7: when crane reach is enabled, every crane active on a
	// vessel satisfies pos_i >= berthRangeStart_k.
	if p.Toggles().EnableCraneReach {
		for _, vs := range sol.Vessels {
			for craneID, byShift := range vs.Moves {
				active := false
				for _, count := range byShift {
					if count > 0 {
						active = true
					}
				}
				if !active {
					continue
				}
				c, ok := craneByID(p, craneID)
				if !ok {
					continue
				}
				if vs.Position < c.BerthRangeStart {
					t.Errorf("vessel %s: position %d < crane %s berthRangeStart %d",
						vs.VesselName, vs.Position, craneID, c.BerthRangeStart)
				}
			}
		}
	}

	// Invariant 8: STS non-crossing. For every shift and every two STS
	// cranes k1 < k2 (by fleet index), the vessels they serve in that shift
	// satisfy pos(servedByK1) <= pos(servedByK2).
	if p.Toggles().EnableSTSNonCrossing {
		cranes := p.Cranes()
		type served struct {
			craneIdx int
			vesselIdx int
			shift int
		}
		var assignments []served
		vesselIndexByName := make(map[string]int)
		for i, v := range vessels {
			vesselIndexByName[v.Name] = i
		}
		for _, vs := range sol.Vessels {
			vi := vesselIndexByName[vs.VesselName]
			for craneID, byShift := range vs.Moves {
				ci := -1
				for k, c := range cranes {
					if c.ID == craneID {
						ci = k
						break
					}
				}
				if ci < 0 || cranes[ci].Type != berth.CraneSTS {
					continue
				}
				for shift, count := range byShift {
					if count > 0 {
						assignments = append(assignments, served{craneIdx: ci, vesselIdx: vi, shift: shift})
					}
				}
			}
		}
		for _, a := range assignments {
			for _, b := range assignments {
				if a.shift != b.shift || a.craneIdx >= b.craneIdx {
					continue
				}
				posA := sol.Vessels[a.vesselIdx].Position
				posB := sol.Vessels[b.vesselIdx].Position
				if posA > posB {
					t.Errorf("shift %d: STS crane index %d (pos %d) is right of STS crane index %d (pos %d)",
						a.shift, a.craneIdx, posA, b.craneIdx, posB)
				}
			}
		}
	}
}

func invariantsDemoProblem(toggles berth.Toggles) *berth.Problem {
	depth := []berth.DepthPoint{{Position: 0, Depth: 16}}
	vessels := []berth.Vessel{
		{Name: "Alpha", LOA: 150, Draft: 10, Workload: 150, MaxCranes: 2, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
		{Name: "Bravo", LOA: 100, Draft: 9, Workload: 80, MaxCranes: 1, ProductivityPreference: berth.ProductivityIntermediate, ArrivalShiftIndex: 1},
	}
	cranes := []berth.Crane{
		{ID: "STS-01", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 500, MinProductivity: 20, MaxProductivity: 40},
		{ID: "STS-02", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 500, MinProductivity: 20, MaxProductivity: 40},
	}
	return berth.New(500, depth, 4, vessels, cranes, nil, nil, nil, toggles)
}

func TestInvariantsHoldOnDemoProblem(t *testing.T) {
	p := invariantsDemoProblem(berth.DefaultToggles())
	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
		t.Fatalf("Status = %s, want OPTIMAL or FEASIBLE", sol.Status)
	}
	checkInvariants(t, p, sol)
}

// TestIdempotenceOnOptimalRuns is invariant 9: solving the same problem
// twice with the same time limit yields identical objective values when the
// solver reaches OPTIMAL both times.
func TestIdempotenceOnOptimalRuns(t *testing.T) {
	p := invariantsDemoProblem(berth.DefaultToggles())
	driver := NewDriver(nil)

	first, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	second, err := driver.Run(context.Background(), p, 60*time.Second)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if first.Status != StatusOptimal || second.Status != StatusOptimal {
		t.Skipf("both runs must reach OPTIMAL to check idempotence, got %s and %s", first.Status, second.Status)
	}
	if first.Objective != second.Objective {
		t.Errorf("objective differs across runs: %d vs %d", first.Objective, second.Objective)
	}
}

// TestToggleMonotonicityNeverIncreasesObjective is invariant 10: disabling
// any single constraint family from the all-toggles-on baseline must not
// raise the optimal objective, since removing a constraint only enlarges
// the feasible region.
func TestToggleMonotonicityNeverIncreasesObjective(t *testing.T) {
	base := invariantsDemoProblem(berth.DefaultToggles())
	driver := NewDriver(nil)

	baseline, err := driver.Run(context.Background(), base, 60*time.Second)
	if err != nil {
		t.Fatalf("baseline Run returned error: %v", err)
	}
	if baseline.Status != StatusOptimal {
		t.Skipf("baseline must reach OPTIMAL to check monotonicity, got %s", baseline.Status)
	}

	toggleFields := []struct {
		name  string
		apply func(*berth.Toggles)
	}{
		{"EnableForbiddenZones", func(tg *berth.Toggles) { tg.EnableForbiddenZones = false }},
		{"EnableCraneCapacity", func(tg *berth.Toggles) { tg.EnableCraneCapacity = false }},
		{"EnableMaxCranes", func(tg *berth.Toggles) { tg.EnableMaxCranes = false }},
		{"EnableMinCranesOnArrival", func(tg *berth.Toggles) { tg.EnableMinCranesOnArrival = false }},
		{"EnableCraneReach", func(tg *berth.Toggles) { tg.EnableCraneReach = false }},
		{"EnableSTSNonCrossing", func(tg *berth.Toggles) { tg.EnableSTSNonCrossing = false }},
		{"EnableShiftingGang", func(tg *berth.Toggles) { tg.EnableShiftingGang = false }},
	}

	for _, tc := range toggleFields {
		toggles := berth.DefaultToggles()
		tc.apply(&toggles)
		p := invariantsDemoProblem(toggles)

		sol, err := driver.Run(context.Background(), p, 60*time.Second)
		if err != nil {
			t.Fatalf("toggle %s: Run returned error: %v", tc.name, err)
		}
		if sol.Status != StatusOptimal {
			t.Skipf("toggle %s: expected OPTIMAL, got %s", tc.name, sol.Status)
			continue
		}
		if sol.Objective > baseline.Objective {
			t.Errorf("toggle %s off: objective %d > baseline %d (disabling a constraint family must not increase the optimum)",
				tc.name, sol.Objective, baseline.Objective)
		}
	}
}
