package berth

import "testing"

func sampleProblem(toggles Toggles) *Problem {
	depth := []DepthPoint{
		{Position: 0, Depth: 10},
		{Position: 100, Depth: 14},
		{Position: 200, Depth: 8},
	}
	vessels := []Vessel{
		{Name: "V1", LOA: 50, Draft: 9, Workload: 100, MaxCranes: 2, ProductivityPreference: ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := []Crane{
		{ID: "C1", Name: "Crane 1", Type: CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 300, MinProductivity: 10, MaxProductivity: 20},
	}
	return New(300, depth, 10, vessels, cranes, nil, nil, nil, toggles)
}

func TestDepthAtStepFunction(t *testing.T) {
	p := sampleProblem(DefaultToggles())

	cases := []struct {
		x    int
		want float64
	}{
		{-1, 0},
		{0, 10},
		{50, 10},
		{100, 14},
		{150, 14},
		{200, 8},
		{250, 8},
	}
	for _, c := range cases {
		if got := p.DepthAt(c.x); got != c.want {
			t.Errorf("DepthAt(%d) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestCraneAvailableDefaultsTrue(t *testing.T) {
	p := sampleProblem(DefaultToggles())
	if !p.CraneAvailable("C1", 0) {
		t.Error("expected crane to be available when no availability entry exists")
	}
}

func TestCraneAvailableHonorsUnavailability(t *testing.T) {
	avail := map[int]map[string]bool{3: {"C1": false}}
	p := New(300, nil, 10,
		[]Vessel{{Name: "V1", LOA: 10, ArrivalShiftIndex: 0}},
		[]Crane{{ID: "C1"}},
		avail, nil, nil, DefaultToggles())

	if p.CraneAvailable("C1", 3) {
		t.Error("expected crane C1 unavailable at shift 3")
	}
	if !p.CraneAvailable("C1", 4) {
		t.Error("expected crane C1 available at shift 4")
	}
}

func TestLimitAppliesArrivalFraction(t *testing.T) {
	c := Crane{MinProductivity: 10, MaxProductivity: 30}
	v := Vessel{ProductivityPreference: ProductivityMax}

	full := Limit(c, v, 5, 3, 0.5)
	if full != 30 {
		t.Errorf("Limit at non-arrival shift = %d, want 30", full)
	}

	partial := Limit(c, v, 3, 3, 0.5)
	if partial != 15 {
		t.Errorf("Limit at arrival shift = %d, want 15", partial)
	}
}

func TestLimitIntermediatePreferenceAverages(t *testing.T) {
	c := Crane{MinProductivity: 10, MaxProductivity: 30}
	v := Vessel{ProductivityPreference: ProductivityIntermediate}

	got := Limit(c, v, 0, -1, 1.0)
	if got != 20 {
		t.Errorf("Limit with intermediate preference = %d, want 20", got)
	}
}

func TestDefaultTogglesAllTrueExceptStrict(t *testing.T) {
	toggles := DefaultToggles()
	if !toggles.EnableForbiddenZones || !toggles.EnableCraneCapacity || !toggles.EnableMaxCranes ||
		!toggles.EnableMinCranesOnArrival || !toggles.EnableCraneReach || !toggles.EnableSTSNonCrossing ||
		!toggles.EnableShiftingGang {
		t.Error("expected all base toggles to default true")
	}
	if toggles.EnableCraneReachStrict {
		t.Error("expected EnableCraneReachStrict to default false")
	}
}
