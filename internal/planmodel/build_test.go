package planmodel

import (
	"testing"

	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/internal/preprocess"
)

func twoVesselProblem(toggles berth.Toggles) *berth.Problem {
	depth := []berth.DepthPoint{{Position: 0, Depth: 15}}
	vessels := []berth.Vessel{
		{Name: "V1", LOA: 50, Draft: 10, Workload: 80, MaxCranes: 2, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
		{Name: "V2", LOA: 40, Draft: 8, Workload: 60, MaxCranes: 1, ProductivityPreference: berth.ProductivityIntermediate, ArrivalShiftIndex: 1},
	}
	cranes := []berth.Crane{
		{ID: "C1", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 300, MinProductivity: 10, MaxProductivity: 20},
		{ID: "C2", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 300, MinProductivity: 10, MaxProductivity: 20},
	}
	return berth.New(300, depth, 6, vessels, cranes, nil, nil, nil, toggles)
}

func TestBuildModelCreatesPerVesselVariables(t *testing.T) {
	p := twoVesselProblem(berth.DefaultToggles())
	pre, err := preprocess.Preprocess(p)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}

	build, err := BuildModel(p, pre)
	if err != nil {
		t.Fatalf("BuildModel returned error: %v", err)
	}

	if len(build.Pos) != 2 || len(build.Start) != 2 || len(build.End) != 2 || len(build.Duration) != 2 {
		t.Fatalf("expected 2 vessels' worth of variables, got pos=%d start=%d end=%d dur=%d",
			len(build.Pos), len(build.Start), len(build.End), len(build.Duration))
	}
	if build.Objective.V == nil {
		t.Fatal("expected a non-nil objective variable")
	}
	if len(build.Moves) == 0 {
		t.Error("expected at least one moves[k,i,t] variable for a problem with available cranes")
	}
}

func TestBuildModelWithAllTogglesOff(t *testing.T) {
	p := twoVesselProblem(berth.Toggles{})
	pre, err := preprocess.Preprocess(p)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}

	if _, err := BuildModel(p, pre); err != nil {
		t.Fatalf("BuildModel with every toggle disabled returned error: %v", err)
	}
}
