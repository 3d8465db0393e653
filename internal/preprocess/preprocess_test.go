package preprocess

import (
	"testing"

	"github.com/gitrdm/berthplan/internal/berth"
)

func flatProblem(vessels []berth.Vessel) *berth.Problem {
	depth := []berth.DepthPoint{{Position: 0, Depth: 15}}
	cranes := []berth.Crane{{ID: "C1", BerthRangeStart: 0, BerthRangeEnd: 300, MinProductivity: 10, MaxProductivity: 20}}
	return berth.New(300, depth, 10, vessels, cranes, nil, nil, nil, berth.DefaultToggles())
}

func TestPreprocessFeasiblePositions(t *testing.T) {
	p := flatProblem([]berth.Vessel{
		{Name: "V1", LOA: 50, Draft: 10, ArrivalShiftIndex: 0},
	})

	result, err := Preprocess(p)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}
	if len(result.Vessels) != 1 {
		t.Fatalf("expected 1 vessel, got %d", len(result.Vessels))
	}

	derived := result.Vessels[0]
	if len(derived.FeasiblePositions) == 0 {
		t.Fatal("expected at least one feasible position")
	}
	wantLo, wantHi := berth.GAP, 300-50-berth.GAP
	if derived.FeasiblePositions[0] != wantLo {
		t.Errorf("first feasible position = %d, want %d", derived.FeasiblePositions[0], wantLo)
	}
	if last := derived.FeasiblePositions[len(derived.FeasiblePositions)-1]; last != wantHi {
		t.Errorf("last feasible position = %d, want %d", last, wantHi)
	}
}

func TestPreprocessInfeasibleDraft(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 5}}
	cranes := []berth.Crane{{ID: "C1", BerthRangeStart: 0, BerthRangeEnd: 300}}
	p := berth.New(300, depth, 10,
		[]berth.Vessel{{Name: "Deep Draft", LOA: 50, Draft: 20, ArrivalShiftIndex: 0}},
		cranes, nil, nil, nil, berth.DefaultToggles())

	_, err := Preprocess(p)
	if err == nil {
		t.Fatal("expected an InfeasibleError, got nil")
	}
	var infeasible *InfeasibleError
	if !asInfeasible(err, &infeasible) {
		t.Fatalf("expected *InfeasibleError, got %T: %v", err, err)
	}
	if infeasible.VesselName != "Deep Draft" {
		t.Errorf("VesselName = %q, want %q", infeasible.VesselName, "Deep Draft")
	}
}

func TestPreprocessClampsArrivalShift(t *testing.T) {
	p := flatProblem([]berth.Vessel{
		{Name: "Late Arrival", LOA: 50, Draft: 10, ArrivalShiftIndex: 999},
	})

	result, err := Preprocess(p)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}
	if got, want := result.Vessels[0].ClampedArrivalShiftIndex, p.NumShifts()-1; got != want {
		t.Errorf("ClampedArrivalShiftIndex = %d, want %d", got, want)
	}
}

func TestArrivalFractionOnBoundary(t *testing.T) {
	p := flatProblem([]berth.Vessel{
		{Name: "OnTime", LOA: 50, Draft: 10, ArrivalShiftIndex: 0, ArrivalHourOffset: 0},
		{Name: "HalfShiftLate", LOA: 50, Draft: 10, ArrivalShiftIndex: 0, ArrivalHourOffset: 3},
	})

	result, err := Preprocess(p)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}
	if got := result.Vessels[0].ArrivalFraction; got != 1.0 {
		t.Errorf("on-time arrival fraction = %v, want 1.0", got)
	}
	if got, want := result.Vessels[1].ArrivalFraction, 0.5; got != want {
		t.Errorf("half-shift-late arrival fraction = %v, want %v", got, want)
	}
}

// asInfeasible is a small helper mirroring errors.As without importing
// errors in this file solely for one assertion.
func asInfeasible(err error, target **InfeasibleError) bool {
	if ie, ok := err.(*InfeasibleError); ok {
		*target = ie
		return true
	}
	return false
}
