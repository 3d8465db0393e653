package solve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/pkg/fdsolver"
)

func TestClassifySuccess(t *testing.T) {
	status, err := classify(nil, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("classify returned error: %v", err)
	}
	if status != StatusOptimal {
		t.Errorf("status = %s, want %s", status, StatusOptimal)
	}
}

func TestClassifyInfeasibleFromNilAssignmentNoError(t *testing.T) {
	status, err := classify(nil, nil)
	if err != nil {
		t.Fatalf("classify returned error: %v", err)
	}
	if status != StatusInfeasible {
		t.Errorf("status = %s, want %s", status, StatusInfeasible)
	}
}

func TestClassifyFeasibleOnSearchLimitWithIncumbent(t *testing.T) {
	status, err := classify(fdsolver.ErrSearchLimitReached, []int{1})
	if err != nil {
		t.Fatalf("classify returned error: %v", err)
	}
	if status != StatusFeasible {
		t.Errorf("status = %s, want %s", status, StatusFeasible)
	}
}

func TestClassifyUnknownOnSearchLimitWithoutIncumbent(t *testing.T) {
	status, err := classify(fdsolver.ErrSearchLimitReached, nil)
	if err != nil {
		t.Fatalf("classify returned error: %v", err)
	}
	if status != StatusUnknown {
		t.Errorf("status = %s, want %s", status, StatusUnknown)
	}
}

func TestClassifyFeasibleOnDeadlineExceeded(t *testing.T) {
	status, err := classify(context.DeadlineExceeded, []int{1})
	if err != nil {
		t.Fatalf("classify returned error: %v", err)
	}
	if status != StatusFeasible {
		t.Errorf("status = %s, want %s", status, StatusFeasible)
	}
}

func TestClassifyPropagatesGenuineErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := classify(boom, []int{1})
	if !errors.Is(err, boom) {
		t.Errorf("expected classify to propagate the underlying error, got %v", err)
	}
}

func TestDriverRunReportsInfeasibleWithoutBuildingAModel(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 5}}
	cranes := []berth.Crane{{ID: "C1", BerthRangeStart: 0, BerthRangeEnd: 300}}
	p := berth.New(300, depth, 4,
		[]berth.Vessel{{Name: "Too Deep", LOA: 50, Draft: 20, ArrivalShiftIndex: 0}},
		cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Errorf("Status = %s, want %s", sol.Status, StatusInfeasible)
	}
	if len(sol.Vessels) != 0 {
		t.Errorf("expected no vessel assignments for an infeasible run, got %d", len(sol.Vessels))
	}
}

func TestDriverRunSolvesASmallProblem(t *testing.T) {
	depth := []berth.DepthPoint{{Position: 0, Depth: 15}}
	vessels := []berth.Vessel{
		{Name: "Solo", LOA: 40, Draft: 10, Workload: 20, MaxCranes: 1, ProductivityPreference: berth.ProductivityMax, ArrivalShiftIndex: 0},
	}
	cranes := []berth.Crane{
		{ID: "C1", Type: berth.CraneSTS, BerthRangeStart: 0, BerthRangeEnd: 150, MinProductivity: 10, MaxProductivity: 20},
	}
	p := berth.New(150, depth, 4, vessels, cranes, nil, nil, nil, berth.DefaultToggles())

	driver := NewDriver(nil)
	sol, err := driver.Run(context.Background(), p, 10*time.Second)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
		t.Fatalf("Status = %s, want OPTIMAL or FEASIBLE", sol.Status)
	}
	if len(sol.Vessels) != 1 {
		t.Fatalf("expected 1 vessel assignment, got %d", len(sol.Vessels))
	}
	if sol.Vessels[0].VesselName != "Solo" {
		t.Errorf("VesselName = %q, want %q", sol.Vessels[0].VesselName, "Solo")
	}
}
