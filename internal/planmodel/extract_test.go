package planmodel

import (
	"testing"

	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/internal/preprocess"
)

func TestExtractStripsBiasAndOmitsZeroMoves(t *testing.T) {
	p := twoVesselProblem(berth.DefaultToggles())
	pre, err := preprocess.Preprocess(p)
	if err != nil {
		t.Fatalf("Preprocess returned error: %v", err)
	}
	build, err := BuildModel(p, pre)
	if err != nil {
		t.Fatalf("BuildModel returned error: %v", err)
	}

	assignment := make([]int, build.Model.VariableCount())
	for i := range build.Pos {
		assignment[build.Pos[i].V.ID()] = build.Pos[i].V.Domain().Min()
		assignment[build.Start[i].V.ID()] = build.Start[i].V.Domain().Min()
		assignment[build.End[i].V.ID()] = build.End[i].V.Domain().Min()
	}
	// With Start/End pinned at their domain minima, each vessel's active
	// window is exactly its arrival shift: [arrival, arrival+1). Pin one
	// moves variable inside that window to a positive count, and one
	// outside it, leaving everything else at bias (read back as zero).
	startShift := make([]int, len(build.Start))
	endShift := make([]int, len(build.End))
	for i := range build.Start {
		startShift[i] = toShift(assignment[build.Start[i].V.ID()])
		endShift[i] = toShift(assignment[build.End[i].V.ID()])
	}

	var pinnedInWindow, pinnedOutOfWindow moveKey
	haveInWindow, haveOutOfWindow := false, false
	for key, mv := range build.Moves {
		inWindow := key.shift >= startShift[key.vesselIdx] && key.shift < endShift[key.vesselIdx]
		switch {
		case inWindow && !haveInWindow:
			assignment[mv.V.ID()] = mv.Bias + 3
			pinnedInWindow = key
			haveInWindow = true
		case !inWindow && !haveOutOfWindow:
			assignment[mv.V.ID()] = mv.Bias + 3
			pinnedOutOfWindow = key
			haveOutOfWindow = true
		default:
			assignment[mv.V.ID()] = mv.Bias
		}
	}
	if !haveInWindow {
		t.Fatal("expected at least one in-window moves variable in this problem")
	}
	if !haveOutOfWindow {
		t.Fatal("expected at least one out-of-window moves variable in this problem")
	}

	out := build.Extract(assignment)
	if len(out) != len(build.Pos) {
		t.Fatalf("Extract returned %d assignments, want %d", len(out), len(build.Pos))
	}

	vessel := out[pinnedInWindow.vesselIdx]
	byShift, ok := vessel.Moves[pinnedInWindow.craneIdx]
	if !ok {
		t.Fatalf("expected crane %d to appear in vessel %d's moves", pinnedInWindow.craneIdx, pinnedInWindow.vesselIdx)
	}
	if got := byShift[pinnedInWindow.shift]; got != 3 {
		t.Errorf("moves[%d][%d] = %d, want 3", pinnedInWindow.craneIdx, pinnedInWindow.shift, got)
	}

	outOfWindowVessel := out[pinnedOutOfWindow.vesselIdx]
	if byShift, ok := outOfWindowVessel.Moves[pinnedOutOfWindow.craneIdx]; ok {
		if got, present := byShift[pinnedOutOfWindow.shift]; present {
			t.Errorf("Extract should omit moves outside a vessel's active window, found moves[%d][%d]=%d",
				pinnedOutOfWindow.craneIdx, pinnedOutOfWindow.shift, got)
		}
	}

	for i, v := range out {
		for craneIdx, byShift := range v.Moves {
			for shift, count := range byShift {
				if craneIdx == pinnedInWindow.craneIdx && i == pinnedInWindow.vesselIdx && shift == pinnedInWindow.shift {
					continue
				}
				if count == 0 {
					t.Errorf("Extract should omit zero-move entries, found one at vessel=%d crane=%d shift=%d", i, craneIdx, shift)
				}
			}
		}
	}
}
