package planmodel

// VesselAssignment is one vessel's solved berth position, shift window, and
// the crane work performed on it. Real values only — the +1 shift bias and
// every other internal encoding stop here, per SPEC_FULL.md §4.3's
// EXPANSION note that no other package should ever see them.
type VesselAssignment struct {
	VesselIndex int
	Position    int
	StartShift  int
	EndShift    int
	// Moves maps crane index to shift index to the number of moves that
	// crane performed on this vessel in that shift. Zero-move entries are
	// omitted.
	Moves map[int]map[int]int
}

// Extract reads a complete solver assignment (as returned by
// fdsolver.Solver.SolveOptimalWithOptions, indexed by FDVariable.ID()) back
// into real-world vessel assignments.
func (b *Build) Extract(assignment []int) []VesselAssignment {
	out := make([]VesselAssignment, len(b.Pos))
	for i := range b.Pos {
		out[i] = VesselAssignment{
			VesselIndex: i,
			Position:    assignment[b.Pos[i].V.ID()] - b.Pos[i].Bias,
			StartShift:  toShift(assignment[b.Start[i].V.ID()]),
			EndShift:    toShift(assignment[b.End[i].V.ID()]),
			Moves:       make(map[int]map[int]int),
		}
	}

	for key, mv := range b.Moves {
		count := assignment[mv.V.ID()] - mv.Bias
		if count <= 0 {
			continue
		}
		v := &out[key.vesselIdx]
		// Moves variables are declared for every shift in a vessel's full
		// arrival-to-horizon range, not just its solved active window — the
		// objective's negative weight on totalCranesUsed gives the solver an
		// incentive to leave spurious out-of-window assignments nonzero, so
		// only shifts inside [StartShift, EndShift) are real crane work.
		if key.shift < v.StartShift || key.shift >= v.EndShift {
			continue
		}
		if v.Moves[key.craneIdx] == nil {
			v.Moves[key.craneIdx] = make(map[int]int)
		}
		v.Moves[key.craneIdx][key.shift] = count
	}

	return out
}
