// Package preprocess implements C2 from SPEC_FULL.md: per-vessel
// feasible-berth-position enumeration, arrival-shift clamping, and
// arrival-fraction derivation. It is the only place a problem can be
// declared infeasible before a solver ever runs.
package preprocess

import (
	"fmt"

	"github.com/gitrdm/berthplan/internal/berth"
)

const shiftHours = 6

// InfeasibleError reports that a vessel has no berth position satisfying
// its draft anywhere on the quay. This is the "Infeasible-by-construction"
// error kind from SPEC_FULL.md §7.
type InfeasibleError struct {
	VesselName string
	Draft      float64
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("preprocess: vessel %q (draft %.1fm) has no feasible berth position", e.VesselName, e.Draft)
}

// VesselDerived holds C2's per-vessel output: the clamped arrival shift, the
// derived arrival fraction, and the feasible berth positions.
type VesselDerived struct {
	ClampedArrivalShiftIndex int
	ArrivalFraction          float64
	FeasiblePositions        []int
}

// Result is the full preprocessing output, indexed in the same order as
// berth.Problem.Vessels().
type Result struct {
	Vessels []VesselDerived
}

// Preprocess runs C2 over p. It returns an *InfeasibleError (not a generic
// error) the first time a vessel has zero feasible positions, so callers can
// short-circuit the solver per SPEC_FULL.md §4.2/§4.5.
func Preprocess(p *berth.Problem) (*Result, error) {
	vessels := p.Vessels()
	out := make([]VesselDerived, len(vessels))

	for i, v := range vessels {
		positions := feasiblePositions(p, v)
		if len(positions) == 0 {
			return nil, &InfeasibleError{VesselName: v.Name, Draft: v.Draft}
		}

		clamped := v.ArrivalShiftIndex
		if clamped > p.NumShifts()-1 {
			clamped = p.NumShifts() - 1
		}
		if clamped < 0 {
			clamped = 0
		}

		out[i] = VesselDerived{
			ClampedArrivalShiftIndex: clamped,
			ArrivalFraction:          arrivalFraction(v.ArrivalHourOffset),
			FeasiblePositions:        positions,
		}
	}

	return &Result{Vessels: out}, nil
}

// feasiblePositions enumerates every integer p in [GAP, L-loa-GAP] such that
// the minimum depth across [p, p+loa) is >= the vessel's draft.
func feasiblePositions(p *berth.Problem, v berth.Vessel) []int {
	lo := berth.GAP
	hi := p.BerthLength() - v.LOA - berth.GAP
	if hi < lo {
		return nil
	}

	var positions []int
	for pos := lo; pos <= hi; pos++ {
		if minDepthOver(p, pos, v.LOA) >= v.Draft {
			positions = append(positions, pos)
		}
	}
	return positions
}

func minDepthOver(p *berth.Problem, pos, loa int) float64 {
	min := p.DepthAt(pos)
	for m := 1; m < loa; m++ {
		d := p.DepthAt(pos + m)
		if d < min {
			min = d
		}
	}
	return min
}

// arrivalFraction implements SPEC_FULL.md §4.2: 1.0 if the arrival falls on
// a shift boundary, otherwise 1 - (offsetHours / shiftHours).
func arrivalFraction(offsetHours float64) float64 {
	if offsetHours <= 0 {
		return 1.0
	}
	frac := 1 - (offsetHours / shiftHours)
	if frac <= 0 {
		return 0
	}
	return frac
}
