package planmodel

import "github.com/gitrdm/berthplan/pkg/fdsolver"

// buildObjective assembles C4's five weighted terms into one scalar
// objective variable, per SPEC_FULL.md §4.4. Weights are folded in as
// fdsolver.NewLinearSum coefficients on the final sum, including the
// negative weight on totalCranesUsed — LinearSum accepts signed
// coefficients directly, so no separate sign-encoding trick is needed for
// the objective itself (only its intermediate terms need the +1 bias
// scheme, per SPEC_FULL.md's 1-indexed domain encoding note).
func buildObjective(b *Build) error {
	p := b.Problem
	vessels := p.Vessels()
	T := p.NumShifts()

	startDelays := make([]ivar, len(vessels))
	turnarounds := make([]ivar, len(vessels))
	for i := range vessels {
		arrival := b.Pre.Vessels[i].ClampedArrivalShiftIndex

		delay, err := arithTo(b.Model, b.Start[i], -arrival, 0, T, 1)
		if err != nil {
			return err
		}
		startDelays[i] = delay

		turnaround, err := arithTo(b.Model, b.End[i], -arrival, 1, T+1, 0)
		if err != nil {
			return err
		}
		turnarounds[i] = turnaround
	}

	onesCoeffs := func(n int) []int {
		c := make([]int, n)
		for i := range c {
			c[i] = 1
		}
		return c
	}

	totalStartDelay, err := linearCombination(b.Model, startDelays, onesCoeffs(len(startDelays)), 0, len(startDelays)*T)
	if err != nil {
		return err
	}

	totalTurnaround, err := linearCombination(b.Model, turnarounds, onesCoeffs(len(turnarounds)), len(turnarounds), len(turnarounds)*(T+1))
	if err != nil {
		return err
	}

	makespan := shiftVar(b.Model, 1, T)
	endVars := make([]*fdsolver.FDVariable, len(vessels))
	for i := range vessels {
		endVars[i] = b.End[i].V
	}
	maxConstraint, err := fdsolver.NewMax(endVars, makespan.V)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(maxConstraint)

	var craneActiveBools []*fdsolver.FDVariable
	for _, ca := range b.CraneActive {
		craneActiveBools = append(craneActiveBools, ca)
	}
	totalCranesUsed := ivar{Bias: 1}
	if len(craneActiveBools) == 0 {
		totalCranesUsed.V = constVar(b.Model, 1)
	} else {
		totalCranesUsed.V = b.Model.NewVariable(fdsolver.NewBitSetDomain(len(craneActiveBools) + 1))
		sum, err := fdsolver.NewBoolSum(craneActiveBools, totalCranesUsed.V)
		if err != nil {
			return err
		}
		b.Model.AddConstraint(sum)
	}

	yardDistances, err := buildYardDistances(b)
	if err != nil {
		return err
	}
	var totalYardDistance ivar
	if len(yardDistances) == 0 {
		totalYardDistance = ivar{V: constVar(b.Model, 1), Bias: 1}
	} else {
		totalYardDistance, err = linearCombination(b.Model, yardDistances, onesCoeffs(len(yardDistances)), 0, len(yardDistances)*p.BerthLength())
		if err != nil {
			return err
		}
	}

	terms := []ivar{totalStartDelay, totalTurnaround, makespan, totalCranesUsed, totalYardDistance}
	coeffs := []int{5000, 500, 100, -100, 1}

	objLo, objHi := objectiveBounds(terms, coeffs)
	objBias := 0
	for i, c := range coeffs {
		objBias += c * terms[i].Bias
	}
	objective := newRangeVar(b.Model, objLo-objBias, objHi-objBias, objBias)
	vars := make([]*fdsolver.FDVariable, len(terms))
	for i, t := range terms {
		vars[i] = t.V
	}
	sum, err := fdsolver.NewLinearSum(vars, coeffs, objective.V)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(sum)
	b.Objective = objective
	return nil
}

// objectiveBounds computes a conservative (not necessarily tight) [lo, hi]
// range for the stored weighted sum, wide enough that SetDomain never needs
// to represent a value outside it.
func objectiveBounds(terms []ivar, coeffs []int) (int, int) {
	lo, hi := 0, 0
	for i, t := range terms {
		dom := t.V.Domain()
		tLo, tHi := dom.Min(), dom.Max()
		a, b := coeffs[i]*tLo, coeffs[i]*tHi
		if a > b {
			a, b = b, a
		}
		lo += a
		hi += b
	}
	return lo, hi
}

// buildYardDistances builds |((pos[i]+loa_i/2) - centre(bestZone_i))| for
// every vessel that declared at least one target zone, where bestZone_i is
// the declared target zone with the largest Volume (spec.md's tiebreak for
// which zone a vessel's yard-proximity term is measured against). Vessels
// without a preference contribute no term — they are yard-distance-
// indifferent.
func buildYardDistances(b *Build) ([]ivar, error) {
	p := b.Problem
	zonesByID := make(map[string]int) // id -> centre, rounded down
	for _, z := range p.YardZones() {
		zonesByID[z.ID] = (z.StartDist + z.EndDist) / 2
	}

	var out []ivar
	for i, v := range p.Vessels() {
		if len(v.TargetZones) == 0 {
			continue
		}
		best := v.TargetZones[0]
		for _, z := range v.TargetZones[1:] {
			if z.Volume > best.Volume {
				best = z
			}
		}
		centre, ok := zonesByID[best.YardZoneID]
		if !ok {
			continue
		}
		// diff = pos[i] + loa_i/2 - centre, with loa_i/2 rounded down.
		// offset must exceed the largest signed distance the quay can
		// produce; 2x berth length comfortably covers pos + loa/2 - centre.
		offset := 2*p.BerthLength() + 1
		diff, err := arithTo(b.Model, b.Pos[i], v.LOA/2-centre, -offset+1, offset-1, offset)
		if err != nil {
			return nil, err
		}
		absVar := ivar{V: b.Model.NewVariable(fdsolver.NewBitSetDomain(offset + 1)), Bias: 1}
		abs, err := fdsolver.NewAbsolute(diff.V, offset, absVar.V)
		if err != nil {
			return nil, err
		}
		b.Model.AddConstraint(abs)
		out = append(out, absVar)
	}
	return out, nil
}
