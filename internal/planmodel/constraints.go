package planmodel

import (
	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/pkg/fdsolver"
)

// buildConstraints wires constraint families 3-11 of SPEC_FULL.md §4.3 onto
// an already-populated Build (constraints 1 and 2 are enforced by posVar's
// domain construction in variables.go). Each toggle-gated family is skipped
// entirely when its berth.Toggles flag is false, per the "omission must not
// change variable domains" rule — none of these functions create variables,
// only constraints over ones buildVariables already made.
func buildConstraints(b *Build) error {
	p := b.Problem
	toggles := p.Toggles()
	vessels := p.Vessels()
	cranes := p.Cranes()
	T := p.NumShifts()

	width := make([]int, len(vessels))
	posVars := make([]*fdsolver.FDVariable, len(vessels))
	startVars := make([]*fdsolver.FDVariable, len(vessels))
	endVars := make([]*fdsolver.FDVariable, len(vessels))
	for i, v := range vessels {
		width[i] = v.LOA + berthGap
		posVars[i] = b.Pos[i].V
		startVars[i] = b.Start[i].V
		endVars[i] = b.End[i].V
	}

	// 3. No-overlap 2D.
	if err := newVesselNonOverlap(b.Model, posVars, startVars, endVars, width); err != nil {
		return err
	}

	// 4. Forbidden zones.
	if toggles.EnableForbiddenZones {
		for i, v := range vessels {
			for _, z := range p.ForbiddenZones() {
				if err := buildForbiddenZone(b, i, v.LOA, z); err != nil {
					return err
				}
			}
		}
	}

	// 5. Workload fulfillment.
	for i, v := range vessels {
		if err := buildWorkloadFulfillment(b, i, v.Workload); err != nil {
			return err
		}
	}

	// 6. Crane capacity.
	if toggles.EnableCraneCapacity {
		for k, c := range cranes {
			for t := 0; t < T; t++ {
				if err := buildCraneCapacity(b, k, c.MaxProductivity, t); err != nil {
					return err
				}
			}
		}
	}

	// 7. Max cranes per vessel.
	if toggles.EnableMaxCranes {
		for i, v := range vessels {
			for t := 0; t < T; t++ {
				if err := buildMaxCranes(b, i, v.MaxCranes, t, len(cranes)); err != nil {
					return err
				}
			}
		}
	}

	// 8. Minimum work when active.
	if toggles.EnableMinCranesOnArrival {
		for i := range vessels {
			for t := 0; t < T; t++ {
				if err := buildMinWorkWhenActive(b, i, t, len(cranes)); err != nil {
					return err
				}
			}
		}
	}

	// 9. Crane reach.
	if toggles.EnableCraneReach {
		for k, c := range cranes {
			for i, v := range vessels {
				for t := 0; t < T; t++ {
					if err := buildCraneReach(b, k, i, t, c, v, toggles.EnableCraneReachStrict); err != nil {
						return err
					}
				}
			}
		}
	}

	// 10. STS non-crossing.
	if toggles.EnableSTSNonCrossing {
		if err := buildSTSNonCrossing(b); err != nil {
			return err
		}
	}

	// 11. Shifting-gang.
	if toggles.EnableShiftingGang {
		for k, c := range cranes {
			for i, v := range vessels {
				for t := 0; t < T; t++ {
					if err := buildShiftingGang(b, k, i, t, c, v); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

const berthGap = 40 // mirrors berth.GAP; kept local to avoid an import cycle concern during review

// buildForbiddenZone posts: NOT (vessel i's space-time rectangle overlaps
// zone z). Disjointness in either axis suffices, so — exactly like
// newVesselNonOverlap — at least one of four escape inequalities must hold,
// except here the zone side of each inequality is a constant rather than
// another vessel's variable. Zones are half-open, [StartBerthPosition,
// EndBerthPosition) x [StartShift, EndShift), so a vessel may begin exactly
// at a zone's end bound.
func buildForbiddenZone(b *Build, i int, loa int, z berth.ForbiddenZone) error {
	pos := b.Pos[i]
	start := b.Start[i]
	end := b.End[i]

	boolDom := fdsolver.NewBitSetDomain(2)
	var bools []*fdsolver.FDVariable

	// pos[i] + loa + GAP <= z.StartBerthPosition
	posPlus, err := arithTo(b.Model, pos, loa+berthGap, 0, 100000, 0)
	if err != nil {
		return err
	}
	ineq1, err := fdsolver.NewInequality(posPlus.V, constVar(b.Model, z.StartBerthPosition+posPlus.Bias), fdsolver.LessEqual)
	if err != nil {
		return err
	}
	b1 := b.Model.NewVariable(boolDom)
	r1, err := fdsolver.NewReifiedConstraint(ineq1, b1)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(r1)
	bools = append(bools, b1)

	// pos[i] >= z.EndBerthPosition
	ineq2, err := fdsolver.NewInequality(pos.V, constVar(b.Model, z.EndBerthPosition+pos.Bias), fdsolver.GreaterEqual)
	if err != nil {
		return err
	}
	b2 := b.Model.NewVariable(boolDom)
	r2, err := fdsolver.NewReifiedConstraint(ineq2, b2)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(r2)
	bools = append(bools, b2)

	// end[i] <= z.StartShift
	ineq3, err := fdsolver.NewInequality(end.V, constVar(b.Model, z.StartShift+end.Bias), fdsolver.LessEqual)
	if err != nil {
		return err
	}
	b3 := b.Model.NewVariable(boolDom)
	r3, err := fdsolver.NewReifiedConstraint(ineq3, b3)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(r3)
	bools = append(bools, b3)

	// start[i] >= z.EndShift
	ineq4, err := fdsolver.NewInequality(start.V, constVar(b.Model, z.EndShift+start.Bias), fdsolver.GreaterEqual)
	if err != nil {
		return err
	}
	b4 := b.Model.NewVariable(boolDom)
	r4, err := fdsolver.NewReifiedConstraint(ineq4, b4)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(r4)
	bools = append(bools, b4)

	atLeastOne := fdsolver.NewBitSetDomainFromValues(5, []int{2, 3, 4, 5})
	total := b.Model.NewVariable(atLeastOne)
	sum, err := fdsolver.NewBoolSum(bools, total)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(sum)
	return nil
}

// buildWorkloadFulfillment posts Sum_{k,t} moves[k,i,t] >= workload_i.
func buildWorkloadFulfillment(b *Build, vesselIdx, workload int) error {
	terms, maxSum := movesFor(b, func(k moveKey) bool { return k.vesselIdx == vesselIdx })
	total, err := sumMoves(b, terms, maxSum)
	if err != nil {
		return err
	}
	ineq, err := fdsolver.NewInequality(total.V, constVar(b.Model, workload+total.Bias), fdsolver.GreaterEqual)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(ineq)
	return nil
}

// buildCraneCapacity posts Sum_i moves[k,i,t] <= maxProductivity_k.
func buildCraneCapacity(b *Build, craneIdx, maxProductivity, shift int) error {
	terms, maxSum := movesFor(b, func(k moveKey) bool { return k.craneIdx == craneIdx && k.shift == shift })
	if len(terms) == 0 {
		return nil
	}
	total, err := sumMoves(b, terms, maxSum)
	if err != nil {
		return err
	}
	ineq, err := fdsolver.NewInequality(total.V, constVar(b.Model, maxProductivity+total.Bias), fdsolver.LessEqual)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(ineq)
	return nil
}

// buildMaxCranes posts Sum_k craneActive[k,i,t] <= maxCranes_i.
func buildMaxCranes(b *Build, vesselIdx, maxCranes, shift, numCranes int) error {
	var bools []*fdsolver.FDVariable
	for k := 0; k < numCranes; k++ {
		if ca, ok := b.CraneActive[moveKey{craneIdx: k, vesselIdx: vesselIdx, shift: shift}]; ok {
			bools = append(bools, ca)
		}
	}
	if len(bools) == 0 {
		return nil
	}
	total := b.Model.NewVariable(fdsolver.NewBitSetDomain(len(bools) + 1))
	sum, err := fdsolver.NewBoolSum(bools, total)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(sum)
	ineq, err := fdsolver.NewInequality(total, constVar(b.Model, maxCranes+1), fdsolver.LessEqual)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(ineq)
	return nil
}

// buildMinWorkWhenActive posts active[i,t] => Sum_k moves[k,i,t] >= 1 with
// the generic fdsolver.ReifiedConstraint over an Inequality. That wrapper
// also enforces the Inequality's negation when its boolean is false, so an
// inactive (i,t) additionally gets Sum_k moves[k,i,t] < 1.
func buildMinWorkWhenActive(b *Build, vesselIdx, shift, numCranes int) error {
	active, ok := b.Active[activeKey(vesselIdx, shift)]
	if !ok {
		return nil
	}
	terms, maxSum := movesFor(b, func(k moveKey) bool { return k.vesselIdx == vesselIdx && k.shift == shift })
	if len(terms) == 0 {
		// No crane can ever work this vessel in this shift: active at this
		// shift would force an impossible Sum >= 1, which is the correct
		// infeasible-branch behavior, not a bug to special-case around.
		zero := constVar(b.Model, 1)
		ineq, err := fdsolver.NewInequality(zero, constVar(b.Model, 2), fdsolver.GreaterEqual)
		if err != nil {
			return err
		}
		reified, err := fdsolver.NewReifiedConstraint(ineq, active)
		if err != nil {
			return err
		}
		b.Model.AddConstraint(reified)
		return nil
	}
	total, err := sumMoves(b, terms, maxSum)
	if err != nil {
		return err
	}
	ineq, err := fdsolver.NewInequality(total.V, constVar(b.Model, 1+total.Bias), fdsolver.GreaterEqual)
	if err != nil {
		return err
	}
	reified, err := fdsolver.NewReifiedConstraint(ineq, active)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(reified)
	return nil
}

// buildCraneReach posts craneActive[k,i,t] => pos[i] >= berthRangeStart_k,
// and, when strict, the symmetric craneActive[k,i,t] => pos[i]+loa_i <=
// berthRangeEnd_k (open question 2, SPEC_FULL.md §9/§11: off by default).
func buildCraneReach(b *Build, craneIdx, vesselIdx, shift int, c berth.Crane, v berth.Vessel, strict bool) error {
	craneActive, ok := b.CraneActive[moveKey{craneIdx: craneIdx, vesselIdx: vesselIdx, shift: shift}]
	if !ok {
		return nil
	}
	pos := b.Pos[vesselIdx]

	ineq, err := fdsolver.NewInequality(pos.V, constVar(b.Model, c.BerthRangeStart+pos.Bias), fdsolver.GreaterEqual)
	if err != nil {
		return err
	}
	reified, err := fdsolver.NewReifiedConstraint(ineq, craneActive)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(reified)

	if !strict {
		return nil
	}
	posPlusLoa, err := arithTo(b.Model, pos, v.LOA, 0, 100000, 0)
	if err != nil {
		return err
	}
	ineq2, err := fdsolver.NewInequality(posPlusLoa.V, constVar(b.Model, c.BerthRangeEnd+posPlusLoa.Bias), fdsolver.LessEqual)
	if err != nil {
		return err
	}
	reified2, err := fdsolver.NewReifiedConstraint(ineq2, craneActive)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(reified2)
	return nil
}

// buildSTSNonCrossing posts: for every ordered STS crane pair (k1<k2), every
// shift t, and every pair of distinct vessels (a,b): craneActive[k1,a,t] AND
// craneActive[k2,b,t] => pos[a] <= pos[b]. The consequent is captured as a
// bidirectional inequalityReified bool (per SPEC_FULL.md §4.3's EXPANSION
// note naming this as one of its three bidirectional reifications), and the
// implication itself is posted with the boolean-domain ordering trick in
// implies (false=1 <= anything).
func buildSTSNonCrossing(b *Build) error {
	p := b.Problem
	cranes := p.Cranes()
	vessels := p.Vessels()
	T := p.NumShifts()

	var stsIdx []int
	for k, c := range cranes {
		if c.Type == berth.CraneSTS {
			stsIdx = append(stsIdx, k)
		}
	}

	boolCache := make(map[[2]int]*fdsolver.FDVariable)
	orderBool := func(a, b2 int) (*fdsolver.FDVariable, error) {
		key := [2]int{a, b2}
		if v, ok := boolCache[key]; ok {
			return v, nil
		}
		bv := newBool(b.Model)
		if _, err := newInequalityReified(b.Model, b.Pos[a].V, b.Pos[b2].V, bv); err != nil {
			return nil, err
		}
		boolCache[key] = bv
		return bv, nil
	}

	for _, k1 := range stsIdx {
		for _, k2 := range stsIdx {
			if k1 >= k2 {
				continue
			}
			for t := 0; t < T; t++ {
				for a := 0; a < len(vessels); a++ {
					for bb := 0; bb < len(vessels); bb++ {
						if a == bb {
							continue
						}
						ca1, ok1 := b.CraneActive[moveKey{craneIdx: k1, vesselIdx: a, shift: t}]
						ca2, ok2 := b.CraneActive[moveKey{craneIdx: k2, vesselIdx: bb, shift: t}]
						if !ok1 || !ok2 {
							continue
						}
						bothActive, err := andBool(b.Model, ca1, ca2)
						if err != nil {
							return err
						}
						orderedOK, err := orderBool(a, bb)
						if err != nil {
							return err
						}
						if err := implies(b.Model, bothActive, orderedOK); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

// buildShiftingGang posts isIntermediate[k,i,t] <=> end[i] >= t+2, and
// craneActive[k,i,t] AND isIntermediate[k,i,t] => moves[k,i,t] =
// limit(k,i,t).
func buildShiftingGang(b *Build, craneIdx, vesselIdx, shift int, c berth.Crane, v berth.Vessel) error {
	key := moveKey{craneIdx: craneIdx, vesselIdx: vesselIdx, shift: shift}
	craneActive, ok := b.CraneActive[key]
	if !ok {
		return nil
	}
	moves := b.Moves[key]
	end := b.End[vesselIdx]

	isIntermediate := newBool(b.Model)
	if _, err := newInequalityReified(b.Model, constVar(b.Model, shift+2+end.Bias), end.V, isIntermediate); err != nil {
		return err
	}

	gangActive, err := andBool(b.Model, craneActive, isIntermediate)
	if err != nil {
		return err
	}

	derived := b.Pre.Vessels[vesselIdx]
	limit := berth.Limit(c, v, shift, derived.ClampedArrivalShiftIndex, derived.ArrivalFraction)

	// moves = limit is enforced as two implications (>= limit and <= limit)
	// gated by gangActive, since pkg/fdsolver has no equality InequalityKind.
	geq, err := fdsolver.NewInequality(moves.V, constVar(b.Model, limit+moves.Bias), fdsolver.GreaterEqual)
	if err != nil {
		return err
	}
	rGeq, err := fdsolver.NewReifiedConstraint(geq, gangActive)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(rGeq)

	leq, err := fdsolver.NewInequality(moves.V, constVar(b.Model, limit+moves.Bias), fdsolver.LessEqual)
	if err != nil {
		return err
	}
	rLeq, err := fdsolver.NewReifiedConstraint(leq, gangActive)
	if err != nil {
		return err
	}
	b.Model.AddConstraint(rLeq)
	return nil
}

// movesFor collects every created moves[k,i,t] ivar matching pred, plus a
// generous (not tight) upper bound on their real sum for domain sizing.
func movesFor(b *Build, pred func(moveKey) bool) ([]ivar, int) {
	var terms []ivar
	maxSum := 0
	for k, v := range b.Moves {
		if pred(k) {
			terms = append(terms, v)
			hi := v.V.Domain().MaxValue() - v.Bias
			maxSum += hi
		}
	}
	return terms, maxSum
}

// sumMoves builds Sum(terms) as a single LinearSum-backed ivar, or a
// constant zero when terms is empty (LinearSum requires at least one term).
func sumMoves(b *Build, terms []ivar, maxSum int) (ivar, error) {
	if len(terms) == 0 {
		return ivar{V: constVar(b.Model, 1), Bias: 1}, nil
	}
	coeffs := make([]int, len(terms))
	for i := range coeffs {
		coeffs[i] = 1
	}
	return linearCombination(b.Model, terms, coeffs, 0, maxSum)
}
