package planmodel

import (
	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/internal/preprocess"
	"github.com/gitrdm/berthplan/pkg/fdsolver"
)

// moveKey indexes a created moves[k,i,t] variable.
type moveKey struct {
	craneIdx  int
	vesselIdx int
	shift     int
}

// Build holds every decision variable created for one problem instance,
// plus the model they live in. Exported so internal/solve can extract an
// assignment back into domain terms without reaching into planmodel
// internals.
type Build struct {
	Model *fdsolver.Model

	Problem *berth.Problem
	Pre     *preprocess.Result

	Pos      []ivar // [vesselIdx]
	Start    []ivar // [vesselIdx]
	End      []ivar // [vesselIdx]
	Duration []ivar // [vesselIdx]

	Active map[[2]int]*fdsolver.FDVariable // [vesselIdx][shift]

	Moves       map[moveKey]ivar
	CraneActive map[moveKey]*fdsolver.FDVariable

	Objective ivar
}

func activeKey(vesselIdx, shift int) [2]int { return [2]int{vesselIdx, shift} }

// newBuild allocates the skeleton; buildVariables and the constraint/
// objective builders populate it.
func newBuild(p *berth.Problem, pre *preprocess.Result) *Build {
	n := len(p.Vessels())
	return &Build{
		Model:       fdsolver.NewModel(),
		Problem:     p,
		Pre:         pre,
		Pos:         make([]ivar, n),
		Start:       make([]ivar, n),
		End:         make([]ivar, n),
		Duration:    make([]ivar, n),
		Active:      make(map[[2]int]*fdsolver.FDVariable),
		Moves:       make(map[moveKey]ivar),
		CraneActive: make(map[moveKey]*fdsolver.FDVariable),
	}
}

// buildVariables creates pos[i], start[i], end[i], duration[i], active[i,t],
// moves[k,i,t], and craneActive[k,i,t] in deterministic order (vessels by
// index, shifts ascending, cranes by fleet index), per SPEC_FULL.md §4.3.
func buildVariables(b *Build) error {
	p := b.Problem
	T := p.NumShifts()
	vessels := p.Vessels()
	cranes := p.Cranes()

	for i, v := range vessels {
		derived := b.Pre.Vessels[i]
		arrival := derived.ClampedArrivalShiftIndex

		b.Pos[i] = posVar(b.Model, derived.FeasiblePositions)
		b.Start[i] = shiftVar(b.Model, arrival, T-1)
		b.End[i] = shiftVar(b.Model, arrival+1, T)

		duration, err := linearCombination(b.Model,
			[]ivar{b.End[i], b.Start[i]}, []int{1, -1}, 1, T)
		if err != nil {
			return err
		}
		b.Duration[i] = duration

		for t := 0; t < T; t++ {
			afterStart := newBool(b.Model)
			if _, err := newInequalityReified(b.Model, b.Start[i].V, constVar(b.Model, t+1), afterStart); err != nil {
				return err
			}
			beforeEnd := newBool(b.Model)
			if _, err := newInequalityReified(b.Model, constVar(b.Model, t+2), b.End[i].V, beforeEnd); err != nil {
				return err
			}
			active, err := andBool(b.Model, afterStart, beforeEnd)
			if err != nil {
				return err
			}
			b.Active[activeKey(i, t)] = active
		}

		for k, c := range cranes {
			for t := arrival; t < T; t++ {
				if !p.CraneAvailable(c.ID, t) {
					continue
				}
				limit := berth.Limit(c, v, t, arrival, derived.ArrivalFraction)
				if limit <= 0 {
					continue
				}
				key := moveKey{craneIdx: k, vesselIdx: i, shift: t}
				moves := newRangeVar(b.Model, 0, limit, 1)
				b.Moves[key] = moves

				craneActive := newBool(b.Model)
				ineq, err := fdsolver.NewInequality(moves.V, constVar(b.Model, 2), fdsolver.GreaterEqual)
				if err != nil {
					return err
				}
				reified, err := fdsolver.NewReifiedConstraint(ineq, craneActive)
				if err != nil {
					return err
				}
				b.Model.AddConstraint(reified)
				b.CraneActive[key] = craneActive
			}
		}
	}
	return nil
}

// posVar creates pos[i] restricted to exactly the feasible positions C2
// derived (spatial bounds and depth feasibility, constraints 1 and 2, are
// enforced by construction here — there is no separate propagator for
// either, since the feasible set already excludes every position GAP/depth
// rules out).
func posVar(model *fdsolver.Model, positions []int) ivar {
	maxV := positions[0]
	for _, p := range positions {
		if p > maxV {
			maxV = p
		}
	}
	dom := fdsolver.NewBitSetDomainFromValues(maxV, positions)
	return ivar{V: model.NewVariable(dom), Bias: 0}
}
