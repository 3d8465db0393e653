package planmodel

import "github.com/gitrdm/berthplan/pkg/fdsolver"

// newVesselNonOverlap posts pairwise non-overlap between vessel berth/shift
// rectangles [pos[i], pos[i]+width[i]) x [start[i], end[i]). Unlike a
// fixed-extent rectangle-non-overlap constraint, the y-extent here is not a
// fixed size: end[i] is itself a decision variable (a vessel's duration is
// not known ahead of time), so the y-axis disjuncts compare start/end
// variables directly instead of synthesizing an offset variable the way a
// fixed-height formulation would. The x-axis disjuncts still need the
// offset helper since width is fixed (loa_i + GAP). This reified
// pairwise-disjunction composition is the same idea the teacher's original
// fixed-rectangle constraint used, generalized to one variable extent.
func newVesselNonOverlap(model *fdsolver.Model, pos, start, end []*fdsolver.FDVariable, width []int) error {
	n := len(pos)
	boolDom := fdsolver.NewBitSetDomain(2)
	atLeastOneTrueDom := fdsolver.NewBitSetDomainFromValues(5, []int{2, 3, 4, 5})

	makeOffset := func(base *fdsolver.FDVariable, offset int) (*fdsolver.FDVariable, error) {
		max := base.Domain().MaxValue() + offset
		if max < 1 {
			max = 1
		}
		z := model.NewVariable(fdsolver.NewBitSetDomain(max))
		arith, err := fdsolver.NewArithmetic(base, z, offset)
		if err != nil {
			return nil, err
		}
		model.AddConstraint(arith)
		return z, nil
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var bools []*fdsolver.FDVariable

			posIPlus, err := makeOffset(pos[i], width[i])
			if err != nil {
				return err
			}
			ineq1, err := fdsolver.NewInequality(posIPlus, pos[j], fdsolver.LessEqual)
			if err != nil {
				return err
			}
			b1 := model.NewVariable(boolDom)
			r1, err := fdsolver.NewReifiedConstraint(ineq1, b1)
			if err != nil {
				return err
			}
			model.AddConstraint(r1)
			bools = append(bools, b1)

			posJPlus, err := makeOffset(pos[j], width[j])
			if err != nil {
				return err
			}
			ineq2, err := fdsolver.NewInequality(posJPlus, pos[i], fdsolver.LessEqual)
			if err != nil {
				return err
			}
			b2 := model.NewVariable(boolDom)
			r2, err := fdsolver.NewReifiedConstraint(ineq2, b2)
			if err != nil {
				return err
			}
			model.AddConstraint(r2)
			bools = append(bools, b2)

			// end[i] <= start[j]
			ineq3, err := fdsolver.NewInequality(end[i], start[j], fdsolver.LessEqual)
			if err != nil {
				return err
			}
			b3 := model.NewVariable(boolDom)
			r3, err := fdsolver.NewReifiedConstraint(ineq3, b3)
			if err != nil {
				return err
			}
			model.AddConstraint(r3)
			bools = append(bools, b3)

			// end[j] <= start[i]
			ineq4, err := fdsolver.NewInequality(end[j], start[i], fdsolver.LessEqual)
			if err != nil {
				return err
			}
			b4 := model.NewVariable(boolDom)
			r4, err := fdsolver.NewReifiedConstraint(ineq4, b4)
			if err != nil {
				return err
			}
			model.AddConstraint(r4)
			bools = append(bools, b4)

			total := model.NewVariable(atLeastOneTrueDom)
			sum, err := fdsolver.NewBoolSum(bools, total)
			if err != nil {
				return err
			}
			model.AddConstraint(sum)
		}
	}
	return nil
}
