// Package planmodel builds the decision variables and constraints of the
// berth/crane assignment model (C3) and assembles its objective (C4), on
// top of pkg/fdsolver.
package planmodel

import (
	"fmt"

	"github.com/gitrdm/berthplan/pkg/fdsolver"
)

// inequalityReified links "x <= y" to a boolean variable with full
// bidirectional propagation, following the same shape as the teacher's
// EqualityReified (which did this for "x = y") since fdsolver's generic
// ReifiedConstraint only enforces the "true" branch for an arbitrary
// wrapped constraint. SPEC_FULL.md §4.3/§9 requires both directions for
// isAfterStart, isBeforeEnd, and the STS ordering indicator, so this type
// exists rather than composing the generic one.
//
// Given variables X, Y and boolean B (domain {1,2}, 1=false, 2=true):
//
//	B = 2 (true)  <=> X <= Y
//	B = 1 (false) <=> X >  Y
type inequalityReified struct {
	x       *fdsolver.FDVariable
	y       *fdsolver.FDVariable
	boolVar *fdsolver.FDVariable
}

// newInequalityReified posts x <= y <=> boolVar onto model and returns the
// constraint (also already added to model, following fdsolver's convention
// of constraints self-registering on construction).
func newInequalityReified(model *fdsolver.Model, x, y, boolVar *fdsolver.FDVariable) (*inequalityReified, error) {
	if x == nil || y == nil || boolVar == nil {
		return nil, fmt.Errorf("newInequalityReified: x, y, boolVar must be non-nil")
	}
	c := &inequalityReified{x: x, y: y, boolVar: boolVar}
	model.AddConstraint(c)
	return c, nil
}

func (c *inequalityReified) Variables() []*fdsolver.FDVariable {
	return []*fdsolver.FDVariable{c.x, c.y, c.boolVar}
}

func (c *inequalityReified) Type() string { return "InequalityReified" }

func (c *inequalityReified) String() string {
	return fmt.Sprintf("InequalityReified(X=%d <= Y=%d, B=%d)", c.x.ID(), c.y.ID(), c.boolVar.ID())
}

// Propagate implements fdsolver.PropagationConstraint.
func (c *inequalityReified) Propagate(solver *fdsolver.Solver, state *fdsolver.SolverState) (*fdsolver.SolverState, error) {
	if solver == nil {
		return nil, fmt.Errorf("InequalityReified.Propagate: nil solver")
	}

	xDom := solver.GetDomain(state, c.x.ID())
	yDom := solver.GetDomain(state, c.y.ID())
	boolDom := solver.GetDomain(state, c.boolVar.ID())
	if xDom == nil || xDom.Count() == 0 || yDom == nil || yDom.Count() == 0 || boolDom == nil || boolDom.Count() == 0 {
		return nil, fmt.Errorf("InequalityReified.Propagate: empty domain on x=%d, y=%d, or b=%d", c.x.ID(), c.y.ID(), c.boolVar.ID())
	}

	current := state
	hasTrue := boolDom.Has(2)
	hasFalse := boolDom.Has(1)

	// Detect forced truth value from bounds before touching B.
	if xDom.Max() <= yDom.Min() {
		// x <= y guaranteed
		if hasFalse {
			newDom := boolDom.Remove(1)
			current, _ = solver.SetDomain(current, c.boolVar.ID(), newDom)
			boolDom = newDom
			hasFalse = false
		}
	} else if xDom.Min() > yDom.Max() {
		// x > y guaranteed
		if hasTrue {
			newDom := boolDom.Remove(2)
			current, _ = solver.SetDomain(current, c.boolVar.ID(), newDom)
			boolDom = newDom
			hasTrue = false
		}
	}

	boolDom = solver.GetDomain(current, c.boolVar.ID())
	hasTrue = boolDom.Has(2)
	hasFalse = boolDom.Has(1)

	// B = true  => enforce x <= y: trim x above y.Max(), trim y below x.Min().
	if hasTrue && !hasFalse {
		if newX := xDom.RemoveAbove(yDom.Max()); !newX.Equal(xDom) {
			if newX.Count() == 0 {
				return nil, fmt.Errorf("InequalityReified.Propagate: B=true requires x<=y but x would be empty")
			}
			current, _ = solver.SetDomain(current, c.x.ID(), newX)
			xDom = newX
		}
		if newY := yDom.RemoveBelow(xDom.Min()); !newY.Equal(yDom) {
			if newY.Count() == 0 {
				return nil, fmt.Errorf("InequalityReified.Propagate: B=true requires x<=y but y would be empty")
			}
			current, _ = solver.SetDomain(current, c.y.ID(), newY)
			yDom = newY
		}
	}

	// B = false => enforce x > y, i.e. x >= y+1: trim x at or below y.Min(),
	// trim y at or above x.Max().
	if hasFalse && !hasTrue {
		if newX := xDom.RemoveAtOrBelow(yDom.Min()); !newX.Equal(xDom) {
			if newX.Count() == 0 {
				return nil, fmt.Errorf("InequalityReified.Propagate: B=false requires x>y but x would be empty")
			}
			current, _ = solver.SetDomain(current, c.x.ID(), newX)
			xDom = newX
		}
		if newY := yDom.RemoveAtOrAbove(xDom.Max()); !newY.Equal(yDom) {
			if newY.Count() == 0 {
				return nil, fmt.Errorf("InequalityReified.Propagate: B=false requires x>y but y would be empty")
			}
			current, _ = solver.SetDomain(current, c.y.ID(), newY)
			yDom = newY
		}
	}

	return current, nil
}
