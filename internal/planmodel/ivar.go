package planmodel

import "github.com/gitrdm/berthplan/pkg/fdsolver"

// ivar is a decision variable together with the additive bias used to map
// its real-world (possibly zero or negative-adjacent) value onto
// pkg/fdsolver's strictly positive, 1-indexed BitSetDomain: stored = real +
// Bias. Berth positions never need a bias (GAP keeps them >= 40); shift
// indices, durations, move counts, and every objective term do, since they
// can legitimately be zero.
type ivar struct {
	V    *fdsolver.FDVariable
	Bias int
}

// newRangeVar creates a variable whose real values span [lo, hi], stored at
// [lo+bias, hi+bias].
func newRangeVar(model *fdsolver.Model, lo, hi, bias int) ivar {
	if hi < lo {
		hi = lo
	}
	n := hi - lo + 1
	values := make([]int, n)
	for i := 0; i < n; i++ {
		values[i] = lo + i + bias
	}
	maxV := hi + bias
	if maxV < 1 {
		maxV = 1
	}
	dom := fdsolver.NewBitSetDomainFromValues(maxV, values)
	return ivar{V: model.NewVariable(dom), Bias: bias}
}

// arithTo posts dst = src + k (real arithmetic) as a single
// fdsolver.Arithmetic constraint, resolving the bias difference between src
// and the newly created dst automatically.
func arithTo(model *fdsolver.Model, src ivar, k, lo, hi, dstBias int) (ivar, error) {
	dst := newRangeVar(model, lo, hi, dstBias)
	offset := k + dstBias - src.Bias
	arith, err := fdsolver.NewArithmetic(src.V, dst.V, offset)
	if err != nil {
		return ivar{}, err
	}
	model.AddConstraint(arith)
	return dst, nil
}

// linearCombination posts total = Sum(coeffs[i] * terms[i]) (real
// arithmetic) via a single fdsolver.LinearSum. The resulting variable's
// bias is forced by the arithmetic (Sum(coeffs[i] * terms[i].Bias)); callers
// only choose the real range [lo, hi].
func linearCombination(model *fdsolver.Model, terms []ivar, coeffs []int, lo, hi int) (ivar, error) {
	resultBias := 0
	for i, c := range coeffs {
		resultBias += c * terms[i].Bias
	}
	result := newRangeVar(model, lo, hi, resultBias)
	vars := make([]*fdsolver.FDVariable, len(terms))
	for i, t := range terms {
		vars[i] = t.V
	}
	sum, err := fdsolver.NewLinearSum(vars, coeffs, result.V)
	if err != nil {
		return ivar{}, err
	}
	model.AddConstraint(sum)
	return result, nil
}

// newBool creates a fresh boolean variable in pkg/fdsolver's native
// encoding (domain {1,2}, 1=false, 2=true).
func newBool(model *fdsolver.Model) *fdsolver.FDVariable {
	return model.NewVariable(fdsolver.NewBitSetDomain(2))
}

// shiftVar creates a variable over real shift indices [lo, hi], stored at
// the package's fixed +1 bias. It and toShift are the only things in this
// package that know the bias exists, per SPEC_FULL.md §4.3's EXPANSION note.
func shiftVar(model *fdsolver.Model, lo, hi int) ivar {
	return newRangeVar(model, lo, hi, 1)
}

// toShift converts a raw stored value (as read back from a solved
// assignment) to its real shift index.
func toShift(stored int) int { return stored - 1 }

// constVar creates a singleton variable pinned at storedValue, for use as
// the fixed side of an Inequality/Arithmetic comparison against a real
// decision variable that already carries a bias.
func constVar(model *fdsolver.Model, storedValue int) *fdsolver.FDVariable {
	if storedValue < 1 {
		storedValue = 1
	}
	return model.NewVariable(fdsolver.NewBitSetDomainFromValues(storedValue, []int{storedValue}))
}

// andBool posts result <=> (a ∧ b) for two native-encoding booleans, via a
// BoolSum whose total (count+1, domain [1,3]) can only reach 3 when both a
// and b are true — the same offset-by-one convention BoolSum itself uses,
// applied here to the two-operand case instead of element-reification.
func andBool(model *fdsolver.Model, a, b *fdsolver.FDVariable) (*fdsolver.FDVariable, error) {
	total := model.NewVariable(fdsolver.NewBitSetDomainFromValues(3, []int{1, 2, 3}))
	sum, err := fdsolver.NewBoolSum([]*fdsolver.FDVariable{a, b}, total)
	if err != nil {
		return nil, err
	}
	model.AddConstraint(sum)
	ineq, err := fdsolver.NewInequality(total, constVar(model, 3), fdsolver.GreaterEqual)
	if err != nil {
		return nil, err
	}
	result := newBool(model)
	reified, err := fdsolver.NewReifiedConstraint(ineq, result)
	if err != nil {
		return nil, err
	}
	model.AddConstraint(reified)
	return result, nil
}

// implies posts antecedent => consequent for two native-encoding booleans,
// using the ordering of the {1,2} boolean domain directly: false(1) <=
// anything, so antecedent <= consequent is false only for (true, false).
func implies(model *fdsolver.Model, antecedent, consequent *fdsolver.FDVariable) error {
	ineq, err := fdsolver.NewInequality(antecedent, consequent, fdsolver.LessEqual)
	if err != nil {
		return err
	}
	model.AddConstraint(ineq)
	return nil
}
