package planmodel

import (
	"testing"

	"github.com/gitrdm/berthplan/pkg/fdsolver"
)

func TestNewRangeVarAppliesBias(t *testing.T) {
	model := fdsolver.NewModel()
	v := newRangeVar(model, 0, 5, 1)

	dom := v.V.Domain()
	if got, want := dom.Min(), 1; got != want {
		t.Errorf("stored min = %d, want %d", got, want)
	}
	if got, want := dom.Max(), 6; got != want {
		t.Errorf("stored max = %d, want %d", got, want)
	}
}

func TestShiftVarAndToShiftRoundTrip(t *testing.T) {
	model := fdsolver.NewModel()
	v := shiftVar(model, 0, 9)

	if v.Bias != 1 {
		t.Fatalf("shiftVar bias = %d, want 1", v.Bias)
	}
	if got := toShift(v.V.Domain().Min()); got != 0 {
		t.Errorf("toShift(stored min) = %d, want 0", got)
	}
	if got := toShift(v.V.Domain().Max()); got != 9 {
		t.Errorf("toShift(stored max) = %d, want 9", got)
	}
}

func TestConstVarClampsBelowOne(t *testing.T) {
	model := fdsolver.NewModel()
	v := constVar(model, -5)
	if !v.Domain().IsSingleton() {
		t.Fatal("constVar should produce a singleton domain")
	}
	if got := v.Domain().SingletonValue(); got != 1 {
		t.Errorf("constVar(-5) singleton = %d, want 1 (clamped)", got)
	}
}

func TestArithToShiftsByOffset(t *testing.T) {
	model := fdsolver.NewModel()
	src := newRangeVar(model, 0, 10, 1)
	dst, err := arithTo(model, src, 5, 5, 15, 0)
	if err != nil {
		t.Fatalf("arithTo returned error: %v", err)
	}
	if dst.Bias != 0 {
		t.Errorf("dst.Bias = %d, want 0", dst.Bias)
	}
	if got, want := dst.V.Domain().Min(), 5; got != want {
		t.Errorf("dst domain min = %d, want %d", got, want)
	}
}

func TestLinearCombinationDerivesBias(t *testing.T) {
	model := fdsolver.NewModel()
	a := newRangeVar(model, 0, 5, 1)
	b := newRangeVar(model, 0, 5, 1)

	total, err := linearCombination(model, []ivar{a, b}, []int{1, 1}, 0, 10)
	if err != nil {
		t.Fatalf("linearCombination returned error: %v", err)
	}
	if got, want := total.Bias, 2; got != want {
		t.Errorf("total.Bias = %d, want %d", got, want)
	}
}

func TestAndBoolAndImpliesDoNotError(t *testing.T) {
	model := fdsolver.NewModel()
	a := newBool(model)
	b := newBool(model)

	result, err := andBool(model, a, b)
	if err != nil {
		t.Fatalf("andBool returned error: %v", err)
	}
	if result == nil {
		t.Fatal("andBool returned a nil variable")
	}

	if err := implies(model, a, result); err != nil {
		t.Fatalf("implies returned error: %v", err)
	}
}
