package planmodel

import (
	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/internal/preprocess"
)

// BuildModel runs C3 (decision variables and constraints) and C4 (the
// objective) over a preprocessed problem, returning a fully-wired Build
// ready for internal/solve to hand to pkg/fdsolver.Solver. preprocess.Result
// must come from preprocess.Preprocess(p); callers that skip it and pass an
// empty Result will get nonsensical positions/arrival clamping.
func BuildModel(p *berth.Problem, pre *preprocess.Result) (*Build, error) {
	b := newBuild(p, pre)

	if err := buildVariables(b); err != nil {
		return nil, err
	}
	if err := buildConstraints(b); err != nil {
		return nil, err
	}
	if err := buildObjective(b); err != nil {
		return nil, err
	}
	if err := b.Model.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}
