// Package solve implements C5: it turns a berth.Problem into a Solution by
// running preprocessing, model construction, and the fdsolver search in
// sequence, mapping every way that sequence can end into a named Status.
package solve

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gitrdm/berthplan/internal/berth"
	"github.com/gitrdm/berthplan/internal/metrics"
	"github.com/gitrdm/berthplan/internal/planmodel"
	"github.com/gitrdm/berthplan/internal/preprocess"
	"github.com/gitrdm/berthplan/pkg/fdsolver"
)

// parallelWorkers is fixed per SPEC_FULL.md §5; it is not exposed as a
// configuration knob because the portfolio search's worker count is an
// implementation detail of this driver, not of the problem being solved.
const parallelWorkers = 8

// Driver runs one solve attempt end to end and logs its progress.
type Driver struct {
	Logger *log.Logger
}

// NewDriver returns a Driver. A nil logger is replaced with log.Default so
// callers never need a nil check before using it.
func NewDriver(logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{Logger: logger}
}

// Run preprocesses p, builds its constraint model, and drives the solver to
// completion or to the timeLimit, whichever comes first.
func (d *Driver) Run(ctx context.Context, p *berth.Problem, timeLimit time.Duration) (*Solution, error) {
	runID := uuid.NewString()
	start := time.Now()

	pre, err := preprocess.Preprocess(p)
	if err != nil {
		var infeasible *preprocess.InfeasibleError
		if errors.As(err, &infeasible) {
			d.Logger.Printf("solve[%s]: infeasible during preprocessing: %v", runID, err)
			metrics.RecordAttempt(string(StatusInfeasible), time.Since(start), 0, 0, 0)
			return &Solution{RunID: runID, Status: StatusInfeasible}, nil
		}
		return nil, err
	}

	build, err := planmodel.BuildModel(p, pre)
	if err != nil {
		d.Logger.Printf("solve[%s]: model builder rejected problem: %v", runID, err)
		metrics.RecordAttempt(string(StatusModelInvalid), time.Since(start), 0, 0, 0)
		return &Solution{RunID: runID, Status: StatusModelInvalid}, nil
	}

	solver := fdsolver.NewSolver(build.Model)
	monitor := fdsolver.NewSolverMonitor()
	solver.SetMonitor(monitor)

	contextMonitor := fdsolver.NewContextMonitor(runID, d.Logger)
	ctx, cancel := fdsolver.WithContextTimeout(ctx, timeLimit, contextMonitor)
	defer cancel()

	assignment, objective, err := solver.SolveOptimalWithOptions(ctx, build.Objective.V, true,
		fdsolver.WithTimeLimit(timeLimit),
		fdsolver.WithParallelWorkers(parallelWorkers),
	)

	stats := monitor.GetStats()
	d.Logger.Printf("solve[%s]: %s", runID, stats.String())

	status, solveErr := classify(err, assignment)
	if solveErr != nil {
		return nil, solveErr
	}

	if status == StatusInfeasible || status == StatusUnknown {
		metrics.RecordAttempt(string(status), time.Since(start), 0, 0, stats.NodesExplored)
		return &Solution{RunID: runID, Status: status}, nil
	}

	vessels := extractVessels(p, build, assignment)
	// The solver returns the objective variable's stored value; strip its
	// bias so Objective is the weighted sum of the real term values.
	objective -= build.Objective.Bias
	metrics.RecordAttempt(string(status), time.Since(start), objective, len(vessels), stats.NodesExplored)

	return &Solution{
		RunID:     runID,
		Status:    status,
		Objective: objective,
		Vessels:   vessels,
	}, nil
}

// classify maps SolveOptimalWithOptions's (assignment, err) pair to a
// Status, per SPEC_FULL.md §4.5. A non-nil, non-limit/non-cancellation err
// is a genuine failure and propagates to the caller instead of being
// swallowed into a Status.
func classify(err error, assignment []int) (Status, error) {
	if err == nil {
		if assignment == nil {
			return StatusInfeasible, nil
		}
		return StatusOptimal, nil
	}
	if errors.Is(err, fdsolver.ErrSearchLimitReached) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if assignment != nil {
			return StatusFeasible, nil
		}
		return StatusUnknown, nil
	}
	return "", err
}

// extractVessels reads build's solved assignment back into the public
// VesselSolution shape, translating crane indices to their configured IDs.
func extractVessels(p *berth.Problem, build *planmodel.Build, assignment []int) []VesselSolution {
	cranes := p.Cranes()
	vessels := p.Vessels()
	raw := build.Extract(assignment)

	out := make([]VesselSolution, len(raw))
	for i, r := range raw {
		vs := VesselSolution{
			VesselName: vessels[r.VesselIndex].Name,
			Position:   r.Position,
			StartShift: r.StartShift,
			EndShift:   r.EndShift,
			Moves:      make(map[string]map[int]int),
		}
		for craneIdx, byShift := range r.Moves {
			vs.Moves[cranes[craneIdx].ID] = byShift
		}
		out[i] = vs
	}
	return out
}
