package solve

// Status is the terminal outcome of one solve attempt. Every Driver.Run
// return path sets exactly one of these — there is no code path that falls
// back to a hard-coded string, unlike the bug SPEC_FULL.md's source
// material has around status reporting.
type Status string

const (
	// StatusOptimal means the search proved the returned solution minimal.
	StatusOptimal Status = "OPTIMAL"
	// StatusFeasible means a search limit was hit with an incumbent in hand.
	StatusFeasible Status = "FEASIBLE"
	// StatusInfeasible means preprocessing or the search proved no solution
	// exists.
	StatusInfeasible Status = "INFEASIBLE"
	// StatusModelInvalid means the model builder rejected a constraint,
	// e.g. a toggle combination the builder could not post.
	StatusModelInvalid Status = "MODEL_INVALID"
	// StatusUnknown means a search limit was hit before any incumbent was
	// found.
	StatusUnknown Status = "UNKNOWN"
)

// VesselSolution is one vessel's assignment in a returned Solution, the
// external-facing counterpart of planmodel.VesselAssignment, keyed by name
// instead of index.
type VesselSolution struct {
	VesselName string
	Position   int
	StartShift int
	EndShift   int
	// Moves maps crane ID to shift index to move count. Zero-move entries
	// are omitted.
	Moves map[string]map[int]int
}

// Solution is the full result of one Driver.Run call.
type Solution struct {
	RunID     string
	Status    Status
	Objective int
	Vessels   []VesselSolution
}
