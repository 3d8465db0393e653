package config

import (
	"strings"
	"testing"
)

func TestToProblemMapsFieldsAndToggles(t *testing.T) {
	cfg, err := Decode(strings.NewReader(validConfigJSON))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	problem, labels, err := ToProblem(cfg)
	if err != nil {
		t.Fatalf("ToProblem returned error: %v", err)
	}

	if problem.BerthLength() != 300 {
		t.Errorf("BerthLength() = %d, want 300", problem.BerthLength())
	}
	if len(labels) != cfg.Shifts.NumShifts {
		t.Errorf("len(labels) = %d, want %d", len(labels), cfg.Shifts.NumShifts)
	}
	if len(problem.Vessels()) != 1 || problem.Vessels()[0].Name != "V1" {
		t.Fatalf("unexpected vessels: %+v", problem.Vessels())
	}

	toggles := problem.Toggles()
	if !toggles.EnableForbiddenZones || !toggles.EnableCraneCapacity {
		t.Error("expected unset solver_rules to default every base toggle to true")
	}
	if toggles.EnableCraneReachStrict {
		t.Error("expected EnableCraneReachStrict to default to false")
	}
}

func TestToProblemRejectsBadStartDate(t *testing.T) {
	badDate := strings.Replace(validConfigJSON, `"start_date": "01012026"`, `"start_date": "99999999"`, 1)
	cfg, err := Decode(strings.NewReader(badDate))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if _, _, err := ToProblem(cfg); err == nil {
		t.Fatal("expected ToProblem to reject an unparseable start_date")
	}
}
