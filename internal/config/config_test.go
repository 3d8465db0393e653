package config

import (
	"strings"
	"testing"
	"time"
)

const validConfigJSON = `{
  "berth": {
    "length": 300,
    "depth_map": [{"position": 0, "depth": 15.0}]
  },
  "shifts": {"start_date": "01012026", "num_shifts": 8},
  "vessels": [
    {
      "name": "V1",
      "workload": 100,
      "loa": 50,
      "draft": 10,
      "arrival_shift": 0,
      "arrival_hour_offset": 0,
      "max_cranes": 2,
      "productivity_preference": "MAX",
      "target_zones": []
    }
  ],
  "cranes": [
    {"id": "C1", "name": "Crane 1", "crane_type": "STS", "berth_range_start": 0, "berth_range_end": 300, "min_productivity": 10, "max_productivity": 20}
  ],
  "solver_settings": {"time_limit_seconds": 45},
  "solver_rules": {}
}`

func TestDecodeValidConfig(t *testing.T) {
	cfg, err := Decode(strings.NewReader(validConfigJSON))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Berth.Length != 300 {
		t.Errorf("Berth.Length = %d, want 300", cfg.Berth.Length)
	}
	if len(cfg.Vessels) != 1 {
		t.Fatalf("expected 1 vessel, got %d", len(cfg.Vessels))
	}
	if got, want := cfg.TimeLimit(), 45*time.Second; got != want {
		t.Errorf("TimeLimit() = %v, want %v", got, want)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	withExtra := strings.Replace(validConfigJSON, `"solver_rules": {}`, `"solver_rules": {}, "bogus_field": true`, 1)
	if _, err := Decode(strings.NewReader(withExtra)); err == nil {
		t.Fatal("expected an error for an unknown top-level field")
	}
}

func TestDecodeRejectsMissingRequiredField(t *testing.T) {
	cranesBlock := validConfigJSON[strings.Index(validConfigJSON, `"cranes": [`):strings.Index(validConfigJSON, `"solver_settings"`)]
	missingCranes := strings.Replace(validConfigJSON, cranesBlock, "", 1)
	if _, err := Decode(strings.NewReader(missingCranes)); err == nil {
		t.Fatal("expected a validation error when cranes is missing")
	}
}

func TestTimeLimitDefaultsTo60Seconds(t *testing.T) {
	var cfg Config
	if got, want := cfg.TimeLimit(), 60*time.Second; got != want {
		t.Errorf("default TimeLimit() = %v, want %v", got, want)
	}
}

func TestBoolOr(t *testing.T) {
	truth := true
	if got := boolOr(&truth, false); !got {
		t.Error("boolOr with non-nil true should return true")
	}
	if got := boolOr(nil, true); !got {
		t.Error("boolOr with nil should return the default")
	}
}
