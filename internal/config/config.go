// Package config decodes and validates the JSON configuration shape
// described in SPEC_FULL.md §6. It has no knowledge of the solver; its only
// job is turning untrusted bytes into a validated, typed Config a caller can
// hand to internal/berth.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
)

// DepthMapEntry is one point of the berth's depth profile.
type DepthMapEntry struct {
	Position int     `json:"position" validate:"gte=0"`
	Depth    float64 `json:"depth" validate:"gte=0"`
}

// Berth is the quay's length and depth profile.
type Berth struct {
	Length   int             `json:"length" validate:"required,gt=0"`
	DepthMap []DepthMapEntry `json:"depth_map" validate:"required,min=1,dive"`
}

// Shifts is the planning horizon.
type Shifts struct {
	StartDate string `json:"start_date" validate:"required,len=8,numeric"`
	NumShifts int    `json:"num_shifts" validate:"required,gt=0"`
}

// TargetZone is a vessel's declared yard-zone preference.
type TargetZone struct {
	YardQuayZoneID string `json:"yard_quay_zone_id" validate:"required"`
	Volume         int    `json:"volume" validate:"gte=0"`
}

// Vessel is one arriving ship, as described on the wire.
type Vessel struct {
	Name                   string       `json:"name" validate:"required"`
	Workload               int         `json:"workload" validate:"gte=0"`
	LOA                    int         `json:"loa" validate:"required,gt=0"`
	Draft                  float64     `json:"draft" validate:"gte=0"`
	ArrivalShift           int         `json:"arrival_shift" validate:"gte=0"`
	ArrivalHourOffset      float64     `json:"arrival_hour_offset" validate:"gte=0"`
	MaxCranes              int         `json:"max_cranes" validate:"required,gt=0"`
	ProductivityPreference string      `json:"productivity_preference" validate:"required,oneof=MAX INTERMEDIATE MIN"`
	TargetZones            []TargetZone `json:"target_zones,omitempty" validate:"dive"`
}

// Crane is one member of the fleet, as described on the wire.
type Crane struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	CraneType       string `json:"crane_type" validate:"required,oneof=STS MHC"`
	BerthRangeStart int    `json:"berth_range_start" validate:"gte=0"`
	BerthRangeEnd   int    `json:"berth_range_end" validate:"gtfield=BerthRangeStart"`
	MinProductivity int    `json:"min_productivity" validate:"gte=0"`
	MaxProductivity int    `json:"max_productivity" validate:"gtefield=MinProductivity"`
}

// CraneUnavailability lists the shifts a crane is taken out of service.
type CraneUnavailability struct {
	CraneID string `json:"crane_id" validate:"required"`
	Shifts  []int  `json:"shifts" validate:"dive,gte=0"`
}

// ForbiddenZone is a rectangular space-time exclusion block.
type ForbiddenZone struct {
	StartBerthPosition int    `json:"start_berth_position" validate:"gte=0"`
	EndBerthPosition   int    `json:"end_berth_position" validate:"gtfield=StartBerthPosition"`
	StartShift         int    `json:"start_shift" validate:"gte=0"`
	EndShift           int    `json:"end_shift" validate:"gtfield=StartShift"`
	Description        string `json:"description"`
}

// YardQuayZone is a named interval along the quay.
type YardQuayZone struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	StartDist int    `json:"start_dist" validate:"gte=0"`
	EndDist   int    `json:"end_dist" validate:"gtfield=StartDist"`
}

// SolverSettings tunes the solve invocation.
type SolverSettings struct {
	TimeLimitSeconds int `json:"time_limit_seconds" validate:"gte=0"`
}

// SolverRules mirrors berth.Toggles on the wire; JSON key names follow the
// naming in SPEC_FULL.md §6.
type SolverRules struct {
	EnableForbiddenZones     *bool `json:"enable_forbidden_zones"`
	EnableCraneCapacity      *bool `json:"enable_crane_capacity"`
	EnableMaxCranes          *bool `json:"enable_max_cranes"`
	EnableMinCranesOnArrival *bool `json:"enable_min_cranes_on_arrival"`
	EnableCraneReach         *bool `json:"enable_crane_reach"`
	EnableSTSNonCrossing     *bool `json:"enable_sts_non_crossing"`
	EnableShiftingGang       *bool `json:"enable_shifting_gang"`
	EnableCraneReachStrict   *bool `json:"enable_crane_reach_strict"`
}

// Config is the full decoded configuration, matching SPEC_FULL.md §6's
// recognized top-level keys.
type Config struct {
	Berth                Berth                 `json:"berth" validate:"required"`
	Shifts               Shifts                `json:"shifts" validate:"required"`
	Vessels              []Vessel              `json:"vessels" validate:"required,min=1,dive"`
	Cranes               []Crane               `json:"cranes" validate:"required,min=1,dive"`
	CraneUnavailability  []CraneUnavailability `json:"crane_unavailability,omitempty" validate:"dive"`
	ForbiddenZones       []ForbiddenZone       `json:"forbidden_zones,omitempty" validate:"dive"`
	YardQuayZones        []YardQuayZone        `json:"yard_quay_zones,omitempty" validate:"dive"`
	SolverSettings       SolverSettings        `json:"solver_settings"`
	SolverRules          SolverRules           `json:"solver_rules"`
}

// TimeLimit returns the configured solve time limit, defaulting to 60
// seconds per SPEC_FULL.md §4.5 when unset or non-positive.
func (c Config) TimeLimit() time.Duration {
	if c.SolverSettings.TimeLimitSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.SolverSettings.TimeLimitSeconds) * time.Second
}

// ValidationError wraps a validator.ValidationErrors failure, naming the
// offending field per the "Configuration malformed" error kind in
// SPEC_FULL.md §7.
type ValidationError struct {
	Err validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	if len(e.Err) == 0 {
		return "config: validation failed"
	}
	first := e.Err[0]
	return fmt.Sprintf("config: field %q failed validation %q", first.Namespace(), first.Tag())
}

func (e *ValidationError) Unwrap() error { return e.Err }

var validate = validator.New()

// Decode reads and validates a Config from r. It never consults the
// filesystem or environment itself; the caller supplies the bytes.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: malformed JSON: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return nil, &ValidationError{Err: verrs}
		}
		return nil, fmt.Errorf("config: validation error: %w", err)
	}

	return &cfg, nil
}

// boolOr returns *b if non-nil, otherwise def.
func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
