package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewSolveCollectorRegistersWithoutError(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewSolveCollector()
	if err := c.Register(reg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}

func TestRecordAttemptDoesNotPanicBeforeInit(t *testing.T) {
	Registry = nil
	global = nil
	// Record against the package-level helper with no registry initialized;
	// it must be a silent no-op, not a nil-pointer panic.
	RecordAttempt("OPTIMAL", time.Second, 100, 1, 5)
}

func TestInitRegistryEnablesRecording(t *testing.T) {
	if err := InitRegistry(); err != nil {
		t.Fatalf("InitRegistry returned error: %v", err)
	}
	if !IsEnabled() {
		t.Fatal("expected IsEnabled to report true after InitRegistry")
	}
	RecordAttempt("FEASIBLE", 2*time.Second, 50, 2, 10)
}
