package cmdlog

import (
	"github.com/google/uuid"

	"weft/internal/logging"
	"weft/internal/metrics"
)

// Run wraps a command with metrics and a per-run id so every log line of
// one invocation can be correlated.
func Run(cmd string, f func(runID string) error) error {
	runID := uuid.NewString()
	metrics.IncCommandRun(cmd)
	err := f(runID)
	if err != nil {
		metrics.IncCommandError(cmd)
		logging.Error(cmd+"_error", map[string]any{"run_id": runID, "error": err.Error()})
	} else {
		logging.Info(cmd+"_ok", map[string]any{"run_id": runID})
	}
	return err
}
